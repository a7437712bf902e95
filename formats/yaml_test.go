package formats

import (
	"testing"

	"github.com/phanxgames/marionette"
)

const manifestYAML = `
meta:
  name: waving-cat
  artist: someone
crossFadeDeforms: true
physics:
  gravity: [0, 9.8]
  pixelsPerMeter: 800
nodes:
  - id: 2
    name: body
    type: node
    children:
      - id: 3
        name: paw
        type: part
        translation: [4, -2]
        mesh:
          verts: [-1, -1, 1, -1, -1, 1, 1, 1]
          uvs: [0, 0, 1, 0, 0, 1, 1, 1]
          indices: [0, 1, 2, 2, 1, 3]
params:
  - name: wave
    min: [0, 0]
    max: [1, 0]
    axisX: [0, 0.5, 1]
    bindings:
      - node: 3
        target: transform.r.z
        values: [[0, 0.4, 0.8]]
`

func TestDecodeManifest(t *testing.T) {
	doc, err := DecodeManifest([]byte(manifestYAML))
	if err != nil {
		t.Fatalf("DecodeManifest: %v", err)
	}
	if doc.Meta.Name != "waving-cat" || !doc.CrossFadeDeforms {
		t.Errorf("meta = %+v, crossFade = %v", doc.Meta, doc.CrossFadeDeforms)
	}
	if doc.Physics == nil || doc.Physics.PixelsPerMeter != 800 {
		t.Errorf("physics env = %+v", doc.Physics)
	}
	if len(doc.Nodes) != 1 || len(doc.Nodes[0].Children) != 1 {
		t.Fatalf("node tree shape wrong: %+v", doc.Nodes)
	}
	paw := doc.Nodes[0].Children[0]
	if paw.Translation != [2]float64{4, -2} || len(paw.Mesh.Verts) != 8 {
		t.Errorf("paw = %+v", paw)
	}
}

func TestManifestBuildsAndRuns(t *testing.T) {
	doc, err := DecodeManifest([]byte(manifestYAML))
	if err != nil {
		t.Fatal(err)
	}
	p, err := Build(doc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p.SetParameter("wave", marionette.Vec2{X: 0.5})
	p.AdvanceFrame(1.0 / 60)
	snap := p.Snapshot()
	if len(snap.Drawables) != 1 || snap.Drawables[0].Name != "paw" {
		t.Errorf("drawables = %+v", snap.Drawables)
	}
}

func TestDecodeManifestMalformed(t *testing.T) {
	if _, err := DecodeManifest([]byte("nodes: [")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestManifestRoundTrip(t *testing.T) {
	doc, err := DecodeManifest([]byte(manifestYAML))
	if err != nil {
		t.Fatal(err)
	}
	out, err := EncodeManifest(doc)
	if err != nil {
		t.Fatalf("EncodeManifest: %v", err)
	}
	again, err := DecodeManifest(out)
	if err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	if again.Meta.Name != doc.Meta.Name || nodeCount(again.Nodes) != nodeCount(doc.Nodes) {
		t.Error("manifest round trip lost content")
	}
}
