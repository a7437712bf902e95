package formats

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestContainerRoundTrip(t *testing.T) {
	in := &File{
		Document: sampleDoc(),
		Textures: []Texture{
			{Encoding: TexturePNG, Data: []byte{1, 2, 3}},
			{Encoding: TextureTGA, Data: []byte{4, 5}},
		},
		Vendor: map[string][]byte{"studio.rigger": []byte(`{"v":1}`)},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, in); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if out.Document.Meta.Name != "sample" {
		t.Errorf("meta name = %q, want sample", out.Document.Meta.Name)
	}
	if got, want := nodeCount(out.Document.Nodes), nodeCount(in.Document.Nodes); got != want {
		t.Errorf("node count = %d, want %d", got, want)
	}
	if len(out.Document.Params) != 2 {
		t.Errorf("params = %d, want 2", len(out.Document.Params))
	}
	if len(out.Textures) != 2 {
		t.Fatalf("textures = %d, want 2", len(out.Textures))
	}
	if out.Textures[0].Encoding != TexturePNG || !bytes.Equal(out.Textures[0].Data, []byte{1, 2, 3}) {
		t.Errorf("texture 0 = %+v", out.Textures[0])
	}
	if out.Textures[1].Encoding != TextureTGA {
		t.Errorf("texture 1 encoding = %d, want TGA", out.Textures[1].Encoding)
	}
	if !bytes.Equal(out.Vendor["studio.rigger"], []byte(`{"v":1}`)) {
		t.Errorf("vendor payload = %q", out.Vendor["studio.rigger"])
	}

	// The decoded document must still validate and link.
	if _, err := Build(out.Document); err != nil {
		t.Errorf("Build after round trip: %v", err)
	}
}

func TestContainerWithoutOptionalSections(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, &File{Document: sampleDoc()}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out.Textures) != 0 || len(out.Vendor) != 0 {
		t.Errorf("expected no optional sections, got %d textures, %d vendor entries",
			len(out.Textures), len(out.Vendor))
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("NOTAPUP\x00xxxxxxxx")))
	if !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("err = %v, want ErrInvalidDocument", err)
	}
}

func TestDecodeRejectsTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, &File{Document: sampleDoc()}); err != nil {
		t.Fatal(err)
	}
	trunc := buf.Bytes()[:buf.Len()-10]
	if _, err := Decode(bytes.NewReader(trunc)); err == nil {
		t.Error("expected error for truncated container")
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(containerMagic)
	buf.Write([]byte{0, 0, 0, 2})
	buf.WriteString("{]")
	if _, err := Decode(&buf); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("err = %v, want ErrInvalidDocument", err)
	}
}

func TestDecodeFileRoutesByExtension(t *testing.T) {
	dir := t.TempDir()

	bin := filepath.Join(dir, "puppet.mrnp")
	var buf bytes.Buffer
	if err := Encode(&buf, &File{Document: sampleDoc()}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bin, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := DecodeFile(bin)
	if err != nil {
		t.Fatalf("DecodeFile(mrnp): %v", err)
	}
	if f.Document.Meta.Name != "sample" {
		t.Errorf("binary route: meta name = %q", f.Document.Meta.Name)
	}

	y := filepath.Join(dir, "puppet.yaml")
	manifest := []byte("meta:\n  name: yams\nnodes:\n  - id: 2\n    name: n\n    type: node\n")
	if err := os.WriteFile(y, manifest, 0o644); err != nil {
		t.Fatal(err)
	}
	f, err = DecodeFile(y)
	if err != nil {
		t.Fatalf("DecodeFile(yaml): %v", err)
	}
	if f.Document.Meta.Name != "yams" {
		t.Errorf("yaml route: meta name = %q", f.Document.Meta.Name)
	}

	j := filepath.Join(dir, "puppet.json")
	if err := os.WriteFile(j, []byte(`{"meta":{"name":"jay"},"nodes":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err = DecodeFile(j)
	if err != nil {
		t.Fatalf("DecodeFile(json): %v", err)
	}
	if f.Document.Meta.Name != "jay" {
		t.Errorf("json route: meta name = %q", f.Document.Meta.Name)
	}
}
