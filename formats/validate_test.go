package formats

import (
	"errors"
	"testing"
)

// sampleDoc builds a small valid document: a body group holding a quad
// part, a 1D bend parameter with a rotation and a deform binding, and a
// physics-driven tail mapped to a sway parameter.
func sampleDoc() *Document {
	quad := &MeshDoc{
		Verts:   []float64{-1, -1, 1, -1, -1, 1, 1, 1},
		UVs:     []float64{0, 0, 1, 0, 0, 1, 1, 1},
		Indices: []uint16{0, 1, 2, 2, 1, 3},
	}
	zero := [][2]float64{{0, 0}, {0, 0}, {0, 0}, {0, 0}}
	bent := [][2]float64{{0, -1}, {0, -1}, {0, 0}, {0, 0}}
	return &Document{
		Meta: MetaDoc{Name: "sample", Version: "1"},
		Nodes: []NodeDoc{
			{
				ID: 2, Name: "body", Type: "node",
				Children: []NodeDoc{
					{ID: 3, Name: "torso", Type: "part", Mesh: quad},
					{
						ID: 4, Name: "tail", Type: "node",
						Physics: &PhysicsDoc{
							Stiffness: 30, Length: 12,
							MapMode: "xy", Param: "sway",
						},
					},
				},
			},
		},
		Params: []ParamDoc{
			{
				Name: "bend", Min: [2]float64{0, 0}, Max: [2]float64{1, 0},
				AxisX: []float64{0, 1},
				Bindings: []BindingDoc{
					{Node: 2, Target: "transform.r.z", Values: [][]float64{{0, 1.5}}},
					{Node: 3, Target: "deform", Deform: [][][][2]float64{{zero, bent}}},
				},
			},
			{
				Name: "sway", IsVec2: true,
				Min: [2]float64{-1, -1}, Max: [2]float64{1, 1},
				AxisX: []float64{0, 1}, AxisY: []float64{0, 1},
				Bindings: []BindingDoc{
					{Node: 2, Target: "transform.t.x", Values: [][]float64{{-5, 5}, {-5, 5}}},
				},
			},
		},
	}
}

func TestValidateAcceptsSample(t *testing.T) {
	if err := Validate(sampleDoc()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func wantInvalid(t *testing.T, doc *Document, fragment string) {
	t.Helper()
	err := Validate(doc)
	if err == nil {
		t.Fatalf("Validate accepted a document that should fail (%s)", fragment)
	}
	if !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("err = %v, does not wrap ErrInvalidDocument", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %T, want *ValidationError", err)
	}
}

func TestValidateRejectsDuplicateIDs(t *testing.T) {
	doc := sampleDoc()
	doc.Nodes[0].Children[1].ID = 3
	wantInvalid(t, doc, "duplicate ID")
}

func TestValidateRejectsReservedID(t *testing.T) {
	doc := sampleDoc()
	doc.Nodes[0].ID = 1
	wantInvalid(t, doc, "reserved ID")
}

func TestValidateRejectsUnknownNodeType(t *testing.T) {
	doc := sampleDoc()
	doc.Nodes[0].Type = "sprite"
	wantInvalid(t, doc, "unknown type")
}

func TestValidateRejectsPartWithoutMesh(t *testing.T) {
	doc := sampleDoc()
	doc.Nodes[0].Children[0].Mesh = nil
	wantInvalid(t, doc, "meshless part")
}

func TestValidateRejectsMeshIndexOutOfRange(t *testing.T) {
	doc := sampleDoc()
	doc.Nodes[0].Children[0].Mesh = &MeshDoc{
		Verts:   []float64{0, 0, 1, 0, 0, 1},
		Indices: []uint16{0, 1, 9},
	}
	wantInvalid(t, doc, "index out of range")
}

func TestValidateRejectsDanglingBindingNode(t *testing.T) {
	doc := sampleDoc()
	doc.Params[0].Bindings[0].Node = 99
	wantInvalid(t, doc, "dangling binding node")
}

func TestValidateRejectsUnknownTarget(t *testing.T) {
	doc := sampleDoc()
	doc.Params[0].Bindings[0].Target = "transform.w"
	wantInvalid(t, doc, "unknown target")
}

func TestValidateRejectsUnsortedAxis(t *testing.T) {
	doc := sampleDoc()
	doc.Params[0].AxisX = []float64{0, 0.7, 0.3, 1}
	wantInvalid(t, doc, "unsorted axis")
}

func TestValidateRejectsAxisWithoutEndpoints(t *testing.T) {
	doc := sampleDoc()
	doc.Params[0].AxisX = []float64{0.1, 1}
	wantInvalid(t, doc, "missing endpoint")
}

func TestValidateRejectsGridDimensionMismatch(t *testing.T) {
	doc := sampleDoc()
	doc.Params[0].Bindings[0].Values = [][]float64{{0, 1, 2}}
	wantInvalid(t, doc, "grid column count")
}

func TestValidateRejectsDeformVertexMismatch(t *testing.T) {
	doc := sampleDoc()
	short := [][2]float64{{0, 0}}
	doc.Params[0].Bindings[1].Deform = [][][][2]float64{{short, short}}
	wantInvalid(t, doc, "deform vertex count")
}

func TestValidateRejectsDeformOnMeshlessNode(t *testing.T) {
	doc := sampleDoc()
	doc.Params[0].Bindings[1].Node = 4
	wantInvalid(t, doc, "deform without mesh")
}

func TestValidateRejectsDanglingMaskSource(t *testing.T) {
	doc := sampleDoc()
	doc.Nodes[0].Children[0].Masks = []MaskDoc{{Source: 77}}
	wantInvalid(t, doc, "dangling mask source")
}

func TestValidateRejectsMissingPhysicsParam(t *testing.T) {
	doc := sampleDoc()
	doc.Nodes[0].Children[1].Physics.Param = "gone"
	wantInvalid(t, doc, "missing physics param")
}

func TestValidateRejectsUnknownEasing(t *testing.T) {
	doc := sampleDoc()
	doc.Params[0].Bindings[0].Mode = "eased"
	doc.Params[0].Bindings[0].Easing = "warp9"
	wantInvalid(t, doc, "unknown easing")
}

func TestValidateRejectsUnknownBlend(t *testing.T) {
	doc := sampleDoc()
	doc.Nodes[0].Children[0].Blend = "burn"
	wantInvalid(t, doc, "unknown blend")
}

func TestValidateRejectsDuplicateParamName(t *testing.T) {
	doc := sampleDoc()
	doc.Params[1].Name = "bend"
	// The duplicate is also the physics target; retarget so only the name
	// clash remains.
	doc.Nodes[0].Children[1].Physics.Param = "bend"
	wantInvalid(t, doc, "duplicate param name")
}
