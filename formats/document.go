// Package formats decodes, validates, and links puppet documents.
//
// A puppet ships either as a binary container (see Decode/Encode) holding a
// JSON document plus texture blobs, or as a hand-written YAML manifest with
// the same document model. Build turns a validated document into a runtime
// *marionette.Puppet; the runtime itself never parses documents and assumes
// everything Build hands it has passed Validate.
package formats

// Document is the serialized form of a puppet: metadata, an ID-addressed
// node tree, and the parameter list. Field names follow the JSON payload;
// the YAML manifest uses the same shapes.
type Document struct {
	Meta             MetaDoc     `json:"meta" yaml:"meta"`
	Physics          *PhysicsEnv `json:"physics,omitempty" yaml:"physics,omitempty"`
	CrossFadeDeforms bool        `json:"crossFadeDeforms,omitempty" yaml:"crossFadeDeforms,omitempty"`
	Nodes            []NodeDoc   `json:"nodes" yaml:"nodes"`
	Params           []ParamDoc  `json:"params,omitempty" yaml:"params,omitempty"`
	TextureSlots     int         `json:"textureSlots,omitempty" yaml:"textureSlots,omitempty"`
}

// MetaDoc mirrors marionette.Meta.
type MetaDoc struct {
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
	Artist     string `json:"artist,omitempty" yaml:"artist,omitempty"`
	Rigger     string `json:"rigger,omitempty" yaml:"rigger,omitempty"`
	Copyright  string `json:"copyright,omitempty" yaml:"copyright,omitempty"`
	LicenseURL string `json:"licenseURL,omitempty" yaml:"licenseURL,omitempty"`
}

// PhysicsEnv is the puppet-global physics environment. Absent fields keep
// the runtime defaults.
type PhysicsEnv struct {
	Gravity        *[2]float64 `json:"gravity,omitempty" yaml:"gravity,omitempty"`
	PixelsPerMeter float64     `json:"pixelsPerMeter,omitempty" yaml:"pixelsPerMeter,omitempty"`
	Wind           *[2]float64 `json:"wind,omitempty" yaml:"wind,omitempty"`
}

// NodeDoc is one node of the serialized tree. ID 1 is reserved for the
// implicit graph root; documents must use IDs of 2 and above, unique across
// the whole tree, because bindings and masks address nodes by ID.
type NodeDoc struct {
	ID   uint32 `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Type string `json:"type" yaml:"type"` // "node", "part", "composite", "custom"

	Translation [2]float64  `json:"translation,omitempty" yaml:"translation,omitempty"`
	Rotation    float64     `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Scale       *[2]float64 `json:"scale,omitempty" yaml:"scale,omitempty"`
	ZSort       float64     `json:"zSort,omitempty" yaml:"zSort,omitempty"`

	Mesh          *MeshDoc    `json:"mesh,omitempty" yaml:"mesh,omitempty"`
	Texture       int         `json:"texture,omitempty" yaml:"texture,omitempty"`
	Opacity       *float64    `json:"opacity,omitempty" yaml:"opacity,omitempty"`
	Tint          *[3]float64 `json:"tint,omitempty" yaml:"tint,omitempty"`
	ScreenTint    *[3]float64 `json:"screenTint,omitempty" yaml:"screenTint,omitempty"`
	Emission      float64     `json:"emission,omitempty" yaml:"emission,omitempty"`
	Blend         string      `json:"blend,omitempty" yaml:"blend,omitempty"`
	Masks         []MaskDoc   `json:"masks,omitempty" yaml:"masks,omitempty"`
	MaskThreshold *float64    `json:"maskThreshold,omitempty" yaml:"maskThreshold,omitempty"`

	Physics *PhysicsDoc `json:"physics,omitempty" yaml:"physics,omitempty"`

	Children []NodeDoc `json:"children,omitempty" yaml:"children,omitempty"`
}

// MeshDoc is the serialized base geometry of a part. Verts and UVs are flat
// x,y pair lists, as the original tooling exports them.
type MeshDoc struct {
	Verts   []float64 `json:"verts" yaml:"verts"`
	UVs     []float64 `json:"uvs,omitempty" yaml:"uvs,omitempty"`
	Indices []uint16  `json:"indices" yaml:"indices"`
}

// MaskDoc attaches one mask source to a drawable.
type MaskDoc struct {
	Source uint32 `json:"source" yaml:"source"`
	Mode   string `json:"mode,omitempty" yaml:"mode,omitempty"` // "mask" (default), "dodge"
}

// PhysicsDoc is the per-node physics configuration.
type PhysicsDoc struct {
	Stiffness    float64     `json:"stiffness" yaml:"stiffness"`
	Damping      float64     `json:"damping,omitempty" yaml:"damping,omitempty"`
	GravityScale *float64    `json:"gravityScale,omitempty" yaml:"gravityScale,omitempty"`
	Length       float64     `json:"length,omitempty" yaml:"length,omitempty"`
	Rope         bool        `json:"rope,omitempty" yaml:"rope,omitempty"`
	LocalOnly    bool        `json:"localOnly,omitempty" yaml:"localOnly,omitempty"`
	OutputScale  *[2]float64 `json:"outputScale,omitempty" yaml:"outputScale,omitempty"`
	MapMode      string      `json:"mapMode,omitempty" yaml:"mapMode,omitempty"` // "", "xy", "angleLength"
	Param        string      `json:"param,omitempty" yaml:"param,omitempty"`
}

// ParamDoc is one serialized parameter with its bindings.
type ParamDoc struct {
	Name     string       `json:"name" yaml:"name"`
	IsVec2   bool         `json:"isVec2,omitempty" yaml:"isVec2,omitempty"`
	Min      [2]float64   `json:"min" yaml:"min"`
	Max      [2]float64   `json:"max" yaml:"max"`
	Defaults [2]float64   `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	AxisX    []float64    `json:"axisX" yaml:"axisX"`
	AxisY    []float64    `json:"axisY,omitempty" yaml:"axisY,omitempty"`
	Bindings []BindingDoc `json:"bindings,omitempty" yaml:"bindings,omitempty"`
}

// BindingDoc is one serialized binding. Values holds the keypoint grid for
// scalar targets as Values[y][x]; Deform holds per-vertex x,y offset pairs
// as Deform[y][x][vertex]. Exactly one of the two is present, matching the
// target.
type BindingDoc struct {
	Node   uint32  `json:"node" yaml:"node"`
	Target string  `json:"target" yaml:"target"`
	Mode   string  `json:"mode,omitempty" yaml:"mode,omitempty"` // "linear" (default), "nearest", "eased"
	Easing string  `json:"easing,omitempty" yaml:"easing,omitempty"`
	Weight float64 `json:"weight,omitempty" yaml:"weight,omitempty"`

	Values [][]float64      `json:"values,omitempty" yaml:"values,omitempty"`
	Deform [][][][2]float64 `json:"deform,omitempty" yaml:"deform,omitempty"`
}

// nodeCount returns the total node count of the tree, used for map sizing.
func nodeCount(nodes []NodeDoc) int {
	n := len(nodes)
	for i := range nodes {
		n += nodeCount(nodes[i].Children)
	}
	return n
}

// walkNodes calls fn for every node of the tree in document order, with the
// slash-joined path of node names for error reporting.
func walkNodes(nodes []NodeDoc, prefix string, fn func(path string, n *NodeDoc) error) error {
	for i := range nodes {
		n := &nodes[i]
		path := prefix + "/" + n.Name
		if err := fn(path, n); err != nil {
			return err
		}
		if err := walkNodes(n.Children, path, fn); err != nil {
			return err
		}
	}
	return nil
}
