package marionette

// Node is one element of the rig hierarchy. A single flat struct is used for
// all node kinds to avoid interface dispatch on the hot path; the Type tag
// selects behavior during traversal and composition.
//
// Hierarchy relations are stored as NodeIDs, never as pointers: the Graph's
// arena is the sole owner of every node, so there are no ownership cycles
// and reparenting checks reduce to ID walks.
type Node struct {
	// Identity
	ID   NodeID
	Name string
	Type NodeType

	// Hierarchy (IDs into the owning Graph's arena)
	parent   NodeID
	children []NodeID

	// Authored local transform. Load-time authoritative; per-frame motion
	// goes into the offset fields below and never mutates these.
	X, Y           float64
	Rotation       float64 // radians
	ScaleX, ScaleY float64
	ZSort          float64 // sibling sort key; larger draws later

	// Drawable fields (NodeTypePart)
	Mesh          *Mesh
	Texture       int // index into the puppet's texture list
	Opacity       float64
	Tint          Color
	ScreenTint    Color
	Emission      float64
	Blend         BlendMode
	Masks         []Mask
	MaskThreshold float64

	// Physics simulation state and constants. Non-nil only for
	// physics-enabled nodes; created at load time, persists across frames,
	// reset only on Puppet.Reset.
	Physics *Physics

	// Custom carries the payload of a user-defined node kind
	// (NodeTypeCustom). Renderer backends dispatch on it via their
	// CustomRenderer capability; the runtime treats it as opaque.
	Custom any

	// Per-frame binding offsets, reset at the start of every frame.
	offX, offY   float64
	offRotation  float64
	offScaleX    float64
	offScaleY    float64
	offZSort     float64
	opacityOff   float64 // summed opacity binding offsets
	opacityBinds int     // number of opacity bindings applied this frame

	// Physics translation offset. Kept apart from the binding offsets
	// because a mapped-parameter physics pass re-evaluates bindings after
	// clearing them, and the physics contribution must survive that.
	physX, physY float64

	// Frame-scoped caches (derived, never persisted)
	deform         *deformStack // Part only
	deformed       []Vec2       // final vertex buffer for the frame
	world          [6]float64
	worldOpacity   float64
	worldZSort     float64
	transformDirty bool
	worldRev       uint64   // bumped when world is recomputed
	parentRev      uint64   // parent's worldRev when world was cached
	sortedKids     []NodeID // reused buffer for ZSort-ordered traversal
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ScaleX = 1
	n.ScaleY = 1
	n.Opacity = 1
	n.Tint = ColorWhite
	n.ScreenTint = Color{0, 0, 0, 1}
	n.MaskThreshold = 0.5
	n.transformDirty = true
}

// NewTransformNode creates a pass-through grouping node with no visual output.
func NewTransformNode(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeTransform}
	nodeDefaults(n)
	return n
}

// NewPart creates a textured mesh drawable. The mesh is the node's base
// geometry; per-frame deformation never mutates it.
func NewPart(name string, mesh *Mesh, texture int) *Node {
	n := &Node{Name: name, Type: NodeTypePart, Mesh: mesh, Texture: texture}
	nodeDefaults(n)
	return n
}

// NewComposite creates a grouping node whose children are rendered to an
// offscreen target before the composite itself is blended.
func NewComposite(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeComposite}
	nodeDefaults(n)
	return n
}

// NewCustomNode creates a node with a user-defined payload. Renderer
// backends that understand the payload draw it; others skip it.
func NewCustomNode(name string, payload any) *Node {
	n := &Node{Name: name, Type: NodeTypeCustom, Custom: payload}
	nodeDefaults(n)
	return n
}

// Parent returns the ID of this node's parent, or 0 for the root.
func (n *Node) Parent() NodeID {
	return n.parent
}

// Children returns the child ID list in insertion order.
// The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []NodeID {
	return n.children
}

// IsDrawable reports whether the node produces renderer output itself.
func (n *Node) IsDrawable() bool {
	return n.Type == NodeTypePart || n.Type == NodeTypeComposite || n.Type == NodeTypeCustom
}

// SetPosition sets the node's authored local X and Y and marks it dirty.
func (n *Node) SetPosition(x, y float64) {
	n.X = x
	n.Y = y
	n.transformDirty = true
}

// SetRotation sets the node's authored rotation (in radians) and marks it dirty.
func (n *Node) SetRotation(r float64) {
	n.Rotation = r
	n.transformDirty = true
}

// SetScale sets the node's authored ScaleX and ScaleY and marks it dirty.
func (n *Node) SetScale(sx, sy float64) {
	n.ScaleX = sx
	n.ScaleY = sy
	n.transformDirty = true
}

// FrameOpacity returns the node's opacity for the current frame: the
// authored opacity plus the average of all opacity binding offsets applied
// this frame, clamped to [0, 1].
func (n *Node) FrameOpacity() float64 {
	o := n.Opacity
	if n.opacityBinds > 0 {
		o += n.opacityOff / float64(n.opacityBinds)
	}
	return clamp(o, 0, 1)
}

// FrameZSort returns the node's sort key for the current frame.
func (n *Node) FrameZSort() float64 {
	return n.ZSort + n.offZSort
}

// resetFrameOffsets clears every per-frame binding offset, including the
// physics contribution. Called once per frame before bindings evaluate.
func (n *Node) resetFrameOffsets() {
	n.resetBindingOffsets()
	n.physX, n.physY = 0, 0
}

// resetBindingOffsets clears only the binding-driven offsets, preserving the
// physics contribution. Used when a mapped-parameter physics pass triggers a
// second binding evaluation.
func (n *Node) resetBindingOffsets() {
	n.offX, n.offY = 0, 0
	n.offRotation = 0
	n.offScaleX, n.offScaleY = 0, 0
	n.offZSort = 0
	n.opacityOff = 0
	n.opacityBinds = 0
	n.transformDirty = true
}
