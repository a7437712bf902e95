package marionette

import (
	"errors"
	"math"
)

// NodeID is the stable identifier of a node inside one Graph. IDs are
// assigned at load time (or by AddNode) and never reused within a puppet.
// The zero value is never a valid ID.
type NodeID uint32

// ErrNotFound is returned when a node or parameter identifier supplied by
// the caller does not exist in the puppet.
var ErrNotFound = errors.New("marionette: not found")

// ErrCycle is returned by Graph.SetParent when the requested reparenting
// would make a node its own ancestor. The graph is left unchanged.
var ErrCycle = errors.New("marionette: reparenting would create a cycle")

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// Vec2 is a 2D vector used for positions, offsets, parameter values, and
// deformation deltas throughout the API.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v scaled component-wise by s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Mul returns the component-wise product of v and o.
func (v Vec2) Mul(o Vec2) Vec2 { return Vec2{v.X * o.X, v.Y * o.Y} }

// Len returns the euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Clamp returns v with each component limited to [min, max] of the
// corresponding components.
func (v Vec2) Clamp(min, max Vec2) Vec2 {
	return Vec2{
		X: math.Min(math.Max(v.X, min.X), max.X),
		Y: math.Min(math.Max(v.Y, min.Y), max.Y),
	}
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// BlendMode selects the compositing operation a renderer backend applies
// when drawing a Part or Composite. The per-pixel math is a renderer
// concern; the runtime only carries the mode.
type BlendMode uint8

const (
	BlendNormal      BlendMode = iota // source-over (standard alpha blending)
	BlendMultiply                     // multiply (source * destination; only darkens)
	BlendColorDodge                   // color dodge (dst / (1 - src))
	BlendLinearDodge                  // additive / lighter
	BlendScreen                       // screen (1 - (1-src)*(1-dst); only brightens)
	BlendClipToLower                  // clip the drawable to already-rendered coverage
	BlendSliceFromLower               // inverse of ClipToLower
)

// MaskMode selects how a mask source affects the drawable it is attached to.
type MaskMode uint8

const (
	MaskModeMask  MaskMode = iota // keep only pixels covered by the source
	MaskModeDodge                 // discard pixels covered by the source
)

// Mask attaches one mask source to a drawable node. Source must be another
// drawable in the same graph; the loader validates this.
type Mask struct {
	Source NodeID
	Mode   MaskMode
}

// NodeType distinguishes the capability set of a Node. A single flat struct
// is used for all node kinds to avoid interface dispatch on the hot path;
// the type tag selects behavior at traversal and composition time.
type NodeType uint8

const (
	NodeTypeTransform NodeType = iota // pass-through grouping node, transform only
	NodeTypePart                      // textured mesh drawable
	NodeTypeComposite                 // children render to an offscreen target first
	NodeTypeCustom                    // user-defined payload, drawn via CustomRenderer
)

// FrameState tracks the per-frame pipeline position of a Puppet. States are
// strictly sequential; AdvanceFrame moves through them in order and Snapshot
// consumes FrameReady back to FrameIdle.
type FrameState uint8

const (
	FrameIdle          FrameState = iota // no pending frame work
	FrameParametersSet                   // at least one parameter written since last frame
	FrameEvaluated                       // bindings evaluated into per-node offsets
	FramePhysicsStepped                  // physics integrated for this frame
	FrameComposited                      // deform buffers finalized
	FrameReady                           // snapshot available
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
