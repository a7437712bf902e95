package marionette

import "github.com/tanema/gween/ease"

// BindTarget names the node property a binding drives.
type BindTarget uint8

const (
	BindTranslateX BindTarget = iota
	BindTranslateY
	BindRotation
	BindScaleX
	BindScaleY
	BindOpacity
	BindZSort
	BindDeform
)

// String returns the document-format name of the target.
func (t BindTarget) String() string {
	switch t {
	case BindTranslateX:
		return "transform.t.x"
	case BindTranslateY:
		return "transform.t.y"
	case BindRotation:
		return "transform.r.z"
	case BindScaleX:
		return "transform.s.x"
	case BindScaleY:
		return "transform.s.y"
	case BindOpacity:
		return "opacity"
	case BindZSort:
		return "zSort"
	case BindDeform:
		return "deform"
	}
	return "unknown"
}

// Binding links one parameter to one target property of one node. It holds
// a grid of keypoint output values sampled at the owning parameter's axis
// points: Values[yi][xi] for scalar targets, Deform[yi][xi] (one offset per
// mesh vertex) for deform targets. For 1D parameters the grid has a single
// row.
//
// The loader guarantees the grid dimensions match the parameter's axis
// point counts and that the target node (and, for deforms, the vertex
// count) exists; the runtime performs no structural validation here.
type Binding struct {
	Node   NodeID
	Target BindTarget
	Mode   InterpolateMode
	Easing ease.TweenFunc // used when Mode == InterpEased

	// Weight scales this binding's deform contribution. 1 unless the
	// puppet defines cross-fade weighting between overlapping parameter
	// domains. Ignored for scalar targets.
	Weight float64

	Values [][]float64 // scalar targets
	Deform [][][]Vec2  // deform target
}

// scalarCell reads the four keypoint outputs of the cell (xlo..xhi, ylo..yhi).
func (b *Binding) scalarCell(xlo, xhi, ylo, yhi int) (topBeg, topEnd, btmBeg, btmEnd float64) {
	return b.Values[ylo][xlo], b.Values[ylo][xhi], b.Values[yhi][xlo], b.Values[yhi][xhi]
}

// applyScalar evaluates the binding at the normalized parameter position and
// accumulates the offset into the target node's frame state.
func (b *Binding) applyScalar(n *Node, t Vec2, inX, inY interpRange, xlo, xhi, ylo, yhi int) {
	topBeg, topEnd, btmBeg, btmEnd := b.scalarCell(xlo, xhi, ylo, yhi)
	v := biInterpolate(t, inX, inY, topBeg, topEnd, btmBeg, btmEnd, b.Mode, b.Easing)

	switch b.Target {
	case BindTranslateX:
		n.offX += v
	case BindTranslateY:
		n.offY += v
	case BindRotation:
		n.offRotation += v
	case BindScaleX:
		n.offScaleX += v
	case BindScaleY:
		n.offScaleY += v
	case BindZSort:
		n.offZSort += v
	case BindOpacity:
		n.opacityOff += v
		n.opacityBinds++
	}
	n.transformDirty = true
}

// applyDeform evaluates the per-vertex offset grid at the normalized
// parameter position and pushes the weighted result onto the node's deform
// stack. scratch must hold at least one Vec2 per mesh vertex and is
// overwritten.
func (b *Binding) applyDeform(n *Node, t Vec2, inX, inY interpRange, xlo, xhi, ylo, yhi int, scratch []Vec2) {
	topBeg := b.Deform[ylo][xlo]
	topEnd := b.Deform[ylo][xhi]
	btmBeg := b.Deform[yhi][xlo]
	btmEnd := b.Deform[yhi][xhi]

	for i := range scratch {
		top := interpolateVec(t.X, inX, topBeg[i], topEnd[i], b.Mode, b.Easing)
		btm := interpolateVec(t.X, inX, btmBeg[i], btmEnd[i], b.Mode, b.Easing)
		scratch[i] = interpolateVec(t.Y, inY, top, btm, b.Mode, b.Easing)
	}
	w := b.Weight
	if w == 0 {
		w = 1
	}
	n.deform.push(w, scratch)
}
