package marionette

// deformStack accumulates per-vertex deformation offsets from every source
// targeting one drawable during one frame: parameter deform bindings and,
// in principle, anything else that pushes before composition. Despite the
// name it is not ordered; contributions combine by weighted summation.
//
// When the owning puppet defines cross-fade weighting between overlapping
// parameter domains, the combined result is normalized per vertex by the
// total pushed weight so overlapping contributions blend instead of adding.
type deformStack struct {
	sum       []Vec2
	weightSum []float64
	normalize bool
}

func newDeformStack(vertexCount int, normalize bool) *deformStack {
	return &deformStack{
		sum:       make([]Vec2, vertexCount),
		weightSum: make([]float64, vertexCount),
		normalize: normalize,
	}
}

// reset clears the stack, ready to receive one frame's contributions.
func (d *deformStack) reset() {
	for i := range d.sum {
		d.sum[i] = Vec2{}
		d.weightSum[i] = 0
	}
}

// push accumulates one source's per-vertex offsets, scaled by weight.
// len(offsets) must equal the stack's vertex count; the loader guarantees
// this for bindings, so a mismatch is a contract violation.
func (d *deformStack) push(weight float64, offsets []Vec2) {
	if len(offsets) != len(d.sum) {
		panic("marionette: deform contribution has wrong vertex count")
	}
	for i, o := range offsets {
		d.sum[i].X += o.X * weight
		d.sum[i].Y += o.Y * weight
		d.weightSum[i] += weight
	}
}

// combine writes base + combined offsets into dst. dst and base must both
// match the stack's vertex count.
func (d *deformStack) combine(base []Vec2, dst []Vec2) {
	for i := range dst {
		off := d.sum[i]
		if d.normalize && d.weightSum[i] > 0 {
			off = off.Scale(1 / d.weightSum[i])
		}
		dst[i] = base[i].Add(off)
	}
}
