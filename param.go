package marionette

// Parameter is a named, bounded control value with one or two continuous
// axes. Writes clamp to the declared bounds; evaluation interpolates the
// owned bindings' keypoint grids at the current value.
//
// Axis points are the sampled keypoint positions over the parameter's
// domain, stored normalized to [0, 1], sorted, without duplicates, with the
// endpoints present. The loader validates all of this.
type Parameter struct {
	Name     string
	IsVec2   bool // true: two axes, false: X axis only
	Min, Max Vec2
	Defaults Vec2

	// Normalized keypoint positions per axis. AxisY is nil for 1D
	// parameters (the grids then have a single row).
	AxisX, AxisY []float64

	Bindings []*Binding

	value Vec2
}

// Value returns the current (clamped) value.
func (p *Parameter) Value() Vec2 {
	return p.value
}

// set clamps v to the parameter's bounds and stores it. 1D parameters
// ignore the Y component.
func (p *Parameter) set(v Vec2) {
	if !p.IsVec2 {
		v.Y = p.Min.Y
	}
	p.value = v.Clamp(p.Min, p.Max)
}

// normalized returns the current value mapped to [0, 1] per axis.
func (p *Parameter) normalized() Vec2 {
	return Vec2{
		X: normalize(p.value.X, p.Min.X, p.Max.X),
		Y: normalize(p.value.Y, p.Min.Y, p.Max.Y),
	}
}

func normalize(v, min, max float64) float64 {
	if max == min {
		return 0
	}
	return (v - min) / (max - min)
}

// apply evaluates every binding of this parameter at its current value and
// accumulates the offsets into the target nodes. deformScratch is a shared
// buffer reused across bindings; it is grown as needed and returned.
func (p *Parameter) apply(g *Graph, deformScratch []Vec2) []Vec2 {
	t := p.normalized()

	xlo, xhi := axisSpan(p.AxisX, t.X)
	inX := interpRange{axisAt(p.AxisX, xlo), axisAt(p.AxisX, xhi)}

	ylo, yhi := 0, 0
	inY := interpRange{0, 0}
	if len(p.AxisY) > 0 {
		ylo, yhi = axisSpan(p.AxisY, t.Y)
		inY = interpRange{axisAt(p.AxisY, ylo), axisAt(p.AxisY, yhi)}
	}

	for _, b := range p.Bindings {
		n := g.MustNode(b.Node)
		if b.Target == BindDeform {
			if n.Mesh == nil || n.deform == nil {
				panic("marionette: deform binding on a node without a mesh")
			}
			nv := len(n.Mesh.Vertices)
			if cap(deformScratch) < nv {
				deformScratch = make([]Vec2, nv)
			}
			b.applyDeform(n, t, inX, inY, xlo, xhi, ylo, yhi, deformScratch[:nv])
			continue
		}
		b.applyScalar(n, t, inX, inY, xlo, xhi, ylo, yhi)
	}
	return deformScratch
}

func axisAt(points []float64, i int) float64 {
	if len(points) == 0 {
		return 0
	}
	return points[i]
}
