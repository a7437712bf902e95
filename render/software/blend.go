package software

import "github.com/phanxgames/marionette"

// rgba is a straight-alpha color with components in [0, 1].
type rgba struct {
	r, g, b, a float64
}

// blendPixel composites src over dst with the given mode and returns the
// new destination color. The arithmetic modes (multiply, screen, the
// dodges) first mix the source color against the destination, then
// composite source-over; the clipping modes scale the source alpha by the
// destination coverage instead.
func blendPixel(mode marionette.BlendMode, dst, src rgba) rgba {
	switch mode {
	case marionette.BlendMultiply:
		src.r *= dst.r
		src.g *= dst.g
		src.b *= dst.b
	case marionette.BlendScreen:
		src.r = 1 - (1-src.r)*(1-dst.r)
		src.g = 1 - (1-src.g)*(1-dst.g)
		src.b = 1 - (1-src.b)*(1-dst.b)
	case marionette.BlendColorDodge:
		src.r = dodge(dst.r, src.r)
		src.g = dodge(dst.g, src.g)
		src.b = dodge(dst.b, src.b)
	case marionette.BlendLinearDodge:
		src.r = clamp01(src.r + dst.r)
		src.g = clamp01(src.g + dst.g)
		src.b = clamp01(src.b + dst.b)
	case marionette.BlendClipToLower:
		src.a *= dst.a
	case marionette.BlendSliceFromLower:
		src.a *= 1 - dst.a
	}
	return over(dst, src)
}

// over is standard source-over compositing on straight-alpha colors.
func over(dst, src rgba) rgba {
	outA := src.a + dst.a*(1-src.a)
	if outA <= 0 {
		return rgba{}
	}
	return rgba{
		r: (src.r*src.a + dst.r*dst.a*(1-src.a)) / outA,
		g: (src.g*src.a + dst.g*dst.a*(1-src.a)) / outA,
		b: (src.b*src.a + dst.b*dst.a*(1-src.a)) / outA,
		a: outA,
	}
}

func dodge(d, s float64) float64 {
	if s >= 1 {
		return 1
	}
	return clamp01(d / (1 - s))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
