package marionette

import (
	"sort"

	"github.com/tanema/gween/ease"
)

// InterpolateMode selects how a binding interpolates between two keypoints.
type InterpolateMode uint8

const (
	// InterpLinear interpolates linearly between the bracketing keypoints.
	InterpLinear InterpolateMode = iota
	// InterpNearest snaps to whichever bracketing keypoint is closer.
	InterpNearest
	// InterpEased remaps the interpolation factor through the binding's
	// easing function before interpolating linearly. Falls back to linear
	// when no easing function is configured.
	InterpEased
)

// interpRange is a [beg, end] span, either of the input domain or of the
// output values.
type interpRange struct {
	beg, end float64
}

// interpolate maps t from the input range onto the output range.
// Outside the input range the result clamps to the nearest endpoint.
func interpolate(t float64, in, out interpRange, mode InterpolateMode, fn ease.TweenFunc) float64 {
	if in.end == in.beg {
		return out.beg
	}
	f := (t - in.beg) / (in.end - in.beg)
	f = clamp(f, 0, 1)
	switch mode {
	case InterpNearest:
		if f < 0.5 {
			return out.beg
		}
		return out.end
	case InterpEased:
		if fn != nil {
			f = float64(fn(float32(f), 0, 1, 1))
		}
	}
	return out.beg + f*(out.end-out.beg)
}

// interpolateVec interpolates each component of a Vec2 output range.
func interpolateVec(t float64, in interpRange, beg, end Vec2, mode InterpolateMode, fn ease.TweenFunc) Vec2 {
	return Vec2{
		X: interpolate(t, in, interpRange{beg.X, end.X}, mode, fn),
		Y: interpolate(t, in, interpRange{beg.Y, end.Y}, mode, fn),
	}
}

// biInterpolate evaluates a 2D keypoint cell: interpolate along X at the top
// and bottom rows, then along Y between the two results.
func biInterpolate(t Vec2, inX, inY interpRange, topBeg, topEnd, btmBeg, btmEnd float64, mode InterpolateMode, fn ease.TweenFunc) float64 {
	top := interpolate(t.X, inX, interpRange{topBeg, topEnd}, mode, fn)
	btm := interpolate(t.X, inX, interpRange{btmBeg, btmEnd}, mode, fn)
	return interpolate(t.Y, inY, interpRange{top, btm}, mode, fn)
}

// axisSpan locates the two axis points bracketing t by binary search over
// the sorted positions. Outside the domain the outermost cell is returned,
// which combined with interpolate's clamping yields nearest-keypoint
// behavior. A single-point axis returns (0, 0).
func axisSpan(points []float64, t float64) (lo, hi int) {
	n := len(points)
	if n < 2 {
		return 0, 0
	}
	// First index with points[i] >= t.
	i := sort.SearchFloat64s(points, t)
	switch {
	case i <= 0:
		return 0, 1
	case i >= n:
		return n - 2, n - 1
	default:
		return i - 1, i
	}
}
