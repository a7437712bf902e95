package software

import "math"

// rasterTriangle visits every pixel covered by the triangle (ax,ay)-(bx,by)-
// (cx,cy) inside a w x h target, passing the barycentric weights of the
// pixel center. The edge-function form handles both windings.
func rasterTriangle(w, h int, ax, ay, bx, by, cx, cy float64, visit func(x, y int, wa, wb, wc float64)) {
	area := edge(ax, ay, bx, by, cx, cy)
	if area == 0 {
		return
	}
	flipped := false
	if area < 0 {
		// Flip to counter-clockwise so the inside test is uniform.
		bx, by, cx, cy = cx, cy, bx, by
		area = -area
		flipped = true
	}

	minX := clampInt(int(math.Floor(min3(ax, bx, cx))), 0, w-1)
	maxX := clampInt(int(math.Ceil(max3(ax, bx, cx))), 0, w-1)
	minY := clampInt(int(math.Floor(min3(ay, by, cy))), 0, h-1)
	maxY := clampInt(int(math.Ceil(max3(ay, by, cy))), 0, h-1)

	inv := 1 / area
	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			wa := edge(bx, by, cx, cy, px, py)
			wb := edge(cx, cy, ax, ay, px, py)
			wc := edge(ax, ay, bx, by, px, py)
			if wa < 0 || wb < 0 || wc < 0 {
				continue
			}
			if flipped {
				// The weight of the second and third vertex swapped
				// along with their positions.
				visit(x, y, wa*inv, wc*inv, wb*inv)
			} else {
				visit(x, y, wa*inv, wb*inv, wc*inv)
			}
		}
	}
}

// edge is twice the signed area of the triangle (x0,y0)-(x1,y1)-(x2,y2).
func edge(x0, y0, x1, y1, x2, y2 float64) float64 {
	return (x1-x0)*(y2-y0) - (y1-y0)*(x2-x0)
}

func min3(a, b, c float64) float64 { return math.Min(a, math.Min(b, c)) }
func max3(a, b, c float64) float64 { return math.Max(a, math.Max(b, c)) }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
