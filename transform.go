package marionette

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// frameLocalTransform computes the node's local affine matrix for the
// current frame: the authored transform with the binding and physics
// offsets folded in. Returns [a, b, c, d, tx, ty].
//
// Composition order: Scale -> Rotate -> Translate.
func frameLocalTransform(n *Node) [6]float64 {
	sx := n.ScaleX + n.offScaleX
	sy := n.ScaleY + n.offScaleY
	sin, cos := math.Sincos(n.Rotation + n.offRotation)

	return [6]float64{
		cos * sx,
		sin * sx,
		-sin * sy,
		cos * sy,
		n.X + n.offX + n.physX,
		n.Y + n.offY + n.physY,
	}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular (determinant ~ 0).
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// transformVec applies an affine matrix to a Vec2.
func transformVec(m [6]float64, v Vec2) Vec2 {
	x, y := transformPoint(m, v.X, v.Y)
	return Vec2{x, y}
}
