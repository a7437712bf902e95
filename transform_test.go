package marionette

import (
	"math"
	"testing"
)

func approxMat(t *testing.T, got, want [6]float64, eps float64) {
	t.Helper()
	for i := 0; i < 6; i++ {
		if math.Abs(got[i]-want[i]) > eps {
			t.Fatalf("matrix[%d] = %v, want %v\ngot  %v\nwant %v", i, got[i], want[i], got, want)
		}
	}
}

func TestFrameLocalTransformTranslation(t *testing.T) {
	n := NewTransformNode("n")
	n.SetPosition(3, 4)
	approxMat(t, frameLocalTransform(n), [6]float64{1, 0, 0, 1, 3, 4}, 0)
}

func TestFrameLocalTransformFoldsOffsets(t *testing.T) {
	n := NewTransformNode("n")
	n.SetPosition(1, 1)
	n.offX, n.offY = 2, 3
	n.physX, n.physY = 0.5, 0.5
	m := frameLocalTransform(n)
	approx(t, m[4], 3.5, 1e-12)
	approx(t, m[5], 4.5, 1e-12)
}

func TestFrameLocalTransformScaleOffsetsSum(t *testing.T) {
	n := NewTransformNode("n")
	n.SetScale(2, 2)
	n.offScaleX = 0.5
	n.offScaleY = -0.5
	m := frameLocalTransform(n)
	approx(t, m[0], 2.5, 1e-12)
	approx(t, m[3], 1.5, 1e-12)
}

func TestFrameLocalTransformRotation(t *testing.T) {
	n := NewTransformNode("n")
	n.SetRotation(math.Pi / 2)
	m := frameLocalTransform(n)
	x, y := transformPoint(m, 1, 0)
	approx(t, x, 0, 1e-12)
	approx(t, y, 1, 1e-12)
}

func TestMultiplyAffineIdentity(t *testing.T) {
	m := [6]float64{2, 0.5, -0.5, 3, 7, -2}
	approxMat(t, multiplyAffine(identityTransform, m), m, 0)
	approxMat(t, multiplyAffine(m, identityTransform), m, 0)
}

func TestInvertAffineRoundTrip(t *testing.T) {
	n := NewTransformNode("n")
	n.SetPosition(12, -7)
	n.SetRotation(0.6)
	n.SetScale(2, 0.5)
	m := frameLocalTransform(n)
	inv := invertAffine(m)
	approxMat(t, multiplyAffine(m, inv), identityTransform, 1e-12)
}

func TestInvertAffineSingular(t *testing.T) {
	approxMat(t, invertAffine([6]float64{0, 0, 0, 0, 5, 5}), identityTransform, 0)
}

func TestTransformVec(t *testing.T) {
	m := [6]float64{1, 0, 0, 1, 10, 20}
	got := transformVec(m, Vec2{1, 2})
	if got != (Vec2{11, 22}) {
		t.Errorf("got %v, want {11 22}", got)
	}
}
