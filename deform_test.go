package marionette

import (
	"math"
	"testing"
)

func approxVec(t *testing.T, got, want Vec2, eps float64) {
	t.Helper()
	if math.Abs(got.X-want.X) > eps || math.Abs(got.Y-want.Y) > eps {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDeformStackWeightedSum(t *testing.T) {
	d := newDeformStack(1, false)
	d.push(0.5, []Vec2{{2, 0}})
	d.push(0.5, []Vec2{{0, 2}})

	dst := make([]Vec2, 1)
	d.combine([]Vec2{{0, 0}}, dst)
	approxVec(t, dst[0], Vec2{1, 1}, 1e-12)
}

func TestDeformStackAddsToBase(t *testing.T) {
	d := newDeformStack(2, false)
	d.push(1, []Vec2{{1, -1}, {0, 3}})

	dst := make([]Vec2, 2)
	d.combine([]Vec2{{10, 10}, {-5, 0}}, dst)
	approxVec(t, dst[0], Vec2{11, 9}, 1e-12)
	approxVec(t, dst[1], Vec2{-5, 3}, 1e-12)
}

func TestDeformStackNormalization(t *testing.T) {
	plain := newDeformStack(1, false)
	norm := newDeformStack(1, true)
	for _, d := range []*deformStack{plain, norm} {
		d.push(2, []Vec2{{2, 0}})
		d.push(2, []Vec2{{0, 2}})
	}

	dst := make([]Vec2, 1)
	plain.combine([]Vec2{{}}, dst)
	approxVec(t, dst[0], Vec2{4, 4}, 1e-12)

	norm.combine([]Vec2{{}}, dst)
	approxVec(t, dst[0], Vec2{1, 1}, 1e-12)
}

func TestDeformStackReset(t *testing.T) {
	d := newDeformStack(1, false)
	d.push(1, []Vec2{{5, 5}})
	d.reset()

	dst := make([]Vec2, 1)
	d.combine([]Vec2{{1, 1}}, dst)
	approxVec(t, dst[0], Vec2{1, 1}, 0)
}

func TestDeformStackVertexCountMismatchPanics(t *testing.T) {
	d := newDeformStack(2, false)
	defer func() {
		if recover() == nil {
			t.Error("expected panic on vertex count mismatch")
		}
	}()
	d.push(1, []Vec2{{1, 1}})
}
