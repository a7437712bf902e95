package marionette

import (
	"errors"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestTweenParameterUnknown(t *testing.T) {
	p, _, _ := newTestPuppet(t)
	if _, err := TweenParameter(p, "nope", Vec2{}, 1, ease.Linear); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestTweenParameterReachesTarget(t *testing.T) {
	p, _, _ := newTestPuppet(t)
	tw, err := TweenParameter(p, "bend", Vec2{X: 1}, 1, ease.Linear)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 60 && !tw.Done; i++ {
		tw.Update(1.0 / 30)
	}
	if !tw.Done {
		t.Fatal("tween never finished")
	}
	param, _ := p.Parameter("bend")
	approx(t, param.Value().X, 1, 1e-6)
}

func TestTweenParameterIntermediate(t *testing.T) {
	p, _, _ := newTestPuppet(t)
	tw, _ := TweenParameter(p, "bend", Vec2{X: 1}, 1, ease.Linear)

	tw.Update(0.5)
	param, _ := p.Parameter("bend")
	approx(t, param.Value().X, 0.5, 1e-6)
	if tw.Done {
		t.Error("tween finished halfway through")
	}
}

func TestTweenParameterMarksFrameDirty(t *testing.T) {
	p, _, _ := newTestPuppet(t)
	p.AdvanceFrame(1.0 / 60)
	p.Snapshot()

	tw, _ := TweenParameter(p, "bend", Vec2{X: 1}, 1, ease.Linear)
	tw.Update(0.1)
	if p.State() != FrameParametersSet {
		t.Errorf("state = %d, want FrameParametersSet after a tween write", p.State())
	}
}

func TestTweenParameterUpdateAfterDone(t *testing.T) {
	p, _, _ := newTestPuppet(t)
	tw, _ := TweenParameter(p, "bend", Vec2{X: 1}, 0.1, ease.Linear)
	tw.Update(1)
	if !tw.Done {
		t.Fatal("tween should be done")
	}
	tw.Update(1) // no-op, must not panic or move the value
	param, _ := p.Parameter("bend")
	approx(t, param.Value().X, 1, 1e-6)
}
