package marionette

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ParamTween animates a parameter's axes toward a target value over a
// duration. Create one with TweenParameter and call Update(dt) once per
// frame before AdvanceFrame.
//
// There is no global animation manager; callers drive their tweens
// themselves.
type ParamTween struct {
	x, y   *gween.Tween
	puppet *Puppet
	name   string
	isVec2 bool
	Done   bool
}

// TweenParameter creates a tween from the parameter's current value to the
// given target using the easing function. Fails with ErrNotFound for an
// unknown parameter name.
func TweenParameter(p *Puppet, name string, to Vec2, duration float32, fn ease.TweenFunc) (*ParamTween, error) {
	param, err := p.Parameter(name)
	if err != nil {
		return nil, err
	}
	cur := param.Value()
	t := &ParamTween{
		x:      gween.New(float32(cur.X), float32(to.X), duration, fn),
		puppet: p,
		name:   name,
		isVec2: param.IsVec2,
	}
	if param.IsVec2 {
		t.y = gween.New(float32(cur.Y), float32(to.Y), duration, fn)
	}
	return t, nil
}

// Update advances the tween by dt seconds and writes the interpolated value
// into the parameter. Sets Done when the duration has elapsed.
func (t *ParamTween) Update(dt float32) {
	if t.Done {
		return
	}
	x, finished := t.x.Update(dt)
	v := Vec2{X: float64(x)}
	if t.isVec2 {
		y, yFinished := t.y.Update(dt)
		v.Y = float64(y)
		finished = finished && yFinished
	}
	// The parameter may have been removed only by rebuilding the puppet,
	// in which case the tween is stale; stop quietly.
	if err := t.puppet.SetParameter(t.name, v); err != nil {
		t.Done = true
		return
	}
	t.Done = finished
}
