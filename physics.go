package marionette

import "math"

// maxPhysicsStep is the largest time slice a single integration step may
// cover. Elapsed time beyond it is subdivided into fixed sub-steps executed
// in sequence, never integrated as one oversized step.
const maxPhysicsStep = 1.0 / 30.0

// maxFrameDelta caps the elapsed time one frame may simulate, bounding the
// sub-step count under pathological frame timing.
const maxFrameDelta = 1.0

// ParamMapMode selects how a physics node exposes its simulation output.
type ParamMapMode uint8

const (
	// MapNone applies the output as a translation offset on the node itself.
	MapNone ParamMapMode = iota
	// MapXY writes the normalized displacement into the mapped parameter's
	// two axes.
	MapXY
	// MapAngleLength writes swing angle (fraction of a half turn) and
	// relative length into the mapped parameter's axes.
	MapAngleLength
)

// PuppetPhysics holds the puppet-global simulation environment.
type PuppetPhysics struct {
	Gravity        Vec2    // world-space acceleration, pixels/s^2 per meter
	PixelsPerMeter float64 // scales Gravity into pixel space
	Wind           Vec2    // constant force applied to every simulated node
}

// DefaultPuppetPhysics returns the environment used when a document does not
// override it: downward gravity at 9.8 m/s^2, 1000 pixels per meter.
func DefaultPuppetPhysics() PuppetPhysics {
	return PuppetPhysics{
		Gravity:        Vec2{0, 9.8},
		PixelsPerMeter: 1000,
	}
}

// Physics is the per-node simulation state and constants of a
// physics-enabled node. Created at load time, it persists and evolves
// across frames; Puppet.Reset snaps it back to rest.
//
// Each frame the node's anchor-derived target position drives a damped
// spring: a = Stiffness*(target - p) - Damping*v + gravity + wind, then
// v += a*dt, p += v*dt. The resulting (p - target), scaled by OutputScale,
// is the node's physics offset (or the mapped parameter's value).
type Physics struct {
	Stiffness    float64 // spring constant toward the target, 1/s^2
	Damping      float64 // velocity damping, 1/s
	GravityScale float64 // 1.0 = full puppet gravity
	Length       float64 // rope rest length in pixels (Rope nodes)
	Rope         bool    // constrain p onto the circle of radius Length
	LocalOnly    bool    // anchor follows the local transform, not the world one
	OutputScale  Vec2    // scales the produced offset / parameter value

	// MapMode and Param select the parameter-mapped output form. With
	// MapNone the output offsets the node's own translation.
	MapMode ParamMapMode
	Param   string

	pos, vel    Vec2
	target      Vec2
	initialized bool
}

// CriticalDamping returns the damping value that brings a node with the
// given stiffness to rest without oscillation. Useful for authoring.
func CriticalDamping(stiffness float64) float64 {
	return 2 * math.Sqrt(stiffness)
}

// Position returns the current simulated position in anchor space.
func (ph *Physics) Position() Vec2 {
	return ph.pos
}

// reset snaps the simulation back to rest at its target.
func (ph *Physics) reset() {
	ph.pos = Vec2{}
	ph.vel = Vec2{}
	ph.target = Vec2{}
	ph.initialized = false
}

// step advances the simulation by dt seconds toward the given target
// position and returns the produced offset (p - target) scaled by
// OutputScale. dt beyond maxPhysicsStep is subdivided into maximum-sized
// sub-steps followed by the remainder, so irregular frame times integrate
// identically to a sequence of regular ones.
func (ph *Physics) step(dt float64, target Vec2, env PuppetPhysics) Vec2 {
	if !ph.initialized {
		ph.pos = target
		ph.vel = Vec2{}
		ph.initialized = true
	}
	ph.target = target

	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}
	for dt > maxPhysicsStep {
		ph.tick(maxPhysicsStep, env)
		dt -= maxPhysicsStep
	}
	ph.tick(dt, env)

	return ph.pos.Sub(ph.target).Mul(ph.outputScale())
}

// tick is one semi-implicit Euler step of at most maxPhysicsStep seconds.
func (ph *Physics) tick(h float64, env PuppetPhysics) {
	if h <= 0 {
		return
	}
	g := env.Gravity.Scale(env.PixelsPerMeter * ph.GravityScale)
	a := ph.target.Sub(ph.pos).Scale(ph.Stiffness)
	a = a.Sub(ph.vel.Scale(ph.Damping))
	a = a.Add(g).Add(env.Wind)

	ph.vel = ph.vel.Add(a.Scale(h))
	ph.pos = ph.pos.Add(ph.vel.Scale(h))

	if ph.Rope && ph.Length > 0 {
		ph.constrainLength()
	}
	if !isFiniteVec(ph.pos) || !isFiniteVec(ph.vel) {
		// Simulation blew up; snap back to rest rather than propagate NaNs.
		ph.pos = ph.target
		ph.vel = Vec2{}
	}
}

// constrainLength projects the simulated position back onto the circle of
// radius Length around the anchor, keeping the velocity component along the
// rope from accumulating.
func (ph *Physics) constrainLength() {
	off := ph.pos.Sub(ph.target)
	dist := off.Len()
	if dist < 1e-9 {
		ph.pos = ph.target.Add(Vec2{0, ph.Length})
		return
	}
	ph.pos = ph.target.Add(off.Scale(ph.Length / dist))
}

// paramValue converts the current simulation state into a mapped parameter
// value for MapXY and MapAngleLength nodes.
func (ph *Physics) paramValue() Vec2 {
	off := ph.pos.Sub(ph.target)
	length := ph.Length
	if length <= 0 {
		length = 1
	}
	switch ph.MapMode {
	case MapAngleLength:
		// Swing angle relative to straight down, as a fraction of pi,
		// plus relative extension.
		angle := math.Atan2(-off.X, off.Y) / math.Pi
		rel := off.Len() / length
		return Vec2{angle, rel}.Mul(ph.outputScale())
	default: // MapXY
		norm := off.Scale(1 / length)
		// Rest position hangs one length straight down; params use Y-up.
		return Vec2{norm.X, -(norm.Y - 1)}.Mul(ph.outputScale())
	}
}

func (ph *Physics) outputScale() Vec2 {
	if ph.OutputScale == (Vec2{}) {
		return Vec2{1, 1}
	}
	return ph.OutputScale
}

func isFiniteVec(v Vec2) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
