package marionette

import "fmt"

// Meta carries the document metadata of a puppet. Informational only.
type Meta struct {
	Name       string
	Version    string
	Artist     string
	Rigger     string
	Copyright  string
	LicenseURL string
}

// Puppet is the complete rigged character: the node graph, the parameters
// with their bindings, and the physics environment. It is constructed once
// from a validated document (see the formats package) and mutated every
// frame by the update pipeline; node topology does not change during
// playback.
//
// A Puppet owns all of its mutable state exclusively and provides no
// internal locking: one frame update must run to completion before the
// next begins, and concurrent use of a single instance is the caller's
// responsibility. Independent instances are safe to update in parallel.
type Puppet struct {
	Meta    Meta
	Physics PuppetPhysics

	// CrossFadeDeforms enables per-vertex weight normalization when
	// multiple deform bindings overlap (see Binding.Weight).
	CrossFadeDeforms bool

	graph      *Graph
	params     map[string]*Parameter
	paramOrder []string

	physicsNodes []NodeID // cached at link time, in pre-order

	state         FrameState
	deformScratch []Vec2
}

// NewPuppet wraps a finished graph into a puppet with the default physics
// environment. The formats package is the usual constructor; this one
// serves tests and programmatic rigs.
func NewPuppet(g *Graph) *Puppet {
	return &Puppet{
		Physics: DefaultPuppetPhysics(),
		graph:   g,
		params:  make(map[string]*Parameter),
	}
}

// Graph returns the puppet's node graph.
func (p *Puppet) Graph() *Graph {
	return p.graph
}

// AddParameter registers a parameter and initializes it to its defaults.
// Parameters evaluate in registration order.
func (p *Puppet) AddParameter(param *Parameter) {
	if _, dup := p.params[param.Name]; dup {
		panic(fmt.Sprintf("marionette: duplicate parameter %q", param.Name))
	}
	param.set(param.Defaults)
	p.params[param.Name] = param
	p.paramOrder = append(p.paramOrder, param.Name)
}

// Parameter returns the named parameter, or ErrNotFound.
func (p *Puppet) Parameter(name string) (*Parameter, error) {
	param, ok := p.params[name]
	if !ok {
		return nil, fmt.Errorf("parameter %q: %w", name, ErrNotFound)
	}
	return param, nil
}

// ParameterNames returns the parameter names in evaluation order.
func (p *Puppet) ParameterNames() []string {
	return p.paramOrder
}

// SetParameter sets the named parameter's value, clamped to its declared
// bounds; out-of-range input is a normal occurrence from continuous
// controls, not an error. 1D parameters read only the X component.
// A write after FrameReady restarts the frame sequence.
func (p *Puppet) SetParameter(name string, value Vec2) error {
	param, ok := p.params[name]
	if !ok {
		return fmt.Errorf("parameter %q: %w", name, ErrNotFound)
	}
	param.set(value)
	if p.state == FrameReady || p.state == FrameIdle {
		p.state = FrameParametersSet
	}
	return nil
}

// Link finalizes a programmatically built puppet: allocates per-drawable
// deform state and collects physics-enabled nodes. The formats package
// calls this after document assembly; call it once after the last AddNode
// when building rigs by hand.
func (p *Puppet) Link() {
	p.physicsNodes = p.physicsNodes[:0]
	for n := range p.graph.All() {
		if n.Type == NodeTypePart && n.Mesh != nil {
			n.deform = newDeformStack(len(n.Mesh.Vertices), p.CrossFadeDeforms)
			n.deformed = make([]Vec2, len(n.Mesh.Vertices))
			copy(n.deformed, n.Mesh.Vertices)
		}
		if n.Physics != nil {
			p.physicsNodes = append(p.physicsNodes, n.ID)
		}
	}
}

// State returns the current frame pipeline state.
func (p *Puppet) State() FrameState {
	return p.state
}

// AdvanceFrame runs the per-frame pipeline for one simulated frame of dt
// seconds: binding evaluation, physics integration, deformation
// composition, and world transform resolution, in that fixed order. After
// it returns the puppet is in FrameReady and Snapshot may be called.
//
// The pipeline is a total function over a validated puppet: it returns no
// error because, per the document contract, none can occur.
func (p *Puppet) AdvanceFrame(dt float64) {
	// Parameter evaluation -> binding application.
	p.beginFrame()
	p.applyParameters()
	p.state = FrameEvaluated

	// Physics anchors must reflect this frame's parameter-driven pose.
	p.graph.resolveTransforms()
	p.stepPhysics(dt)
	p.state = FramePhysicsStepped

	// Deformation composition.
	p.compose()
	p.state = FrameComposited

	// Final world transforms, physics offsets included.
	p.graph.resolveTransforms()
	p.state = FrameReady
}

// beginFrame resets every per-frame offset and deform stack.
func (p *Puppet) beginFrame() {
	for n := range p.graph.All() {
		n.resetFrameOffsets()
		if n.deform != nil {
			n.deform.reset()
		}
	}
}

// applyParameters evaluates every binding of every parameter.
func (p *Puppet) applyParameters() {
	for _, name := range p.paramOrder {
		p.deformScratch = p.params[name].apply(p.graph, p.deformScratch)
	}
}

// stepPhysics integrates every physics-enabled node and feeds the outputs
// back into the graph: translation offsets directly, mapped parameters via
// a second binding evaluation pass.
func (p *Puppet) stepPhysics(dt float64) {
	// Sample every anchor first: targets reflect the parameter-driven pose
	// only, never another node's physics output from this same frame.
	targets := make([]Vec2, len(p.physicsNodes))
	for i, id := range p.physicsNodes {
		n := p.graph.MustNode(id)
		targets[i] = p.anchorPosition(n, n.Physics)
	}

	var mapped bool
	for i, id := range p.physicsNodes {
		n := p.graph.MustNode(id)
		ph := n.Physics

		out := ph.step(dt, targets[i], p.Physics)

		switch ph.MapMode {
		case MapNone:
			// The simulation runs in world space; bring the offset back
			// into the parent's space before it joins the local translation.
			lx, ly := out.X, out.Y
			if !ph.LocalOnly && n.parent != 0 {
				inv := invertAffine(p.graph.worldTransform(p.graph.MustNode(n.parent)))
				lx = inv[0]*out.X + inv[2]*out.Y
				ly = inv[1]*out.X + inv[3]*out.Y
			}
			n.physX += lx
			n.physY += ly
			n.transformDirty = true
		default:
			mapped = true
		}
	}
	if !mapped {
		return
	}

	// Mapped outputs drive parameters, so bindings must re-evaluate with
	// the physics-written values. Binding offsets are cleared and rebuilt;
	// the physics translation offsets survive the reset.
	for _, id := range p.physicsNodes {
		n := p.graph.MustNode(id)
		ph := n.Physics
		if ph.MapMode == MapNone || ph.Param == "" {
			continue
		}
		if param, ok := p.params[ph.Param]; ok {
			param.set(ph.paramValue())
		}
	}
	for n := range p.graph.All() {
		n.resetBindingOffsets()
		if n.deform != nil {
			n.deform.reset()
		}
	}
	p.applyParameters()
	p.graph.resolveTransforms()
}

// anchorPosition computes the undamped target position of a physics node:
// the position implied by the node's non-physics transform chain. Valid
// only while the frame's physics offsets are still zero.
func (p *Puppet) anchorPosition(n *Node, ph *Physics) Vec2 {
	if ph.LocalOnly {
		return Vec2{n.X + n.offX, n.Y + n.offY}
	}
	world := p.graph.worldTransform(n)
	return Vec2{world[4], world[5]}
}

// compose builds the final per-vertex buffer of every drawable part:
// base mesh positions plus the combined deform offsets.
func (p *Puppet) compose() {
	for n := range p.graph.All() {
		if n.deform == nil {
			continue
		}
		n.deform.combine(n.Mesh.Vertices, n.deformed)
	}
}

// Reset restores every parameter to its defaults, snaps all physics state
// back to rest, and clears the frame pipeline.
func (p *Puppet) Reset() {
	for _, name := range p.paramOrder {
		param := p.params[name]
		param.set(param.Defaults)
	}
	for _, id := range p.physicsNodes {
		p.graph.MustNode(id).Physics.reset()
	}
	for n := range p.graph.All() {
		n.resetFrameOffsets()
		if n.deform != nil {
			n.deform.reset()
			copy(n.deformed, n.Mesh.Vertices)
		}
	}
	p.graph.markAllDirty()
	p.state = FrameIdle
}
