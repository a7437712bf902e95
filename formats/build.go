package formats

import (
	"fmt"

	"github.com/tanema/gween/ease"

	"github.com/phanxgames/marionette"
)

// Name tables between the document vocabulary and the runtime enums.
// Validate checks membership; Build assumes it.

var blendModes = map[string]marionette.BlendMode{
	"normal":         marionette.BlendNormal,
	"multiply":       marionette.BlendMultiply,
	"colorDodge":     marionette.BlendColorDodge,
	"linearDodge":    marionette.BlendLinearDodge,
	"screen":         marionette.BlendScreen,
	"clipToLower":    marionette.BlendClipToLower,
	"sliceFromLower": marionette.BlendSliceFromLower,
}

const targetDeform = marionette.BindDeform

var bindTargets = map[string]marionette.BindTarget{
	"transform.t.x": marionette.BindTranslateX,
	"transform.t.y": marionette.BindTranslateY,
	"transform.r.z": marionette.BindRotation,
	"transform.s.x": marionette.BindScaleX,
	"transform.s.y": marionette.BindScaleY,
	"opacity":       marionette.BindOpacity,
	"zSort":         marionette.BindZSort,
	"deform":        marionette.BindDeform,
}

var interpModes = map[string]marionette.InterpolateMode{
	"":        marionette.InterpLinear,
	"linear":  marionette.InterpLinear,
	"nearest": marionette.InterpNearest,
	"eased":   marionette.InterpEased,
}

var mapModes = map[string]marionette.ParamMapMode{
	"":            marionette.MapNone,
	"xy":          marionette.MapXY,
	"angleLength": marionette.MapAngleLength,
}

var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"inQuad":       ease.InQuad,
	"outQuad":      ease.OutQuad,
	"inOutQuad":    ease.InOutQuad,
	"inCubic":      ease.InCubic,
	"outCubic":     ease.OutCubic,
	"inOutCubic":   ease.InOutCubic,
	"inQuart":      ease.InQuart,
	"outQuart":     ease.OutQuart,
	"inOutQuart":   ease.InOutQuart,
	"inQuint":      ease.InQuint,
	"outQuint":     ease.OutQuint,
	"inOutQuint":   ease.InOutQuint,
	"inSine":       ease.InSine,
	"outSine":      ease.OutSine,
	"inOutSine":    ease.InOutSine,
	"inExpo":       ease.InExpo,
	"outExpo":      ease.OutExpo,
	"inOutExpo":    ease.InOutExpo,
	"inCirc":       ease.InCirc,
	"outCirc":      ease.OutCirc,
	"inOutCirc":    ease.InOutCirc,
	"inBack":       ease.InBack,
	"outBack":      ease.OutBack,
	"inOutBack":    ease.InOutBack,
	"inBounce":     ease.InBounce,
	"outBounce":    ease.OutBounce,
	"inOutBounce":  ease.InOutBounce,
	"inElastic":    ease.InElastic,
	"outElastic":   ease.OutElastic,
	"inOutElastic": ease.InOutElastic,
}

// Build validates a document and links it into a runtime puppet. The
// returned puppet is fully linked and idle, ready for SetParameter and
// AdvanceFrame.
func Build(doc *Document) (*marionette.Puppet, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}

	g := marionette.NewGraph()
	p := marionette.NewPuppet(g)
	p.Meta = marionette.Meta{
		Name:       doc.Meta.Name,
		Version:    doc.Meta.Version,
		Artist:     doc.Meta.Artist,
		Rigger:     doc.Meta.Rigger,
		Copyright:  doc.Meta.Copyright,
		LicenseURL: doc.Meta.LicenseURL,
	}
	p.CrossFadeDeforms = doc.CrossFadeDeforms
	if env := doc.Physics; env != nil {
		if env.Gravity != nil {
			p.Physics.Gravity = marionette.Vec2{X: env.Gravity[0], Y: env.Gravity[1]}
		}
		if env.PixelsPerMeter > 0 {
			p.Physics.PixelsPerMeter = env.PixelsPerMeter
		}
		if env.Wind != nil {
			p.Physics.Wind = marionette.Vec2{X: env.Wind[0], Y: env.Wind[1]}
		}
	}

	if err := buildNodes(g, g.Root(), doc.Nodes); err != nil {
		return nil, err
	}
	for i := range doc.Params {
		p.AddParameter(buildParam(&doc.Params[i]))
	}
	p.Link()
	return p, nil
}

func buildNodes(g *marionette.Graph, parent marionette.NodeID, docs []NodeDoc) error {
	for i := range docs {
		d := &docs[i]
		n := buildNode(d)
		if _, err := g.AddNode(parent, n); err != nil {
			return fmt.Errorf("node %q: %w", d.Name, err)
		}
		if err := buildNodes(g, n.ID, d.Children); err != nil {
			return err
		}
	}
	return nil
}

func buildNode(d *NodeDoc) *marionette.Node {
	var n *marionette.Node
	switch d.Type {
	case "part":
		n = marionette.NewPart(d.Name, buildMesh(d.Mesh), d.Texture)
	case "composite":
		n = marionette.NewComposite(d.Name)
	case "custom":
		n = marionette.NewCustomNode(d.Name, nil)
	default:
		n = marionette.NewTransformNode(d.Name)
	}
	n.ID = marionette.NodeID(d.ID)

	n.SetPosition(d.Translation[0], d.Translation[1])
	n.SetRotation(d.Rotation)
	if d.Scale != nil {
		n.SetScale(d.Scale[0], d.Scale[1])
	}
	n.ZSort = d.ZSort

	if d.Opacity != nil {
		n.Opacity = *d.Opacity
	}
	if d.Tint != nil {
		n.Tint = marionette.Color{R: d.Tint[0], G: d.Tint[1], B: d.Tint[2], A: 1}
	}
	if d.ScreenTint != nil {
		n.ScreenTint = marionette.Color{R: d.ScreenTint[0], G: d.ScreenTint[1], B: d.ScreenTint[2], A: 1}
	}
	n.Emission = d.Emission
	if d.Blend != "" {
		n.Blend = blendModes[d.Blend]
	}
	for _, m := range d.Masks {
		mode := marionette.MaskModeMask
		if m.Mode == "dodge" {
			mode = marionette.MaskModeDodge
		}
		n.Masks = append(n.Masks, marionette.Mask{Source: marionette.NodeID(m.Source), Mode: mode})
	}
	if d.MaskThreshold != nil {
		n.MaskThreshold = *d.MaskThreshold
	}

	if d.Physics != nil {
		n.Physics = buildPhysics(d.Physics)
	}
	return n
}

func buildMesh(d *MeshDoc) *marionette.Mesh {
	m := &marionette.Mesh{
		Vertices: pairVecs(d.Verts),
		UVs:      pairVecs(d.UVs),
		Indices:  d.Indices,
	}
	return m
}

func pairVecs(flat []float64) []marionette.Vec2 {
	if len(flat) == 0 {
		return nil
	}
	out := make([]marionette.Vec2, len(flat)/2)
	for i := range out {
		out[i] = marionette.Vec2{X: flat[2*i], Y: flat[2*i+1]}
	}
	return out
}

func buildPhysics(d *PhysicsDoc) *marionette.Physics {
	ph := &marionette.Physics{
		Stiffness:    d.Stiffness,
		Damping:      d.Damping,
		GravityScale: 1,
		Length:       d.Length,
		Rope:         d.Rope,
		LocalOnly:    d.LocalOnly,
		MapMode:      mapModes[d.MapMode],
		Param:        d.Param,
	}
	if d.GravityScale != nil {
		ph.GravityScale = *d.GravityScale
	}
	if d.Damping == 0 && d.Stiffness > 0 {
		ph.Damping = marionette.CriticalDamping(d.Stiffness)
	}
	if d.OutputScale != nil {
		ph.OutputScale = marionette.Vec2{X: d.OutputScale[0], Y: d.OutputScale[1]}
	}
	return ph
}

func buildParam(d *ParamDoc) *marionette.Parameter {
	p := &marionette.Parameter{
		Name:     d.Name,
		IsVec2:   d.IsVec2,
		Min:      marionette.Vec2{X: d.Min[0], Y: d.Min[1]},
		Max:      marionette.Vec2{X: d.Max[0], Y: d.Max[1]},
		Defaults: marionette.Vec2{X: d.Defaults[0], Y: d.Defaults[1]},
		AxisX:    d.AxisX,
		AxisY:    d.AxisY,
	}
	for i := range d.Bindings {
		p.Bindings = append(p.Bindings, buildBinding(&d.Bindings[i]))
	}
	return p
}

func buildBinding(d *BindingDoc) *marionette.Binding {
	b := &marionette.Binding{
		Node:   marionette.NodeID(d.Node),
		Target: bindTargets[d.Target],
		Mode:   interpModes[d.Mode],
		Weight: d.Weight,
		Values: d.Values,
	}
	if d.Mode == "eased" {
		b.Easing = easings[d.Easing]
	}
	if b.Target == marionette.BindDeform {
		b.Deform = make([][][]marionette.Vec2, len(d.Deform))
		for y, row := range d.Deform {
			b.Deform[y] = make([][]marionette.Vec2, len(row))
			for x, cell := range row {
				offs := make([]marionette.Vec2, len(cell))
				for i, o := range cell {
					offs[i] = marionette.Vec2{X: o[0], Y: o[1]}
				}
				b.Deform[y][x] = offs
			}
		}
	}
	return b
}
