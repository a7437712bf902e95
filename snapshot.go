package marionette

// DrawKind identifies what a DrawCall asks the renderer to do.
type DrawKind uint8

const (
	DrawPart      DrawKind = iota // draw a textured, deformed triangle mesh
	DrawComposite                 // render Children offscreen, then blend the result
	DrawCustom                    // dispatch Payload to the backend's CustomRenderer
)

// DrawCall is one renderer instruction of a frame snapshot. For DrawPart it
// carries the deformed vertex buffer and the scalar blend inputs; for
// DrawComposite the Children slice holds the calls to render into the
// offscreen target before the composite itself is blended. The runtime
// never references GPU handles: Texture is an index into the puppet
// document's texture list, resolved by the backend.
type DrawCall struct {
	Kind DrawKind
	Node NodeID
	Name string

	// World transform as a 2D affine matrix [a, b, c, d, tx, ty].
	Transform [6]float64
	ZSort     float64

	// Mesh data (DrawPart). Vertices is the frame's deformed buffer;
	// UVs and Indices alias the immutable base mesh.
	Vertices []Vec2
	UVs      []Vec2
	Indices  []uint16
	Texture  int

	// Blend inputs. Opacity has the ancestor chain folded in.
	Opacity    float64
	Tint       Color
	ScreenTint Color
	Emission   float64
	Blend      BlendMode

	// Masking.
	MaskThreshold float64
	Masks         []MaskRef

	// Composite grouping (DrawComposite).
	Children []DrawCall

	// Custom payload (DrawCustom).
	Payload any
}

// MaskRef points a renderer at the snapshot entry whose coverage masks or
// dodges this call. Index is the position of the source part within the
// same Drawables (or Children) slice, or -1 if the source did not produce
// a call this frame.
type MaskRef struct {
	Node  NodeID
	Mode  MaskMode
	Index int
}

// FrameSnapshot is the finalized, draw-ready output of one frame: every
// drawable in paint order with its world transform, deformed vertices, and
// blend state. The snapshot's vertex buffers are copies; it remains valid
// after the puppet advances again.
type FrameSnapshot struct {
	Drawables []DrawCall
}

// Snapshot finalizes the current frame and hands it off. It must be called
// in FrameReady, i.e. after AdvanceFrame; calling it earlier is a pipeline
// ordering bug in the embedding application and panics. Consuming the
// snapshot resets the pipeline to FrameIdle for the next frame.
func (p *Puppet) Snapshot() *FrameSnapshot {
	if p.state != FrameReady {
		panic("marionette: Snapshot called before AdvanceFrame completed")
	}
	snap := &FrameSnapshot{}
	root := p.graph.nodes[p.graph.root]
	snap.Drawables = p.collectDrawables(root, nil)
	resolveMaskIndices(snap.Drawables)
	p.state = FrameIdle
	return snap
}

// collectDrawables walks the subtree in paint order and appends one
// DrawCall per drawable. Composite subtrees collapse into a single call
// holding its children's calls.
func (p *Puppet) collectDrawables(n *Node, dst []DrawCall) []DrawCall {
	if n.Type == NodeTypeComposite {
		var children []DrawCall
		for _, c := range p.graph.sortedChildren(n) {
			children = p.collectDrawables(p.graph.nodes[c], children)
		}
		resolveMaskIndices(children)
		dst = append(dst, DrawCall{
			Kind:          DrawComposite,
			Node:          n.ID,
			Name:          n.Name,
			Transform:     n.world,
			ZSort:         n.worldZSort,
			Opacity:       n.worldOpacity,
			Tint:          n.Tint,
			ScreenTint:    n.ScreenTint,
			Emission:      n.Emission,
			Blend:         n.Blend,
			MaskThreshold: n.MaskThreshold,
			Masks:         maskRefs(n.Masks),
			Children:      children,
		})
		return dst
	}

	switch n.Type {
	case NodeTypePart:
		if n.Mesh != nil {
			verts := make([]Vec2, len(n.deformed))
			copy(verts, n.deformed)
			dst = append(dst, DrawCall{
				Kind:          DrawPart,
				Node:          n.ID,
				Name:          n.Name,
				Transform:     n.world,
				ZSort:         n.worldZSort,
				Vertices:      verts,
				UVs:           n.Mesh.UVs,
				Indices:       n.Mesh.Indices,
				Texture:       n.Texture,
				Opacity:       n.worldOpacity,
				Tint:          n.Tint,
				ScreenTint:    n.ScreenTint,
				Emission:      n.Emission,
				Blend:         n.Blend,
				MaskThreshold: n.MaskThreshold,
				Masks:         maskRefs(n.Masks),
			})
		}
	case NodeTypeCustom:
		dst = append(dst, DrawCall{
			Kind:      DrawCustom,
			Node:      n.ID,
			Name:      n.Name,
			Transform: n.world,
			ZSort:     n.worldZSort,
			Opacity:   n.worldOpacity,
			Payload:   n.Custom,
		})
	}

	for _, c := range p.graph.sortedChildren(n) {
		dst = p.collectDrawables(p.graph.nodes[c], dst)
	}
	return dst
}

func maskRefs(masks []Mask) []MaskRef {
	if len(masks) == 0 {
		return nil
	}
	refs := make([]MaskRef, len(masks))
	for i, m := range masks {
		refs[i] = MaskRef{Node: m.Source, Mode: m.Mode, Index: -1}
	}
	return refs
}

// resolveMaskIndices links every MaskRef to the slice position of its
// source call, so backends can find mask geometry without a second pass
// over the graph.
func resolveMaskIndices(calls []DrawCall) {
	byNode := make(map[NodeID]int, len(calls))
	for i := range calls {
		byNode[calls[i].Node] = i
	}
	for i := range calls {
		for j := range calls[i].Masks {
			if idx, ok := byNode[calls[i].Masks[j].Node]; ok {
				calls[i].Masks[j].Index = idx
			}
		}
	}
}
