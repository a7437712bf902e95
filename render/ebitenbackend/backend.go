// Package ebitenbackend renders puppet frame snapshots with Ebitengine.
// It resolves texture slot indices to GPU images, converts deformed vertex
// buffers into ebiten.Vertex triangles, and realizes composite groups and
// masks through pooled offscreen render targets.
//
// Screen tint is a shader-level effect and is not applied by this backend;
// the software renderer covers it for offline output. Masking here is
// coverage-weighted rather than thresholded.
package ebitenbackend

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/marionette"
)

// CustomRenderer draws the payload of a DrawCustom call. Applications that
// attach custom nodes to a puppet register one on the Renderer; calls whose
// payload the renderer does not recognize should be ignored.
type CustomRenderer interface {
	DrawCustom(dst *ebiten.Image, call *marionette.DrawCall)
}

// Renderer draws frame snapshots onto ebiten images. The puppet origin maps
// to the center of the destination image. A Renderer is not safe for
// concurrent use.
type Renderer struct {
	textures []*ebiten.Image
	white    *ebiten.Image
	pool     renderTargetPool

	// Custom, when set, receives DrawCustom calls.
	Custom CustomRenderer

	verts []ebiten.Vertex
}

// New creates a renderer over the puppet's texture list, indexed by the
// texture slot of each drawable. Entries may be nil; parts referencing a
// nil or out-of-range slot render flat white so tinting still shows them.
func New(textures []*ebiten.Image) *Renderer {
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)
	return &Renderer{textures: textures, white: white}
}

// Draw renders a snapshot onto dst.
func (r *Renderer) Draw(dst *ebiten.Image, snap *marionette.FrameSnapshot) {
	b := dst.Bounds()
	ox := float64(b.Min.X) + float64(b.Dx())/2
	oy := float64(b.Min.Y) + float64(b.Dy())/2
	r.drawCalls(dst, snap.Drawables, ox, oy)
}

func (r *Renderer) drawCalls(dst *ebiten.Image, calls []marionette.DrawCall, ox, oy float64) {
	for i := range calls {
		call := &calls[i]
		switch call.Kind {
		case marionette.DrawPart:
			r.drawPart(dst, call, calls, ox, oy)
		case marionette.DrawComposite:
			r.drawComposite(dst, call, calls, ox, oy)
		case marionette.DrawCustom:
			if r.Custom != nil {
				r.Custom.DrawCustom(dst, call)
			}
		}
	}
}

func (r *Renderer) drawPart(dst *ebiten.Image, call *marionette.DrawCall, siblings []marionette.DrawCall, ox, oy float64) {
	if len(call.Masks) == 0 {
		r.drawTriangles(dst, call, ox, oy, false)
		return
	}

	// Masked parts go through an offscreen target so the mask subtracts
	// from this part alone, not from everything under it.
	b := dst.Bounds()
	rt, view := r.acquireView(b.Dx(), b.Dy())
	r.drawTriangles(view, call, ox-float64(b.Min.X), oy-float64(b.Min.Y), true)
	r.applyMasks(view, call.Masks, siblings, ox-float64(b.Min.X), oy-float64(b.Min.Y))

	var op ebiten.DrawImageOptions
	op.GeoM.Translate(float64(b.Min.X), float64(b.Min.Y))
	op.Blend = EbitenBlend(call.Blend)
	dst.DrawImage(view, &op)
	r.pool.Release(rt)
}

func (r *Renderer) drawComposite(dst *ebiten.Image, call *marionette.DrawCall, siblings []marionette.DrawCall, ox, oy float64) {
	b := dst.Bounds()
	rt, view := r.acquireView(b.Dx(), b.Dy())
	r.drawCalls(view, call.Children, ox-float64(b.Min.X), oy-float64(b.Min.Y))
	if len(call.Masks) > 0 {
		r.applyMasks(view, call.Masks, siblings, ox-float64(b.Min.X), oy-float64(b.Min.Y))
	}

	// Child opacity already folds the composite's own, so the group image
	// composites at full strength; only the blend mode applies here.
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(float64(b.Min.X), float64(b.Min.Y))
	op.Blend = EbitenBlend(call.Blend)
	dst.DrawImage(view, &op)
	r.pool.Release(rt)
}

// applyMasks clips or dodges target in place using the coverage of each
// resolved mask source. Sources render at full opacity into a scratch
// target: an invisible matte still clips.
func (r *Renderer) applyMasks(target *ebiten.Image, masks []marionette.MaskRef, siblings []marionette.DrawCall, ox, oy float64) {
	b := target.Bounds()
	for _, m := range masks {
		if m.Index < 0 || siblings[m.Index].Kind != marionette.DrawPart {
			continue
		}
		src := siblings[m.Index]
		src.Opacity = 1
		src.Tint = marionette.ColorWhite
		src.Blend = marionette.BlendNormal

		rt, view := r.acquireView(b.Dx(), b.Dy())
		r.drawTriangles(view, &src, ox, oy, true)

		var op ebiten.DrawImageOptions
		op.GeoM.Translate(float64(b.Min.X), float64(b.Min.Y))
		if m.Mode == marionette.MaskModeDodge {
			op.Blend = ebiten.BlendDestinationOut
		} else {
			op.Blend = ebiten.BlendDestinationIn
		}
		target.DrawImage(view, &op)
		r.pool.Release(rt)
	}
}

// drawTriangles issues the part's mesh as one DrawTriangles call. When
// offscreen is true the part draws source-over into a scratch target and
// its blend mode is applied later, at composite time.
func (r *Renderer) drawTriangles(dst *ebiten.Image, call *marionette.DrawCall, ox, oy float64, offscreen bool) {
	img := r.texture(call.Texture)
	tb := img.Bounds()
	r.verts = appendVertices(r.verts[:0], call, ox, oy, float64(tb.Dx()), float64(tb.Dy()))

	var op ebiten.DrawTrianglesOptions
	if offscreen {
		op.Blend = ebiten.BlendSourceOver
	} else {
		op.Blend = EbitenBlend(call.Blend)
	}
	dst.DrawTriangles(r.verts, call.Indices, img, &op)
}

// appendVertices converts a part's deformed vertex buffer into ebiten
// vertices: world-transformed positions offset by (ox, oy), UVs scaled to
// texture pixels, and per-vertex color scale folding tint, emission, and
// opacity. Meshes without a UV channel map every vertex to the texture
// center, which renders flat texture color (for textureless parts, flat
// white under the tint).
func appendVertices(dst []ebiten.Vertex, call *marionette.DrawCall, ox, oy, tw, th float64) []ebiten.Vertex {
	t := call.Transform
	boost := 1 + call.Emission
	cr := float32(call.Tint.R * boost)
	cg := float32(call.Tint.G * boost)
	cb := float32(call.Tint.B * boost)
	ca := float32(call.Tint.A * call.Opacity)
	useUV := len(call.UVs) == len(call.Vertices)
	sx := float32(tw / 2)
	sy := float32(th / 2)
	for i, v := range call.Vertices {
		wx := t[0]*v.X + t[2]*v.Y + t[4]
		wy := t[1]*v.X + t[3]*v.Y + t[5]
		if useUV {
			sx = float32(call.UVs[i].X * tw)
			sy = float32(call.UVs[i].Y * th)
		}
		dst = append(dst, ebiten.Vertex{
			DstX:   float32(wx + ox),
			DstY:   float32(wy + oy),
			SrcX:   sx,
			SrcY:   sy,
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		})
	}
	return dst
}

func (r *Renderer) texture(slot int) *ebiten.Image {
	if slot < 0 || slot >= len(r.textures) || r.textures[slot] == nil {
		return r.white
	}
	return r.textures[slot]
}

// acquireView returns a pooled target plus an exact (w, h) SubImage view of
// it. Release the first return value when done drawing with the view.
func (r *Renderer) acquireView(w, h int) (*ebiten.Image, *ebiten.Image) {
	rt := r.pool.Acquire(w, h)
	view := rt.SubImage(image.Rect(0, 0, w, h)).(*ebiten.Image)
	return rt, view
}
