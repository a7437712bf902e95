// Package software rasterizes frame snapshots on the CPU into an
// image.NRGBA. It exists for headless tooling (thumbnails, golden-image
// tests) and as the reference for what the GPU backend should produce; it
// favors clarity over speed.
package software

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/phanxgames/marionette"
)

// Renderer draws snapshots into a fixed-size target. The origin sits at the
// center of the image so a puppet authored around (0, 0) lands mid-frame.
type Renderer struct {
	width    int
	height   int
	textures []*image.NRGBA

	// Background fills the target before drawing. Zero value is
	// transparent.
	Background color.NRGBA
}

// New creates a renderer with the given target size and texture slots.
func New(width, height int, textures []image.Image) *Renderer {
	r := &Renderer{width: width, height: height}
	for _, t := range textures {
		n := image.NewNRGBA(t.Bounds())
		draw.Draw(n, n.Bounds(), t, t.Bounds().Min, draw.Src)
		r.textures = append(r.textures, n)
	}
	return r
}

// Render rasterizes one snapshot and returns the finished image.
func (r *Renderer) Render(snap *marionette.FrameSnapshot) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, r.width, r.height))
	if r.Background.A != 0 {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(r.Background), image.Point{}, draw.Src)
	}
	r.renderCalls(dst, snap.Drawables)
	return dst
}

func (r *Renderer) renderCalls(dst *image.NRGBA, calls []marionette.DrawCall) {
	for i := range calls {
		c := &calls[i]
		stencil := r.buildStencil(calls, c)
		switch c.Kind {
		case marionette.DrawPart:
			r.drawPart(dst, c, stencil)
		case marionette.DrawComposite:
			off := image.NewNRGBA(dst.Bounds())
			r.renderCalls(off, c.Children)
			r.blendImage(dst, off, c, stencil)
		case marionette.DrawCustom:
			// No custom payloads are known to this backend.
		}
	}
}

// buildStencil renders the call's mask sources and flattens them into a
// per-pixel keep/discard buffer using the call's threshold. Returns nil
// when the call has no resolvable masks.
func (r *Renderer) buildStencil(calls []marionette.DrawCall, c *marionette.DrawCall) []float64 {
	var keep, drop *image.NRGBA
	for _, m := range c.Masks {
		if m.Index < 0 || calls[m.Index].Kind != marionette.DrawPart {
			continue
		}
		// Masking uses the source's coverage, not its visible opacity: an
		// invisible matte still clips.
		src := calls[m.Index]
		src.Opacity = 1
		src.Blend = marionette.BlendNormal
		switch m.Mode {
		case marionette.MaskModeMask:
			if keep == nil {
				keep = image.NewNRGBA(image.Rect(0, 0, r.width, r.height))
			}
			r.drawPart(keep, &src, nil)
		case marionette.MaskModeDodge:
			if drop == nil {
				drop = image.NewNRGBA(image.Rect(0, 0, r.width, r.height))
			}
			r.drawPart(drop, &src, nil)
		}
	}
	if keep == nil && drop == nil {
		return nil
	}

	st := make([]float64, r.width*r.height)
	for i := range st {
		pass := 1.0
		if keep != nil && float64(keep.Pix[i*4+3])/255 < c.MaskThreshold {
			pass = 0
		}
		if drop != nil && float64(drop.Pix[i*4+3])/255 >= c.MaskThreshold {
			pass = 0
		}
		st[i] = pass
	}
	return st
}

// drawPart rasterizes one deformed part. Vertices arrive in local space;
// the call's world transform plus the renderer's center offset place them
// in pixel space.
func (r *Renderer) drawPart(dst *image.NRGBA, c *marionette.DrawCall, stencil []float64) {
	if len(c.Indices) < 3 || len(c.Vertices) == 0 {
		return
	}
	var tex *image.NRGBA
	if c.Texture >= 0 && c.Texture < len(r.textures) {
		tex = r.textures[c.Texture]
	}
	useUV := tex != nil && len(c.UVs) == len(c.Vertices)

	cx := float64(r.width) / 2
	cy := float64(r.height) / 2
	m := c.Transform
	pts := make([][2]float64, len(c.Vertices))
	for i, v := range c.Vertices {
		pts[i] = [2]float64{
			m[0]*v.X + m[2]*v.Y + m[4] + cx,
			m[1]*v.X + m[3]*v.Y + m[5] + cy,
		}
	}

	for t := 0; t+2 < len(c.Indices); t += 3 {
		i0, i1, i2 := c.Indices[t], c.Indices[t+1], c.Indices[t+2]
		a, b, cp := pts[i0], pts[i1], pts[i2]
		rasterTriangle(r.width, r.height, a[0], a[1], b[0], b[1], cp[0], cp[1],
			func(x, y int, wa, wb, wc float64) {
				if stencil != nil && stencil[y*r.width+x] == 0 {
					return
				}
				px := rgba{1, 1, 1, 1}
				if useUV {
					u := wa*c.UVs[i0].X + wb*c.UVs[i1].X + wc*c.UVs[i2].X
					v := wa*c.UVs[i0].Y + wb*c.UVs[i1].Y + wc*c.UVs[i2].Y
					px = sample(tex, u, v)
				}
				px = shade(px, c)
				if px.a <= 0 {
					return
				}
				setPix(dst, x, y, blendPixel(c.Blend, getPix(dst, x, y), px))
			})
	}
}

// blendImage composites a finished offscreen buffer (a composite subtree)
// onto dst. Child opacity is already folded into the buffer, so only the
// composite's blend mode and stencil apply here.
func (r *Renderer) blendImage(dst, src *image.NRGBA, c *marionette.DrawCall, stencil []float64) {
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			s := getPix(src, x, y)
			if s.a <= 0 {
				continue
			}
			if stencil != nil && stencil[y*r.width+x] == 0 {
				continue
			}
			setPix(dst, x, y, blendPixel(c.Blend, getPix(dst, x, y), s))
		}
	}
}

// shade applies the call's color state to a sampled texel: tint multiply,
// screen tint lighten, emission boost, opacity.
func shade(px rgba, c *marionette.DrawCall) rgba {
	px.r *= c.Tint.R
	px.g *= c.Tint.G
	px.b *= c.Tint.B
	px.a *= c.Tint.A

	px.r = 1 - (1-px.r)*(1-c.ScreenTint.R)
	px.g = 1 - (1-px.g)*(1-c.ScreenTint.G)
	px.b = 1 - (1-px.b)*(1-c.ScreenTint.B)

	if c.Emission > 0 {
		boost := 1 + c.Emission
		px.r = clamp01(px.r * boost)
		px.g = clamp01(px.g * boost)
		px.b = clamp01(px.b * boost)
	}
	px.a *= c.Opacity
	return px
}

// sample reads the texel nearest to the normalized UV coordinate.
func sample(tex *image.NRGBA, u, v float64) rgba {
	b := tex.Bounds()
	x := b.Min.X + clampInt(int(u*float64(b.Dx())), 0, b.Dx()-1)
	y := b.Min.Y + clampInt(int(v*float64(b.Dy())), 0, b.Dy()-1)
	c := tex.NRGBAAt(x, y)
	return rgba{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255}
}

func getPix(img *image.NRGBA, x, y int) rgba {
	i := img.PixOffset(x, y)
	return rgba{
		r: float64(img.Pix[i]) / 255,
		g: float64(img.Pix[i+1]) / 255,
		b: float64(img.Pix[i+2]) / 255,
		a: float64(img.Pix[i+3]) / 255,
	}
}

func setPix(img *image.NRGBA, x, y int, c rgba) {
	i := img.PixOffset(x, y)
	img.Pix[i] = uint8(clamp01(c.r)*255 + 0.5)
	img.Pix[i+1] = uint8(clamp01(c.g)*255 + 0.5)
	img.Pix[i+2] = uint8(clamp01(c.b)*255 + 0.5)
	img.Pix[i+3] = uint8(clamp01(c.a)*255 + 0.5)
}
