package software

import (
	"image/color"
	"math"
	"testing"

	"github.com/phanxgames/marionette"
)

// snapQuad builds a single-part puppet with a w x h centered quad and
// returns its first frame snapshot after applying mutate.
func snapQuad(t *testing.T, w, h float64, mutate func(n *marionette.Node)) *marionette.FrameSnapshot {
	t.Helper()
	g := marionette.NewGraph()
	part := marionette.NewPart("quad", marionette.NewQuadMesh(w, h), -1)
	if mutate != nil {
		mutate(part)
	}
	if _, err := g.AddNode(g.Root(), part); err != nil {
		t.Fatal(err)
	}
	p := marionette.NewPuppet(g)
	p.Link()
	p.AdvanceFrame(1.0 / 60)
	return p.Snapshot()
}

func TestRenderSolidQuad(t *testing.T) {
	snap := snapQuad(t, 20, 20, func(n *marionette.Node) {
		n.Tint = marionette.Color{R: 1, G: 0, B: 0, A: 1}
	})
	img := New(64, 64, nil).Render(snap)

	// Center of the target is the puppet origin.
	got := img.NRGBAAt(32, 32)
	if got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("center pixel = %+v, want opaque red", got)
	}
	if img.NRGBAAt(32+15, 32).A != 0 {
		t.Error("pixel outside the quad should stay transparent")
	}
	if img.NRGBAAt(1, 1).A != 0 {
		t.Error("corner pixel should stay transparent")
	}
}

func TestRenderRespectsOpacity(t *testing.T) {
	snap := snapQuad(t, 20, 20, func(n *marionette.Node) {
		n.Opacity = 0.5
	})
	img := New(64, 64, nil).Render(snap)
	a := img.NRGBAAt(32, 32).A
	if a < 120 || a > 135 {
		t.Errorf("alpha = %d, want about 128", a)
	}
}

func TestRenderBackgroundFill(t *testing.T) {
	r := New(8, 8, nil)
	r.Background = color.NRGBA{0, 0, 255, 255}
	img := r.Render(&marionette.FrameSnapshot{})
	if img.NRGBAAt(4, 4) != (color.NRGBA{0, 0, 255, 255}) {
		t.Errorf("background pixel = %+v", img.NRGBAAt(4, 4))
	}
}

func TestRenderAppliesWorldTransform(t *testing.T) {
	snap := snapQuad(t, 10, 10, func(n *marionette.Node) {
		n.SetPosition(20, 0)
	})
	img := New(64, 64, nil).Render(snap)
	if img.NRGBAAt(32+20, 32).A == 0 {
		t.Error("translated quad center should be covered")
	}
	if img.NRGBAAt(32, 32).A != 0 {
		t.Error("origin should be empty after translating the quad away")
	}
}

func TestRenderMaskClipsPixels(t *testing.T) {
	g := marionette.NewGraph()
	matte := marionette.NewPart("matte", marionette.NewQuadMesh(10, 10), -1)
	matteID, _ := g.AddNode(g.Root(), matte)
	inked := marionette.NewPart("inked", marionette.NewQuadMesh(40, 40), -1)
	inked.Masks = []marionette.Mask{{Source: matteID, Mode: marionette.MaskModeMask}}
	g.AddNode(g.Root(), inked)

	p := marionette.NewPuppet(g)
	p.Link()
	p.AdvanceFrame(1.0 / 60)
	img := New(64, 64, nil).Render(p.Snapshot())

	if img.NRGBAAt(32, 32).A == 0 {
		t.Error("pixel inside the matte should be drawn")
	}
	// 15px from center: inside the inked quad, outside the 10x10 matte.
	// The matte itself also drew there? No: the matte is only 10x10.
	if img.NRGBAAt(32+15, 32).A != 0 {
		t.Error("pixel outside the matte should be clipped")
	}
}

func TestRenderDodgeMaskCutsHole(t *testing.T) {
	g := marionette.NewGraph()
	hole := marionette.NewPart("hole", marionette.NewQuadMesh(10, 10), -1)
	holeID, _ := g.AddNode(g.Root(), hole)
	hole.Opacity = 0 // keep the matte invisible in the output
	sheet := marionette.NewPart("sheet", marionette.NewQuadMesh(40, 40), -1)
	sheet.Masks = []marionette.Mask{{Source: holeID, Mode: marionette.MaskModeDodge}}
	g.AddNode(g.Root(), sheet)

	p := marionette.NewPuppet(g)
	p.Link()
	p.AdvanceFrame(1.0 / 60)
	img := New(64, 64, nil).Render(p.Snapshot())

	if img.NRGBAAt(32, 32).A != 0 {
		t.Error("pixel under the dodge source should be cut out")
	}
	if img.NRGBAAt(32+15, 32).A == 0 {
		t.Error("pixel away from the dodge source should remain")
	}
}

func TestRenderCompositeGroups(t *testing.T) {
	g := marionette.NewGraph()
	comp, _ := g.AddNode(g.Root(), marionette.NewComposite("grp"))
	inner := marionette.NewPart("inner", marionette.NewQuadMesh(10, 10), -1)
	inner.Tint = marionette.Color{R: 0, G: 1, B: 0, A: 1}
	g.AddNode(comp, inner)

	p := marionette.NewPuppet(g)
	p.Link()
	p.AdvanceFrame(1.0 / 60)
	img := New(32, 32, nil).Render(p.Snapshot())

	if img.NRGBAAt(16, 16) != (color.NRGBA{0, 255, 0, 255}) {
		t.Errorf("composite output = %+v, want green", img.NRGBAAt(16, 16))
	}
}

// --- Rasterizer ---

func TestRasterTriangleCoverage(t *testing.T) {
	covered := map[[2]int]bool{}
	rasterTriangle(16, 16, 1, 1, 13, 1, 1, 13, func(x, y int, wa, wb, wc float64) {
		covered[[2]int{x, y}] = true
		if s := wa + wb + wc; math.Abs(s-1) > 1e-9 {
			t.Fatalf("weights at (%d,%d) sum to %v", x, y, s)
		}
	})
	if !covered[[2]int{2, 2}] {
		t.Error("interior pixel (2,2) not covered")
	}
	if covered[[2]int{14, 14}] {
		t.Error("pixel outside the hypotenuse covered")
	}
	if len(covered) == 0 {
		t.Fatal("no pixels covered")
	}
}

func TestRasterTriangleWindingIndependent(t *testing.T) {
	count := func(ax, ay, bx, by, cx, cy float64) int {
		n := 0
		rasterTriangle(16, 16, ax, ay, bx, by, cx, cy, func(x, y int, wa, wb, wc float64) { n++ })
		return n
	}
	cw := count(1, 1, 13, 1, 1, 13)
	ccw := count(1, 1, 1, 13, 13, 1)
	if cw == 0 || cw != ccw {
		t.Errorf("coverage differs by winding: %d vs %d", cw, ccw)
	}
}

func TestRasterDegenerateTriangle(t *testing.T) {
	rasterTriangle(16, 16, 2, 2, 8, 8, 14, 14, func(x, y int, wa, wb, wc float64) {
		t.Fatal("degenerate triangle should cover nothing")
	})
}

// --- Blend math ---

func TestBlendPixelModes(t *testing.T) {
	dst := rgba{0.5, 0.5, 0.5, 1}

	out := blendPixel(marionette.BlendNormal, dst, rgba{1, 0, 0, 1})
	if out.r != 1 || out.g != 0 || out.a != 1 {
		t.Errorf("normal = %+v", out)
	}

	out = blendPixel(marionette.BlendMultiply, dst, rgba{0.5, 1, 1, 1})
	approxF(t, out.r, 0.25)
	approxF(t, out.g, 0.5)

	out = blendPixel(marionette.BlendScreen, dst, rgba{0.5, 0, 0, 1})
	approxF(t, out.r, 0.75)
	approxF(t, out.g, 0.5)

	out = blendPixel(marionette.BlendLinearDodge, dst, rgba{0.7, 0.7, 0.7, 1})
	approxF(t, out.r, 1)

	// ClipToLower keeps only where the destination already has coverage.
	empty := rgba{}
	out = blendPixel(marionette.BlendClipToLower, empty, rgba{1, 1, 1, 1})
	approxF(t, out.a, 0)

	// SliceFromLower keeps only where the destination is empty.
	out = blendPixel(marionette.BlendSliceFromLower, dst, rgba{1, 1, 1, 1})
	approxF(t, out.a, 1)
	approxF(t, out.r, 0.5) // source alpha went to zero, dst wins
}

func approxF(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("got %v, want %v", got, want)
	}
}
