// Puppetsnap loads a puppet file, poses it, and writes a single rendered
// frame to a PNG or WebP image. It runs headless through the software
// renderer, which makes it suitable for thumbnails and golden images in CI.
//
// Usage:
//
//	puppetsnap -in model.mrnp -out snap.webp -size 512x512 -set head.yaw=0.3
//
// Parameters are set with repeated -set flags as name=x or name=x,y for
// two-axis parameters. The -settle flag advances extra frames beforehand so
// physics-driven nodes come to rest in the output.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"

	"github.com/phanxgames/marionette"
	"github.com/phanxgames/marionette/formats"
	"github.com/phanxgames/marionette/render/software"
)

type poseFlag struct {
	names  []string
	values []marionette.Vec2
}

func (f *poseFlag) String() string { return fmt.Sprint(f.names) }

func (f *poseFlag) Set(s string) error {
	name, val, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	var v marionette.Vec2
	xs, ys, vec2 := strings.Cut(val, ",")
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return fmt.Errorf("bad value in %q: %w", s, err)
	}
	v.X = x
	if vec2 {
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			return fmt.Errorf("bad value in %q: %w", s, err)
		}
		v.Y = y
	}
	f.names = append(f.names, name)
	f.values = append(f.values, v)
	return nil
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("puppetsnap: ")

	var pose poseFlag
	in := flag.String("in", "", "puppet file (.mrnp, .json, or .yaml manifest)")
	out := flag.String("out", "snap.png", "output image (.png or .webp)")
	size := flag.String("size", "512x512", "output dimensions as WxH")
	settle := flag.Int("settle", 0, "frames to advance before the snapshot (lets physics settle)")
	dt := flag.Float64("dt", 1.0/60.0, "seconds per settle frame")
	supersample := flag.Int("supersample", 2, "render at N times the output size, then downscale")
	bg := flag.String("bg", "", "background color as RRGGBB hex (default transparent)")
	flag.Var(&pose, "set", "parameter value as name=x or name=x,y (repeatable)")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}
	w, h, err := parseSize(*size)
	if err != nil {
		log.Fatal(err)
	}
	if *supersample < 1 {
		*supersample = 1
	}

	puppet, file, err := formats.BuildFile(*in)
	if err != nil {
		log.Fatalf("load %s: %v", *in, err)
	}
	textures, err := formats.DecodeTextures(file)
	if err != nil {
		log.Fatalf("decode textures: %v", err)
	}

	for i, name := range pose.names {
		if err := puppet.SetParameter(name, pose.values[i]); err != nil {
			log.Fatalf("set %s: %v", name, err)
		}
	}
	for i := 0; i < *settle; i++ {
		puppet.AdvanceFrame(*dt)
		puppet.Snapshot()
	}
	puppet.AdvanceFrame(*dt)
	snap := puppet.Snapshot()

	r := software.New(w**supersample, h**supersample, textures)
	if *bg != "" {
		c, err := parseHexColor(*bg)
		if err != nil {
			log.Fatal(err)
		}
		r.Background = c
	}
	img := r.Render(snap)
	if *supersample > 1 {
		small := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(small, small.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = small
	}

	if err := writeImage(*out, img); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s (%dx%d)", *out, w, h)
}

func parseSize(s string) (w, h int, err error) {
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("bad -size %q, want WxH", s)
	}
	w, err = strconv.Atoi(ws)
	if err == nil {
		h, err = strconv.Atoi(hs)
	}
	if err != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("bad -size %q, want WxH", s)
	}
	return w, h, nil
}

func parseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("bad -bg %q, want RRGGBB", s)
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("bad -bg %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
}

func writeImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".webp":
		err = nativewebp.Encode(f, img, nil)
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
