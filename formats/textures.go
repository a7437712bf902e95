package formats

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/ftrvxmtrx/tga"
)

// DecodeTexture decodes an embedded texture blob into pixels.
func DecodeTexture(t Texture) (image.Image, error) {
	switch t.Encoding {
	case TexturePNG:
		img, err := png.Decode(bytes.NewReader(t.Data))
		if err != nil {
			return nil, fmt.Errorf("formats: decoding PNG texture: %w", err)
		}
		return img, nil
	case TextureTGA:
		img, err := tga.Decode(bytes.NewReader(t.Data))
		if err != nil {
			return nil, fmt.Errorf("formats: decoding TGA texture: %w", err)
		}
		return img, nil
	}
	return nil, invalid("textures", "unknown texture encoding %d", t.Encoding)
}

// DecodeTextures decodes every texture of a file, in slot order.
func DecodeTextures(f *File) ([]image.Image, error) {
	imgs := make([]image.Image, len(f.Textures))
	for i, t := range f.Textures {
		img, err := DecodeTexture(t)
		if err != nil {
			return nil, fmt.Errorf("texture %d: %w", i, err)
		}
		imgs[i] = img
	}
	return imgs, nil
}

// EncodePNGTexture encodes pixels as a PNG texture blob.
func EncodePNGTexture(img image.Image) (Texture, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Texture{}, fmt.Errorf("formats: encoding PNG texture: %w", err)
	}
	return Texture{Encoding: TexturePNG, Data: buf.Bytes()}, nil
}
