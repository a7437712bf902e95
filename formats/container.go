package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/phanxgames/marionette"
)

// Binary container layout, all lengths big-endian uint32:
//
//	"MRNPPET\0"
//	u32 payload length, JSON document
//	optional "TEX_SECT": u32 texture count, then per texture
//	    u32 data length, u8 encoding, data
//	optional "EXT_SECT": u32 entry count, then per entry
//	    u32 name length, name, u32 payload length, payload
const (
	containerMagic = "MRNPPET\x00"
	texSection     = "TEX_SECT"
	extSection     = "EXT_SECT"
)

// TextureEncoding identifies the codec of an embedded texture blob.
type TextureEncoding uint8

const (
	TexturePNG TextureEncoding = 0
	TextureTGA TextureEncoding = 1
)

// Texture is one embedded texture blob, still encoded. DecodeTexture turns
// it into pixels.
type Texture struct {
	Encoding TextureEncoding
	Data     []byte
}

// File is a decoded container: the document, its texture blobs in slot
// order, and any vendor extension payloads keyed by name.
type File struct {
	Document *Document
	Textures []Texture
	Vendor   map[string][]byte
}

// maxSectionLen bounds any single declared length so a corrupt header
// cannot cause a giant allocation before the read fails.
const maxSectionLen = 1 << 30

// Decode reads a binary puppet container.
func Decode(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)

	head := make([]byte, len(containerMagic))
	if _, err := io.ReadFull(br, head); err != nil {
		return nil, fmt.Errorf("formats: reading magic: %w", err)
	}
	if string(head) != containerMagic {
		return nil, invalid("container", "bad magic %q", head)
	}

	payload, err := readBlock(br, "payload")
	if err != nil {
		return nil, err
	}
	f := &File{Document: &Document{}}
	if err := json.Unmarshal(payload, f.Document); err != nil {
		return nil, invalid("payload", "malformed JSON: %v", err)
	}

	for {
		tag := make([]byte, 8)
		if _, err := io.ReadFull(br, tag); err != nil {
			if err == io.EOF {
				return f, nil
			}
			return nil, fmt.Errorf("formats: reading section tag: %w", err)
		}
		switch string(tag) {
		case texSection:
			if err := decodeTextures(br, f); err != nil {
				return nil, err
			}
		case extSection:
			if err := decodeVendor(br, f); err != nil {
				return nil, err
			}
		default:
			return nil, invalid("container", "unknown section %q", tag)
		}
	}
}

func decodeTextures(r io.Reader, f *File) error {
	count, err := readLen(r, "texture count")
	if err != nil {
		return err
	}
	f.Textures = make([]Texture, 0, count)
	for i := uint32(0); i < count; i++ {
		n, err := readLen(r, "texture length")
		if err != nil {
			return err
		}
		var enc [1]byte
		if _, err := io.ReadFull(r, enc[:]); err != nil {
			return fmt.Errorf("formats: reading texture encoding: %w", err)
		}
		data := make([]byte, n)
		if _, err := io.ReadFull(r, data); err != nil {
			return fmt.Errorf("formats: reading texture %d: %w", i, err)
		}
		f.Textures = append(f.Textures, Texture{Encoding: TextureEncoding(enc[0]), Data: data})
	}
	return nil
}

func decodeVendor(r io.Reader, f *File) error {
	count, err := readLen(r, "vendor entry count")
	if err != nil {
		return err
	}
	f.Vendor = make(map[string][]byte, count)
	for i := uint32(0); i < count; i++ {
		name, err := readBlock(r, "vendor name")
		if err != nil {
			return err
		}
		payload, err := readBlock(r, "vendor payload")
		if err != nil {
			return err
		}
		f.Vendor[string(name)] = payload
	}
	return nil
}

func readLen(r io.Reader, what string) (uint32, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return 0, fmt.Errorf("formats: reading %s: %w", what, err)
	}
	if n > maxSectionLen {
		return 0, invalid("container", "%s %d exceeds limit", what, n)
	}
	return n, nil
}

func readBlock(r io.Reader, what string) ([]byte, error) {
	n, err := readLen(r, what+" length")
	if err != nil {
		return nil, err
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("formats: reading %s: %w", what, err)
	}
	return data, nil
}

// Encode writes f as a binary puppet container.
func Encode(w io.Writer, f *File) error {
	bw := bufio.NewWriter(w)

	payload, err := json.Marshal(f.Document)
	if err != nil {
		return fmt.Errorf("formats: encoding payload: %w", err)
	}
	bw.WriteString(containerMagic)
	writeLen(bw, uint32(len(payload)))
	bw.Write(payload)

	if len(f.Textures) > 0 {
		bw.WriteString(texSection)
		writeLen(bw, uint32(len(f.Textures)))
		for _, t := range f.Textures {
			writeLen(bw, uint32(len(t.Data)))
			bw.WriteByte(byte(t.Encoding))
			bw.Write(t.Data)
		}
	}
	if len(f.Vendor) > 0 {
		bw.WriteString(extSection)
		writeLen(bw, uint32(len(f.Vendor)))
		for name, payload := range f.Vendor {
			writeLen(bw, uint32(len(name)))
			bw.WriteString(name)
			writeLen(bw, uint32(len(payload)))
			bw.Write(payload)
		}
	}
	return bw.Flush()
}

func writeLen(w *bufio.Writer, n uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], n)
	w.Write(buf[:])
}

// DecodeFile loads a puppet source from disk, routing on the extension:
// .yaml/.yml manifests, .json bare documents, anything else the binary
// container.
func DecodeFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		doc, err := DecodeManifest(data)
		if err != nil {
			return nil, err
		}
		return &File{Document: doc}, nil
	case ".json":
		doc := &Document{}
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, invalid("payload", "malformed JSON: %v", err)
		}
		return &File{Document: doc}, nil
	default:
		return Decode(bytes.NewReader(data))
	}
}

// BuildFile is the one-call load path: decode, validate, link.
func BuildFile(path string) (*marionette.Puppet, *File, error) {
	f, err := DecodeFile(path)
	if err != nil {
		return nil, nil, err
	}
	p, err := Build(f.Document)
	if err != nil {
		return nil, nil, err
	}
	return p, f, nil
}
