package convert

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"linux-aurora/internal/utils"

	"github.com/mauserzjeh/dxt"
	"github.com/pierrec/lz4/v4"
)

// ErrUnsupportedTexture is returned for texture containers or pixel formats
// the decoder does not handle.
var ErrUnsupportedTexture = errors.New("unsupported texture")

// TEX pixel formats as stored in the header.
const (
	texFormatRGBA8888 = 0
	texFormatDXT5     = 4
	texFormatDXT1     = 7
	texFormatRG88     = 8
	texFormatR8       = 9
)

const (
	texMagic     = "TEXV0005"
	texInfoMagic = "TEXI0001"

	// maxTexSize bounds each stored mip dimension.
	maxTexSize = 16384
)

// texReader keeps the first read error so the header can be walked field by
// field and checked once.
type texReader struct {
	r   io.Reader
	err error
}

func (t *texReader) u32() uint32 {
	if t.err != nil {
		return 0
	}
	var v uint32
	t.err = binary.Read(t.r, binary.LittleEndian, &v)
	return v
}

// tag reads an 8 byte magic and its NUL terminator.
func (t *texReader) tag() string {
	if t.err != nil {
		return ""
	}
	b := make([]byte, 9)
	if _, t.err = io.ReadFull(t.r, b); t.err != nil {
		return ""
	}
	return string(bytes.TrimRight(b, "\x00"))
}

func (t *texReader) bytes(n uint32) []byte {
	if t.err != nil {
		return nil
	}
	b := make([]byte, n)
	_, t.err = io.ReadFull(t.r, b)
	return b
}

type texHeader struct {
	Format        uint32
	Width, Height uint32
	Container     string
}

// DecodeTex decodes the first mip of the first image in a TEXV0005 texture.
// The result is cropped to the image size recorded in the header, which
// can be smaller than the power-of-two storage size.
func DecodeTex(r io.Reader) (image.Image, error) {
	tr := &texReader{r: bufio.NewReader(r)}

	if magic := tr.tag(); tr.err == nil && magic != texMagic {
		return nil, fmt.Errorf("%w: magic %q", ErrUnsupportedTexture, magic)
	}
	if info := tr.tag(); tr.err == nil && info != texInfoMagic {
		return nil, fmt.Errorf("%w: info block %q", ErrUnsupportedTexture, info)
	}

	var h texHeader
	h.Format = tr.u32()
	tr.u32() // flags
	tr.u32() // storage width
	tr.u32() // storage height
	h.Width = tr.u32()
	h.Height = tr.u32()
	tr.u32()
	h.Container = tr.tag()
	images := tr.u32()
	if tr.err != nil {
		return nil, fmt.Errorf("read texture header: %w", tr.err)
	}

	switch h.Container {
	case "TEXB0001", "TEXB0002":
	case "TEXB0003":
		tr.u32() // embedded image format
	default:
		return nil, fmt.Errorf("%w: container %q", ErrUnsupportedTexture, h.Container)
	}
	if images == 0 {
		return nil, fmt.Errorf("%w: no images", ErrUnsupportedTexture)
	}

	mips := tr.u32()
	if tr.err == nil && mips == 0 {
		return nil, fmt.Errorf("%w: no mipmaps", ErrUnsupportedTexture)
	}
	w, ht := tr.u32(), tr.u32()
	var compressed bool
	var rawSize uint32
	if h.Container != "TEXB0001" {
		compressed = tr.u32() == 1
		rawSize = tr.u32()
	}
	size := tr.u32()
	if tr.err != nil {
		return nil, fmt.Errorf("read texture header: %w", tr.err)
	}
	if w == 0 || ht == 0 || w > maxTexSize || ht > maxTexSize {
		return nil, fmt.Errorf("%w: mip size %dx%d", ErrUnsupportedTexture, w, ht)
	}
	data := tr.bytes(size)
	if tr.err != nil {
		return nil, fmt.Errorf("read texture data: %w", tr.err)
	}

	utils.Debug("Texture: format %d, %dx%d stored as %dx%d, lz4=%v", h.Format, h.Width, h.Height, w, ht, compressed)

	if compressed {
		out := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, fmt.Errorf("decompress texture: %w", err)
		}
		data = out[:n]
	}

	pix, err := decodePixels(h.Format, data, w, ht)
	if err != nil {
		return nil, err
	}

	img := &image.RGBA{Pix: pix, Stride: int(w) * 4, Rect: image.Rect(0, 0, int(w), int(ht))}
	crop := image.Rect(0, 0, int(min(h.Width, w)), int(min(h.Height, ht)))
	if crop.Empty() || crop == img.Rect {
		return img, nil
	}
	return img.SubImage(crop), nil
}

func decodePixels(format uint32, data []byte, w, h uint32) ([]byte, error) {
	px := uint64(w) * uint64(h)
	blocks := uint64((w+3)/4) * uint64((h+3)/4)
	n := uint64(len(data))

	switch {
	case format == texFormatRGBA8888 && n == px*4:
		return data, nil
	case format == texFormatDXT5 && n >= blocks*16:
		return dxt.DecodeDXT5(data, uint(w), uint(h))
	case format == texFormatDXT1 && n >= blocks*8:
		return dxt.DecodeDXT1(data, uint(w), uint(h))
	case format == texFormatR8 && n == px:
		pix := make([]byte, px*4)
		for i, v := range data {
			pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3] = v, v, v, 255
		}
		return pix, nil
	case format == texFormatRG88 && n == px*2:
		// Luminance in the first byte, opacity in the second. image.RGBA is
		// premultiplied.
		pix := make([]byte, px*4)
		for i := range int(px) {
			a := data[i*2+1]
			l := byte(uint16(data[i*2]) * uint16(a) / 255)
			pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3] = l, l, l, a
		}
		return pix, nil
	}
	return nil, fmt.Errorf("%w: format %d with %d bytes for %dx%d", ErrUnsupportedTexture, format, n, w, h)
}

// DecodeImage decodes a backdrop held in memory. name only picks the
// decoder: .tex goes through DecodeTex, anything else through the
// registered stdlib image decoders.
func DecodeImage(name string, data []byte) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(name), ".tex") {
		return DecodeTex(bytes.NewReader(data))
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return img, nil
}

// LoadImage reads and decodes a backdrop from disk.
func LoadImage(path string) (image.Image, error) {
	utils.Debug("Loading image: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := DecodeImage(path, data)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	utils.Info("Loaded image %s (%dx%d)", filepath.Base(path), b.Dx(), b.Dy())
	return img, nil
}
