package postfx

import (
	"image"
	"math"

	"linux-aurora/internal/utils"
)

// Processor applies the post stage on the CPU. Its scratch buffers are
// reused between frames of the same size.
type Processor struct {
	Config Config

	bright, tmp []float32
	out         *image.RGBA
}

func NewProcessor(cfg Config) *Processor {
	return &Processor{Config: cfg}
}

// Apply returns the processed frame. The result is owned by the
// processor and valid until the next call.
func (p *Processor) Apply(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	if p.out == nil || p.out.Bounds() != b {
		p.out = image.NewRGBA(b)
		p.bright = make([]float32, b.Dx()*b.Dy()*3)
		p.tmp = make([]float32, b.Dx()*b.Dy()*3)
	}

	copy(p.out.Pix, src.Pix)
	if p.Config.Bloom.Enabled && p.Config.Bloom.Intensity > 0 {
		p.bloom(p.out)
	}
	if cell := p.Config.Pixelation.Cell(); cell > 1 {
		Pixelate(p.out, cell)
	}
	return p.out
}

func luma(r, g, b float64) float64 {
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func (p *Processor) bloom(img *image.RGBA) {
	cfg := p.Config.Bloom
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := img.PixOffset(x+img.Rect.Min.X, y+img.Rect.Min.Y)
			r := float64(img.Pix[o]) / 255
			g := float64(img.Pix[o+1]) / 255
			bl := float64(img.Pix[o+2]) / 255
			k := utils.Smoothstep(cfg.LuminanceThreshold, cfg.LuminanceThreshold+cfg.LuminanceSmoothing, luma(r, g, bl))
			i := (y*w + x) * 3
			p.bright[i] = float32(r * k)
			p.bright[i+1] = float32(g * k)
			p.bright[i+2] = float32(bl * k)
		}
	}

	radius := cfg.KernelSize.Radius() * float64(h) / 1080
	kernel := gaussian(radius)
	blurPass(p.bright, p.tmp, w, h, kernel, true)
	blurPass(p.tmp, p.bright, w, h, kernel, false)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := img.PixOffset(x+img.Rect.Min.X, y+img.Rect.Min.Y)
			i := (y*w + x) * 3
			for c := 0; c < 3; c++ {
				v := float64(img.Pix[o+c])/255 + float64(p.bright[i+c])*cfg.Intensity
				img.Pix[o+c] = uint8(utils.Clamp(v, 0, 1)*255 + 0.5)
			}
		}
	}
}

// gaussian returns normalised weights for offsets 0..n.
func gaussian(radius float64) []float32 {
	if radius < 0.5 {
		return []float32{1}
	}
	n := int(math.Ceil(radius))
	sigma := radius / 2
	w := make([]float32, n+1)
	var sum float64
	for i := 0; i <= n; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		w[i] = float32(v)
		if i == 0 {
			sum += v
		} else {
			sum += 2 * v
		}
	}
	for i := range w {
		w[i] /= float32(sum)
	}
	return w
}

func blurPass(src, dst []float32, w, h int, kernel []float32, horizontal bool) {
	n := len(kernel) - 1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b float32
			for k := -n; k <= n; k++ {
				sx, sy := x, y
				if horizontal {
					sx = utils.Clamp(x+k, 0, w-1)
				} else {
					sy = utils.Clamp(y+k, 0, h-1)
				}
				wt := kernel[abs(k)]
				i := (sy*w + sx) * 3
				r += src[i] * wt
				g += src[i+1] * wt
				b += src[i+2] * wt
			}
			i := (y*w + x) * 3
			dst[i], dst[i+1], dst[i+2] = r, g, b
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Pixelate replaces each cell x cell block with the colour sampled at its
// centre.
func Pixelate(img *image.RGBA, cell int) {
	b := img.Bounds()
	for y0 := b.Min.Y; y0 < b.Max.Y; y0 += cell {
		for x0 := b.Min.X; x0 < b.Max.X; x0 += cell {
			cx := min(x0+cell/2, b.Max.X-1)
			cy := min(y0+cell/2, b.Max.Y-1)
			so := img.PixOffset(cx, cy)
			var px [4]uint8
			copy(px[:], img.Pix[so:so+4])
			for y := y0; y < min(y0+cell, b.Max.Y); y++ {
				for x := x0; x < min(x0+cell, b.Max.X); x++ {
					o := img.PixOffset(x, y)
					copy(img.Pix[o:o+4], px[:])
				}
			}
		}
	}
}
