// Package software renders engine passes on the CPU into an RGBA frame.
// It evaluates the same vertex and fragment stages the GPU program runs.
package software

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"

	"linux-aurora/internal/engine"
	"linux-aurora/internal/geometry"
	"linux-aurora/internal/shader"
	"linux-aurora/internal/utils"
)

var ErrOutOfMemory = errors.New("software device memory limit reached")

type Option func(*Device)

// WithMemoryLimit caps the bytes held by live resources. Zero means no
// limit.
func WithMemoryLimit(bytes int) Option {
	return func(d *Device) { d.limit = bytes }
}

type Device struct {
	mu    sync.Mutex
	limit int
	used  int
	live  map[string]int

	target *image.RGBA
	accum  []float64
}

func New(opts ...Option) *Device {
	d := &Device{live: map[string]int{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type resource struct {
	dev      *Device
	kind     string
	bytes    int
	released bool
}

func (r *resource) Release() {
	r.dev.mu.Lock()
	defer r.dev.mu.Unlock()
	if r.released {
		return
	}
	r.released = true
	r.dev.used -= r.bytes
	r.dev.live[r.kind]--
}

func (d *Device) reserve(kind string, bytes int) (resource, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.limit > 0 && d.used+bytes > d.limit {
		return resource{}, fmt.Errorf("%w: %s needs %d bytes, %d of %d in use", ErrOutOfMemory, kind, bytes, d.used, d.limit)
	}
	d.used += bytes
	d.live[kind]++
	return resource{dev: d, kind: kind, bytes: bytes}, nil
}

// Live reports the number of live resources of each kind.
func (d *Device) Live() map[string]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]int, len(d.live))
	for k, v := range d.live {
		out[k] = v
	}
	return out
}

type program struct {
	resource
	params shader.Params
}

type mesh struct {
	resource
	positions []float32
	uvs       []float32
	indices   []uint32
}

type texture struct {
	resource
	img *image.RGBA
}

type points struct {
	resource
	positions []float32
}

func (d *Device) CreateProgram(params shader.Params) (engine.Resource, error) {
	r, err := d.reserve("program", 0)
	if err != nil {
		return nil, err
	}
	return &program{resource: r, params: params}, nil
}

func (d *Device) CreateGeometry(m *geometry.Mesh) (engine.Resource, error) {
	bytes := (len(m.Positions) + len(m.UVs) + len(m.Indices)) * 4
	r, err := d.reserve("geometry", bytes)
	if err != nil {
		return nil, err
	}
	return &mesh{
		resource:  r,
		positions: append([]float32(nil), m.Positions...),
		uvs:       append([]float32(nil), m.UVs...),
		indices:   append([]uint32(nil), m.Indices...),
	}, nil
}

func (d *Device) CreateTexture(img image.Image) (engine.Resource, error) {
	b := img.Bounds()
	r, err := d.reserve("texture", b.Dx()*b.Dy()*4)
	if err != nil {
		return nil, err
	}
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return &texture{resource: r, img: rgba}, nil
}

func (d *Device) CreatePoints(positions []float32) (engine.Resource, error) {
	r, err := d.reserve("points", len(positions)*4)
	if err != nil {
		return nil, err
	}
	return &points{resource: r, positions: append([]float32(nil), positions...)}, nil
}

// Render draws the pass. The returned image is reused by the next Render
// call of the same size.
func (d *Device) Render(pass *engine.Pass) engine.Frame {
	s := pass.View.Surface
	frame := engine.Frame{Seq: pass.Seq, Elapsed: pass.Elapsed, Surface: s}
	if s.Empty() {
		return frame
	}

	if d.target == nil || d.target.Rect.Dx() != s.Width || d.target.Rect.Dy() != s.Height {
		utils.Debug("Software: allocating %dx%d target", s.Width, s.Height)
		d.target = image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
		d.accum = make([]float64, s.Width*s.Height*3)
	}

	for i := 0; i < len(d.accum); i += 3 {
		d.accum[i] = pass.Clear.R
		d.accum[i+1] = pass.Clear.G
		d.accum[i+2] = pass.Clear.B
	}

	cam := newProjector(pass.View)

	if pass.Backdrop != nil {
		if tex, ok := pass.Backdrop.Texture.(*texture); ok {
			d.drawBackdrop(tex.img, pass.Backdrop.Fit, s)
		}
	}

	for i := range pass.Layers {
		l := &pass.Layers[i]
		prog, ok1 := l.Program.(*program)
		m, ok2 := l.Geometry.(*mesh)
		if !ok1 || !ok2 {
			continue
		}
		d.drawLayer(cam, prog.params, m, l)
	}

	if pass.Dust != nil {
		if pts, ok := pass.Dust.Points.(*points); ok {
			d.drawDust(cam, pts.positions, pass.Dust)
		}
	}

	d.resolve()
	frame.Image = d.target
	return frame
}

func (d *Device) resolve() {
	pix := d.target.Pix
	for i, j := 0, 0; i < len(d.accum); i, j = i+3, j+4 {
		pix[j] = uint8(utils.Clamp(d.accum[i], 0, 1)*255 + 0.5)
		pix[j+1] = uint8(utils.Clamp(d.accum[i+1], 0, 1)*255 + 0.5)
		pix[j+2] = uint8(utils.Clamp(d.accum[i+2], 0, 1)*255 + 0.5)
		pix[j+3] = 255
	}
}
