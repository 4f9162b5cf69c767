package engine

import (
	"errors"
	"image"
	"sync"

	"linux-aurora/internal/geometry"
	"linux-aurora/internal/shader"
)

// fakeDevice counts live resources per kind and records every pass.
type fakeDevice struct {
	mu       sync.Mutex
	live     map[string]int
	created  map[string]int
	meshes   []*geometry.Mesh
	geomLive map[geometry.Viewport]int
	passes   []*Pass
	failKind string
	failAt   int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		live:     map[string]int{},
		created:  map[string]int{},
		geomLive: map[geometry.Viewport]int{},
	}
}

var errFakeOOM = errors.New("out of video memory")

type fakeResource struct {
	dev      *fakeDevice
	kind     string
	viewport geometry.Viewport
	released bool
}

func (r *fakeResource) Release() {
	r.dev.mu.Lock()
	defer r.dev.mu.Unlock()
	if r.released {
		panic("double release of " + r.kind)
	}
	r.released = true
	r.dev.live[r.kind]--
	if r.kind == "geometry" {
		r.dev.geomLive[r.viewport]--
	}
}

func (d *fakeDevice) alloc(kind string) (*fakeResource, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.created[kind]++
	if kind == d.failKind && d.created[kind] >= d.failAt {
		return nil, errFakeOOM
	}
	d.live[kind]++
	return &fakeResource{dev: d, kind: kind}, nil
}

func (d *fakeDevice) CreateProgram(shader.Params) (Resource, error) {
	return d.alloc("program")
}

func (d *fakeDevice) CreateGeometry(m *geometry.Mesh) (Resource, error) {
	r, err := d.alloc("geometry")
	if err != nil {
		return nil, err
	}
	r.viewport = m.Viewport
	d.mu.Lock()
	d.meshes = append(d.meshes, m)
	d.geomLive[m.Viewport]++
	d.mu.Unlock()
	return r, nil
}

func (d *fakeDevice) CreateTexture(image.Image) (Resource, error) {
	return d.alloc("texture")
}

func (d *fakeDevice) CreatePoints([]float32) (Resource, error) {
	return d.alloc("points")
}

func (d *fakeDevice) Render(p *Pass) Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.passes = append(d.passes, p)
	return Frame{Seq: p.Seq, Elapsed: p.Elapsed, Surface: p.View.Surface}
}

func (d *fakeDevice) liveCount(kind string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live[kind]
}

func (d *fakeDevice) liveFor(vp geometry.Viewport) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.geomLive[vp]
}

func (d *fakeDevice) passCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.passes)
}

// fakeHost records enter/exit and subscription balance.
type fakeHost struct {
	entered, exited int
	listeners       []Listener
	subscribed      int
}

func (h *fakeHost) Enter() func() {
	h.entered++
	return func() { h.exited++ }
}

func (h *fakeHost) Subscribe(l Listener) func() {
	h.subscribed++
	h.listeners = append(h.listeners, l)
	return func() {
		h.subscribed--
		for i, x := range h.listeners {
			if x == l {
				h.listeners = append(h.listeners[:i], h.listeners[i+1:]...)
				break
			}
		}
	}
}

func (h *fakeHost) resize(s geometry.Surface) {
	for _, l := range h.listeners {
		l.Resized(s)
	}
}

func (h *fakeHost) scroll(offset float64) {
	for _, l := range h.listeners {
		l.Scrolled(offset)
	}
}

// testConfig keeps meshes small so tests stay fast.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Segments = 8
	return cfg
}
