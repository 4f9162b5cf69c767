// Package engine runs the aurora: it owns the layers and their device
// resources, advances them once per scheduled frame and hands each
// composed pass to a Device.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"linux-aurora/internal/geometry"
	"linux-aurora/internal/particle"
	"linux-aurora/internal/utils"
)

var (
	ErrAlreadyMounted     = errors.New("engine already mounted")
	ErrNotMounted         = errors.New("engine not mounted")
	ErrClosed             = errors.New("engine was unmounted")
	ErrResourceAllocation = errors.New("resource allocation failed")
)

type State int

const (
	Unmounted State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Unmounted:
		return "unmounted"
	case Running:
		return "running"
	}
	return "unknown"
}

// Listener receives host surface events while the engine is mounted.
type Listener interface {
	Resized(s geometry.Surface)
	Scrolled(offset float64)
}

// Host is the container the engine mounts into. Enter applies host-wide
// effects for the lifetime of the mount and returns their undo. Subscribe
// registers l for surface events and returns the unsubscribe func.
type Host interface {
	Enter() (exit func())
	Subscribe(l Listener) (cancel func())
}

type Stats struct {
	Ticks         uint64
	Draws         uint64
	SkippedFrames uint64
	DeferredTicks uint64
}

type Option func(*Engine)

// WithSink receives every rendered frame. Present runs inside the tick and
// must not call back into the engine.
func WithSink(s FrameSink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithFatalHandler is told about failures that tear the engine down
// outside a direct call, such as a resize event delivered by the host.
func WithFatalHandler(fn func(error)) Option {
	return func(e *Engine) { e.onFatal = fn }
}

type Engine struct {
	dev     Device
	sched   Scheduler
	cfg     Config
	sink    FrameSink
	onFatal func(error)

	scroll *ScrollMapper

	// mu serialises ticks against mount, resize and unmount.
	mu         sync.Mutex
	state      State
	closed     bool
	host       Host
	exitHost   func()
	unsub      func()
	surface    geometry.Surface
	viewport   geometry.Viewport
	clock      Clock
	compositor Compositor
	program    Resource
	layers     []*Layer
	backdrop   Resource
	dust       *particle.Cloud
	dustPoints Resource
	seq        uint64

	frameMu sync.Mutex
	live    bool
	frameID FrameID

	ticks, draws, skipped, deferred atomic.Uint64
}

func New(dev Device, sched Scheduler, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		dev:    dev,
		sched:  sched,
		cfg:    cfg,
		scroll: NewScrollMapper(cfg.ScrollFactor),
		compositor: Compositor{
			Camera:      cfg.Camera,
			Clear:       cfg.ClearColor,
			BackdropFit: cfg.BackdropFit,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Stats() Stats {
	return Stats{
		Ticks:         e.ticks.Load(),
		Draws:         e.draws.Load(),
		SkippedFrames: e.skipped.Load(),
		DeferredTicks: e.deferred.Load(),
	}
}

func (e *Engine) Scroll() *ScrollMapper {
	return e.scroll
}

func (e *Engine) Viewport() geometry.Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewport
}

// Layers returns the live layers. Callers must not hold on to them across
// ticks on another goroutine.
func (e *Engine) Layers() []*Layer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layers
}

// Mount allocates every resource, registers with host and schedules the
// first tick. The engine cannot be mounted again after Unmount.
func (e *Engine) Mount(host Host, s geometry.Surface) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.state == Running:
		return ErrAlreadyMounted
	case e.closed:
		return ErrClosed
	}

	if err := e.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid engine config: %w", err)
	}

	if err := e.allocateLocked(s); err != nil {
		e.releaseLocked()
		e.closed = true
		return err
	}

	e.state = Running
	e.host = host
	if host != nil {
		e.exitHost = host.Enter()
		e.unsub = host.Subscribe(hostListener{e})
	}
	utils.Info("Engine: mounted %d layers at %dx%d (viewport %.2fx%.2f)",
		len(e.layers), s.Width, s.Height, e.viewport.Width, e.viewport.Height)

	e.frameMu.Lock()
	e.live = true
	e.frameMu.Unlock()
	e.schedule()
	return nil
}

func (e *Engine) allocateLocked(s geometry.Surface) error {
	prog, err := e.dev.CreateProgram(e.cfg.Params)
	if err != nil {
		return fmt.Errorf("%w: program: %w", ErrResourceAllocation, err)
	}
	e.program = prog

	e.layers = make([]*Layer, len(e.cfg.Layers))
	for i, spec := range e.cfg.Layers {
		e.layers[i] = NewLayer(i, spec, e.cfg.Base)
	}

	if e.cfg.Backdrop != nil {
		tex, err := e.dev.CreateTexture(e.cfg.Backdrop)
		if err != nil {
			return fmt.Errorf("%w: backdrop: %w", ErrResourceAllocation, err)
		}
		e.backdrop = tex
	}

	if e.cfg.Dust != nil && e.cfg.Dust.Count > 0 {
		cloud, err := particle.NewCloud(*e.cfg.Dust)
		if err != nil {
			return err
		}
		pts, err := e.dev.CreatePoints(cloud.Positions())
		if err != nil {
			return fmt.Errorf("%w: dust: %w", ErrResourceAllocation, err)
		}
		e.dust, e.dustPoints = cloud, pts
	}

	return e.rebuildLocked(s)
}

// rebuildLocked replaces every layer geometry for surface s. An empty
// surface leaves the layers without geometry; ticks skip drawing until a
// valid size arrives.
func (e *Engine) rebuildLocked(s geometry.Surface) error {
	for _, l := range e.layers {
		l.releaseGeometry()
	}

	e.surface = s
	e.viewport = e.cfg.Camera.Viewport(s)
	if !e.viewport.Valid() {
		utils.Debug("Engine: surface %dx%d has no area, drawing paused", s.Width, s.Height)
		return nil
	}

	mesh, err := geometry.NewGrid(e.viewport, e.cfg.Segments)
	if err != nil {
		return err
	}
	for i, l := range e.layers {
		g, err := e.dev.CreateGeometry(mesh)
		if err != nil {
			return fmt.Errorf("%w: layer %d geometry: %w", ErrResourceAllocation, i, err)
		}
		l.geometry = g
	}
	return nil
}

// OnResize rebuilds all layer geometry for the new surface before the next
// tick can run. An allocation failure unmounts the engine.
func (e *Engine) OnResize(s geometry.Surface) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Running {
		return ErrNotMounted
	}
	if s == e.surface {
		return nil
	}

	if err := e.rebuildLocked(s); err != nil {
		utils.Error("Engine: resize to %dx%d failed: %v", s.Width, s.Height, err)
		e.teardownLocked()
		return err
	}
	utils.Debug("Engine: resized to %dx%d", s.Width, s.Height)
	return nil
}

// OnScroll records the latest scroll offset. Safe from any goroutine.
func (e *Engine) OnScroll(offset float64) {
	e.scroll.Record(offset)
}

// Unmount stops scheduling, releases every resource and deregisters from
// the host. Calling it again does nothing.
func (e *Engine) Unmount() {
	e.cancel()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Running {
		return
	}
	e.teardownLocked()
	utils.Info("Engine: unmounted after %d ticks", e.ticks.Load())
}

func (e *Engine) teardownLocked() {
	e.cancel()
	e.releaseLocked()
	if e.unsub != nil {
		e.unsub()
		e.unsub = nil
	}
	if e.exitHost != nil {
		e.exitHost()
		e.exitHost = nil
	}
	e.host = nil
	e.state = Unmounted
	e.closed = true
}

func (e *Engine) releaseLocked() {
	for _, l := range e.layers {
		l.releaseGeometry()
	}
	if e.dustPoints != nil {
		e.dustPoints.Release()
		e.dustPoints = nil
	}
	if e.backdrop != nil {
		e.backdrop.Release()
		e.backdrop = nil
	}
	if e.program != nil {
		e.program.Release()
		e.program = nil
	}
}

func (e *Engine) schedule() {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()
	if e.live {
		e.frameID = e.sched.RequestFrame(e.tick)
	}
}

func (e *Engine) cancel() {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()
	if e.live {
		e.sched.CancelFrame(e.frameID)
		e.live = false
	}
}

// tick is one frame step: advance the clock, update every layer, sample
// the scroll offset, draw, then request the next frame.
func (e *Engine) tick(now time.Duration) {
	if !e.mu.TryLock() {
		// a resize is in flight; try again next frame
		e.deferred.Add(1)
		e.schedule()
		return
	}

	if e.state != Running {
		e.mu.Unlock()
		return
	}

	elapsed := e.clock.Advance(now)
	for _, l := range e.layers {
		l.Update(elapsed, e.cfg.Palette)
	}
	if e.dust != nil {
		e.dust.Update(elapsed)
	}
	e.ticks.Add(1)

	if e.viewport.Valid() {
		e.seq++
		pass := e.compositor.compose(sceneState{
			seq:        e.seq,
			elapsed:    elapsed,
			surface:    e.surface,
			cameraY:    e.scroll.CameraY(),
			program:    e.program,
			layers:     e.layers,
			backdrop:   e.backdrop,
			dust:       e.dust,
			dustPoints: e.dustPoints,
		})
		frame := e.dev.Render(pass)
		e.draws.Add(1)
		if e.sink != nil {
			e.sink.Present(frame)
		}
	} else {
		e.skipped.Add(1)
	}
	e.mu.Unlock()

	e.schedule()
}

func (e *Engine) fatal(err error) {
	utils.Error("Engine: fatal: %v", err)
	if e.onFatal != nil {
		e.onFatal(err)
	}
}

type hostListener struct {
	e *Engine
}

func (l hostListener) Resized(s geometry.Surface) {
	if err := l.e.OnResize(s); err != nil && !errors.Is(err, ErrNotMounted) {
		l.e.fatal(err)
	}
}

func (l hostListener) Scrolled(offset float64) {
	l.e.OnScroll(offset)
}
