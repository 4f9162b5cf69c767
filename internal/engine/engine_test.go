package engine

import (
	"errors"
	"image"
	"math"
	"testing"
	"time"

	"linux-aurora/internal/geometry"
	"linux-aurora/internal/particle"
	"linux-aurora/internal/shader"
)

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func mountTest(t *testing.T, cfg Config, s geometry.Surface, opts ...Option) (*Engine, *fakeDevice, *FrameQueue, *fakeHost) {
	t.Helper()
	dev := newFakeDevice()
	q := NewFrameQueue()
	host := &fakeHost{}
	e := New(dev, q, cfg, opts...)
	if err := e.Mount(host, s); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	return e, dev, q, host
}

func TestMountSchedulesFirstTick(t *testing.T) {
	e, dev, q, host := mountTest(t, testConfig(), geometry.Surface{Width: 800, Height: 600})
	defer e.Unmount()

	if e.State() != Running {
		t.Fatalf("State() = %v, want running", e.State())
	}
	if q.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", q.Pending())
	}
	if host.entered != 1 || host.subscribed != 1 {
		t.Errorf("host entered %d subscribed %d, want 1 and 1", host.entered, host.subscribed)
	}
	if got := dev.liveCount("geometry"); got != len(DefaultLayers) {
		t.Errorf("live geometries = %d, want %d", got, len(DefaultLayers))
	}
	if got := dev.liveCount("program"); got != 1 {
		t.Errorf("live programs = %d, want 1", got)
	}
}

func TestMountTwiceRejected(t *testing.T) {
	e, dev, _, host := mountTest(t, testConfig(), geometry.Surface{Width: 800, Height: 600})
	defer e.Unmount()

	if err := e.Mount(host, geometry.Surface{Width: 800, Height: 600}); !errors.Is(err, ErrAlreadyMounted) {
		t.Fatalf("second Mount() error = %v, want ErrAlreadyMounted", err)
	}
	if host.subscribed != 1 || host.entered != 1 {
		t.Errorf("second Mount registered again: subscribed %d entered %d", host.subscribed, host.entered)
	}
	if got := dev.liveCount("geometry"); got != len(DefaultLayers) {
		t.Errorf("live geometries = %d after duplicate mount, want %d", got, len(DefaultLayers))
	}
}

func TestEndToEndDrift(t *testing.T) {
	e, _, q, _ := mountTest(t, testConfig(), geometry.Surface{Width: 800, Height: 600})
	defer e.Unmount()

	q.Dispatch(0)
	q.Dispatch(seconds(10))

	for i, l := range e.Layers() {
		s := l.Spec
		want := math.Sin(10*s.DriftFrequency+s.PhaseOffset) * s.DriftAmplitude
		if math.Abs(l.Transform.PositionY-want) > 1e-9 {
			t.Errorf("layer %d PositionY = %v, want %v", i, l.Transform.PositionY, want)
		}
		wantTime := 10*TimeScale + float64(i)*LayerTimeStagger
		if math.Abs(l.Uniforms.Time-wantTime) > 1e-9 {
			t.Errorf("layer %d Time = %v, want %v", i, l.Uniforms.Time, wantTime)
		}
	}
}

func TestScrollMovesCamera(t *testing.T) {
	e, dev, q, host := mountTest(t, testConfig(), geometry.Surface{Width: 800, Height: 600})
	defer e.Unmount()

	host.scroll(100)
	host.scroll(500) // coalesces, last write wins
	q.Dispatch(0)

	if dev.passCount() != 1 {
		t.Fatalf("passes = %d, want 1", dev.passCount())
	}
	if got := dev.passes[0].View.Y; math.Abs(got+2.5) > 1e-12 {
		t.Errorf("camera Y = %v, want -2.5", got)
	}
}

func TestPassOrdersLayersFarToNear(t *testing.T) {
	e, dev, q, _ := mountTest(t, testConfig(), geometry.Surface{Width: 800, Height: 600})
	defer e.Unmount()

	q.Dispatch(0)
	layers := dev.passes[0].Layers
	if len(layers) != len(DefaultLayers) {
		t.Fatalf("pass has %d layers, want %d", len(layers), len(DefaultLayers))
	}
	for i := 1; i < len(layers); i++ {
		if layers[i-1].DepthZ > layers[i].DepthZ {
			t.Errorf("layer %d (z=%v) drawn before layer %d (z=%v)", i-1, layers[i-1].DepthZ, i, layers[i].DepthZ)
		}
	}
}

func TestNoMutationAfterUnmount(t *testing.T) {
	e, dev, q, host := mountTest(t, testConfig(), geometry.Surface{Width: 800, Height: 600})

	for i := 0; i < 5; i++ {
		q.Dispatch(seconds(float64(i) * 0.016))
	}
	layers := e.Layers()
	snapshot := make([]Layer, len(layers))
	for i, l := range layers {
		snapshot[i] = *l
		snapshot[i].Uniforms = l.Uniforms.Clone()
	}
	passes := dev.passCount()

	e.Unmount()
	if q.Pending() != 0 {
		t.Errorf("Pending() = %d after Unmount, want 0", q.Pending())
	}

	// forced tick and a stray dispatch
	e.tick(seconds(3))
	q.Dispatch(seconds(4))

	if dev.passCount() != passes {
		t.Errorf("passes = %d after Unmount, want %d", dev.passCount(), passes)
	}
	for i, l := range layers {
		if l.Uniforms.Time != snapshot[i].Uniforms.Time || l.Transform != snapshot[i].Transform {
			t.Errorf("layer %d mutated after Unmount", i)
		}
		for k := range l.Uniforms.ColorStops {
			if l.Uniforms.ColorStops[k] != snapshot[i].Uniforms.ColorStops[k] {
				t.Errorf("layer %d stop %d mutated after Unmount", i, k)
			}
		}
	}
	for _, kind := range []string{"program", "geometry", "texture", "points"} {
		if got := dev.liveCount(kind); got != 0 {
			t.Errorf("live %s = %d after Unmount, want 0", kind, got)
		}
	}
	if host.subscribed != 0 || host.exited != 1 {
		t.Errorf("host subscribed %d exited %d, want 0 and 1", host.subscribed, host.exited)
	}
}

func TestUnmountIdempotent(t *testing.T) {
	e, _, _, host := mountTest(t, testConfig(), geometry.Surface{Width: 800, Height: 600})
	e.Unmount()
	e.Unmount()
	if host.exited != 1 {
		t.Errorf("exit ran %d times, want 1", host.exited)
	}
	if err := e.Mount(host, geometry.Surface{Width: 800, Height: 600}); !errors.Is(err, ErrClosed) {
		t.Errorf("Mount() after Unmount error = %v, want ErrClosed", err)
	}
}

func TestResizeReplacesGeometry(t *testing.T) {
	e, dev, q, host := mountTest(t, testConfig(), geometry.Surface{Width: 800, Height: 600})
	defer e.Unmount()

	a := e.Viewport()
	host.resize(geometry.Surface{Width: 1920, Height: 1080})
	b := e.Viewport()
	if a == b {
		t.Fatal("viewport did not change on resize")
	}

	if got := dev.liveCount("geometry"); got != len(DefaultLayers) {
		t.Errorf("live geometries = %d, want %d", got, len(DefaultLayers))
	}

	for _, l := range e.Layers() {
		r := l.geometry.(*fakeResource)
		if r.viewport != b {
			t.Errorf("layer %d geometry built for %+v, want %+v", l.Index, r.viewport, b)
		}
	}
	if got := dev.liveFor(a); got != 0 {
		t.Errorf("live geometries for the old viewport = %d, want 0", got)
	}
	if got := dev.liveFor(b); got != len(DefaultLayers) {
		t.Errorf("live geometries for the new viewport = %d, want %d", got, len(DefaultLayers))
	}

	q.Dispatch(0)
	for _, d := range dev.passes[0].Layers {
		if d.Geometry.(*fakeResource).released {
			t.Error("pass references a released geometry")
		}
	}
}

func TestZeroSurfaceSkipsDraw(t *testing.T) {
	e, dev, q, host := mountTest(t, testConfig(), geometry.Surface{Width: 0, Height: 600})
	defer e.Unmount()

	q.Dispatch(0)
	q.Dispatch(seconds(0.016))
	if dev.passCount() != 0 {
		t.Errorf("passes = %d with an empty surface, want 0", dev.passCount())
	}
	if st := e.Stats(); st.SkippedFrames != 2 || st.Ticks != 2 {
		t.Errorf("Stats() = %+v, want 2 ticks and 2 skipped frames", st)
	}
	if q.Pending() != 1 {
		t.Errorf("Pending() = %d, want the loop to keep running", q.Pending())
	}

	host.resize(geometry.Surface{Width: 640, Height: 480})
	q.Dispatch(seconds(0.032))
	if dev.passCount() != 1 {
		t.Errorf("passes = %d after a valid resize, want 1", dev.passCount())
	}
}

func TestAllocationFailureOnMount(t *testing.T) {
	dev := newFakeDevice()
	dev.failKind, dev.failAt = "geometry", 2
	q := NewFrameQueue()
	host := &fakeHost{}
	e := New(dev, q, testConfig())

	err := e.Mount(host, geometry.Surface{Width: 800, Height: 600})
	if !errors.Is(err, ErrResourceAllocation) || !errors.Is(err, errFakeOOM) {
		t.Fatalf("Mount() error = %v, want ErrResourceAllocation wrapping the device error", err)
	}
	if e.State() != Unmounted {
		t.Errorf("State() = %v, want unmounted", e.State())
	}
	for _, kind := range []string{"program", "geometry"} {
		if got := dev.liveCount(kind); got != 0 {
			t.Errorf("live %s = %d after failed mount, want 0", kind, got)
		}
	}
	if host.entered != 0 || host.subscribed != 0 || q.Pending() != 0 {
		t.Error("failed mount touched the host or scheduled a tick")
	}
}

func TestAllocationFailureOnResizeIsFatal(t *testing.T) {
	var fatal error
	e, dev, q, host := mountTest(t, testConfig(), geometry.Surface{Width: 800, Height: 600},
		WithFatalHandler(func(err error) { fatal = err }))
	dev.failKind, dev.failAt = "geometry", len(DefaultLayers)+1

	host.resize(geometry.Surface{Width: 1024, Height: 768})

	if !errors.Is(fatal, ErrResourceAllocation) {
		t.Fatalf("fatal handler got %v, want ErrResourceAllocation", fatal)
	}
	if e.State() != Unmounted {
		t.Errorf("State() = %v, want unmounted", e.State())
	}
	if got := dev.liveCount("geometry"); got != 0 {
		t.Errorf("live geometries = %d, want 0", got)
	}
	if q.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", q.Pending())
	}
}

func TestTickDeferredDuringResize(t *testing.T) {
	e, dev, q, _ := mountTest(t, testConfig(), geometry.Surface{Width: 800, Height: 600})
	defer e.Unmount()

	e.mu.Lock()
	q.Dispatch(0)
	e.mu.Unlock()

	if dev.passCount() != 0 {
		t.Errorf("passes = %d while locked, want 0", dev.passCount())
	}
	if st := e.Stats(); st.DeferredTicks != 1 {
		t.Errorf("DeferredTicks = %d, want 1", st.DeferredTicks)
	}
	if q.Pending() != 1 {
		t.Fatalf("Pending() = %d, want the deferred tick rescheduled", q.Pending())
	}
	q.Dispatch(seconds(0.016))
	if dev.passCount() != 1 {
		t.Errorf("passes = %d after the deferred tick ran, want 1", dev.passCount())
	}
}

func TestBackdropAndDust(t *testing.T) {
	cfg := testConfig()
	cfg.Backdrop = image.NewRGBA(image.Rect(0, 0, 4, 4))
	dust := particle.DefaultConfig()
	dust.Count = 100
	cfg.Dust = &dust

	var frames []Frame
	e, dev, q, _ := mountTest(t, cfg, geometry.Surface{Width: 800, Height: 600},
		WithSink(SinkFunc(func(f Frame) { frames = append(frames, f) })))

	q.Dispatch(0)
	q.Dispatch(seconds(10))

	p := dev.passes[1]
	if p.Backdrop == nil || p.Backdrop.Fit != FitCover {
		t.Errorf("pass backdrop = %+v, want a cover backdrop", p.Backdrop)
	}
	if p.Dust == nil || math.Abs(p.Dust.RotationY-0.5) > 1e-9 {
		t.Errorf("pass dust = %+v, want rotation 0.5", p.Dust)
	}
	if len(frames) != 2 || frames[1].Seq != 2 {
		t.Errorf("sink got %d frames, want 2 in sequence", len(frames))
	}

	e.Unmount()
	if dev.liveCount("texture") != 0 || dev.liveCount("points") != 0 {
		t.Error("backdrop or dust leaked after Unmount")
	}
}

func TestInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Base.ColorStops = []shader.RGB{{}}
	e := New(newFakeDevice(), NewFrameQueue(), cfg)
	if err := e.Mount(nil, geometry.Surface{Width: 10, Height: 10}); err == nil {
		t.Error("Mount() with one colour stop expected an error")
	}
}
