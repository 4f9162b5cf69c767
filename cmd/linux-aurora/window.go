package main

import (
	"fmt"
	"time"

	"linux-aurora/internal/config"
	"linux-aurora/internal/debug"
	"linux-aurora/internal/engine"
	"linux-aurora/internal/geometry"
	"linux-aurora/internal/render/rlgpu"
	"linux-aurora/internal/scene"
	"linux-aurora/internal/utils"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Window hosts the engine in a raylib window. It is the engine's Host and
// its frame scheduler: queued frames run once per loop iteration.
type Window struct {
	cfg     *config.Config
	dev     *rlgpu.Device
	queue   *engine.FrameQueue
	eng     *engine.Engine
	overlay *debug.DebugOverlay
	camera  geometry.Camera

	listeners map[int]engine.Listener
	nextSub   int

	surface   geometry.Surface
	scroll    float64
	startTime time.Time
	fatal     error
}

// Run opens the window, mounts the engine and blocks until the window is
// closed.
func Run(sc *scene.Scene) error {
	cfg := sc.Config

	rl.SetTraceLogCallback(utils.RaylibLogCallback)
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagVsyncHint)
	rl.InitWindow(int32(cfg.Window.Width), int32(cfg.Window.Height), cfg.Window.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Window.FPS))

	window, err := NewWindow(sc)
	if err != nil {
		return err
	}
	defer window.Close()

	window.Run()
	return nil
}

func NewWindow(sc *scene.Scene) (*Window, error) {
	cfg := sc.Config
	ecfg := cfg.Engine()

	backdrop, err := sc.Backdrop()
	if err != nil {
		utils.Error("Failed to load backdrop, continuing without: %v", err)
	}
	ecfg.Backdrop = backdrop

	window := &Window{
		cfg:       cfg,
		dev:       rlgpu.New(cfg.PostFX),
		queue:     engine.NewFrameQueue(),
		overlay:   debug.NewDebugOverlay(),
		listeners: map[int]engine.Listener{},
		camera:    ecfg.Camera,
		startTime: time.Now(),
	}
	window.overlay.Visible = utils.DebugMode

	window.eng = engine.New(window.dev, window.queue, ecfg,
		engine.WithFatalHandler(func(err error) { window.fatal = err }))

	window.surface = geometry.Surface{Width: rl.GetScreenWidth(), Height: rl.GetScreenHeight()}
	if err := window.eng.Mount(window, window.surface); err != nil {
		window.dev.Close()
		return nil, fmt.Errorf("mount aurora: %w", err)
	}
	return window, nil
}

// Enter hides the cursor while the aurora is mounted.
func (window *Window) Enter() func() {
	rl.HideCursor()
	return rl.ShowCursor
}

func (window *Window) Subscribe(l engine.Listener) func() {
	id := window.nextSub
	window.nextSub++
	window.listeners[id] = l
	return func() { delete(window.listeners, id) }
}

func (window *Window) Run() {
	for !rl.WindowShouldClose() {
		window.Update()

		rl.BeginDrawing()
		window.Draw()
		rl.EndDrawing()
	}
}

func (window *Window) Update() {
	if rl.IsWindowResized() {
		s := geometry.Surface{Width: rl.GetScreenWidth(), Height: rl.GetScreenHeight()}
		if s != window.surface {
			window.surface = s
			for _, l := range window.listeners {
				l.Resized(s)
			}
		}
	}

	if offset, moved := window.readScroll(); moved {
		for _, l := range window.listeners {
			l.Scrolled(offset)
		}
	}

	window.overlay.Update()
	window.queue.Dispatch(time.Since(window.startTime))
}

// readScroll turns wheel notches and navigation keys into a page offset.
// The offset never goes above the top of the page.
func (window *Window) readScroll() (float64, bool) {
	step := window.cfg.Scroll.Step
	delta := -float64(rl.GetMouseWheelMove()) * step

	switch {
	case rl.IsKeyPressed(rl.KeyDown):
		delta += step
	case rl.IsKeyPressed(rl.KeyUp):
		delta -= step
	case rl.IsKeyPressed(rl.KeyPageDown):
		delta += float64(window.surface.Height)
	case rl.IsKeyPressed(rl.KeyPageUp):
		delta -= float64(window.surface.Height)
	case rl.IsKeyPressed(rl.KeyHome):
		delta = -window.scroll
	}
	if delta == 0 {
		return window.scroll, false
	}

	window.scroll = max(0, window.scroll+delta)
	return window.scroll, true
}

func (window *Window) Draw() {
	bg := window.cfg.Colors.Clear
	rl.ClearBackground(rl.NewColor(uint8(bg.R*255), uint8(bg.G*255), uint8(bg.B*255), 255))

	if window.fatal == nil && window.eng.State() == engine.Running {
		dst := rl.NewRectangle(0, 0, float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
		window.dev.Present(dst)
	}

	if window.overlay.Visible {
		snap := debug.Capture(window.eng, window.surface, int(rl.GetFPS()), float64(rl.GetFrameTime()), window.dev.Live())
		window.overlay.Draw(snap, window.camera)
	}
	if window.fatal != nil {
		rl.DrawText("aurora stopped: "+window.fatal.Error(), 10, int32(window.surface.Height)-26, 16, rl.Red)
	}
}

func (window *Window) Close() {
	window.eng.Unmount()
	window.dev.Close()
	utils.Info("Window closed after %s", time.Since(window.startTime).Round(time.Second))
}
