package main

import (
	"image"
	"time"

	"linux-aurora/internal/engine"
	"linux-aurora/internal/geometry"
	"linux-aurora/internal/postfx"
	"linux-aurora/internal/render/software"
	"linux-aurora/internal/utils"

	"github.com/gdamore/tcell/v2"
)

// halfBlock shows two vertically stacked pixels per cell: the top one as
// foreground, the bottom one as background.
const halfBlock = '▀'

const pageSteps = 10

// Term hosts the engine in a terminal. Every cell carries two pixels, so
// the render surface is the screen size with doubled height.
type Term struct {
	screen tcell.Screen
	queue  *engine.FrameQueue
	dev    *software.Device
	post   *postfx.Processor
	eng    *engine.Engine

	listeners map[int]engine.Listener
	nextSub   int

	step    float64
	scroll  float64
	surface geometry.Surface
	fatal   error
}

func NewTerm(screen tcell.Screen, cfg engine.Config, post postfx.Config, step float64) *Term {
	t := &Term{
		screen:    screen,
		queue:     engine.NewFrameQueue(),
		dev:       software.New(),
		post:      postfx.NewProcessor(post),
		listeners: map[int]engine.Listener{},
		step:      step,
	}
	t.eng = engine.New(t.dev, t.queue, cfg,
		engine.WithSink(engine.SinkFunc(t.present)),
		engine.WithFatalHandler(func(err error) { t.fatal = err }))
	return t
}

func surfaceOf(cols, rows int) geometry.Surface {
	return geometry.Surface{Width: cols, Height: rows * 2}
}

func (t *Term) Mount() error {
	t.surface = surfaceOf(t.screen.Size())
	return t.eng.Mount(t, t.surface)
}

func (t *Term) Unmount() {
	t.eng.Unmount()
}

// Enter turns on mouse reporting so the wheel scrolls the page.
func (t *Term) Enter() func() {
	t.screen.EnableMouse()
	t.screen.HideCursor()
	return t.screen.DisableMouse
}

func (t *Term) Subscribe(l engine.Listener) func() {
	id := t.nextSub
	t.nextSub++
	t.listeners[id] = l
	return func() { delete(t.listeners, id) }
}

// Frame runs the frames queued since the last call.
func (t *Term) Frame(now time.Duration) int {
	return t.queue.Dispatch(now)
}

func (t *Term) scrollBy(delta float64) {
	next := max(0, t.scroll+delta)
	if next == t.scroll {
		return
	}
	t.scroll = next
	for _, l := range t.listeners {
		l.Scrolled(next)
	}
}

// HandleEvent applies one terminal event and reports whether the program
// should keep running.
func (t *Term) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyDown:
			t.scrollBy(t.step)
		case tcell.KeyUp:
			t.scrollBy(-t.step)
		case tcell.KeyPgDn:
			t.scrollBy(pageSteps * t.step)
		case tcell.KeyPgUp:
			t.scrollBy(-pageSteps * t.step)
		case tcell.KeyHome:
			t.scrollBy(-t.scroll)
		case tcell.KeyRune:
			if ev.Rune() == 'q' {
				return false
			}
		}

	case *tcell.EventMouse:
		switch btn := ev.Buttons(); {
		case btn&tcell.WheelDown != 0:
			t.scrollBy(t.step)
		case btn&tcell.WheelUp != 0:
			t.scrollBy(-t.step)
		}

	case *tcell.EventResize:
		s := surfaceOf(ev.Size())
		if s != t.surface {
			t.surface = s
			t.screen.Clear()
			for _, l := range t.listeners {
				l.Resized(s)
			}
		}
		t.screen.Sync()
	}
	return true
}

func (t *Term) present(f engine.Frame) {
	if f.Image == nil {
		return
	}
	img := t.post.Apply(f.Image)
	t.blit(img)
	t.screen.Show()
}

func (t *Term) blit(img *image.RGBA) {
	cols, rows := t.screen.Size()
	b := img.Bounds()
	for y := 0; y < rows; y++ {
		top, bottom := b.Min.Y+y*2, b.Min.Y+y*2+1
		if bottom >= b.Max.Y {
			break
		}
		for x := 0; x < min(cols, b.Dx()); x++ {
			style := tcell.StyleDefault.
				Foreground(rgbAt(img, b.Min.X+x, top)).
				Background(rgbAt(img, b.Min.X+x, bottom))
			t.screen.SetContent(x, y, halfBlock, nil, style)
		}
	}
}

func rgbAt(img *image.RGBA, x, y int) tcell.Color {
	o := img.PixOffset(x, y)
	return tcell.NewRGBColor(int32(img.Pix[o]), int32(img.Pix[o+1]), int32(img.Pix[o+2]))
}

// Run drives frames at fps until a quit key or a fatal engine error.
func (t *Term) Run(fps int) error {
	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()
	defer close(quit)

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	start := time.Now()

	for {
		select {
		case ev := <-events:
			if !t.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			t.Frame(time.Since(start))
			if t.fatal != nil {
				return t.fatal
			}
			if s := t.eng.Stats(); s.Ticks > 0 && s.Ticks%600 == 0 {
				utils.Debug("Term: %d ticks, %d draws, %d skipped", s.Ticks, s.Draws, s.SkippedFrames)
			}
		}
	}
}
