// Package debug draws the F8 overlay: engine counters, per-layer state and
// the projected outline of every layer plane.
package debug

import (
	"fmt"
	"maps"
	"runtime"
	"slices"

	"linux-aurora/internal/engine"
	"linux-aurora/internal/geometry"
)

// Snapshot is what the overlay shows for one frame.
type Snapshot struct {
	FPS       int
	FrameTime float64 // seconds
	HeapMB    float64
	Routines  int
	State     engine.State
	Stats     engine.Stats
	Surface   geometry.Surface
	Viewport  geometry.Viewport
	Scroll    float64
	CameraY   float64
	Layers    []LayerInfo
	Live      map[string]int
}

type LayerInfo struct {
	Index     int
	DepthZ    float64
	PositionY float64
	RotationZ float64
	Time      float64
}

// Capture reads the overlay state from a mounted engine together with the
// process memory figures.
func Capture(e *engine.Engine, s geometry.Surface, fps int, frameTime float64, live map[string]int) Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	snap := Snapshot{
		FPS:       fps,
		FrameTime: frameTime,
		HeapMB:    float64(mem.HeapAlloc) / 1024 / 1024,
		Routines:  runtime.NumGoroutine(),
		State:     e.State(),
		Stats:     e.Stats(),
		Surface:   s,
		Viewport:  e.Viewport(),
		Scroll:    e.Scroll().Offset(),
		CameraY:   e.Scroll().CameraY(),
		Live:      live,
	}
	for _, l := range e.Layers() {
		snap.Layers = append(snap.Layers, LayerInfo{
			Index:     l.Index,
			DepthZ:    l.Spec.DepthZ,
			PositionY: l.Transform.PositionY,
			RotationZ: l.Transform.RotationZ,
			Time:      l.Uniforms.Time,
		})
	}
	return snap
}

// Lines formats the snapshot, one overlay row per entry.
func (s Snapshot) Lines() []string {
	lines := []string{
		fmt.Sprintf("FPS %d  state %s", s.FPS, s.State),
		fmt.Sprintf("frame %.2f ms  heap %.1f MB  goroutines %d", s.FrameTime*1000, s.HeapMB, s.Routines),
		fmt.Sprintf("ticks %d  draws %d  skipped %d  deferred %d",
			s.Stats.Ticks, s.Stats.Draws, s.Stats.SkippedFrames, s.Stats.DeferredTicks),
		fmt.Sprintf("surface %dx%d  viewport %.2fx%.2f", s.Surface.Width, s.Surface.Height, s.Viewport.Width, s.Viewport.Height),
		fmt.Sprintf("scroll %.0f  camera y %.3f", s.Scroll, s.CameraY),
	}
	for _, l := range s.Layers {
		lines = append(lines, fmt.Sprintf("layer %d  z %.0f  y %+.3f  rot %+.4f  t %.2f",
			l.Index, l.DepthZ, l.PositionY, l.RotationZ, l.Time))
	}
	if len(s.Live) > 0 {
		row := "live"
		for _, k := range slices.Sorted(maps.Keys(s.Live)) {
			row += fmt.Sprintf("  %s %d", k, s.Live[k])
		}
		lines = append(lines, row)
	}
	return lines
}
