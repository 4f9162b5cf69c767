package debug

import (
	"math"
	"strings"
	"testing"

	"linux-aurora/internal/engine"
	"linux-aurora/internal/geometry"
)

func TestSnapshotLines(t *testing.T) {
	snap := Snapshot{
		FPS:       60,
		FrameTime: 0.0125,
		HeapMB:    3.5,
		Routines:  4,
		State:     engine.Running,
		Stats:     engine.Stats{Ticks: 10, Draws: 9, SkippedFrames: 1},
		Surface:   geometry.Surface{Width: 800, Height: 600},
		Viewport:  geometry.Viewport{Width: 40.96, Height: 30.72},
		Scroll:    500,
		CameraY:   -2.5,
		Layers: []LayerInfo{
			{Index: 0, DepthZ: -5, PositionY: 0.25},
			{Index: 1, DepthZ: -10},
		},
		Live: map[string]int{"program": 1, "geometry": 2},
	}

	lines := snap.Lines()
	if got, want := len(lines), 8; got != want {
		t.Fatalf("len(Lines()) = %d, want %d: %q", got, want, lines)
	}

	tests := []struct {
		row  int
		want string
	}{
		{0, "state running"},
		{1, "frame 12.50 ms  heap 3.5 MB"},
		{2, "skipped 1"},
		{3, "surface 800x600"},
		{4, "camera y -2.500"},
		{5, "z -5  y +0.250"},
		{7, "live  geometry 2  program 1"},
	}
	for _, tt := range tests {
		if !strings.Contains(lines[tt.row], tt.want) {
			t.Errorf("Lines()[%d] = %q, want it to contain %q", tt.row, lines[tt.row], tt.want)
		}
	}
}

func TestLayerCorners(t *testing.T) {
	vp := geometry.Viewport{Width: 4, Height: 2}

	c := LayerCorners(vp, LayerInfo{DepthZ: -5, PositionY: 1})
	if c[0].X != -2 || c[0].Y != 0 || c[2].X != 2 || c[2].Y != 2 || c[1].Z != -5 {
		t.Errorf("LayerCorners(unrotated) = %v", c)
	}

	c = LayerCorners(vp, LayerInfo{RotationZ: math.Pi / 2})
	// (2, -1) rotated a quarter turn lands on (1, 2).
	if math.Abs(float64(c[1].X)-1) > 1e-6 || math.Abs(float64(c[1].Y)-2) > 1e-6 {
		t.Errorf("LayerCorners(rotated)[1] = %v, want (1, 2)", c[1])
	}
}
