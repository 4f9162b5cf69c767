package utils

import (
	"math"
	"testing"
)

func TestSmoothstep(t *testing.T) {
	tests := []struct {
		name      string
		e0, e1, x float64
		want      float64
	}{
		{"below", 0.2, 0.8, 0.0, 0},
		{"above", 0.2, 0.8, 1.0, 1},
		{"middle", 0.2, 0.8, 0.5, 0.5},
		{"lower edge", 0.5, 1.0, 0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Smoothstep(tt.e0, tt.e1, tt.x)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Smoothstep(%v, %v, %v) = %v, want %v", tt.e0, tt.e1, tt.x, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(1.5, 0.0, 1.0); got != 1 {
		t.Errorf("Clamp(1.5, 0, 1) = %v, want 1", got)
	}
	if got := Clamp(-3, 0, 10); got != 0 {
		t.Errorf("Clamp(-3, 0, 10) = %v, want 0", got)
	}
	if got := Clamp(float32(0.25), 0, 1); got != 0.25 {
		t.Errorf("Clamp(0.25, 0, 1) = %v, want 0.25", got)
	}
}

func TestMod(t *testing.T) {
	tests := []struct {
		x, y, want float64
	}{
		{5, 3, 2},
		{-1, 289, 288},
		{1.25, 1, 0.25},
	}
	for _, tt := range tests {
		if got := Mod(tt.x, tt.y); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Mod(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, err := ParseLevel("debug"); err != nil || lvl != LevelDebug {
		t.Errorf("ParseLevel(debug) = %v, %v, want DEBUG", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel(loud) expected an error")
	}
}
