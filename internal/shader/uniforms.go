// Package shader holds the aurora surface program: its typed uniforms, a
// CPU evaluation of both stages, and the GLSL sources for GPU devices.
package shader

import "fmt"

type RGB struct {
	R, G, B float64
}

// Hex builds a colour from a 0xRRGGBB literal.
func Hex(v uint32) RGB {
	return RGB{
		R: float64(v>>16&0xff) / 255,
		G: float64(v>>8&0xff) / 255,
		B: float64(v&0xff) / 255,
	}
}

func (c RGB) Add(o RGB) RGB       { return RGB{c.R + o.R, c.G + o.G, c.B + o.B} }
func (c RGB) Scale(s float64) RGB { return RGB{c.R * s, c.G * s, c.B * s} }

// Mix is the GLSL mix: linear interpolation, t is not clamped.
func Mix(a, b RGB, t float64) RGB {
	return RGB{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
	}
}

func (c RGB) Floats() []float32 {
	return []float32{float32(c.R), float32(c.G), float32(c.B)}
}

const (
	MinColorStops = 4
	MaxColorStops = 5
)

var (
	// DefaultStops are the colours a layer starts with before the first
	// hue update.
	DefaultStops = []RGB{Hex(0x1a237e), Hex(0x7c4dff), Hex(0x00bcd4), Hex(0x4caf50)}
	// DefaultGlow tints noise crests when no fifth stop is configured.
	DefaultGlow = RGB{R: 1, G: 0.5, B: 0.2}
)

const DefaultFogDensity = 0.005

// Uniforms are the per-layer values the program reads. They change once per
// tick and are read-only while a draw is in flight.
type Uniforms struct {
	Time       float64
	ColorStops []RGB
	FogDensity float64
	FogColor   RGB
}

func DefaultUniforms() Uniforms {
	return Uniforms{
		ColorStops: append([]RGB(nil), DefaultStops...),
		FogDensity: DefaultFogDensity,
	}
}

func (u *Uniforms) Validate() error {
	if n := len(u.ColorStops); n < MinColorStops || n > MaxColorStops {
		return fmt.Errorf("need %d to %d colour stops, got %d", MinColorStops, MaxColorStops, n)
	}
	if u.FogDensity < 0 {
		return fmt.Errorf("fog density must not be negative, got %g", u.FogDensity)
	}
	return nil
}

// Glow is the crest tint: the fifth stop when present.
func (u *Uniforms) Glow() RGB {
	if len(u.ColorStops) > MinColorStops {
		return u.ColorStops[MinColorStops]
	}
	return DefaultGlow
}

// Clone copies the uniforms so the stop slice is not shared.
func (u Uniforms) Clone() Uniforms {
	u.ColorStops = append([]RGB(nil), u.ColorStops...)
	return u
}
