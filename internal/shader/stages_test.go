package shader

import (
	"math"
	"strings"
	"testing"

	"linux-aurora/internal/noise"
)

func TestDisplacement(t *testing.T) {
	p := DefaultParams
	tests := []struct {
		x, y, time float64
	}{
		{0, 0, 0},
		{1.25, -0.5, 3},
		{-4, 2, 17.5},
	}

	for _, tt := range tests {
		dz, n := p.Displacement(tt.x, tt.y, tt.time)
		wantN := noise.Simplex3(tt.x*2.5+tt.time, tt.y*2.5+tt.time, tt.time) * 0.8
		if math.Abs(n-wantN) > 1e-12 {
			t.Errorf("Displacement(%v, %v, %v) noise = %v, want %v", tt.x, tt.y, tt.time, n, wantN)
		}
		wantZ := math.Sin(tt.y*10+tt.time)*0.1 + math.Sin(tt.x*8+tt.time*0.5)*0.15 + wantN
		if math.Abs(dz-wantZ) > 1e-12 {
			t.Errorf("Displacement(%v, %v, %v) dz = %v, want %v", tt.x, tt.y, tt.time, dz, wantZ)
		}
	}
}

func TestFragmentAlphaFadesAtBottom(t *testing.T) {
	un := DefaultUniforms()
	got := Fragment(0.3, 0, 0, 20, &un)
	if got.A != 0 {
		t.Errorf("alpha at v=0 = %v, want 0", got.A)
	}

	top := Fragment(0.3, 1, 0, 20, &un)
	if top.A <= 0 {
		t.Errorf("alpha at v=1 = %v, want > 0", top.A)
	}
}

func TestFragmentClamped(t *testing.T) {
	un := DefaultUniforms()
	un.ColorStops = []RGB{{4, 4, 4}, {4, 4, 4}, {4, 4, 4}, {4, 4, 4}, {9, 9, 9}}
	for _, n := range []float64{-0.8, 0, 0.8} {
		c := Fragment(0.5, 0.9, n, 5, &un)
		for _, ch := range []float64{c.R, c.G, c.B, c.A} {
			if ch < 0 || ch > 1 {
				t.Fatalf("Fragment(n=%v) = %+v, channel outside [0, 1]", n, c)
			}
		}
	}
}

func TestFragmentFogDominatesFarAway(t *testing.T) {
	un := DefaultUniforms()
	un.FogDensity = 1
	un.FogColor = RGB{R: 1}
	c := Fragment(0.21, 0.63, 0.1, 1000, &un)
	if math.Abs(c.R-1) > 1e-9 || c.G > 1e-9 || c.B > 1e-9 {
		t.Errorf("Fragment far away = %+v, want the fog colour", c)
	}
}

func TestGlowFallsBackToDefault(t *testing.T) {
	un := DefaultUniforms()
	if got := un.Glow(); got != DefaultGlow {
		t.Errorf("Glow() = %+v, want %+v", got, DefaultGlow)
	}
	un.ColorStops = append(un.ColorStops, RGB{G: 1})
	if got := un.Glow(); got != (RGB{G: 1}) {
		t.Errorf("Glow() with five stops = %+v, want the fifth stop", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		stops   int
		fog     float64
		wantErr bool
	}{
		{"four stops", 4, 0.005, false},
		{"five stops", 5, 0, false},
		{"three stops", 3, 0.005, true},
		{"six stops", 6, 0.005, true},
		{"negative fog", 4, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			un := Uniforms{ColorStops: make([]RGB, tt.stops), FogDensity: tt.fog}
			if err := un.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHex(t *testing.T) {
	c := Hex(0x00bcd4)
	if c.R != 0 || math.Abs(c.G-188.0/255) > 1e-12 || math.Abs(c.B-212.0/255) > 1e-12 {
		t.Errorf("Hex(0x00bcd4) = %+v", c)
	}
}

func TestSourcesDeclareUniforms(t *testing.T) {
	for _, name := range []string{UniformTime, UniformNoiseFreq, UniformNoiseAmp} {
		if !strings.Contains(AuroraVertex, "uniform float "+name) {
			t.Errorf("vertex source does not declare %q", name)
		}
	}
	for i := 0; i < MaxColorStops; i++ {
		if !strings.Contains(AuroraFragment, "uniform vec3 "+ColorUniform(i)) {
			t.Errorf("fragment source does not declare %q", ColorUniform(i))
		}
	}
}
