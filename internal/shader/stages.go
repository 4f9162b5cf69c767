package shader

import (
	"math"

	"linux-aurora/internal/noise"
	"linux-aurora/internal/utils"
)

// Params are the fixed constants of the vertex stage.
type Params struct {
	NoiseFrequency float64
	NoiseAmplitude float64
}

var DefaultParams = Params{NoiseFrequency: 2.5, NoiseAmplitude: 0.8}

// Displacement returns the z offset for a plane vertex at (x, y) together
// with the scaled noise value the fragment stage consumes.
func (p Params) Displacement(x, y, time float64) (dz, n float64) {
	n = noise.Sample(noise.Vec3{X: x * p.NoiseFrequency, Y: y * p.NoiseFrequency}, time) * p.NoiseAmplitude

	dz = math.Sin(y*10+time) * 0.1
	dz += math.Sin(x*8+time*0.5) * 0.15
	dz += n
	return dz, n
}

type RGBA struct {
	R, G, B, A float64
}

// Fragment shades one surface sample. u, v are the plane UVs, n is the
// interpolated noise from the vertex stage and depth the view-space
// distance used for fog. The result is clamped to [0, 1].
func Fragment(u, v, n, depth float64, un *Uniforms) RGBA {
	t := un.Time
	s := un.ColorStops

	c := Mix(s[0], s[1], v+math.Sin(u*10+t)*0.1)
	c = Mix(c, s[2], n)
	c = Mix(c, s[3], math.Sin(v*20+t*2)*0.5+0.5)

	alpha := utils.Smoothstep(0.2, 0.8, v+n*0.2)
	alpha *= 0.7 + 0.3*math.Sin(t*2+v*10)

	c = c.Add(un.Glow().Scale(utils.Smoothstep(0.5, 1.0, n) * 0.5))

	sparkle := math.Pow(math.Sin(u*100+t*5)*math.Sin(v*100+t*3), 20)
	c = c.Add(RGB{sparkle, sparkle, sparkle})

	d := un.FogDensity * depth
	fog := utils.Clamp(1-math.Exp(-d*d), 0, 1)
	c = Mix(c, un.FogColor, fog)

	return RGBA{
		R: utils.Clamp(c.R, 0, 1),
		G: utils.Clamp(c.G, 0, 1),
		B: utils.Clamp(c.B, 0, 1),
		A: utils.Clamp(alpha, 0, 1),
	}
}
