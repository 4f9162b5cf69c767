package rlgpu

import (
	"linux-aurora/internal/shader"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// auroraLocations caches the uniform locations of the aurora program.
// Missing uniforms resolve to -1 and are skipped when pushing values.
type auroraLocations struct {
	Time       int32
	NoiseFreq  int32
	NoiseAmp   int32
	FogDensity int32
	FogColor   int32
	Colors     [shader.MaxColorStops]int32
}

func resolveAuroraLocations(s rl.Shader) auroraLocations {
	locs := auroraLocations{
		Time:       rl.GetShaderLocation(s, shader.UniformTime),
		NoiseFreq:  rl.GetShaderLocation(s, shader.UniformNoiseFreq),
		NoiseAmp:   rl.GetShaderLocation(s, shader.UniformNoiseAmp),
		FogDensity: rl.GetShaderLocation(s, shader.UniformFogDensity),
		FogColor:   rl.GetShaderLocation(s, shader.UniformFogColor),
	}
	for i := range locs.Colors {
		locs.Colors[i] = rl.GetShaderLocation(s, shader.ColorUniform(i))
	}
	return locs
}

type bloomLocations struct {
	TexelSize int32
	Threshold int32
	Smoothing int32
	Intensity int32
	Radius    int32
}

func resolveBloomLocations(s rl.Shader) bloomLocations {
	return bloomLocations{
		TexelSize: rl.GetShaderLocation(s, "texelSize"),
		Threshold: rl.GetShaderLocation(s, "threshold"),
		Smoothing: rl.GetShaderLocation(s, "smoothing"),
		Intensity: rl.GetShaderLocation(s, "intensity"),
		Radius:    rl.GetShaderLocation(s, "radius"),
	}
}

type pixelateLocations struct {
	Resolution  int32
	Granularity int32
}

func resolvePixelateLocations(s rl.Shader) pixelateLocations {
	return pixelateLocations{
		Resolution:  rl.GetShaderLocation(s, "resolution"),
		Granularity: rl.GetShaderLocation(s, "granularity"),
	}
}

func setFloat(s rl.Shader, loc int32, v float64) {
	if loc != -1 {
		rl.SetShaderValue(s, loc, []float32{float32(v)}, rl.ShaderUniformFloat)
	}
}

func setVec2(s rl.Shader, loc int32, x, y float64) {
	if loc != -1 {
		rl.SetShaderValue(s, loc, []float32{float32(x), float32(y)}, rl.ShaderUniformVec2)
	}
}

func setColor(s rl.Shader, loc int32, c shader.RGB) {
	if loc != -1 {
		rl.SetShaderValue(s, loc, c.Floats(), rl.ShaderUniformVec3)
	}
}

// applyUniforms pushes one layer's uniform set. A four stop palette still
// sets color5 so the previous layer's glow never leaks through.
func applyUniforms(s rl.Shader, locs *auroraLocations, u *shader.Uniforms) {
	setFloat(s, locs.Time, u.Time)
	setFloat(s, locs.FogDensity, u.FogDensity)
	setColor(s, locs.FogColor, u.FogColor)
	for i := 0; i < 4; i++ {
		setColor(s, locs.Colors[i], u.ColorStops[i])
	}
	setColor(s, locs.Colors[4], u.Glow())
}
