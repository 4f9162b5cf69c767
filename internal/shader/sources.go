package shader

import _ "embed"

var (
	//go:embed glsl/aurora.vs
	AuroraVertex string
	//go:embed glsl/aurora.fs
	AuroraFragment string
	//go:embed glsl/postfx.vs
	PostVertex string
	//go:embed glsl/bloom.fs
	BloomFragment string
	//go:embed glsl/pixelate.fs
	PixelateFragment string
)

// Uniform names shared by the GLSL sources and the devices that feed them.
const (
	UniformTime       = "time"
	UniformNoiseFreq  = "noiseFreq"
	UniformNoiseAmp   = "noiseAmp"
	UniformFogDensity = "fogDensity"
	UniformFogColor   = "fogColor"
)

// ColorUniform returns the name of colour stop i (zero based).
func ColorUniform(i int) string {
	return "color" + string(rune('1'+i))
}
