package engine

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"linux-aurora/internal/shader"
	"linux-aurora/internal/utils"
)

const (
	// TimeScale slows the shader clock relative to wall time.
	TimeScale = 0.5
	// LayerTimeStagger offsets each layer's shader clock so the layers
	// never show the same pattern.
	LayerTimeStagger = 0.1
)

// LayerSpec is the fixed configuration of one aurora layer.
type LayerSpec struct {
	DepthZ         float64
	PhaseOffset    float64
	DriftAmplitude float64
	DriftFrequency float64

	// Zero means derived from the drift values.
	RotationAmplitude float64
	RotationFrequency float64
}

func (s LayerSpec) rotation() (freq, amp float64) {
	freq, amp = s.RotationFrequency, s.RotationAmplitude
	if freq == 0 {
		freq = s.DriftFrequency / 2
	}
	if amp == 0 {
		amp = s.DriftAmplitude / 10
	}
	return freq, amp
}

// DefaultLayers go near to far; drift slows and shrinks with depth.
var DefaultLayers = []LayerSpec{
	{DepthZ: -5, PhaseOffset: 0, DriftAmplitude: 0.5, DriftFrequency: 0.2, RotationAmplitude: 0.05, RotationFrequency: 0.1},
	{DepthZ: -10, PhaseOffset: 1, DriftAmplitude: 0.3, DriftFrequency: 0.15, RotationAmplitude: 0.03, RotationFrequency: 0.075},
	{DepthZ: -15, PhaseOffset: 2, DriftAmplitude: 0.2, DriftFrequency: 0.1, RotationAmplitude: 0.02, RotationFrequency: 0.05},
}

// Palette drives the slow hue cycle of the first four colour stops.
type Palette struct {
	Static      bool
	Speed       float64
	LayerSpread float64
	StopStep    float64
	Saturation  [4]float64
	Lightness   [4]float64
}

var DefaultPalette = Palette{
	Speed:       0.1,
	LayerSpread: 0.5,
	StopStep:    0.2,
	Saturation:  [4]float64{0.7, 0.8, 0.9, 0.7},
	Lightness:   [4]float64{0.5, 0.6, 0.7, 0.5},
}

// Hue returns the base hue in [0, 1] for a layer at elapsed seconds.
func (p Palette) Hue(elapsed float64, index int) float64 {
	return (math.Sin(elapsed*TimeScale*p.Speed+float64(index)*p.LayerSpread) + 1) * 0.5
}

// Layer is one animated surface: its spec, the device geometry sized to
// the current viewport, and the values recomputed every tick.
type Layer struct {
	Index     int
	Spec      LayerSpec
	Uniforms  shader.Uniforms
	Transform Transform

	geometry Resource
}

func NewLayer(index int, spec LayerSpec, base shader.Uniforms) *Layer {
	return &Layer{
		Index:    index,
		Spec:     spec,
		Uniforms: base.Clone(),
	}
}

// Update recomputes the layer's uniforms and transform. It reads nothing
// but its own spec and the arguments.
func (l *Layer) Update(elapsed float64, p Palette) {
	l.Uniforms.Time = elapsed*TimeScale + float64(l.Index)*LayerTimeStagger

	if !p.Static {
		hue := p.Hue(elapsed, l.Index)
		for k := 0; k < len(p.Saturation) && k < len(l.Uniforms.ColorStops); k++ {
			h := utils.Fract(hue + float64(k)*p.StopStep)
			c := colorful.Hsl(h*360, p.Saturation[k], p.Lightness[k]).Clamped()
			l.Uniforms.ColorStops[k] = shader.RGB{R: c.R, G: c.G, B: c.B}
		}
	}

	s := l.Spec
	l.Transform.PositionY = math.Sin(elapsed*s.DriftFrequency+s.PhaseOffset) * s.DriftAmplitude

	freq, amp := s.rotation()
	l.Transform.RotationZ = math.Sin(elapsed*freq+s.PhaseOffset) * amp
}

func (l *Layer) releaseGeometry() {
	if l.geometry != nil {
		l.geometry.Release()
		l.geometry = nil
	}
}
