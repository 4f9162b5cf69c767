// Package postfx is the post stage applied to finished frames: a
// luminance-keyed bloom followed by pixelation.
package postfx

import (
	"fmt"
	"math"
	"strings"
)

type KernelSize int

const (
	KernelVerySmall KernelSize = iota
	KernelSmall
	KernelMedium
	KernelLarge
	KernelVeryLarge
	KernelHuge
)

var kernelNames = []string{"very_small", "small", "medium", "large", "very_large", "huge"}

func (k KernelSize) String() string {
	if k < 0 || int(k) >= len(kernelNames) {
		return fmt.Sprintf("kernel(%d)", int(k))
	}
	return kernelNames[k]
}

func ParseKernelSize(s string) (KernelSize, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for i, n := range kernelNames {
		if n == name {
			return KernelSize(i), nil
		}
	}
	return 0, fmt.Errorf("unknown kernel size %q", s)
}

func (k *KernelSize) UnmarshalText(b []byte) error {
	v, err := ParseKernelSize(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func (k KernelSize) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Radius is the blur radius in pixels at a 1080-line reference height.
func (k KernelSize) Radius() float64 {
	return [...]float64{1.5, 3, 5, 8, 12, 18}[max(0, min(int(k), int(KernelHuge)))]
}

type Bloom struct {
	Enabled            bool       `yaml:"enabled"`
	KernelSize         KernelSize `yaml:"kernel_size"`
	LuminanceThreshold float64    `yaml:"luminance_threshold"`
	LuminanceSmoothing float64    `yaml:"luminance_smoothing"`
	Intensity          float64    `yaml:"intensity"`
}

type Pixelation struct {
	// Granularity is the cell size in pixels. Values below 1 disable the
	// effect; others round down to an even size.
	Granularity float64 `yaml:"granularity"`
}

// Cell returns the effective cell size, 0 when disabled.
func (p Pixelation) Cell() int {
	g := int(math.Floor(p.Granularity))
	if g < 1 {
		return 0
	}
	if g%2 != 0 {
		g++
	}
	return g
}

type Config struct {
	Bloom      Bloom      `yaml:"bloom"`
	Pixelation Pixelation `yaml:"pixelation"`
}

func DefaultConfig() Config {
	return Config{
		Bloom: Bloom{
			Enabled:            true,
			KernelSize:         KernelLarge,
			LuminanceThreshold: 0.15,
			LuminanceSmoothing: 0.05,
			Intensity:          1.5,
		},
		Pixelation: Pixelation{Granularity: 0.5},
	}
}

func (c Config) Validate() error {
	b := c.Bloom
	if b.KernelSize < KernelVerySmall || b.KernelSize > KernelHuge {
		return fmt.Errorf("bloom kernel size out of range: %d", b.KernelSize)
	}
	if b.LuminanceSmoothing < 0 {
		return fmt.Errorf("bloom luminance smoothing must not be negative, got %g", b.LuminanceSmoothing)
	}
	if b.Intensity < 0 {
		return fmt.Errorf("bloom intensity must not be negative, got %g", b.Intensity)
	}
	if c.Pixelation.Granularity < 0 {
		return fmt.Errorf("pixelation granularity must not be negative, got %g", c.Pixelation.Granularity)
	}
	return nil
}
