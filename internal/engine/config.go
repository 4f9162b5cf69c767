package engine

import (
	"errors"
	"fmt"
	"image"

	"linux-aurora/internal/geometry"
	"linux-aurora/internal/particle"
	"linux-aurora/internal/shader"
)

// Fit selects how the backdrop image covers the surface.
type Fit string

const (
	FitCover   Fit = "cover"
	FitContain Fit = "fit"
)

type Config struct {
	Camera       geometry.Camera
	Segments     int
	Params       shader.Params
	Layers       []LayerSpec
	Base         shader.Uniforms
	Palette      Palette
	ScrollFactor float64
	ClearColor   shader.RGB

	Backdrop    image.Image
	BackdropFit Fit

	// Dust is nil when the particle cloud is disabled.
	Dust *particle.Config
}

func DefaultConfig() Config {
	return Config{
		Camera:       geometry.DefaultCamera,
		Segments:     geometry.DefaultSegments,
		Params:       shader.DefaultParams,
		Layers:       append([]LayerSpec(nil), DefaultLayers...),
		Base:         shader.DefaultUniforms(),
		Palette:      DefaultPalette,
		ScrollFactor: DefaultScrollFactor,
		BackdropFit:  FitCover,
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Camera.FovY <= 0 || c.Camera.FovY >= 180 {
		errs = append(errs, fmt.Errorf("camera fov must be in (0, 180), got %g", c.Camera.FovY))
	}
	if c.Camera.Distance <= 0 {
		errs = append(errs, fmt.Errorf("camera distance must be positive, got %g", c.Camera.Distance))
	}
	if c.Segments < 1 || c.Segments > geometry.MaxSegments {
		errs = append(errs, fmt.Errorf("segments must be in [1, %d], got %d", geometry.MaxSegments, c.Segments))
	}
	if len(c.Layers) == 0 {
		errs = append(errs, errors.New("at least one layer is required"))
	}
	if err := c.Base.Validate(); err != nil {
		errs = append(errs, err)
	}
	switch c.BackdropFit {
	case FitCover, FitContain, "":
	default:
		errs = append(errs, fmt.Errorf("unknown backdrop fit %q", c.BackdropFit))
	}
	if c.Dust != nil && c.Dust.Count < 0 {
		errs = append(errs, fmt.Errorf("dust count must not be negative, got %d", c.Dust.Count))
	}
	return errors.Join(errs...)
}
