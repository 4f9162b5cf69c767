// Package config loads the scene description from YAML and turns it into
// engine and post stage settings.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"linux-aurora/internal/engine"
	"linux-aurora/internal/geometry"
	"linux-aurora/internal/particle"
	"linux-aurora/internal/postfx"
	"linux-aurora/internal/shader"
)

type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Camera   CameraConfig   `yaml:"camera"`
	Surface  SurfaceConfig  `yaml:"surface"`
	Layers   []LayerConfig  `yaml:"layers"`
	Colors   ColorConfig    `yaml:"colors"`
	Scroll   ScrollConfig   `yaml:"scroll"`
	Backdrop BackdropConfig `yaml:"backdrop"`
	Dust     DustConfig     `yaml:"dust"`
	PostFX   postfx.Config  `yaml:"postfx"`
	Log      LogConfig      `yaml:"log"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	FPS    int    `yaml:"fps"`
}

type CameraConfig struct {
	FOV      float64 `yaml:"fov"`
	Distance float64 `yaml:"distance"`
}

type SurfaceConfig struct {
	Segments       int     `yaml:"segments"`
	NoiseFrequency float64 `yaml:"noise_frequency"`
	NoiseAmplitude float64 `yaml:"noise_amplitude"`
}

type LayerConfig struct {
	Depth             float64 `yaml:"depth"`
	Phase             float64 `yaml:"phase"`
	DriftAmplitude    float64 `yaml:"drift_amplitude"`
	DriftFrequency    float64 `yaml:"drift_frequency"`
	RotationAmplitude float64 `yaml:"rotation_amplitude"`
	RotationFrequency float64 `yaml:"rotation_frequency"`
}

type ColorConfig struct {
	Stops      []Color `yaml:"stops"`
	Drift      bool    `yaml:"drift"`
	FogDensity float64 `yaml:"fog_density"`
	Fog        Color   `yaml:"fog"`
	Clear      Color   `yaml:"clear"`
}

type ScrollConfig struct {
	Factor float64 `yaml:"factor"`
	// Step is the offset one mouse wheel notch or arrow key adds.
	Step float64 `yaml:"step"`
}

type BackdropConfig struct {
	Path string     `yaml:"path"`
	Fit  engine.Fit `yaml:"fit"`
}

type DustConfig struct {
	Enabled       bool    `yaml:"enabled"`
	Count         int     `yaml:"count"`
	Seed          int64   `yaml:"seed"`
	Size          float64 `yaml:"size"`
	Opacity       float64 `yaml:"opacity"`
	RotationSpeed float64 `yaml:"rotation_speed"`
	Color         Color   `yaml:"color"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default mirrors the engine defaults so a file only lists what it
// changes.
func Default() *Config {
	cfg := &Config{
		Window: WindowConfig{Width: 1280, Height: 720, Title: "Aurora", FPS: 60},
		Camera: CameraConfig{FOV: geometry.DefaultCamera.FovY, Distance: geometry.DefaultCamera.Distance},
		Surface: SurfaceConfig{
			Segments:       geometry.DefaultSegments,
			NoiseFrequency: shader.DefaultParams.NoiseFrequency,
			NoiseAmplitude: shader.DefaultParams.NoiseAmplitude,
		},
		Colors: ColorConfig{
			Stops: []Color{
				MustColor("#1a237e"),
				MustColor("#7c4dff"),
				MustColor("#00bcd4"),
				MustColor("#4caf50"),
			},
			Drift:      true,
			FogDensity: shader.DefaultFogDensity,
			Fog:        MustColor("black"),
			Clear:      MustColor("black"),
		},
		Scroll:   ScrollConfig{Factor: engine.DefaultScrollFactor, Step: 40},
		Backdrop: BackdropConfig{Fit: engine.FitCover},
		PostFX:   postfx.DefaultConfig(),
		Log:      LogConfig{Level: "warn"},
	}

	for _, l := range engine.DefaultLayers {
		cfg.Layers = append(cfg.Layers, LayerConfig{
			Depth:             l.DepthZ,
			Phase:             l.PhaseOffset,
			DriftAmplitude:    l.DriftAmplitude,
			DriftFrequency:    l.DriftFrequency,
			RotationAmplitude: l.RotationAmplitude,
			RotationFrequency: l.RotationFrequency,
		})
	}

	dust := particle.DefaultConfig()
	cfg.Dust = DustConfig{
		Count:         dust.Count,
		Seed:          dust.Seed,
		Size:          dust.Size,
		Opacity:       dust.Opacity,
		RotationSpeed: dust.RotationSpeed,
		Color:         MustColor("white"),
	}
	return cfg
}

// Parse decodes data over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse scene config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene config: %w", err)
	}
	return Parse(data)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window: size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Window.FPS <= 0 {
		errs = append(errs, fmt.Errorf("window.fps: must be positive, got %d", c.Window.FPS))
	}
	if c.Scroll.Factor < 0 {
		errs = append(errs, fmt.Errorf("scroll.factor: must not be negative, got %g", c.Scroll.Factor))
	}
	if err := c.PostFX.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("postfx: %w", err))
	}
	ec := c.Engine()
	if err := ec.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Engine converts the scene into engine settings. The backdrop image is
// loaded separately by the host.
func (c *Config) Engine() engine.Config {
	ec := engine.DefaultConfig()
	ec.Camera = geometry.Camera{FovY: c.Camera.FOV, Distance: c.Camera.Distance}
	ec.Segments = c.Surface.Segments
	ec.Params = shader.Params{
		NoiseFrequency: c.Surface.NoiseFrequency,
		NoiseAmplitude: c.Surface.NoiseAmplitude,
	}

	ec.Layers = ec.Layers[:0]
	for _, l := range c.Layers {
		ec.Layers = append(ec.Layers, engine.LayerSpec{
			DepthZ:            l.Depth,
			PhaseOffset:       l.Phase,
			DriftAmplitude:    l.DriftAmplitude,
			DriftFrequency:    l.DriftFrequency,
			RotationAmplitude: l.RotationAmplitude,
			RotationFrequency: l.RotationFrequency,
		})
	}

	ec.Base = shader.Uniforms{
		FogDensity: c.Colors.FogDensity,
		FogColor:   c.Colors.Fog.RGB,
	}
	for _, s := range c.Colors.Stops {
		ec.Base.ColorStops = append(ec.Base.ColorStops, s.RGB)
	}
	ec.Palette.Static = !c.Colors.Drift
	ec.ClearColor = c.Colors.Clear.RGB
	ec.ScrollFactor = c.Scroll.Factor
	ec.BackdropFit = c.Backdrop.Fit

	if c.Dust.Enabled {
		d := particle.DefaultConfig()
		d.Count = c.Dust.Count
		d.Seed = c.Dust.Seed
		d.Size = c.Dust.Size
		d.Opacity = c.Dust.Opacity
		d.RotationSpeed = c.Dust.RotationSpeed
		d.Color = [3]float64{c.Dust.Color.R, c.Dust.Color.G, c.Dust.Color.B}
		ec.Dust = &d
	}
	return ec
}
