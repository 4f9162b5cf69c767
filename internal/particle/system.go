// Package particle generates the static dust cloud drawn in front of the
// aurora layers.
package particle

import (
	"fmt"
	"math"
	"math/rand"
)

type Cloud struct {
	Config    Config
	Particles []Particle
	Rotation  float64
}

// NewCloud spawns every particle up front. The same config always yields
// the same cloud.
func NewCloud(cfg Config) (*Cloud, error) {
	if cfg.Count < 0 {
		return nil, fmt.Errorf("particle count must not be negative, got %d", cfg.Count)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	c := &Cloud{
		Config:    cfg,
		Particles: make([]Particle, cfg.Count),
	}
	for i := range c.Particles {
		p := &c.Particles[i]
		p.Alpha = cfg.Opacity
		p.Size = cfg.Size
		for _, init := range cfg.Initializers {
			applyInitializer(rng, p, init)
		}
	}
	return c, nil
}

// Update sets the cloud's spin for the given time since mount.
func (c *Cloud) Update(elapsed float64) {
	c.Rotation = elapsed * c.Config.RotationSpeed
}

// Positions returns the spawn positions flattened to x, y, z triples.
func (c *Cloud) Positions() []float32 {
	out := make([]float32, 0, len(c.Particles)*3)
	for _, p := range c.Particles {
		out = append(out, float32(p.Position.X), float32(p.Position.Y), float32(p.Position.Z))
	}
	return out
}

// RotateY turns v about the Y axis by angle radians.
func RotateY(v Vec3, angle float64) Vec3 {
	s, co := math.Sincos(angle)
	return Vec3{
		X: v.X*co + v.Z*s,
		Y: v.Y,
		Z: -v.X*s + v.Z*co,
	}
}
