package engine

import (
	"cmp"
	"slices"

	"linux-aurora/internal/geometry"
	"linux-aurora/internal/particle"
	"linux-aurora/internal/shader"
)

// Compositor turns the current engine state into a Pass. It owns no
// resources.
type Compositor struct {
	Camera      geometry.Camera
	Clear       shader.RGB
	BackdropFit Fit
}

type sceneState struct {
	seq        uint64
	elapsed    float64
	surface    geometry.Surface
	cameraY    float64
	program    Resource
	layers     []*Layer
	backdrop   Resource
	dust       *particle.Cloud
	dustPoints Resource
}

func (c *Compositor) compose(s sceneState) *Pass {
	pass := &Pass{
		Seq:     s.seq,
		Elapsed: s.elapsed,
		View: View{
			Camera:  c.Camera,
			Y:       s.cameraY,
			Surface: s.surface,
		},
		Clear:  c.Clear,
		Layers: make([]LayerDraw, 0, len(s.layers)),
	}

	if s.backdrop != nil {
		pass.Backdrop = &BackdropDraw{Texture: s.backdrop, Fit: c.BackdropFit}
	}

	for _, l := range s.layers {
		if l.geometry == nil {
			continue
		}
		pass.Layers = append(pass.Layers, LayerDraw{
			Program:   s.program,
			Geometry:  l.geometry,
			DepthZ:    l.Spec.DepthZ,
			Transform: l.Transform,
			Uniforms:  &l.Uniforms,
		})
	}
	// Additive layers need no depth test; far ones still go first so a
	// device with depth testing gets the same result.
	slices.SortStableFunc(pass.Layers, func(a, b LayerDraw) int {
		return cmp.Compare(a.DepthZ, b.DepthZ)
	})

	if s.dust != nil && s.dustPoints != nil {
		cfg := s.dust.Config
		pass.Dust = &DustDraw{
			Points:    s.dustPoints,
			RotationY: s.dust.Rotation,
			Size:      cfg.Size,
			Opacity:   cfg.Opacity,
			Color:     shader.RGB{R: cfg.Color[0], G: cfg.Color[1], B: cfg.Color[2]},
		}
	}

	return pass
}
