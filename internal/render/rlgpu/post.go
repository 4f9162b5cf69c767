package rlgpu

import (
	"linux-aurora/internal/postfx"
	"linux-aurora/internal/shader"
	"linux-aurora/internal/utils"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Post runs bloom then pixelation on the GPU, ping-ponging between two
// render targets sized to the input.
type Post struct {
	cfg postfx.Config

	bloom     rl.Shader
	bloomLocs bloomLocations
	pixel     rl.Shader
	pixelLocs pixelateLocations

	ping  [2]rl.RenderTexture2D
	ready bool
}

func NewPost(cfg postfx.Config) *Post {
	p := &Post{cfg: cfg}
	if cfg.Bloom.Enabled {
		p.bloom = rl.LoadShaderFromMemory(shader.PostVertex, shader.BloomFragment)
		if p.bloom.ID == 0 {
			utils.Warn("RLGPU: bloom shader failed to compile, bloom disabled")
		} else {
			p.bloomLocs = resolveBloomLocations(p.bloom)
		}
	}
	if cfg.Pixelation.Cell() > 0 {
		p.pixel = rl.LoadShaderFromMemory(shader.PostVertex, shader.PixelateFragment)
		if p.pixel.ID == 0 {
			utils.Warn("RLGPU: pixelate shader failed to compile, pixelation disabled")
		} else {
			p.pixelLocs = resolvePixelateLocations(p.pixel)
		}
	}
	return p
}

func (p *Post) ensureTargets(w, h int32) {
	if p.ready && p.ping[0].Texture.Width == w && p.ping[0].Texture.Height == h {
		return
	}
	if p.ready {
		rl.UnloadRenderTexture(p.ping[0])
		rl.UnloadRenderTexture(p.ping[1])
	}
	p.ping[0] = rl.LoadRenderTexture(w, h)
	p.ping[1] = rl.LoadRenderTexture(w, h)
	rl.SetTextureFilter(p.ping[0].Texture, rl.FilterBilinear)
	rl.SetTextureFilter(p.ping[1].Texture, rl.FilterBilinear)
	p.ready = true
}

// Apply returns the processed texture: src itself when every stage is off.
// src must be a render texture so all stages share its orientation.
func (p *Post) Apply(src rl.Texture2D) rl.Texture2D {
	doBloom := p.bloom.ID != 0 && p.cfg.Bloom.Intensity > 0
	cell := p.cfg.Pixelation.Cell()
	doPixel := p.pixel.ID != 0 && cell > 0
	if !doBloom && !doPixel {
		return src
	}

	w, h := src.Width, src.Height
	p.ensureTargets(w, h)
	cur, next := src, 0

	if doBloom {
		b := p.cfg.Bloom
		setVec2(p.bloom, p.bloomLocs.TexelSize, 1/float64(w), 1/float64(h))
		setFloat(p.bloom, p.bloomLocs.Threshold, b.LuminanceThreshold)
		setFloat(p.bloom, p.bloomLocs.Smoothing, b.LuminanceSmoothing)
		setFloat(p.bloom, p.bloomLocs.Intensity, b.Intensity)
		setFloat(p.bloom, p.bloomLocs.Radius, b.KernelSize.Radius()*float64(h)/1080)
		cur = p.pass(p.bloom, cur, next)
		next = 1 - next
	}
	if doPixel {
		setVec2(p.pixel, p.pixelLocs.Resolution, float64(w), float64(h))
		setFloat(p.pixel, p.pixelLocs.Granularity, float64(cell))
		cur = p.pass(p.pixel, cur, next)
	}
	return cur
}

func (p *Post) pass(s rl.Shader, src rl.Texture2D, target int) rl.Texture2D {
	rt := p.ping[target]
	w, h := float32(src.Width), float32(src.Height)

	rl.BeginTextureMode(rt)
	rl.ClearBackground(rl.Blank)
	rl.BeginShaderMode(s)
	rl.DrawTexturePro(src, rl.NewRectangle(0, 0, w, -h), rl.NewRectangle(0, 0, w, h), rl.NewVector2(0, 0), 0, rl.White)
	rl.EndShaderMode()
	rl.EndTextureMode()
	return rt.Texture
}

func (p *Post) Unload() {
	if p.ready {
		rl.UnloadRenderTexture(p.ping[0])
		rl.UnloadRenderTexture(p.ping[1])
		p.ready = false
	}
	if p.bloom.ID != 0 {
		rl.UnloadShader(p.bloom)
		p.bloom = rl.Shader{}
	}
	if p.pixel.ID != 0 {
		rl.UnloadShader(p.pixel)
		p.pixel = rl.Shader{}
	}
}
