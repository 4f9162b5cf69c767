// Package rlgpu renders engine passes with raylib. All calls must come from
// the thread that owns the raylib window.
package rlgpu

import (
	"errors"
	"fmt"
	"image"
	"math"
	"unsafe"

	"linux-aurora/internal/engine"
	"linux-aurora/internal/geometry"
	"linux-aurora/internal/postfx"
	"linux-aurora/internal/shader"
	"linux-aurora/internal/utils"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ErrGPU is wrapped by every allocation failure reported by the device.
var ErrGPU = errors.New("gpu allocation failed")

// maxBandVertices keeps every uploaded band addressable with the 16-bit
// indices raylib meshes use.
const maxBandVertices = 65535

type Device struct {
	material rl.Material
	target   rl.RenderTexture2D
	hasRT    bool
	post     *Post
	result   rl.Texture2D
	live     map[string]int
}

// New creates the device. The raylib window must already be open.
func New(post postfx.Config) *Device {
	return &Device{
		material: rl.LoadMaterialDefault(),
		post:     NewPost(post),
		live:     map[string]int{},
	}
}

// Live reports the number of live resources of each kind.
func (d *Device) Live() map[string]int {
	out := make(map[string]int, len(d.live))
	for k, v := range d.live {
		out[k] = v
	}
	return out
}

type program struct {
	dev    *Device
	shader rl.Shader
	locs   auroraLocations
	done   bool
}

func (p *program) Release() {
	if p.done {
		return
	}
	p.done = true
	rl.UnloadShader(p.shader)
	p.dev.live["program"]--
}

func (d *Device) CreateProgram(params shader.Params) (engine.Resource, error) {
	s := rl.LoadShaderFromMemory(shader.AuroraVertex, shader.AuroraFragment)
	if s.ID == 0 {
		return nil, fmt.Errorf("%w: aurora shader did not compile", ErrGPU)
	}
	p := &program{dev: d, shader: s, locs: resolveAuroraLocations(s)}
	setFloat(s, p.locs.NoiseFreq, params.NoiseFrequency)
	setFloat(s, p.locs.NoiseAmp, params.NoiseAmplitude)
	d.live["program"]++
	utils.Info("RLGPU: aurora program loaded (ID: %d)", s.ID)
	return p, nil
}

type mesh struct {
	dev   *Device
	bands []rl.Mesh
	done  bool
}

func (m *mesh) Release() {
	if m.done {
		return
	}
	m.done = true
	for i := range m.bands {
		rl.UnloadMesh(&m.bands[i])
	}
	m.bands = nil
	m.dev.live["geometry"]--
}

// cArray copies src into raylib-owned memory so UnloadMesh can free it.
func cArray[T float32 | uint16](src []T) *T {
	if len(src) == 0 {
		return nil
	}
	var zero T
	p := (*T)(rl.MemAlloc(uint32(len(src) * int(unsafe.Sizeof(zero)))))
	if p == nil {
		return nil
	}
	copy(unsafe.Slice(p, len(src)), src)
	return p
}

func uploadBand(b geometry.Band) (rl.Mesh, error) {
	m := rl.Mesh{
		VertexCount:   int32(len(b.Positions) / 3),
		TriangleCount: int32(len(b.Indices) / 3),
		Vertices:      cArray(b.Positions),
		Texcoords:     cArray(b.UVs),
		Indices:       cArray(b.Indices),
	}
	if m.Vertices == nil || m.Texcoords == nil || m.Indices == nil {
		rl.UnloadMesh(&m)
		return rl.Mesh{}, fmt.Errorf("%w: out of memory for %d vertices", ErrGPU, m.VertexCount)
	}
	rl.UploadMesh(&m, false)
	if m.VboID == nil || *m.VboID == 0 {
		rl.UnloadMesh(&m)
		return rl.Mesh{}, fmt.Errorf("%w: vertex buffer upload failed", ErrGPU)
	}
	return m, nil
}

func (d *Device) CreateGeometry(gm *geometry.Mesh) (engine.Resource, error) {
	bands, err := gm.Bands(maxBandVertices)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGPU, err)
	}
	res := &mesh{dev: d}
	for _, b := range bands {
		m, err := uploadBand(b)
		if err != nil {
			for i := range res.bands {
				rl.UnloadMesh(&res.bands[i])
			}
			return nil, err
		}
		res.bands = append(res.bands, m)
	}
	d.live["geometry"]++
	utils.Debug("RLGPU: uploaded %d vertices in %d bands", gm.VertexCount(), len(bands))
	return res, nil
}

type texture struct {
	dev  *Device
	tex  rl.Texture2D
	done bool
}

func (t *texture) Release() {
	if t.done {
		return
	}
	t.done = true
	rl.UnloadTexture(t.tex)
	t.dev.live["texture"]--
}

func (d *Device) CreateTexture(img image.Image) (engine.Resource, error) {
	im := rl.NewImageFromImage(img)
	tex := rl.LoadTextureFromImage(im)
	rl.UnloadImage(im)
	if tex.ID == 0 {
		return nil, fmt.Errorf("%w: texture upload failed", ErrGPU)
	}
	rl.SetTextureFilter(tex, rl.FilterBilinear)
	d.live["texture"]++
	return &texture{dev: d, tex: tex}, nil
}

type points struct {
	dev       *Device
	positions []rl.Vector3
	done      bool
}

func (p *points) Release() {
	if p.done {
		return
	}
	p.done = true
	p.positions = nil
	p.dev.live["points"]--
}

func (d *Device) CreatePoints(positions []float32) (engine.Resource, error) {
	pts := make([]rl.Vector3, len(positions)/3)
	for i := range pts {
		pts[i] = rl.NewVector3(positions[i*3], positions[i*3+1], positions[i*3+2])
	}
	d.live["points"]++
	return &points{dev: d, positions: pts}, nil
}

func toColor(c shader.RGB, alpha float64) rl.Color {
	return rl.NewColor(
		uint8(utils.Clamp(c.R, 0, 1)*255+0.5),
		uint8(utils.Clamp(c.G, 0, 1)*255+0.5),
		uint8(utils.Clamp(c.B, 0, 1)*255+0.5),
		uint8(utils.Clamp(alpha, 0, 1)*255+0.5),
	)
}

func (d *Device) ensureTarget(s geometry.Surface) {
	w, h := int32(s.Width), int32(s.Height)
	if d.hasRT && d.target.Texture.Width == w && d.target.Texture.Height == h {
		return
	}
	if d.hasRT {
		rl.UnloadRenderTexture(d.target)
	}
	utils.Debug("RLGPU: allocating %dx%d scene target", w, h)
	d.target = rl.LoadRenderTexture(w, h)
	rl.SetTextureFilter(d.target.Texture, rl.FilterBilinear)
	d.hasRT = true
}

// Render draws the pass into the scene target and runs post-processing.
// The frame stays on the GPU; Present puts it on screen.
func (d *Device) Render(pass *engine.Pass) engine.Frame {
	s := pass.View.Surface
	frame := engine.Frame{Seq: pass.Seq, Elapsed: pass.Elapsed, Surface: s}
	if s.Empty() {
		return frame
	}
	d.ensureTarget(s)

	rl.BeginTextureMode(d.target)
	rl.ClearBackground(toColor(pass.Clear, 1))

	if pass.Backdrop != nil {
		if tex, ok := pass.Backdrop.Texture.(*texture); ok {
			drawBackdrop(tex.tex, pass.Backdrop.Fit, s)
		}
	}

	v := pass.View
	cam := rl.Camera3D{
		Position:   rl.NewVector3(0, float32(v.Y), float32(v.Camera.Distance)),
		Target:     rl.NewVector3(0, float32(v.Y), 0),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       float32(v.Camera.FovY),
		Projection: rl.CameraPerspective,
	}

	rl.BeginMode3D(cam)
	rl.BeginBlendMode(rl.BlendAdditive)
	rl.DisableDepthMask()
	rl.DisableBackfaceCulling()

	for i := range pass.Layers {
		d.drawLayer(&pass.Layers[i])
	}
	if pass.Dust != nil {
		if pts, ok := pass.Dust.Points.(*points); ok {
			drawDust(pts.positions, pass.Dust)
		}
	}

	rl.EnableBackfaceCulling()
	rl.EnableDepthMask()
	rl.EndBlendMode()
	rl.EndMode3D()
	rl.EndTextureMode()

	d.result = d.post.Apply(d.target.Texture)
	return frame
}

func (d *Device) drawLayer(l *engine.LayerDraw) {
	prog, ok1 := l.Program.(*program)
	m, ok2 := l.Geometry.(*mesh)
	if !ok1 || !ok2 {
		return
	}
	applyUniforms(prog.shader, &prog.locs, l.Uniforms)
	d.material.Shader = prog.shader

	transform := rl.MatrixMultiply(
		rl.MatrixRotateZ(float32(l.Transform.RotationZ)),
		rl.MatrixTranslate(0, float32(l.Transform.PositionY), float32(l.DepthZ)),
	)
	for i := range m.bands {
		rl.DrawMesh(m.bands[i], d.material, transform)
	}
}

func drawDust(pts []rl.Vector3, dust *engine.DustDraw) {
	col := toColor(dust.Color, dust.Opacity)
	sin, cos := math.Sincos(dust.RotationY)
	s, c := float32(sin), float32(cos)
	for _, p := range pts {
		rl.DrawPoint3D(rl.NewVector3(p.X*c+p.Z*s, p.Y, -p.X*s+p.Z*c), col)
	}
}

func drawBackdrop(tex rl.Texture2D, fit engine.Fit, s geometry.Surface) {
	iw, ih := float64(tex.Width), float64(tex.Height)
	if iw == 0 || ih == 0 {
		return
	}
	sw, sh := float64(s.Width)/iw, float64(s.Height)/ih
	scale := math.Max(sw, sh)
	if fit == engine.FitContain {
		scale = math.Min(sw, sh)
	}
	dst := rl.NewRectangle(
		float32((float64(s.Width)-iw*scale)/2),
		float32((float64(s.Height)-ih*scale)/2),
		float32(iw*scale),
		float32(ih*scale),
	)
	src := rl.NewRectangle(0, 0, float32(iw), float32(ih))
	rl.DrawTexturePro(tex, src, dst, rl.NewVector2(0, 0), 0, rl.White)
}

// Present draws the last rendered frame into dst on the current
// framebuffer.
func (d *Device) Present(dst rl.Rectangle) {
	if d.result.ID == 0 {
		return
	}
	w, h := float32(d.result.Width), float32(d.result.Height)
	// Render textures are stored bottom-up.
	src := rl.NewRectangle(0, 0, w, -h)
	rl.DrawTexturePro(d.result, src, dst, rl.NewVector2(0, 0), 0, rl.White)
}

// Close unloads device-level targets. Engine resources must already be
// released through the engine.
func (d *Device) Close() {
	if d.hasRT {
		rl.UnloadRenderTexture(d.target)
		d.hasRT = false
	}
	d.result = rl.Texture2D{}
	d.post.Unload()
	for kind, n := range d.live {
		if n != 0 {
			utils.Warn("RLGPU: %d %s resources still live at close", n, kind)
		}
	}
}
