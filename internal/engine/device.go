package engine

import (
	"image"

	"linux-aurora/internal/geometry"
	"linux-aurora/internal/shader"
)

// Resource is a device-owned allocation. Release is called exactly once.
type Resource interface {
	Release()
}

// Device is the execution target for a composed pass. Create* report
// allocation failures; Render cannot fail.
type Device interface {
	CreateProgram(params shader.Params) (Resource, error)
	CreateGeometry(mesh *geometry.Mesh) (Resource, error)
	CreateTexture(img image.Image) (Resource, error)
	CreatePoints(positions []float32) (Resource, error)
	Render(pass *Pass) Frame
}

type Transform struct {
	PositionY float64
	RotationZ float64
}

type LayerDraw struct {
	Program   Resource
	Geometry  Resource
	DepthZ    float64
	Transform Transform
	Uniforms  *shader.Uniforms
}

type BackdropDraw struct {
	Texture Resource
	Fit     Fit
}

type DustDraw struct {
	Points    Resource
	RotationY float64
	Size      float64
	Opacity   float64
	Color     shader.RGB
}

// View is where the camera sits for one pass. The camera looks down -Z
// from (0, Y, Distance).
type View struct {
	Camera  geometry.Camera
	Y       float64
	Surface geometry.Surface
}

// Pass is everything a device needs to draw one frame, in draw order:
// backdrop, layers far to near, then dust.
type Pass struct {
	Seq      uint64
	Elapsed  float64
	View     View
	Clear    shader.RGB
	Backdrop *BackdropDraw
	Layers   []LayerDraw
	Dust     *DustDraw
}

// Frame is the rendered colour buffer handed to post-processing. Image is
// nil for devices that keep the frame on the GPU.
type Frame struct {
	Seq     uint64
	Elapsed float64
	Surface geometry.Surface
	Image   *image.RGBA
}

type FrameSink interface {
	Present(Frame)
}

type SinkFunc func(Frame)

func (f SinkFunc) Present(fr Frame) { f(fr) }
