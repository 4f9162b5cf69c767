package debug

import (
	"math"

	"linux-aurora/internal/geometry"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var boundColors = []rl.Color{
	rl.NewColor(0, 255, 0, 255),
	rl.NewColor(0, 255, 255, 255),
	rl.NewColor(255, 255, 0, 255),
}

// LayerCorners returns the world-space corners of a layer plane after its
// drift transform, in outline order.
func LayerCorners(vp geometry.Viewport, l LayerInfo) [4]rl.Vector3 {
	hw, hh := vp.Width/2, vp.Height/2
	sin, cos := math.Sincos(l.RotationZ)
	local := [4][2]float64{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}

	var out [4]rl.Vector3
	for i, p := range local {
		out[i] = rl.NewVector3(
			float32(p[0]*cos-p[1]*sin),
			float32(p[0]*sin+p[1]*cos+l.PositionY),
			float32(l.DepthZ),
		)
	}
	return out
}

func (d *DebugOverlay) drawLayerBounds(snap Snapshot, cam geometry.Camera) {
	if !snap.Viewport.Valid() || snap.Surface.Empty() {
		return
	}
	camera := rl.Camera3D{
		Position:   rl.NewVector3(0, float32(snap.CameraY), float32(cam.Distance)),
		Target:     rl.NewVector3(0, float32(snap.CameraY), 0),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       float32(cam.FovY),
		Projection: rl.CameraPerspective,
	}
	w, h := int32(snap.Surface.Width), int32(snap.Surface.Height)

	for i, l := range snap.Layers {
		col := boundColors[i%len(boundColors)]
		corners := LayerCorners(snap.Viewport, l)
		var screen [4]rl.Vector2
		for k, c := range corners {
			screen[k] = rl.GetWorldToScreenEx(c, camera, w, h)
		}
		for k := range screen {
			rl.DrawLineV(screen[k], screen[(k+1)%4], col)
		}
	}
}
