// Package geometry builds the subdivided planes every aurora layer draws
// and the world-space viewport they are sized to.
package geometry

import "math"

// Surface is the pixel size of the host drawing area.
type Surface struct {
	Width, Height int
}

func (s Surface) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

func (s Surface) Aspect() float64 {
	if s.Height <= 0 {
		return 0
	}
	return float64(s.Width) / float64(s.Height)
}

// Camera is a perspective camera on the +Z axis looking at the origin.
type Camera struct {
	FovY     float64 // degrees
	Distance float64
}

var DefaultCamera = Camera{FovY: 75, Distance: 20}

// Viewport is the world-space extent visible at the camera's focus plane.
type Viewport struct {
	Width, Height float64
}

func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0 &&
		!math.IsInf(v.Width, 0) && !math.IsInf(v.Height, 0) &&
		!math.IsNaN(v.Width) && !math.IsNaN(v.Height)
}

// ViewportAt returns the extent visible at the given distance from the
// camera for a surface of the given aspect ratio.
func (c Camera) ViewportAt(distance, aspect float64) Viewport {
	h := 2 * math.Tan(c.FovY*math.Pi/360) * distance
	return Viewport{Width: h * aspect, Height: h}
}

// Viewport returns the extent at the origin plane for surface s. An empty
// surface yields an invalid viewport.
func (c Camera) Viewport(s Surface) Viewport {
	if s.Empty() {
		return Viewport{}
	}
	return c.ViewportAt(c.Distance, s.Aspect())
}
