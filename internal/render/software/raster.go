package software

import (
	"image"
	"math"

	"linux-aurora/internal/engine"
	"linux-aurora/internal/geometry"
	"linux-aurora/internal/particle"
	"linux-aurora/internal/shader"
)

const nearPlane = 0.1

// projector maps world points to pixels for a camera on +Z looking down
// -Z from (0, Y, Distance).
type projector struct {
	camY, dist float64
	focal      float64
	cx, cy     float64
	w, h       int
}

func newProjector(v engine.View) projector {
	return projector{
		camY:  v.Y,
		dist:  v.Camera.Distance,
		focal: float64(v.Surface.Height) / 2 / math.Tan(v.Camera.FovY*math.Pi/360),
		cx:    float64(v.Surface.Width) / 2,
		cy:    float64(v.Surface.Height) / 2,
		w:     v.Surface.Width,
		h:     v.Surface.Height,
	}
}

func (p projector) project(x, y, z float64) (sx, sy, depth float64, ok bool) {
	depth = p.dist - z
	if depth < nearPlane {
		return 0, 0, depth, false
	}
	sx = p.cx + x*p.focal/depth
	sy = p.cy - (y-p.camY)*p.focal/depth
	return sx, sy, depth, true
}

type vertex struct {
	x, y    float64
	invW    float64
	u, v, n float64
	ok      bool
}

func (d *Device) drawLayer(cam projector, params shader.Params, m *mesh, l *engine.LayerDraw) {
	un := l.Uniforms
	sin, cos := math.Sincos(l.Transform.RotationZ)

	count := len(m.positions) / 3
	verts := make([]vertex, count)
	for i := 0; i < count; i++ {
		x := float64(m.positions[i*3])
		y := float64(m.positions[i*3+1])
		dz, n := params.Displacement(x, y, un.Time)

		wx := x*cos - y*sin
		wy := x*sin + y*cos + l.Transform.PositionY
		wz := float64(m.positions[i*3+2]) + dz + l.DepthZ

		sx, sy, depth, ok := cam.project(wx, wy, wz)
		verts[i] = vertex{
			x: sx, y: sy,
			invW: 1 / depth,
			u:    float64(m.uvs[i*2]),
			v:    float64(m.uvs[i*2+1]),
			n:    n,
			ok:   ok,
		}
	}

	shade := func(i int, u, v, n, depth float64) {
		frag := shader.Fragment(u, v, n, depth, un)
		d.accum[i] += frag.R * frag.A
		d.accum[i+1] += frag.G * frag.A
		d.accum[i+2] += frag.B * frag.A
	}
	for t := 0; t+2 < len(m.indices); t += 3 {
		a, b, c := &verts[m.indices[t]], &verts[m.indices[t+1]], &verts[m.indices[t+2]]
		if !a.ok || !b.ok || !c.ok {
			continue
		}
		fillTriangle(cam, a, b, c, shade)
	}
}

func edge(ax, ay, bx, by, px, py float64) float64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// owns decides which of two triangles sharing an edge covers pixels that
// fall exactly on it, so additive layers never double count a seam.
func owns(a, b *vertex) bool {
	dx, dy := b.x-a.x, b.y-a.y
	return dy > 0 || (dy == 0 && dx < 0)
}

func inside(e float64, own bool) bool {
	return e > 0 || (e == 0 && own)
}

// fillTriangle calls shade for every covered pixel centre with the
// perspective-correct attributes and the accumulator offset of the pixel.
func fillTriangle(cam projector, a, b, c *vertex, shade func(i int, u, v, n, depth float64)) {
	area := edge(a.x, a.y, b.x, b.y, c.x, c.y)
	if area == 0 || math.IsNaN(area) {
		return
	}
	if area < 0 {
		b, c = c, b
		area = -area
	}

	minX := max(0, int(math.Floor(min(a.x, b.x, c.x))))
	maxX := min(cam.w-1, int(math.Ceil(max(a.x, b.x, c.x))))
	minY := max(0, int(math.Floor(min(a.y, b.y, c.y))))
	maxY := min(cam.h-1, int(math.Ceil(max(a.y, b.y, c.y))))
	if minX > maxX || minY > maxY {
		return
	}

	ownA, ownB, ownC := owns(b, c), owns(c, a), owns(a, b)
	for py := minY; py <= maxY; py++ {
		fy := float64(py) + 0.5
		for px := minX; px <= maxX; px++ {
			fx := float64(px) + 0.5
			e0 := edge(b.x, b.y, c.x, c.y, fx, fy)
			e1 := edge(c.x, c.y, a.x, a.y, fx, fy)
			e2 := edge(a.x, a.y, b.x, b.y, fx, fy)
			if !inside(e0, ownA) || !inside(e1, ownB) || !inside(e2, ownC) {
				continue
			}

			l0, l1, l2 := e0/area, e1/area, e2/area
			iw := l0*a.invW + l1*b.invW + l2*c.invW
			w0, w1, w2 := l0*a.invW/iw, l1*b.invW/iw, l2*c.invW/iw

			u := w0*a.u + w1*b.u + w2*c.u
			v := w0*a.v + w1*b.v + w2*c.v
			n := w0*a.n + w1*b.n + w2*c.n

			shade((py*cam.w+px)*3, u, v, n, 1/iw)
		}
	}
}

func (d *Device) drawDust(cam projector, positions []float32, dust *engine.DustDraw) {
	r := dust.Color.R * dust.Opacity
	g := dust.Color.G * dust.Opacity
	b := dust.Color.B * dust.Opacity

	for i := 0; i+2 < len(positions); i += 3 {
		p := particle.RotateY(particle.Vec3{
			X: float64(positions[i]),
			Y: float64(positions[i+1]),
			Z: float64(positions[i+2]),
		}, dust.RotationY)

		sx, sy, depth, ok := cam.project(p.X, p.Y, p.Z)
		if !ok {
			continue
		}
		size := max(1, int(math.Round(dust.Size*cam.focal/depth)))
		x0 := int(math.Floor(sx)) - size/2
		y0 := int(math.Floor(sy)) - size/2
		for y := max(0, y0); y < min(cam.h, y0+size); y++ {
			for x := max(0, x0); x < min(cam.w, x0+size); x++ {
				k := (y*cam.w + x) * 3
				d.accum[k] += r
				d.accum[k+1] += g
				d.accum[k+2] += b
			}
		}
	}
}

// drawBackdrop composites img over the cleared frame, scaled to cover or
// fit the surface and centred.
func (d *Device) drawBackdrop(img *image.RGBA, fit engine.Fit, s geometry.Surface) {
	iw, ih := img.Rect.Dx(), img.Rect.Dy()
	if iw == 0 || ih == 0 {
		return
	}

	sw, sh := float64(s.Width)/float64(iw), float64(s.Height)/float64(ih)
	scale := math.Max(sw, sh)
	if fit == engine.FitContain {
		scale = math.Min(sw, sh)
	}
	offX := (float64(s.Width) - float64(iw)*scale) / 2
	offY := (float64(s.Height) - float64(ih)*scale) / 2

	for y := 0; y < s.Height; y++ {
		srcY := int(math.Floor((float64(y) + 0.5 - offY) / scale))
		if srcY < 0 || srcY >= ih {
			continue
		}
		for x := 0; x < s.Width; x++ {
			srcX := int(math.Floor((float64(x) + 0.5 - offX) / scale))
			if srcX < 0 || srcX >= iw {
				continue
			}
			o := img.PixOffset(srcX, srcY)
			a := float64(img.Pix[o+3]) / 255
			k := (y*s.Width + x) * 3
			// premultiplied source
			d.accum[k] = float64(img.Pix[o])/255 + d.accum[k]*(1-a)
			d.accum[k+1] = float64(img.Pix[o+1])/255 + d.accum[k+1]*(1-a)
			d.accum[k+2] = float64(img.Pix[o+2])/255 + d.accum[k+2]*(1-a)
		}
	}
}
