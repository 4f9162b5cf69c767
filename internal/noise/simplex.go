// Package noise implements the 3-D simplex gradient noise that drives the
// aurora surface displacement and colour mixing.
package noise

import "math"

type Vec3 struct {
	X, Y, Z float64
}

type vec4 [4]float64

const (
	skewF      = 1.0 / 3.0
	unskewG    = 1.0 / 6.0
	latticeMod = 289.0
)

func mod289(x float64) float64 {
	return x - latticeMod*math.Floor(x/latticeMod)
}

func permute(x float64) float64 {
	return mod289((x*34 + 1) * x)
}

func taylorInvSqrt(r float64) float64 {
	return 1.79284291400159 - 0.85373472095314*r
}

func step(edge, x float64) float64 {
	if x < edge {
		return 0
	}
	return 1
}

func dot3(ax, ay, az, bx, by, bz float64) float64 {
	return ax*bx + ay*by + az*bz
}

// Simplex3 evaluates simplex noise at (x, y, z). The result lies roughly in
// [-1, 1] and is continuous in all three coordinates.
func Simplex3(x, y, z float64) float64 {
	// First corner of the skewed cell.
	s := (x + y + z) * skewF
	ix, iy, iz := math.Floor(x+s), math.Floor(y+s), math.Floor(z+s)
	t := (ix + iy + iz) * unskewG
	x0, y0, z0 := x-ix+t, y-iy+t, z-iz+t

	// Remaining corners, ordered by the magnitude of the offsets.
	gx, gy, gz := step(y0, x0), step(z0, y0), step(x0, z0)
	lx, ly, lz := 1-gx, 1-gy, 1-gz
	i1x, i1y, i1z := math.Min(gx, lz), math.Min(gy, lx), math.Min(gz, ly)
	i2x, i2y, i2z := math.Max(gx, lz), math.Max(gy, lx), math.Max(gz, ly)

	x1, y1, z1 := x0-i1x+unskewG, y0-i1y+unskewG, z0-i1z+unskewG
	x2, y2, z2 := x0-i2x+2*unskewG, y0-i2y+2*unskewG, z0-i2z+2*unskewG
	x3, y3, z3 := x0-1+3*unskewG, y0-1+3*unskewG, z0-1+3*unskewG

	ix, iy, iz = mod289(ix), mod289(iy), mod289(iz)
	var p vec4
	offX := vec4{0, i1x, i2x, 1}
	offY := vec4{0, i1y, i2y, 1}
	offZ := vec4{0, i1z, i2z, 1}
	for k := range p {
		v := permute(iz + offZ[k])
		v = permute(v + iy + offY[k])
		p[k] = permute(v + ix + offX[k])
	}

	// Gradients: 7x7 points over a square, mapped onto an octahedron.
	const n = 1.0 / 7.0
	nsX, nsY, nsZ := n*2, n*0.5-1, n*1

	var gxs, gys, gzs vec4
	for k := range p {
		j := p[k] - 49*math.Floor(p[k]*nsZ*nsZ)
		xq := math.Floor(j * nsZ)
		yq := math.Floor(j - 7*xq)
		gxk := xq*nsX + nsY
		gyk := yq*nsX + nsY
		h := 1 - math.Abs(gxk) - math.Abs(gyk)

		// Fold the lower half of the octahedron back up.
		if h <= 0 {
			gxk -= math.Floor(gxk)*2 + 1
			gyk -= math.Floor(gyk)*2 + 1
		}
		gxs[k], gys[k], gzs[k] = gxk, gyk, h
	}

	corners := [4][3]float64{{x0, y0, z0}, {x1, y1, z1}, {x2, y2, z2}, {x3, y3, z3}}
	var sum float64
	for k, c := range corners {
		norm := taylorInvSqrt(dot3(gxs[k], gys[k], gzs[k], gxs[k], gys[k], gzs[k]))
		m := math.Max(0.6-dot3(c[0], c[1], c[2], c[0], c[1], c[2]), 0)
		m *= m
		sum += m * m * norm * dot3(gxs[k], gys[k], gzs[k], c[0], c[1], c[2])
	}
	return 42 * sum
}

// Sample is the time-advected field: every coordinate is shifted by t so
// the pattern flows diagonally as time advances.
func Sample(p Vec3, t float64) float64 {
	return Simplex3(p.X+t, p.Y+t, p.Z+t)
}
