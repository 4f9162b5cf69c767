package utils

import (
	"math"

	"golang.org/x/exp/constraints"
)

func Clamp[N constraints.Integer | constraints.Float](n, minN, maxN N) N {
	n = min(n, maxN)
	n = max(n, minN)
	return n
}

func Lerp[F constraints.Float](a, b, t F) F {
	return a*(1-t) + b*t
}

// Smoothstep is the GLSL smoothstep: Hermite interpolation of x between
// edge0 and edge1, clamped to [0, 1].
func Smoothstep[F constraints.Float](edge0, edge1, x F) F {
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// Fract returns x - floor(x).
func Fract(x float64) float64 {
	return x - math.Floor(x)
}

// Mod is the GLSL mod: the result has the sign of y.
func Mod(x, y float64) float64 {
	return x - y*math.Floor(x/y)
}
