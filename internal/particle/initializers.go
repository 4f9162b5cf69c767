package particle

import (
	"math"
	"math/rand"
)

// applyInitializer fills in the attributes one initializer controls.
func applyInitializer(rng *rand.Rand, p *Particle, init Initializer) {
	switch init.Name {
	case InitPosition:
		p.Position.X = init.X.lerp(rng.Float64())
		p.Position.Y = init.Y.lerp(rng.Float64())
		p.Position.Z = init.Z.lerp(rng.Float64())

	case InitAlpha:
		p.Alpha = init.Min + rng.Float64()*(init.Max-init.Min)

	case InitSize:
		t := rng.Float64()
		if init.Exponent != 0 {
			t = math.Pow(t, init.Exponent)
		}
		p.Size = init.Min + t*(init.Max-init.Min)
	}
}
