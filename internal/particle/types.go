package particle

type Vec3 struct {
	X, Y, Z float64
}

// Range is an inclusive-exclusive interval sampled uniformly.
type Range struct {
	Min, Max float64
}

func (r Range) lerp(t float64) float64 {
	return r.Min + t*(r.Max-r.Min)
}

type Particle struct {
	Position Vec3
	Alpha    float64
	Size     float64
}

// Initializer names understood by a cloud config.
const (
	InitPosition = "positionrandom"
	InitAlpha    = "alpharandom"
	InitSize     = "sizerandom"
)

type Initializer struct {
	Name     string
	X, Y, Z  Range
	Min, Max float64
	Exponent float64
}

type Config struct {
	Count         int
	Seed          int64
	RotationSpeed float64 // radians per second about Y
	Size          float64
	Opacity       float64
	Color         [3]float64
	Initializers  []Initializer
}

// DefaultConfig is a sparse dust field hanging in front of the aurora.
func DefaultConfig() Config {
	return Config{
		Count:         50000,
		Seed:          1,
		RotationSpeed: 0.05,
		Size:          0.02,
		Opacity:       0.06,
		Color:         [3]float64{1, 1, 1},
		Initializers: []Initializer{
			{
				Name: InitPosition,
				X:    Range{-25, 25},
				Y:    Range{0, 20},
				Z:    Range{-25, 25},
			},
		},
	}
}
