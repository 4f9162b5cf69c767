package config

import (
	"fmt"

	css "github.com/mazznoer/csscolorparser"
	"gopkg.in/yaml.v3"

	"linux-aurora/internal/shader"
)

// Color is any CSS colour string: names, #hex, rgb(), hsl().
type Color struct {
	shader.RGB
	Source string
}

func ParseColor(str string) (Color, error) {
	c, err := css.Parse(str)
	if err != nil {
		return Color{}, fmt.Errorf("invalid colour %q: %w", str, err)
	}
	return Color{RGB: shader.RGB{R: c.R, G: c.G, B: c.B}, Source: str}, nil
}

func MustColor(str string) Color {
	c, err := ParseColor(str)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("line %d: colour must be a string", value.Line)
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*c = parsed
	return nil
}

func (c Color) MarshalYAML() (interface{}, error) {
	if c.Source != "" {
		return c.Source, nil
	}
	return fmt.Sprintf("#%02x%02x%02x", to8(c.R), to8(c.G), to8(c.B)), nil
}

func to8(v float64) uint8 {
	return uint8(max(0, min(1, v))*255 + 0.5)
}
