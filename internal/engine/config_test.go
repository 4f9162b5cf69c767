package engine

import (
	"testing"

	"linux-aurora/internal/geometry"
	"linux-aurora/internal/particle"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero fov", func(c *Config) { c.Camera.FovY = 0 }, true},
		{"negative distance", func(c *Config) { c.Camera.Distance = -1 }, true},
		{"no segments", func(c *Config) { c.Segments = 0 }, true},
		{"max segments", func(c *Config) { c.Segments = geometry.MaxSegments }, false},
		{"too many segments", func(c *Config) { c.Segments = 70000 }, true},
		{"no layers", func(c *Config) { c.Layers = nil }, true},
		{"bad fit", func(c *Config) { c.BackdropFit = "stretch" }, true},
		{"negative dust", func(c *Config) { c.Dust = &particle.Config{Count: -5} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
