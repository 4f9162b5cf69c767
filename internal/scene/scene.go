// Package scene resolves a scene file or bundle into its configuration
// and backdrop image.
package scene

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"path/filepath"
	"strings"

	"linux-aurora/internal/config"
	"linux-aurora/internal/convert"
	"linux-aurora/internal/utils"
)

// Files are the scene names tried, in order, inside a bundle.
var Files = []string{"scene.yaml", "aurora.yaml", "scene.yml"}

// Scene is a loaded scene file plus the bundle it came from, if any.
type Scene struct {
	Config *config.Config
	Path   string
	bundle *convert.Bundle
}

func (s *Scene) Close() {
	if s.bundle != nil {
		s.bundle.Close()
	}
}

// Load reads a YAML scene or a .pkg bundle. With no path it searches
// the usual locations and falls back to the built-in defaults.
func Load(path string) (*Scene, error) {
	if path == "" {
		path = utils.FindSceneConfig()
		if path == "" {
			utils.Info("No scene file found, using defaults")
			return &Scene{Config: config.Default()}, nil
		}
	}
	utils.Info("Loading scene: %s", path)

	if !strings.EqualFold(filepath.Ext(path), convert.BundleExt) {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		return &Scene{Config: cfg, Path: path}, nil
	}

	b, err := convert.OpenBundle(path)
	if err != nil {
		return nil, err
	}
	for _, name := range Files {
		data, err := b.ReadFile(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			b.Close()
			return nil, err
		}
		cfg, err := config.Parse(data)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("%s in %s: %w", name, path, err)
		}
		utils.Debug("Bundle %s (version %s) provided %s", path, b.Version, name)
		return &Scene{Config: cfg, Path: path, bundle: b}, nil
	}
	b.Close()
	return nil, fmt.Errorf("bundle %s holds no scene file (tried %s)", path, strings.Join(Files, ", "))
}

// Backdrop loads the configured backdrop, looking inside the bundle first.
// A scene without one returns nil.
func (s *Scene) Backdrop() (image.Image, error) {
	name := s.Config.Backdrop.Path
	if name == "" {
		return nil, nil
	}

	if s.bundle != nil && s.bundle.Has(name) {
		data, err := s.bundle.ReadFile(name)
		if err != nil {
			return nil, err
		}
		return convert.DecodeImage(name, data)
	}

	if s.Path != "" && !filepath.IsAbs(name) && s.bundle == nil {
		if local := filepath.Join(filepath.Dir(s.Path), name); utils.FileExists(local) {
			return convert.LoadImage(local)
		}
	}
	p := utils.FindImageFile(name)
	if p == "" {
		return nil, fmt.Errorf("backdrop %s not found", name)
	}
	return convert.LoadImage(p)
}
