package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"linux-aurora/internal/convert"
	"linux-aurora/internal/engine"
	"linux-aurora/internal/scene"
	"linux-aurora/internal/utils"

	_ "github.com/silbinarywolf/preferdiscretegpu"
)

type options struct {
	configPath   string
	backdropPath string
	fit          string
	width        int
	height       int
	fps          int
	root         bool
	debug        bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Scene file (.yaml) or bundle (.pkg); searched in ./, assets/ and the config dir when empty")
	flag.StringVar(&opts.backdropPath, "backdrop", "", "Backdrop image (.png, .jpg or .tex), overrides the scene")
	flag.StringVar(&opts.fit, "fit", "", "Backdrop scaling: cover or fit")
	flag.IntVar(&opts.width, "width", 0, "Window width, overrides the scene")
	flag.IntVar(&opts.height, "height", 0, "Window height, overrides the scene")
	flag.IntVar(&opts.fps, "fps", 0, "Target frame rate, overrides the scene")
	flag.BoolVar(&opts.root, "root", false, "Size the window to the X11 root screen")
	assets := flag.String("assets", "", "Extra asset directory")
	extract := flag.String("extract", "", "Extract the bundle given by -config into this directory and exit")
	flag.BoolVar(&opts.debug, "debug", false, "Enable debug logging and the overlay")
	flag.Parse()

	utils.AssetRoot = *assets

	if *extract != "" {
		if err := extractBundle(opts.configPath, *extract); err != nil {
			utils.Error("Extract failed: %v", err)
			os.Exit(1)
		}
		utils.Info("Extracted %s to %s", opts.configPath, *extract)
		return
	}

	if err := run(opts); err != nil {
		utils.Error("%v", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	sc, err := loadScene(opts)
	if err != nil {
		return err
	}
	defer sc.Close()

	utils.Info("--- Linux Aurora Start ---")
	return Run(sc)
}

// loadScene reads the scene and applies the command line over it. The
// scene is closed again when the result is invalid.
func loadScene(opts options) (*scene.Scene, error) {
	sc, err := scene.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene: %w", err)
	}

	cfg := sc.Config
	if level, err := utils.ParseLevel(cfg.Log.Level); err == nil {
		utils.CurrentLevel = level
	} else {
		utils.Warn("%v, keeping %s", err, utils.CurrentLevel)
	}
	if opts.debug {
		utils.DebugMode = true
		utils.CurrentLevel = utils.LevelDebug
	}

	if opts.backdropPath != "" {
		cfg.Backdrop.Path = opts.backdropPath
	}
	if opts.fit != "" {
		cfg.Backdrop.Fit = engine.Fit(opts.fit)
	}
	if opts.width > 0 {
		cfg.Window.Width = opts.width
	}
	if opts.height > 0 {
		cfg.Window.Height = opts.height
	}
	if opts.fps > 0 {
		cfg.Window.FPS = opts.fps
	}
	if opts.root {
		w, h, err := utils.RootScreenSize()
		if err != nil {
			utils.Warn("Cannot read root screen size, keeping %dx%d: %v", cfg.Window.Width, cfg.Window.Height, err)
		} else {
			cfg.Window.Width, cfg.Window.Height = w, h
		}
		utils.CloseX11()
	}
	if err := cfg.Validate(); err != nil {
		sc.Close()
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return sc, nil
}

func extractBundle(path, dir string) error {
	if filepath.Ext(path) != convert.BundleExt {
		return fmt.Errorf("-extract needs a %s bundle in -config, got %q", convert.BundleExt, path)
	}
	b, err := convert.OpenBundle(path)
	if err != nil {
		return err
	}
	defer b.Close()
	return b.Extract(dir)
}
