package main

import (
	"flag"
	"fmt"
	"os"

	"linux-aurora/internal/engine"
	"linux-aurora/internal/scene"
	"linux-aurora/internal/utils"

	"github.com/gdamore/tcell/v2"
)

func main() {
	configPath := flag.String("config", "", "Scene file (.yaml) or bundle (.pkg)")
	backdropPath := flag.String("backdrop", "", "Backdrop image, overrides the scene")
	fit := flag.String("fit", "", "Backdrop scaling: cover or fit")
	fps := flag.Int("fps", 24, "Target frame rate")
	segments := flag.Int("segments", 96, "Grid segments per layer side; the terminal needs far fewer than a window")
	logPath := flag.String("log", "aurora-term.log", "Log file; the terminal itself shows the aurora")
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	utils.SetOutput(logFile)
	utils.Plain = true

	if err := run(*configPath, *backdropPath, *fit, *fps, *segments, *debugFlag); err != nil {
		utils.Error("%v", err)
		fmt.Fprintf(os.Stderr, "aurora-term: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, backdropPath, fit string, fps, segments int, debug bool) error {
	if fps <= 0 {
		return fmt.Errorf("-fps must be positive, got %d", fps)
	}

	sc, err := scene.Load(configPath)
	if err != nil {
		return err
	}
	defer sc.Close()

	cfg := sc.Config
	if level, err := utils.ParseLevel(cfg.Log.Level); err == nil {
		utils.CurrentLevel = level
	}
	if debug {
		utils.DebugMode = true
		utils.CurrentLevel = utils.LevelDebug
	}
	if backdropPath != "" {
		cfg.Backdrop.Path = backdropPath
	}
	if fit != "" {
		cfg.Backdrop.Fit = engine.Fit(fit)
	}
	if segments > 0 {
		cfg.Surface.Segments = segments
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ecfg := cfg.Engine()
	if img, err := sc.Backdrop(); err != nil {
		utils.Error("Failed to load backdrop, continuing without: %v", err)
	} else {
		ecfg.Backdrop = img
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	term := NewTerm(screen, ecfg, cfg.PostFX, cfg.Scroll.Step)
	if err := term.Mount(); err != nil {
		return err
	}
	defer term.Unmount()

	utils.Info("Term: running at %d fps", fps)
	return term.Run(fps)
}
