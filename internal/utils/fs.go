package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// AssetRoot is an extra directory searched after the local ones, set from
// the -assets flag.
var AssetRoot string

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "linux-aurora")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "linux-aurora")
	}
	return ""
}

func searchDirs() []string {
	dirs := []string{".", "assets"}
	if AssetRoot != "" {
		dirs = append(dirs, AssetRoot)
	}
	if dir := configHome(); dir != "" {
		dirs = append(dirs, dir)
	}
	return dirs
}

// ResolveAssetPath returns the first existing location of relPath, or the
// local assets path when nothing matches.
func ResolveAssetPath(relPath string) string {
	if filepath.IsAbs(relPath) {
		return relPath
	}

	for _, dir := range searchDirs() {
		p := filepath.Join(dir, relPath)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return filepath.Join("assets", relPath)
}

// FindImageFile looks up a backdrop by name, trying every supported
// extension when the name has none.
func FindImageFile(name string) string {
	if name == "" {
		return ""
	}

	if filepath.Ext(name) != "" {
		p := ResolveAssetPath(name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
		return ""
	}

	cleanName := strings.TrimPrefix(name, "materials/")
	for _, dir := range searchDirs() {
		for _, ext := range []string{".tex", ".png", ".jpg", ".jpeg"} {
			p := filepath.Join(dir, cleanName+ext)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}

	return ""
}

// FindSceneConfig returns the scene file to load when none was given.
func FindSceneConfig() string {
	for _, name := range []string{"aurora.yaml", "aurora.yml", "scene.yaml"} {
		for _, dir := range searchDirs() {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

// FileExists reports whether p names an existing regular file.
func FileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
