package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modbind/internal/project"
	"modbind/internal/version"
)

// targets is what a command operates on.
type targets struct {
	cfg     project.Config
	found   bool
	dirs    []string
	baseDir string
}

// resolveTargets loads the nearest modbind.toml above the first argument
// (or the working directory) and picks the package directories: the
// arguments, else [packages].dirs, else the working directory.
func resolveTargets(args []string) (targets, error) {
	start := "."
	if len(args) > 0 {
		start = args[0]
	}
	if info, err := os.Stat(start); err == nil && !info.IsDir() {
		start = filepath.Dir(start)
	}
	cfg, found, err := project.Discover(start)
	if err != nil {
		return targets{}, err
	}
	if err := cfg.CheckTool(version.Version); err != nil {
		return targets{}, err
	}

	t := targets{cfg: cfg, found: found}
	switch {
	case len(args) > 0:
		t.dirs = append(t.dirs, args...)
	case len(cfg.PackageDirs()) > 0:
		t.dirs = cfg.PackageDirs()
	default:
		t.dirs = []string{"."}
	}
	for i, dir := range t.dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return targets{}, fmt.Errorf("resolve %s: %w", dir, err)
		}
		t.dirs[i] = abs
	}

	t.baseDir = cfg.Root()
	if t.baseDir == "" {
		if t.baseDir, err = os.Getwd(); err != nil {
			return targets{}, err
		}
	}
	return t, nil
}

// display shortens dir relative to the base directory.
func (t targets) display(dir string) string {
	if rel, err := filepath.Rel(t.baseDir, dir); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return dir
}
