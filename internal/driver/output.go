package driver

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"modbind/internal/gogen"
)

// writeOutputs writes files into dir, skipping those whose content is
// unchanged, then removes guard helpers of output that were not produced
// this time.
func writeOutputs(dir, output string, files []gogen.File) (written, removed []string, err error) {
	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		same, err := sameContent(path, f.Content)
		if err != nil {
			return written, removed, err
		}
		if same {
			continue
		}
		if err := writeAtomic(path, f.Content); err != nil {
			return written, removed, err
		}
		written = append(written, f.Name)
	}

	stale, err := staleGuardFiles(dir, output, files)
	if err != nil {
		return written, removed, err
	}
	for _, name := range stale {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return written, removed, err
		}
		removed = append(removed, name)
	}
	return written, removed, nil
}

// checkOutputs lists files that are missing, differ, or should not exist.
func checkOutputs(dir, output string, files []gogen.File) ([]string, error) {
	var stale []string
	for _, f := range files {
		same, err := sameContent(filepath.Join(dir, f.Name), f.Content)
		if err != nil {
			return nil, err
		}
		if !same {
			stale = append(stale, f.Name)
		}
	}
	extra, err := staleGuardFiles(dir, output, files)
	if err != nil {
		return nil, err
	}
	return append(stale, extra...), nil
}

func staleGuardFiles(dir, output string, files []gogen.File) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !gogen.IsGuardFile(output, name) {
			continue
		}
		if slices.ContainsFunc(files, func(f gogen.File) bool { return f.Name == name }) {
			continue
		}
		out = append(out, name)
	}
	return out, nil
}

func sameContent(path string, want []byte) (bool, error) {
	// #nosec G304 -- path is inside the package directory being generated
	have, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return bytes.Equal(have, want), nil
}

func writeAtomic(path string, content []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".modbind-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// RemoveOutputs deletes the generated main file and guard helpers of dir.
// A main file without the generated header is left alone.
func RemoveOutputs(dir, output string) ([]string, error) {
	var removed []string
	main := filepath.Join(dir, output)
	// #nosec G304 -- path is inside the package directory being cleaned
	content, err := os.ReadFile(main)
	switch {
	case err == nil && gogen.IsGenerated(content):
		if err := os.Remove(main); err != nil {
			return nil, err
		}
		removed = append(removed, output)
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return nil, err
	}
	guards, err := staleGuardFiles(dir, output, nil)
	if err != nil {
		return removed, err
	}
	for _, name := range guards {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return removed, err
		}
		removed = append(removed, name)
	}
	return removed, nil
}
