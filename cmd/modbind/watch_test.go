package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"modbind/internal/project"
)

func TestAffectedPicksTargetDirectories(t *testing.T) {
	root := t.TempDir()
	geo := filepath.Join(root, "geo")
	color := filepath.Join(root, "color")
	tg := targets{cfg: project.Default(), dirs: []string{geo, color}, baseDir: root}

	_, dirs, err := affected(tg, root, []string{"geo/point.go", "geo/line.go", "other/x.go"})
	require.NoError(t, err)
	require.Equal(t, []string{geo}, dirs)

	_, dirs, err = affected(tg, root, []string{"color/c.go", "geo/point.go"})
	require.NoError(t, err)
	require.Equal(t, []string{color, geo}, dirs)
}

func TestAffectedReloadsOnConfigChange(t *testing.T) {
	root := t.TempDir()
	tg := targets{cfg: project.Default(), dirs: []string{filepath.Join(root, "geo")}, baseDir: root}

	next, dirs, err := affected(tg, root, []string{"modbind.toml"})
	require.NoError(t, err)
	require.Equal(t, next.dirs, dirs)
	require.NotEmpty(t, dirs)
}

func TestOutputIgnores(t *testing.T) {
	require.Equal(t, []string{"**/zz_modbind.go", "**/zz_modbind_guard*.go"}, outputIgnores("zz_modbind.go"))
}
