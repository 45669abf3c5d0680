package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestRelevantFiltersPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pkg", "testdata"), 0o755))
	w, err := New(Config{Root: dir, Ignore: []string{"**/zz_modbind*.go"}, Logger: quietLogger()})
	require.NoError(t, err)
	defer w.fsw.Close()

	tests := []struct {
		path string
		want bool
	}{
		{"geo.go", true},
		{"pkg/geo.go", true},
		{"modbind.toml", true},
		{"pkg/zz_modbind.go", false},
		{"pkg/zz_modbind_guard1_stub.go", false},
		{"pkg/testdata/x.go", false},
		{"README.md", false},
		{".git/HEAD", false},
	}
	for _, tt := range tests {
		_, got := w.relevant(filepath.Join(w.Root(), filepath.FromSlash(tt.path)))
		require.Equal(t, tt.want, got, tt.path)
	}
	require.True(t, w.ignoredDir(filepath.Join(dir, "pkg", "testdata")))
	require.False(t, w.ignoredDir(filepath.Join(dir, "pkg")))
}

func TestNewRejectsInvalidPattern(t *testing.T) {
	_, err := New(Config{Root: t.TempDir(), Patterns: []string{"[unclosed"}, Logger: quietLogger()})
	require.Error(t, err)
}

func TestWatcherDebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	var (
		mu    sync.Mutex
		calls [][]string
	)
	fired := make(chan struct{}, 4)
	w, err := New(Config{
		Root:     dir,
		Debounce: 100 * time.Millisecond,
		Ignore:   []string{"**/zz_modbind*.go"},
		Logger:   quietLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			calls = append(calls, changed)
			mu.Unlock()
			fired <- struct{}{}
			return nil
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	for _, name := range []string{"a.go", "b.go", "zz_modbind.go", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("package p\n"), 0o600))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("OnChange was not called")
	}
	// no further call for the same burst
	select {
	case <-fired:
		t.Fatal("burst produced a second callback")
	case <-time.After(300 * time.Millisecond):
	}

	mu.Lock()
	got := calls[0]
	mu.Unlock()
	require.True(t, slices.IsSorted(got))
	require.Equal(t, []string{"a.go", "b.go"}, got)

	cancel()
	require.NoError(t, <-errCh)
	require.Error(t, w.Run(context.Background()), "second Run must fail")
}

func TestRunWaitsForInFlightChange(t *testing.T) {
	dir := t.TempDir()
	entered := make(chan struct{})
	release := make(chan struct{})
	var (
		finished atomic.Bool
		once     sync.Once
	)
	w, err := New(Config{
		Root:     dir,
		Debounce: 20 * time.Millisecond,
		Logger:   quietLogger(),
		OnChange: func(context.Context, []string) error {
			once.Do(func() { close(entered) })
			<-release
			finished.Store(true)
			return nil
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package p\n"), 0o600))

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("OnChange was not called")
	}
	cancel()
	select {
	case <-errCh:
		t.Fatal("Run returned while OnChange was still running")
	case <-time.After(100 * time.Millisecond):
	}
	close(release)
	require.NoError(t, <-errCh)
	require.True(t, finished.Load())
}
