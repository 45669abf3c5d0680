// Package watch re-runs generation when package sources change.
//
// Every non-ignored directory under Root is watched. Events matching the
// watch patterns are collected and, once no event has arrived for the
// debounce period, OnChange fires once with the full set of changed paths.
package watch

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 300 * time.Millisecond

// Overflow is reported in place of paths when the kernel queue overflowed
// and an unknown set of files changed.
const Overflow = "*"

var defaultIgnores = []string{
	"**/.git/**",
	"**/vendor/**",
	"**/testdata/**",
	"**/*.swp",
	"**/*~",
	"**/.modbind-*",
}

// DefaultPatterns select package sources and the config file.
var DefaultPatterns = []string{"**/*.go", "**/modbind.toml"}

type Config struct {
	// Root is the directory tree to watch; empty means the working directory.
	Root string
	// Patterns are doublestar globs relative to Root; empty uses DefaultPatterns.
	Patterns []string
	// Ignore adds to the built-in ignore globs, typically the generated outputs.
	Ignore   []string
	Debounce time.Duration
	// OnChange receives the changed paths relative to Root, sorted.
	OnChange func(ctx context.Context, changed []string) error
	Logger   *log.Logger
}

type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	root     string
	patterns []string
	ignores  []string
	debounce time.Duration
	logger   *log.Logger
	started  atomic.Bool
}

// New validates cfg and registers every directory under Root.
func New(cfg Config) (*Watcher, error) {
	root := cfg.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root: %w", err)
	}

	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	ignores := slices.Concat(defaultIgnores, cfg.Ignore)
	for _, pat := range slices.Concat(patterns, ignores) {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid pattern %q", pat)
		}
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		root:     root,
		patterns: patterns,
		ignores:  ignores,
		debounce: debounce,
		logger:   logger,
	}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Root is the absolute watched directory.
func (w *Watcher) Root() string { return w.root }

// Run blocks until ctx is cancelled. OnChange calls never overlap; changes
// arriving during a call are delivered by the next one. No call starts or
// is still running once Run has returned.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("closing watcher", "err", err)
		}
	}()

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running sync.Mutex
		stopped bool // guarded by running
	)
	fire := func() {
		running.Lock()
		defer running.Unlock()
		if stopped || ctx.Err() != nil {
			return
		}
		mu.Lock()
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()
		if len(changed) == 0 || w.cfg.OnChange == nil {
			return
		}
		if err := w.cfg.OnChange(ctx, changed); err != nil {
			w.logger.Error("regeneration failed", "err", err)
		}
	}
	schedule := func(rel string) {
		mu.Lock()
		defer mu.Unlock()
		pending[rel] = struct{}{}
		if timer == nil {
			timer = time.AfterFunc(w.debounce, fire)
			return
		}
		timer.Reset(w.debounce)
	}
	// Run returns only after an OnChange already in flight has finished.
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		running.Lock()
		stopped = true
		running.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			if ev.Has(fsnotify.Create) {
				w.maybeAddDir(ev.Name)
			}
			rel, ok := w.relevant(ev.Name)
			if !ok {
				continue
			}
			w.logger.Debug("change", "path", rel, "op", ev.Op.String())
			schedule(rel)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.logger.Warn("event queue overflowed; regenerating everything")
				schedule(Overflow)
				continue
			}
			w.logger.Warn("fsnotify", "err", err)
		}
	}
}

// relevant maps an absolute event path to its Root-relative form when it
// matches a watch pattern and no ignore pattern.
func (w *Watcher) relevant(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if matchAny(w.ignores, rel) || !matchAny(w.patterns, rel) {
		return "", false
	}
	return rel, true
}

func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("skipping unreadable path", "path", path, "err", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignoredDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk %s: %w", root, err)
	}
	return nil
}

func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.ignoredDir(path) {
		return
	}
	if err := w.addTree(path); err != nil {
		w.logger.Warn("watching new directory", "path", path, "err", err)
	}
}

func (w *Watcher) ignoredDir(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return true
	}
	// a directory is ignored when its contents are
	return matchAny(w.ignores, filepath.ToSlash(rel)+"/x")
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}
