package main

import (
	"context"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"modbind/internal/driver"
	"modbind/internal/project"
	"modbind/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Regenerate bindings whenever package sources change",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().IntP("jobs", "j", 0, "max parallel packages (0 = GOMAXPROCS)")
	watchCmd.Flags().String("format", "pretty", "diagnostics format (pretty|json|short)")
	watchCmd.Flags().String("path-mode", "auto", "path display (auto|absolute|relative|basename)")
	watchCmd.Flags().Int8("context", 0, "source lines shown around pretty diagnostics")
	watchCmd.Flags().Bool("timings", false, "print per-stage timings")
	watchCmd.Flags().Duration("debounce", 300*time.Millisecond, "quiet period before regenerating")
}

func runWatch(cmd *cobra.Command, args []string) error {
	t, err := resolveTargets(args)
	if err != nil {
		return err
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}

	regenerate := func(ctx context.Context, tg targets, dirs []string) {
		tg.dirs = dirs
		req, err := buildRequest(cmd, tg, driver.ModeWrite)
		if err != nil {
			logger.Error("watch", "err", err)
			return
		}
		results, err := driver.Generate(ctx, req)
		if err != nil {
			if ctx.Err() == nil {
				logger.Error("generate", "err", err)
			}
			return
		}
		_ = report(cmd, tg, driver.ModeWrite, results)
	}

	root := t.baseDir
	if len(args) > 0 {
		root = t.dirs[0]
	}
	regenerate(cmd.Context(), t, t.dirs)

	w, err := watch.New(watch.Config{
		Root:     root,
		Ignore:   outputIgnores(t.cfg.Generate.Output),
		Debounce: debounce,
		Logger:   logger,
		OnChange: func(ctx context.Context, changed []string) error {
			logger.Debug("changed", "paths", strings.Join(changed, " "))
			next, dirs, err := affected(t, root, changed)
			if err != nil {
				return err
			}
			t = next
			if len(dirs) > 0 {
				regenerate(ctx, t, dirs)
			}
			return nil
		},
	})
	if err != nil {
		return err
	}
	logger.Info("watching", "root", root)
	return w.Run(cmd.Context())
}

// outputIgnores keeps the watcher from reacting to its own outputs.
func outputIgnores(output string) []string {
	base := strings.TrimSuffix(output, ".go")
	return []string{"**/" + output, "**/" + base + "_guard*.go"}
}

// affected maps changed paths (relative to root) to the package
// directories to regenerate. A config change or a queue overflow reloads
// the targets and regenerates everything.
func affected(t targets, root string, changed []string) (targets, []string, error) {
	for _, rel := range changed {
		if rel == watch.Overflow || path.Base(rel) == project.ConfigFile {
			var args []string
			if root != t.baseDir {
				args = []string{root}
			}
			next, err := resolveTargets(args)
			if err != nil {
				return t, nil, err
			}
			return next, next.dirs, nil
		}
	}
	var dirs []string
	for _, rel := range changed {
		dir := filepath.Join(root, filepath.FromSlash(path.Dir(rel)))
		if slices.Contains(t.dirs, dir) && !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	slices.Sort(dirs)
	return t, dirs, nil
}
