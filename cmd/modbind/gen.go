package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"modbind/internal/buildpipeline"
	"modbind/internal/driver"
)

var genCmd = &cobra.Command{
	Use:   "gen [dirs...]",
	Short: "Generate binding files for annotated packages",
	Long: `Generate expands the //modbind: directives of each package directory and
writes the registration file (and guarded helper files) next to the sources.
Without arguments the directories come from [packages].dirs in modbind.toml,
or the current directory.`,
	RunE: runGen,
}

var checkCmd = &cobra.Command{
	Use:   "check [dirs...]",
	Short: "Expand directives and report diagnostics without writing",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, args, driver.ModeDiagnose)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{genCmd, checkCmd} {
		cmd.Flags().IntP("jobs", "j", 0, "max parallel packages (0 = GOMAXPROCS)")
		cmd.Flags().String("format", "pretty", "diagnostics format (pretty|json|short)")
		cmd.Flags().String("path-mode", "auto", "path display (auto|absolute|relative|basename)")
		cmd.Flags().Int8("context", 0, "source lines shown around pretty diagnostics")
		cmd.Flags().Bool("timings", false, "print per-stage timings")
	}
	genCmd.Flags().Bool("disk-cache", false, "reuse outputs of unchanged packages from the user cache directory")
	genCmd.Flags().Bool("check", false, "fail when generated files are missing or out of date instead of writing them")
	genCmd.Flags().Bool("dump", false, "print generated files to stdout instead of writing them")
}

func runGen(cmd *cobra.Command, args []string) error {
	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return err
	}
	dump, err := cmd.Flags().GetBool("dump")
	if err != nil {
		return err
	}
	mode := driver.ModeWrite
	switch {
	case check && dump:
		return fmt.Errorf("--check and --dump are mutually exclusive")
	case check:
		mode = driver.ModeCheck
	case dump:
		mode = driver.ModeDump
	}
	return runPipeline(cmd, args, mode)
}

// runPipeline resolves targets, runs the driver and reports the outcome.
func runPipeline(cmd *cobra.Command, args []string, mode driver.Mode) error {
	t, err := resolveTargets(args)
	if err != nil {
		return err
	}
	req, err := buildRequest(cmd, t, mode)
	if err != nil {
		return err
	}
	results, err := execute(cmd, t, req)
	if err != nil {
		return err
	}
	return report(cmd, t, mode, results)
}

func buildRequest(cmd *cobra.Command, t targets, mode driver.Mode) (driver.Request, error) {
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return driver.Request{}, err
	}
	maxDiags, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return driver.Request{}, err
	}
	req := driver.Request{
		Dirs:           t.dirs,
		Config:         t.cfg,
		Mode:           mode,
		Jobs:           jobs,
		MaxDiagnostics: maxDiags,
		BaseDir:        t.baseDir,
	}
	if cmd.Flags().Lookup("disk-cache") != nil {
		useCache, err := cmd.Flags().GetBool("disk-cache")
		if err != nil {
			return driver.Request{}, err
		}
		if useCache {
			cache, err := driver.OpenDiskCache("modbind")
			if err != nil {
				logger.Warn("disk cache unavailable", "err", err)
			}
			req.Cache = cache
		}
	}
	return req, nil
}

// execute runs the driver, with the progress UI when it is wanted.
func execute(cmd *cobra.Command, t targets, req driver.Request) ([]driver.PackageResult, error) {
	uiFlag, err := cmd.Root().PersistentFlags().GetString("ui")
	if err != nil {
		return nil, err
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return nil, err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if !quiet && len(req.Dirs) > 1 && shouldUseTUI(mode) {
		return generateWithUI(ctx, "modbind "+req.Mode.String(), req)
	}
	req.Progress = buildpipeline.FuncSink(func(ev buildpipeline.Event) {
		if ev.Status == buildpipeline.StatusWorking {
			logger.Debug(string(ev.Stage), "pkg", t.display(ev.Package))
		}
	})
	return driver.Generate(ctx, req)
}

func report(cmd *cobra.Command, t targets, mode driver.Mode, results []driver.PackageResult) error {
	if err := printDiagnostics(cmd, results); err != nil {
		return err
	}
	timings, err := cmd.Flags().GetBool("timings")
	if err != nil {
		return err
	}

	failed := 0
	var total buildpipeline.Timings
	for i := range results {
		res := &results[i]
		total.Add(res.Timings)
		name := t.display(res.Dir)
		switch {
		case res.HasErrors():
			failed++
		case res.Skipped:
			logger.Debug("no module declared", "pkg", name)
		case mode == driver.ModeDump:
			for _, f := range res.Files {
				fmt.Fprintf(cmd.OutOrStdout(), "// ==> %s/%s <==\n%s\n", name, f.Name, f.Content)
			}
		default:
			logger.Info(summaryLine(res, mode), "pkg", name, "module", res.Module, "bindings", res.Entries)
		}
		if timings && !res.Skipped {
			printStageTimings(cmd.ErrOrStderr(), name, res.Timings)
		}
	}
	if timings && len(results) > 1 {
		printStageTimings(cmd.ErrOrStderr(), "total", total)
	}
	if failed > 0 {
		logger.Error(fmt.Sprintf("%d of %d packages failed", failed, len(results)))
		return errReported
	}
	return nil
}

func summaryLine(res *driver.PackageResult, mode driver.Mode) string {
	var parts []string
	switch mode {
	case driver.ModeDiagnose:
		parts = append(parts, "ok")
	case driver.ModeCheck:
		parts = append(parts, "up to date")
	default:
		switch {
		case len(res.Written) > 0:
			parts = append(parts, "wrote "+strings.Join(res.Written, ", "))
		default:
			parts = append(parts, "unchanged")
		}
		if len(res.Removed) > 0 {
			parts = append(parts, "removed "+strings.Join(res.Removed, ", "))
		}
	}
	if res.Cached {
		parts = append(parts, "cached")
	}
	return strings.Join(parts, "; ")
}

func printStageTimings(out io.Writer, label string, timings buildpipeline.Timings) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:", label)
	for _, stage := range timings.Recorded() {
		fmt.Fprintf(&b, " %s %.1f ms", stage, toMillis(timings.Duration(stage)))
	}
	fmt.Fprintf(&b, " | total %.1f ms\n", toMillis(timings.Sum()))
	_, _ = io.WriteString(out, b.String())
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
