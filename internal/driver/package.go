package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"modbind/internal/bindgen"
	"modbind/internal/buildpipeline"
	"modbind/internal/diag"
	"modbind/internal/frontend"
	"modbind/internal/gogen"
	"modbind/internal/source"
	"modbind/internal/trace"
)

// pkgRun carries the state of one package through the stages.
type pkgRun struct {
	ctx     context.Context
	req     *Request
	res     *PackageResult
	dirSpan source.Span // anchors diagnostics without a source position
}

func runPackage(ctx context.Context, req *Request, dir string) PackageResult {
	ctx, span := trace.Start(ctx, trace.ScopeModule, "package")
	span.WithExtra("dir", dir)

	fs := source.NewFileSetWithBase(req.BaseDir)
	res := PackageResult{
		Dir:     dir,
		FileSet: fs,
		Bag:     diag.NewBag(req.MaxDiagnostics),
	}
	run := &pkgRun{
		ctx:     ctx,
		req:     req,
		res:     &res,
		dirSpan: source.Span{File: fs.AddVirtual(dir, nil)},
	}
	status := run.execute()
	span.End(string(status))
	return res
}

func (r *pkgRun) execute() buildpipeline.Status {
	gen := r.req.Config.Generate
	opts := frontend.Options{
		Prefix:     gen.Prefix,
		Skip:       []string{gen.Output},
		SkipMatch:  func(name string) bool { return gogen.IsGuardFile(gen.Output, name) },
		FileGuards: gen.FileGuards,
	}

	var ids []source.FileID
	err := r.stage(buildpipeline.StageLoad, func() error {
		var err error
		ids, err = frontend.ReadDir(r.res.FileSet, r.res.Dir, opts)
		return err
	})
	if err != nil {
		return r.fail(buildpipeline.StageLoad, err)
	}

	key := cacheKey(r.res.FileSet, ids, r.req.Config)
	if r.req.Mode != ModeDiagnose {
		var payload DiskPayload
		hit, err := r.req.Cache.Get(key, &payload)
		if err != nil {
			trace.Point(r.ctx, trace.ScopeModule, "cache_error", err.Error())
		}
		if hit {
			r.res.Cached = true
			r.res.Module = payload.Module
			r.res.Entries = payload.Entries
			if payload.Skipped {
				r.res.Skipped = true
				return r.finish(buildpipeline.StatusSkipped)
			}
			r.res.Files = payload.renderedFiles()
			return r.emitStage(buildpipeline.StatusCached)
		}
	}

	var pkg *frontend.Package
	_ = r.stage(buildpipeline.StageLoad, func() error {
		pkg = frontend.ParseFiles(r.res.FileSet, ids, opts, diag.BagReporter{Bag: r.res.Bag})
		return nil
	})
	if r.res.HasErrors() {
		return r.fail(buildpipeline.StageLoad, nil)
	}
	if pkg.Module == nil {
		r.res.Skipped = true
		if r.req.Mode != ModeDiagnose {
			if err := r.req.Cache.Put(key, skippedPayload()); err != nil {
				trace.Point(r.ctx, trace.ScopeModule, "cache_error", err.Error())
			}
		}
		return r.finish(buildpipeline.StatusSkipped)
	}

	var expanded *bindgen.Result
	err = r.stage(buildpipeline.StageExpand, func() error {
		var err error
		expanded, err = bindgen.Expand(pkg.Module, bindgen.Options{
			NameConst:  gen.NameConst,
			ExtendFunc: gen.ExtendFunc,
			MakeFunc:   gen.MakeFunc,
		})
		return err
	})
	if err != nil {
		return r.fail(buildpipeline.StageExpand, err)
	}
	r.res.Module = expanded.Module.Name
	r.res.Entries = len(expanded.Entries)
	if r.req.Mode == ModeDiagnose {
		return r.finish(buildpipeline.StatusDone)
	}

	err = r.stage(buildpipeline.StageRender, func() error {
		var err error
		r.res.Files, err = gogen.Render(expanded, gogen.Config{Output: gen.Output, Runtime: gen.Runtime})
		return err
	})
	if err != nil {
		return r.fail(buildpipeline.StageRender, err)
	}
	if err := r.req.Cache.Put(key, payloadFromFiles(r.res.Module, r.res.Entries, r.res.Files)); err != nil {
		trace.Point(r.ctx, trace.ScopeModule, "cache_error", err.Error())
	}
	return r.emitStage(buildpipeline.StatusDone)
}

// emitStage writes or compares the rendered files.
func (r *pkgRun) emitStage(final buildpipeline.Status) buildpipeline.Status {
	output := r.req.Config.Generate.Output
	err := r.stage(buildpipeline.StageEmit, func() error {
		var err error
		switch r.req.Mode {
		case ModeWrite:
			r.res.Written, r.res.Removed, err = writeOutputs(r.res.Dir, output, r.res.Files)
		case ModeCheck:
			r.res.Stale, err = checkOutputs(r.res.Dir, output, r.res.Files)
		}
		return err
	})
	if err != nil {
		return r.fail(buildpipeline.StageEmit, err)
	}
	for _, name := range r.res.Stale {
		diag.ReportError(diag.BagReporter{Bag: r.res.Bag}, diag.IOStaleOutput, r.dirSpan,
			fmt.Sprintf("%s is out of date; run modbind gen", name)).Emit()
	}
	if len(r.res.Stale) > 0 {
		return r.fail(buildpipeline.StageEmit, nil)
	}
	return r.finish(final)
}

// stage times fn, records it and reports progress.
func (r *pkgRun) stage(stage buildpipeline.Stage, fn func() error) error {
	_, span := trace.Start(r.ctx, trace.ScopePass, string(stage))
	buildpipeline.Emit(r.req.Progress, r.res.Dir, stage, buildpipeline.StatusWorking, nil, 0)
	started := time.Now()
	err := fn()
	r.res.Timings.Set(stage, r.res.Timings.Duration(stage)+time.Since(started))
	span.End(strconv.FormatBool(err == nil))
	return err
}

// fail converts err into a diagnostic (when non-nil) and reports the stage as failed.
func (r *pkgRun) fail(stage buildpipeline.Stage, err error) buildpipeline.Status {
	if err != nil {
		r.res.Bag.Add(r.diagnosticFor(err))
	}
	buildpipeline.Emit(r.req.Progress, r.res.Dir, stage, buildpipeline.StatusError, err, r.res.Timings.Sum())
	return buildpipeline.StatusError
}

func (r *pkgRun) finish(status buildpipeline.Status) buildpipeline.Status {
	buildpipeline.Emit(r.req.Progress, r.res.Dir, buildpipeline.StageEmit, status, nil, r.res.Timings.Sum())
	return status
}

func (r *pkgRun) diagnosticFor(err error) diag.Diagnostic {
	var bindErr *bindgen.Error
	if errors.As(err, &bindErr) {
		return bindErr.Diagnostic()
	}
	var genErr *gogen.Error
	if errors.As(err, &genErr) {
		return genErr.Diagnostic()
	}
	return diag.NewError(diag.IOFailed, r.dirSpan, err.Error())
}
