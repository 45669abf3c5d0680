package driver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"modbind/internal/buildpipeline"
	"modbind/internal/trace"
)

// Generate processes every directory of req in parallel. Package failures
// are reported through each result's Bag; the returned error is reserved
// for cancellation and invalid requests.
func Generate(ctx context.Context, req Request) ([]PackageResult, error) {
	if len(req.Dirs) == 0 {
		return nil, errors.New("driver: no package directories")
	}
	if err := req.Config.Validate(); err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}
	dirs := make([]string, len(req.Dirs))
	for i, dir := range req.Dirs {
		dirs[i] = filepath.Clean(dir)
	}

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "generate")
	span.WithExtra("mode", req.Mode.String()).WithExtra("packages", strconv.Itoa(len(dirs)))
	defer span.End("")

	// Настраиваем параллелизм
	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	buildpipeline.EmitQueued(req.Progress, dirs)

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]PackageResult, len(dirs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(dirs)))
	for i, dir := range dirs {
		g.Go(func() error {
			// Проверка отмены
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = runPackage(gctx, &req, dir)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
