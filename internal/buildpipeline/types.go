// Package buildpipeline carries the progress vocabulary shared by the
// generation driver and the terminal UI.
package buildpipeline

import (
	"slices"
	"time"
)

// Stage describes a high-level pipeline phase of one package.
type Stage string

const (
	// StageLoad reads and parses the package sources.
	StageLoad Stage = "load"
	// StageExpand resolves directives into registrations.
	StageExpand Stage = "expand"
	// StageRender produces the generated Go files.
	StageRender Stage = "render"
	// StageEmit writes or compares the generated files.
	StageEmit Stage = "emit"
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageLoad, StageExpand, StageRender, StageEmit}

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusCached indicates the outputs came from the disk cache.
	StatusCached Status = "cached"
	// StatusSkipped indicates the package declares no module.
	StatusSkipped Status = "skipped"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Final reports whether no further events follow for the package.
func (s Status) Final() bool {
	switch s {
	case StatusDone, StatusCached, StatusSkipped, StatusError:
		return true
	default:
		return false
	}
}

// Event reports progress for a package directory (or for the whole run when
// Package is empty).
type Event struct {
	Package string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use; packages are processed in parallel.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] = dur
}

// Add accumulates every stage of other into t.
func (t *Timings) Add(other Timings) {
	if t == nil {
		return
	}
	t.ensure()
	for stage, dur := range other.stages {
		t.stages[stage] += dur
	}
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	if t.stages == nil {
		return false
	}
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages, or across
// every recorded stage when none is given.
func (t Timings) Sum(stages ...Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	if len(stages) == 0 {
		stages = t.Recorded()
	}
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}

// Recorded returns the recorded stages in execution order.
func (t Timings) Recorded() []Stage {
	out := make([]Stage, 0, len(t.stages))
	for _, stage := range Stages {
		if t.Has(stage) {
			out = append(out, stage)
		}
	}
	for stage := range t.stages {
		if !slices.Contains(out, stage) {
			out = append(out, stage)
		}
	}
	return out
}
