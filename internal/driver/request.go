// Package driver runs the per-package generation pipeline: load, expand,
// render and emit, for many package directories in parallel.
package driver

import (
	"modbind/internal/buildpipeline"
	"modbind/internal/diag"
	"modbind/internal/gogen"
	"modbind/internal/project"
	"modbind/internal/source"
)

// Mode selects how far the pipeline goes for each package.
type Mode uint8

const (
	// ModeWrite renders and writes outputs, removing stale guard files.
	ModeWrite Mode = iota
	// ModeCheck renders and compares with the files on disk.
	ModeCheck
	// ModeDump renders without touching the disk.
	ModeDump
	// ModeDiagnose stops after expansion.
	ModeDiagnose
)

func (m Mode) String() string {
	switch m {
	case ModeWrite:
		return "write"
	case ModeCheck:
		return "check"
	case ModeDump:
		return "dump"
	case ModeDiagnose:
		return "diagnose"
	default:
		return "unknown"
	}
}

// Request configures one Generate run.
type Request struct {
	Dirs   []string
	Config project.Config
	Mode   Mode
	// Jobs bounds the number of packages processed at once; <= 0 means GOMAXPROCS.
	Jobs           int
	MaxDiagnostics int
	// BaseDir is used to shorten paths in diagnostics.
	BaseDir  string
	Cache    *DiskCache
	Progress buildpipeline.ProgressSink
}

// PackageResult is the outcome for one directory.
type PackageResult struct {
	Dir     string
	Module  string
	FileSet *source.FileSet
	Bag     *diag.Bag
	Entries int
	// Files are the rendered outputs (not set in ModeDiagnose).
	Files   []gogen.File
	Written []string
	Removed []string
	Stale   []string
	Cached  bool
	// Skipped is set when the package declares no module.
	Skipped bool
	Timings buildpipeline.Timings
}

// HasErrors reports whether the package produced error diagnostics.
func (r *PackageResult) HasErrors() bool {
	return r.Bag != nil && r.Bag.HasErrors()
}
