// Package trace provides a tracing subsystem for the modbind generator.
//
// The trace package tracks driver stages and per-package processing to help
// diagnose slow or stuck runs.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	modbind gen --trace=- --trace-level=detail ./...
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Reserved for failure reports
//   - LevelPhase: Driver and stage boundaries
//   - LevelDetail: Per-package events
//   - LevelDebug: Everything including per-item events
//
// # Scopes
//
//   - ScopeDriver: Top-level CLI operations
//   - ScopePass: Stages (load, parse, expand, render, write)
//   - ScopeModule: Per-package processing
//   - ScopeNode: Per-item expansion
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopePass, "expand")
//	defer span.End("")
package trace
