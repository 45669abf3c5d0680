// Package diag defines the diagnostic model shared by the front end, the
// binding expander, the renderer and the driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error (severity.go).
//   - Code – compact numeric identifier with a stable string form (codes.go).
//   - Message – short, actionable text.
//   - Primary – the source.Span of the offending directive or declaration.
//   - Notes – secondary spans, e.g. the first definition of a colliding name.
//   - Fixes – optional text edits that would resolve the problem.
//
// # Emitting
//
// Producers either build a Diagnostic directly (diag.NewError(...).WithNote(...))
// or go through a Reporter. BagReporter collects into a Bag, which supports
// sorting and deduplication for deterministic output.
//
// Package diag performs no IO and no formatting beyond the short one-line form
// in short.go; rendering lives in internal/diagfmt.
package diag
