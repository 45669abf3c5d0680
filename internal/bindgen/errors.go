package bindgen

import (
	"fmt"

	"modbind/internal/diag"
	"modbind/internal/source"
)

// Error is a fatal expansion error anchored at the offending directive.
type Error struct {
	Code  diag.Code
	Span  source.Span
	Msg   string
	Notes []diag.Note
	Fixes []diag.Fix
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code.ID(), e.Msg)
}

// Diagnostic converts the error for reporting.
func (e *Error) Diagnostic() diag.Diagnostic {
	d := diag.NewError(e.Code, e.Span, e.Msg)
	d.Notes = append(d.Notes, e.Notes...)
	d.Fixes = append(d.Fixes, e.Fixes...)
	return d
}

func newError(code diag.Code, span source.Span, format string, args ...any) *Error {
	return &Error{Code: code, Span: span, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) withNote(span source.Span, msg string) *Error {
	e.Notes = append(e.Notes, diag.Note{Span: span, Msg: msg})
	return e
}

func (e *Error) withFix(title string, edits ...diag.FixEdit) *Error {
	e.Fixes = append(e.Fixes, diag.Fix{Title: title, Edits: edits})
	return e
}
