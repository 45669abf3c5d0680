package gogen

import (
	"fmt"
	"go/build/constraint"
	"strings"
	"unicode"
	"unicode/utf8"

	"modbind/internal/ast"
	"modbind/internal/diag"
	"modbind/internal/source"
)

// Error is a rendering failure tied to a directive.
type Error struct {
	Span source.Span
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", diag.GenBadGuard.ID(), e.Msg)
}

func (e *Error) Diagnostic() diag.Diagnostic {
	return diag.NewError(diag.GenBadGuard, e.Span, e.Msg)
}

// GuardConstraint combines guards into one build constraint, in order.
// Each guard must itself be a valid //go:build expression.
func GuardConstraint(guards []ast.Attr) (constraint.Expr, error) {
	var out constraint.Expr
	for _, g := range guards {
		expr, err := constraint.Parse("//go:build " + g.Raw)
		if err != nil {
			return nil, &Error{Span: g.Span, Msg: fmt.Sprintf("cfg %q is not a build constraint: %v", g.Raw, err)}
		}
		if out == nil {
			out = expr
			continue
		}
		out = &constraint.AndExpr{X: out, Y: expr}
	}
	return out, nil
}

// GuardFileName is the name of the n-th guarded helper file for output.
func GuardFileName(output string, n int, stub bool) string {
	base := strings.TrimSuffix(output, ".go")
	if stub {
		return fmt.Sprintf("%s_guard%d_stub.go", base, n)
	}
	return fmt.Sprintf("%s_guard%d.go", base, n)
}

// IsGuardFile reports whether name is a helper file produced for output.
func IsGuardFile(output, name string) bool {
	rest, ok := strings.CutPrefix(name, strings.TrimSuffix(output, ".go")+"_guard")
	if !ok {
		return false
	}
	if rest, ok = strings.CutSuffix(rest, ".go"); !ok {
		return false
	}
	rest = strings.TrimSuffix(rest, "_stub")
	return rest != "" && strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' }) < 0
}

// helperName derives the guarded helper identifier from the extend routine.
func helperName(extend string, n int) string {
	if extend == "" {
		extend = "extend"
	}
	first, size := utf8.DecodeRuneInString(extend)
	return fmt.Sprintf("%c%sGuard%d", unicode.ToLower(first), extend[size:], n)
}
