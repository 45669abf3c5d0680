package frontend

import (
	"errors"
	goast "go/ast"
	"go/token"
	"strings"
	"unicode"

	"modbind/internal/ast"
	"modbind/internal/diag"
	"modbind/internal/meta"
	"modbind/internal/source"
)

// directiveScanner extracts //<prefix>:<name> directives from comments.
type directiveScanner struct {
	prefix   string
	fileID   source.FileID
	tokFile  *token.File
	reporter diag.Reporter
}

// scan returns the directives of a doc comment group in order. Malformed
// directives are reported and dropped.
func (s *directiveScanner) scan(group *goast.CommentGroup) []ast.Attr {
	if group == nil {
		return nil
	}
	var out []ast.Attr
	for _, c := range group.List {
		attr, ok := s.parse(c)
		if ok {
			out = append(out, attr)
		}
	}
	return out
}

func (s *directiveScanner) parse(c *goast.Comment) (ast.Attr, bool) {
	lead := "//" + s.prefix + ":"
	if !strings.HasPrefix(c.Text, lead) {
		return ast.Attr{}, false
	}
	start := s.tokFile.Offset(c.Pos())
	span := source.SpanFromOffsets(s.fileID, start, start+len(c.Text))

	body := c.Text[len(lead):]
	name, rest := body, ""
	if i := strings.IndexFunc(body, unicode.IsSpace); i >= 0 {
		name, rest = body[:i], body[i:]
	}
	if !isDirectiveName(name) {
		diag.ReportError(s.reporter, diag.SrcBadDirective, span,
			"malformed directive "+c.Text).
			WithNote(span, "expected //"+s.prefix+":<name> [args]").
			Emit()
		return ast.Attr{}, false
	}
	raw := strings.TrimSpace(rest)
	rawOff := start + len(lead) + len(name) + len(rest) - len(strings.TrimLeftFunc(rest, unicode.IsSpace))
	attr := ast.Attr{Name: name, Raw: raw, Span: span}
	if ast.IsGuard(name) {
		if raw == "" {
			diag.ReportError(s.reporter, diag.SrcBadDirective, span, "cfg requires a build constraint expression").Emit()
			return ast.Attr{}, false
		}
		return attr, true
	}
	_, isRole := ast.LookupRole(name)
	if !isRole && name != ast.ModuleName {
		// unrelated directive; kept verbatim
		return attr, true
	}
	args, err := meta.ParseArgs(raw, source.SpanFromOffsets(s.fileID, rawOff, rawOff+len(raw)))
	if err != nil {
		sp := span
		var me *meta.Error
		if errors.As(err, &me) && !me.Span.Empty() {
			sp = me.Span
		}
		diag.ReportError(s.reporter, diag.SrcBadDirective, sp, err.Error()).Emit()
		return ast.Attr{}, false
	}
	attr.Args = args
	return attr, true
}

func isDirectiveName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}
