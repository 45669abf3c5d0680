package bindgen

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"modbind/internal/ast"
	"modbind/internal/diag"
	"modbind/internal/meta"
	"modbind/internal/source"
)

// builder hands out distinct spans so notes can be told apart.
type builder struct {
	t   *testing.T
	off uint32
}

func newBuilder(t *testing.T) *builder {
	return &builder{t: t}
}

func (b *builder) span(n uint32) source.Span {
	sp := source.Span{File: 1, Start: b.off, End: b.off + n}
	b.off += n + 1
	return sp
}

// attr builds a directive from text such as "function name=hello".
func (b *builder) attr(text string) ast.Attr {
	b.t.Helper()
	name, raw, _ := strings.Cut(text, " ")
	a := ast.Attr{Name: name, Raw: raw, Span: b.span(uint32(len(text)))}
	if ast.IsGuard(name) {
		return a
	}
	args, err := meta.ParseArgs(raw, source.Span{})
	require.NoError(b.t, err)
	a.Args = args
	return a
}

func (b *builder) item(kind ast.ItemKind, name string, attrs ...string) ast.Item {
	b.t.Helper()
	it := ast.Item{Kind: kind, Name: name, Span: b.span(uint32(len(name)))}
	for _, text := range attrs {
		it.Attrs = append(it.Attrs, b.attr(text))
	}
	return it
}

func (b *builder) use(path string, rename string, attrs ...string) ast.Item {
	b.t.Helper()
	it := b.item(ast.ItemUse, rename, attrs...)
	it.Use = &ast.UseDecl{Path: strings.Split(path, "."), Rename: rename}
	if rename == "" {
		it.Name = it.Use.LocalName()
	}
	return it
}

func module(items ...ast.Item) *ast.Module {
	return &ast.Module{Package: "geo", Items: items}
}

func expand(t *testing.T, mod *ast.Module) *Result {
	t.Helper()
	res, err := Expand(mod, Options{})
	require.NoError(t, err)
	return res
}

func requireCode(t *testing.T, err error, code diag.Code) *Error {
	t.Helper()
	require.Error(t, err)
	var e *Error
	require.True(t, errors.As(err, &e), "error %v is not *bindgen.Error", err)
	require.Equal(t, code, e.Code, "got %s", e)
	return e
}

func attrNames(attrs []ast.Attr) []string {
	out := make([]string, len(attrs))
	for i, a := range attrs {
		out[i] = a.String()
	}
	return out
}

func entryNames(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}
