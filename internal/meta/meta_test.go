package meta

import (
	"testing"

	"github.com/stretchr/testify/require"

	"modbind/internal/ast"
	"modbind/internal/source"
)

func mustAttr(t *testing.T, name, raw string) ast.Attr {
	t.Helper()
	args, err := ParseArgs(raw, source.Span{})
	require.NoError(t, err)
	return ast.Attr{Name: name, Args: args, Raw: raw}
}

func TestSimpleName(t *testing.T) {
	m, err := Parse(mustAttr(t, "function", ""), "greet", NameKeys...)
	require.NoError(t, err)
	require.Equal(t, "greet", m.SimpleName())

	m, err = Parse(mustAttr(t, "function", "name=hello"), "greet", NameKeys...)
	require.NoError(t, err)
	require.Equal(t, "hello", m.SimpleName())
}

func TestParseRejectsUnknownKey(t *testing.T) {
	_, err := Parse(mustAttr(t, "function", "module=geo"), "greet", NameKeys...)
	require.ErrorContains(t, err, `does not accept "module"`)
}

func TestParseRejectsDuplicateKey(t *testing.T) {
	_, err := Parse(mustAttr(t, "class", "name=A name=B"), "Point", ClassKeys...)
	require.ErrorContains(t, err, "given twice")
}

func TestParseRejectsFlagForValuedKey(t *testing.T) {
	_, err := Parse(mustAttr(t, "attr", "name"), "Pi", NameKeys...)
	require.ErrorContains(t, err, "non-empty value")
}

func TestRequiredName(t *testing.T) {
	m, err := Parse(mustAttr(t, "attr", ""), "Pi", NameKeys...)
	require.NoError(t, err)
	_, err = m.RequiredName()
	require.ErrorIs(t, err, ErrMissingName)

	m, err = Parse(mustAttr(t, "attr", "name=pi"), "Pi", NameKeys...)
	require.NoError(t, err)
	name, err := m.RequiredName()
	require.NoError(t, err)
	require.Equal(t, "pi", name)
}

func TestValue(t *testing.T) {
	m, err := Parse(mustAttr(t, "class", "module=geo"), "Point", ClassKeys...)
	require.NoError(t, err)
	v, ok := m.Value("module")
	require.True(t, ok)
	require.Equal(t, "geo", v)
	_, ok = m.OptionalName()
	require.False(t, ok)
}
