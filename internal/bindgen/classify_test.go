package bindgen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"modbind/internal/ast"
	"modbind/internal/diag"
)

func TestClassifyCollectsLeadingGuards(t *testing.T) {
	b := newBuilder(t)
	attrs := []ast.Attr{
		b.attr(`cfg linux`),
		b.attr(`doc whatever`),
		b.attr(`cfg amd64`),
		b.attr(`function name=f`),
		b.attr(`doc trailing`),
	}
	cls, err := classify(attrs)
	require.NoError(t, err)
	require.Equal(t, []string{"cfg linux", "cfg amd64"}, attrNames(cls.Guards))
	require.Len(t, cls.Roles, 1)
	require.Equal(t, 3, cls.Roles[0].Index)
	require.Equal(t, ast.RoleFunction, cls.Roles[0].Spec.Role)
}

func TestClassifyGuardAfterRole(t *testing.T) {
	b := newBuilder(t)
	attrs := []ast.Attr{b.attr(`function`), b.attr(`cfg linux`)}
	_, err := classify(attrs)
	e := requireCode(t, err, diag.BndGuardPlacement)
	require.Equal(t, attrs[1].Span, e.Span)
	require.Len(t, e.Notes, 1)
	require.Equal(t, attrs[0].Span, e.Notes[0].Span)
}

func TestClassifyKeepsRoleOrder(t *testing.T) {
	b := newBuilder(t)
	attrs := []ast.Attr{b.attr(`attr name=a`), b.attr(`doc x`), b.attr(`attr name=b`), b.attr(`class`)}
	cls, err := classify(attrs)
	require.NoError(t, err)
	var idx []int
	for _, r := range cls.Roles {
		idx = append(idx, r.Index)
	}
	require.Equal(t, []int{0, 2, 3}, idx)
	require.Empty(t, cls.Guards)
}
