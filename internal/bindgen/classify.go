package bindgen

import (
	"modbind/internal/ast"
	"modbind/internal/diag"
)

// roleAttr is a role directive at position Index of the item's directive list.
type roleAttr struct {
	Index int
	Spec  ast.RoleSpec
}

// classification splits an item's directives into the guards that apply to
// its roles and the ordered role directives themselves.
type classification struct {
	Guards []ast.Attr
	Roles  []roleAttr
}

// classify collects cfg guards up to the first role directive. A guard after
// a role is an error; unrelated directives are skipped throughout.
func classify(attrs []ast.Attr) (classification, error) {
	var out classification
	for i, attr := range attrs {
		if ast.IsGuard(attr.Name) {
			if len(out.Roles) > 0 {
				first := attrs[out.Roles[0].Index]
				return classification{}, newError(diag.BndGuardPlacement, attr.Span,
					"cfg must be placed above %s", first.Name).
					withNote(first.Span, "first role directive is here")
			}
			out.Guards = append(out.Guards, attr.Clone())
			continue
		}
		spec, ok := ast.LookupRole(attr.Name)
		if !ok {
			continue
		}
		out.Roles = append(out.Roles, roleAttr{Index: i, Spec: spec})
	}
	return out, nil
}
