package bindgen

import (
	"modbind/internal/ast"
	"modbind/internal/diag"
)

// Variant is one unit of generation produced by the resolver. The set is
// closed: FunctionItem, ClassItem and AttributeItem.
type Variant interface {
	index() int
}

// FunctionItem exposes a plain function as a callable.
type FunctionItem struct {
	Index int
	Role  ast.RoleSpec
}

// ClassItem registers a type; Attrs are the attr directives stacked on top
// of the class directive, in source order.
type ClassItem struct {
	Index int
	Role  ast.RoleSpec
	Attrs []int
}

// AttributeItem exposes a value under an explicit name.
type AttributeItem struct {
	Index int
}

func (v FunctionItem) index() int  { return v.Index }
func (v ClassItem) index() int     { return v.Index }
func (v AttributeItem) index() int { return v.Index }

// resolve groups role directives into variants. attr directives may only
// form an uninterrupted prefix of one composing role; whatever remains
// pending at the end becomes standalone attributes.
func resolve(roles []roleAttr, attrs []ast.Attr) ([]Variant, error) {
	var (
		result  []Variant
		pending []int
		closed  bool
	)
	for _, r := range roles {
		attr := attrs[r.Index]
		if closed {
			return nil, newError(diag.BndMultipleComposition, attr.Span,
				"only one composing role is allowed per declaration; %s follows a completed class", attr.Name)
		}
		if r.Spec.Role == ast.RoleAttr {
			if len(result) > 0 {
				prev := attrs[result[len(result)-1].index()]
				return nil, newError(diag.BndCompositionOrder, attr.Span,
					"attr must be placed on top of other role directives").
					withNote(prev.Span, prev.Name+" is here")
			}
			pending = append(pending, r.Index)
			continue
		}
		if len(pending) == 0 {
			if r.Spec.Composing() {
				result = append(result, ClassItem{Index: r.Index, Role: r.Spec})
			} else {
				result = append(result, FunctionItem{Index: r.Index, Role: r.Spec})
			}
			continue
		}
		if !r.Spec.Composing() {
			return nil, newError(diag.BndUnsupportedComposition, attr.Span,
				"%s cannot be combined with attr; only class and struct_sequence can", attr.Name).
				withNote(attrs[pending[0]].Span, "attr is here")
		}
		result = append(result, ClassItem{Index: r.Index, Role: r.Spec, Attrs: pending})
		pending = nil
		closed = true
	}
	for _, idx := range pending {
		if closed {
			panic("bindgen: pending attr after a closed composition")
		}
		result = append(result, AttributeItem{Index: idx})
	}
	return result, nil
}
