package bindgen

import (
	"errors"
	"fmt"
	"slices"

	"modbind/internal/ast"
	"modbind/internal/diag"
	"modbind/internal/meta"
)

var attrRole, _ = ast.LookupRole("attr")

// itemContext carries the state of one item while its variants are generated.
// attrs is a snapshot of the directive list; handlers edit it in place and
// mark consumed positions, the retained list is rebuilt once at the end.
type itemContext struct {
	module   string
	item     *ast.Item
	attrs    []ast.Attr
	consumed map[int]struct{}
	guards   []ast.Attr
	nursery  *Nursery
}

func (c *itemContext) consume(idx int) {
	c.consumed[idx] = struct{}{}
}

// retained returns the directives that survive generation, in source order.
func (c *itemContext) retained() []ast.Attr {
	out := make([]ast.Attr, 0, len(c.attrs)-len(c.consumed))
	for i, attr := range c.attrs {
		if _, gone := c.consumed[i]; gone {
			continue
		}
		out = append(out, attr)
	}
	return out
}

// expandItem runs classification, resolution and generation for one item and
// replaces its directive list with the retained one.
func expandItem(item *ast.Item, module string, nursery *Nursery) error {
	if len(item.Attrs) == 0 {
		return nil
	}
	cls, err := classify(item.Attrs)
	if err != nil {
		return err
	}
	if len(cls.Roles) == 0 {
		return nil
	}
	variants, err := resolve(cls.Roles, item.Attrs)
	if err != nil {
		return err
	}
	ctx := &itemContext{
		module:   module,
		item:     item,
		attrs:    ast.CloneAttrs(item.Attrs),
		consumed: make(map[int]struct{}, len(variants)),
		guards:   cls.Guards,
		nursery:  nursery,
	}
	for _, v := range slices.Backward(variants) {
		if err := ctx.generate(v); err != nil {
			return err
		}
	}
	item.Attrs = ctx.retained()
	return nil
}

func (c *itemContext) generate(v Variant) error {
	switch v := v.(type) {
	case FunctionItem:
		return c.genFunction(v)
	case ClassItem:
		return c.genClass(v)
	case AttributeItem:
		return c.genAttribute(v)
	default:
		panic(fmt.Sprintf("bindgen: unexpected variant %T", v))
	}
}

func (c *itemContext) genFunction(v FunctionItem) error {
	attr := c.attrs[v.Index]
	if !v.Role.Allows(c.item.Kind) {
		return c.kindMismatch(attr, "a plain function")
	}
	m, err := meta.Parse(attr, c.item.Name, meta.NameKeys...)
	if err != nil {
		return badArgument(err, attr)
	}
	name := m.SimpleName()
	c.consume(v.Index)
	return c.nursery.Add(name, c.guards, &ast.SetFunction{
		Func:   c.item.Name,
		Module: c.module,
		Name:   name,
	}, attr.Span)
}

func (c *itemContext) genClass(v ClassItem) error {
	attr := &c.attrs[v.Index]
	if !v.Role.Allows(c.item.Kind) {
		return c.kindMismatch(*attr, "a struct or a named non-interface type")
	}
	if len(v.Attrs) == 0 && !attr.TakeFlag(ast.NoAttrFlag) {
		end := attr.Span
		end.Start = end.End
		return newError(diag.BndMissingExposure, attr.Span,
			"%s requires attr to be exposed on the module; to keep %s unexposed write `%s noattr`",
			attr.Name, c.item.Name, attr.Name).
			withFix("mark as noattr", diag.FixEdit{Span: end, NewText: " " + ast.NoAttrFlag})
	}
	m, err := meta.Parse(*attr, c.item.Name, meta.ClassKeys...)
	if err != nil {
		return badArgument(err, *attr)
	}
	className := m.SimpleName()
	attr.Fill("module", c.module)

	for _, idx := range slices.Backward(v.Attrs) {
		exposed := c.attrs[idx]
		am, err := meta.Parse(exposed, className, meta.NameKeys...)
		if err != nil {
			return badArgument(err, exposed)
		}
		name, ok := am.OptionalName()
		if !ok {
			name = className
		}
		c.consume(idx)
		if err := c.nursery.Add(name, c.guards, &ast.SetClass{
			Type:   c.item.Name,
			Module: c.module,
			Name:   name,
		}, exposed.Span); err != nil {
			return err
		}
	}
	return nil
}

func (c *itemContext) genAttribute(v AttributeItem) error {
	attr := c.attrs[v.Index]
	if !attrRole.Allows(c.item.Kind) {
		return c.kindMismatch(attr, "a function, a const or a `var x = pkg.Name` alias")
	}
	stmt := &ast.SetObject{Ident: c.item.Name}
	switch c.item.Kind {
	case ast.ItemFn:
		stmt.Factory = true
	case ast.ItemUse:
		if c.item.Use == nil || !c.item.Use.Simple() {
			return newError(diag.BndUnsupportedPath, attr.Span,
				"attr can only expose a single `pkg.Name` alias").
				withNote(c.item.Span, "alias declared here")
		}
		stmt.Ident = c.item.Use.LocalName()
	}
	m, err := meta.Parse(attr, stmt.Ident, meta.NameKeys...)
	if err != nil {
		return badArgument(err, attr)
	}
	name, err := m.RequiredName()
	if err != nil {
		if errors.Is(err, meta.ErrMissingName) {
			return newError(diag.BndMissingBindingName, attr.Span,
				"attr on %s requires name=...", stmt.Ident)
		}
		return badArgument(err, attr)
	}
	stmt.Name = name
	c.consume(v.Index)
	return c.nursery.Add(name, c.guards, stmt, attr.Span)
}

func (c *itemContext) kindMismatch(attr ast.Attr, want string) *Error {
	return newError(diag.BndKindMismatch, attr.Span,
		"%s can only be on %s, not on %s %s", attr.Name, want, c.item.Kind, c.item.Name).
		withNote(c.item.Span, "declared here")
}

func badArgument(err error, attr ast.Attr) *Error {
	var me *meta.Error
	if errors.As(err, &me) && !me.Span.Empty() {
		return newError(diag.BndBadArgument, me.Span, "%s", me.Msg)
	}
	return newError(diag.BndBadArgument, attr.Span, "%s", err.Error())
}
