package bindgen

import (
	"errors"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"modbind/internal/ast"
	"modbind/internal/diag"
	"modbind/internal/meta"
)

// Default names of the synthetic declarations.
const (
	DefaultNameConst  = "ModuleName"
	DefaultExtendFunc = "ExtendModule"
	DefaultMakeFunc   = "MakeModule"
)

// Options names the synthetic declarations appended to the module.
type Options struct {
	NameConst  string
	ExtendFunc string
	MakeFunc   string
}

func (o Options) withDefaults() Options {
	if o.NameConst == "" {
		o.NameConst = DefaultNameConst
	}
	if o.ExtendFunc == "" {
		o.ExtendFunc = DefaultExtendFunc
	}
	if o.MakeFunc == "" {
		o.MakeFunc = DefaultMakeFunc
	}
	return o
}

// Result is an expanded module and the registrations it performs.
type Result struct {
	Module  *ast.Module
	Entries []Entry
	Options Options
}

// Expand expands every item of mod and appends the name constant, the
// extend routine and the make routine. mod itself is left untouched; on
// error the result is nil and the error is usually an *Error.
func Expand(mod *ast.Module, opts Options) (*Result, error) {
	if mod == nil {
		return nil, errors.New("bindgen: nil module")
	}
	opts = opts.withDefaults()
	out := mod.Clone()
	name, err := moduleName(out)
	if err != nil {
		return nil, err
	}
	out.Name = name

	nursery := NewNursery()
	for i := range out.Items {
		if err := expandItem(&out.Items[i], name, nursery); err != nil {
			return nil, err
		}
	}

	out.Items = append(out.Items,
		ast.Item{
			Kind:  ast.ItemConst,
			Name:  opts.NameConst,
			Synth: ast.SynthNameConst,
			Value: name,
		},
		ast.Item{
			Kind:  ast.ItemFn,
			Name:  opts.ExtendFunc,
			Synth: ast.SynthExtend,
			Body:  nursery.Assemble(),
		},
		ast.Item{
			Kind:  ast.ItemFn,
			Name:  opts.MakeFunc,
			Synth: ast.SynthMake,
		},
	)
	return &Result{Module: out, Entries: nursery.Entries(), Options: opts}, nil
}

// moduleName resolves name= on the module directive, falling back to the
// package name, and checks the NFC form is a valid identifier.
func moduleName(mod *ast.Module) (string, error) {
	name := mod.Package
	span := mod.Span
	if mod.Attr != nil {
		span = mod.Attr.Span
		m, err := meta.Parse(*mod.Attr, mod.Package, meta.NameKeys...)
		if err != nil {
			return "", badArgument(err, *mod.Attr)
		}
		name = m.SimpleName()
	}
	name = norm.NFC.String(name)
	if !IsIdentifier(name) {
		return "", newError(diag.BndInvalidModuleName, span,
			"module name %q is not a valid identifier", name)
	}
	return name, nil
}

// IsIdentifier reports whether s is a non-empty letter-or-underscore led run
// of letters, digits and underscores.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
