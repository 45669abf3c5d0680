package ast

import (
	"strconv"
	"strings"

	"modbind/internal/source"
)

// Arg is one directive argument: a bare flag (`noattr`) or `key=value`.
type Arg struct {
	Key      string
	Value    string
	HasValue bool
	Span     source.Span
}

func (a Arg) String() string {
	if !a.HasValue {
		return a.Key
	}
	return a.Key + "=" + quoteIfNeeded(a.Value)
}

// Attr is a directive such as `//modbind:function name=hello`.
// Raw keeps the argument text verbatim; guards are rendered from it.
type Attr struct {
	Name string
	Args []Arg
	Raw  string
	Span source.Span
}

// Lookup returns the first argument with the given key.
func (a Attr) Lookup(key string) (Arg, bool) {
	for _, arg := range a.Args {
		if arg.Key == key {
			return arg, true
		}
	}
	return Arg{}, false
}

// TakeFlag removes the bare flag key and reports whether it was present.
// A key=value argument with the same key is not a flag and stays.
func (a *Attr) TakeFlag(key string) bool {
	for i, arg := range a.Args {
		if arg.Key == key && !arg.HasValue {
			a.Args = append(a.Args[:i:i], a.Args[i+1:]...)
			a.Raw = a.argText()
			return true
		}
	}
	return false
}

// Fill appends key=value unless key is already present; existing values win.
func (a *Attr) Fill(key, value string) bool {
	if _, ok := a.Lookup(key); ok {
		return false
	}
	a.Args = append(a.Args, Arg{Key: key, Value: value, HasValue: true})
	a.Raw = a.argText()
	return true
}

func (a Attr) Clone() Attr {
	a.Args = append([]Arg(nil), a.Args...)
	return a
}

// String renders the directive without its prefix, e.g. `class name=Point module=geo`.
func (a Attr) String() string {
	if a.Raw == "" {
		return a.Name
	}
	return a.Name + " " + a.Raw
}

func (a Attr) argText() string {
	parts := make([]string, len(a.Args))
	for i, arg := range a.Args {
		parts[i] = arg.String()
	}
	return strings.Join(parts, " ")
}

// CloneAttrs deep-copies a directive list; nil stays nil.
func CloneAttrs(attrs []Attr) []Attr {
	if attrs == nil {
		return nil
	}
	out := make([]Attr, len(attrs))
	for i := range attrs {
		out[i] = attrs[i].Clone()
	}
	return out
}

func quoteIfNeeded(v string) string {
	if v == "" || strings.ContainsAny(v, " \t,=\"") {
		return strconv.Quote(v)
	}
	return v
}
