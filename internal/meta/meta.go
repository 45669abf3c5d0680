package meta

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"modbind/internal/ast"
	"modbind/internal/source"
)

// ErrMissingName is wrapped by RequiredName when no name= argument exists.
var ErrMissingName = errors.New("missing name argument")

// Error describes an invalid directive argument.
type Error struct {
	Span source.Span
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Allowed key sets per directive.
var (
	NameKeys  = []string{"name"}
	ClassKeys = []string{"name", "module"}
)

// ItemMeta is a validated view of one directive's arguments.
type ItemMeta struct {
	attr  ast.Attr
	ident string
}

// Parse validates that attr only carries keys from allowed, each at most
// once and each with a non-empty value. ident is the host declaration
// identifier used as the default name.
func Parse(attr ast.Attr, ident string, allowed ...string) (*ItemMeta, error) {
	seen := make(map[string]ast.Arg, len(attr.Args))
	for _, arg := range attr.Args {
		if !slices.Contains(allowed, arg.Key) {
			return nil, &Error{
				Span: argSpan(arg, attr),
				Msg:  fmt.Sprintf("%s does not accept %q; allowed: %s", attr.Name, arg.Key, strings.Join(allowed, ", ")),
			}
		}
		if _, dup := seen[arg.Key]; dup {
			return nil, &Error{Span: argSpan(arg, attr), Msg: fmt.Sprintf("%s= given twice", arg.Key)}
		}
		if !arg.HasValue || arg.Value == "" {
			return nil, &Error{Span: argSpan(arg, attr), Msg: fmt.Sprintf("%s requires a non-empty value", arg.Key)}
		}
		seen[arg.Key] = arg
	}
	return &ItemMeta{attr: attr, ident: ident}, nil
}

// Value returns the value of key.
func (m *ItemMeta) Value(key string) (string, bool) {
	arg, ok := m.attr.Lookup(key)
	if !ok {
		return "", false
	}
	return arg.Value, true
}

// OptionalName returns the explicit name= value.
func (m *ItemMeta) OptionalName() (string, bool) {
	return m.Value("name")
}

// SimpleName is the explicit name or the host identifier.
func (m *ItemMeta) SimpleName() string {
	if name, ok := m.OptionalName(); ok {
		return name
	}
	return m.ident
}

// RequiredName fails with ErrMissingName when name= is absent.
func (m *ItemMeta) RequiredName() (string, error) {
	if name, ok := m.OptionalName(); ok {
		return name, nil
	}
	return "", &Error{
		Span: m.attr.Span,
		Msg:  fmt.Sprintf("%s on %s requires name=...", m.attr.Name, m.ident),
		Err:  ErrMissingName,
	}
}

func argSpan(arg ast.Arg, attr ast.Attr) source.Span {
	if arg.Span.Empty() {
		return attr.Span
	}
	return arg.Span
}
