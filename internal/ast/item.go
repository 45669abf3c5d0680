package ast

import "modbind/internal/source"

// ItemKind classifies a top-level declaration.
type ItemKind uint8

const (
	ItemOther  ItemKind = iota // anything the expander does not bind
	ItemFn                     // plain function
	ItemMethod                 // function with a receiver
	ItemStruct                 // struct type
	ItemEnum                   // named non-struct, non-interface type (iota-style enum)
	ItemConst                  // single-name constant
	ItemVar                    // variable that is not an import alias
	ItemUse                    // `var x = pkg.Name` import alias
)

func (k ItemKind) String() string {
	switch k {
	case ItemFn:
		return "function"
	case ItemMethod:
		return "method"
	case ItemStruct:
		return "struct"
	case ItemEnum:
		return "enum"
	case ItemConst:
		return "const"
	case ItemVar:
		return "var"
	case ItemUse:
		return "import alias"
	default:
		return "declaration"
	}
}

// Item is one declaration of a module together with its directives.
// The position of an Item inside Module.Items is its index.
type Item struct {
	Kind  ItemKind
	Name  string
	Use   *UseDecl
	Attrs []Attr
	Span  source.Span

	// Synthetic items only.
	Synth SynthKind
	Value string
	Body  []GuardedStmt
}

// Clone returns a deep copy of the item.
func (it Item) Clone() Item {
	out := it
	if it.Use != nil {
		use := it.Use.Clone()
		out.Use = &use
	}
	out.Attrs = CloneAttrs(it.Attrs)
	if it.Body != nil {
		out.Body = make([]GuardedStmt, len(it.Body))
		for i, gs := range it.Body {
			out.Body[i] = GuardedStmt{Guards: CloneAttrs(gs.Guards), Stmt: gs.Stmt}
		}
	}
	return out
}

// Module is a binding module declaration.
type Module struct {
	// Name is the exposed module name; empty until the expander resolves it.
	Name string
	// Package is the Go package identifier the module was declared in.
	Package string
	// Attr is the module directive, nil for hand-built modules.
	Attr  *Attr
	Items []Item
	Span  source.Span
}

// Clone returns a deep copy; expansion always works on a clone.
func (m *Module) Clone() *Module {
	if m == nil {
		return nil
	}
	out := *m
	if m.Attr != nil {
		attr := m.Attr.Clone()
		out.Attr = &attr
	}
	out.Items = make([]Item, len(m.Items))
	for i := range m.Items {
		out.Items[i] = m.Items[i].Clone()
	}
	return &out
}

// Synthetic returns the item produced for kind, if present.
func (m *Module) Synthetic(kind SynthKind) (*Item, bool) {
	for i := range m.Items {
		if m.Items[i].Synth == kind {
			return &m.Items[i], true
		}
	}
	return nil, false
}
