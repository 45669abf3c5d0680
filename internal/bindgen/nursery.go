package bindgen

import (
	"modbind/internal/ast"
	"modbind/internal/diag"
	"modbind/internal/source"
)

// Entry is one registration: a binding name, the guards it is compiled
// under and the statement that performs it.
type Entry struct {
	Name   string
	Guards []ast.Attr
	Stmt   ast.Stmt
	Span   source.Span
}

// Nursery accumulates registrations for one module and rejects duplicate
// binding names.
type Nursery struct {
	entries []Entry
	byName  map[string]int
}

func NewNursery() *Nursery {
	return &Nursery{byName: make(map[string]int)}
}

// Add records a registration. Guards are copied; a name seen before fails
// with a NameCollision error pointing back at the first definition.
func (n *Nursery) Add(name string, guards []ast.Attr, stmt ast.Stmt, span source.Span) error {
	if first, ok := n.byName[name]; ok {
		return newError(diag.BndNameCollision, span, "%q is already bound in this module", name).
			withNote(n.entries[first].Span, "first defined here")
	}
	n.byName[name] = len(n.entries)
	n.entries = append(n.entries, Entry{
		Name:   name,
		Guards: ast.CloneAttrs(guards),
		Stmt:   stmt,
		Span:   span,
	})
	return nil
}

func (n *Nursery) Len() int {
	return len(n.entries)
}

// Entries returns the registrations in insertion order.
func (n *Nursery) Entries() []Entry {
	return append([]Entry(nil), n.entries...)
}

// Assemble renders the extend routine body in insertion order; every
// statement keeps its own guard set.
func (n *Nursery) Assemble() []ast.GuardedStmt {
	out := make([]ast.GuardedStmt, 0, len(n.entries))
	for _, e := range n.entries {
		out = append(out, ast.GuardedStmt{Guards: ast.CloneAttrs(e.Guards), Stmt: e.Stmt})
	}
	return out
}
