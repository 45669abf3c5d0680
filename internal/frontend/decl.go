package frontend

import (
	goast "go/ast"
	"go/token"

	"modbind/internal/ast"
	"modbind/internal/source"
)

// declMapper maps the top-level declarations of one file onto ast.Items.
type declMapper struct {
	scanner *directiveScanner
	// guard is the file's own build constraint as a cfg directive, if any.
	guard *ast.Attr
}

func (m *declMapper) items(file *goast.File) []ast.Item {
	var out []ast.Item
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *goast.FuncDecl:
			kind := ast.ItemFn
			if d.Recv != nil {
				kind = ast.ItemMethod
			} else if d.Type.TypeParams != nil && d.Type.TypeParams.NumFields() > 0 {
				kind = ast.ItemOther
			}
			out = append(out, m.item(kind, d.Name, d.Doc))
		case *goast.GenDecl:
			out = append(out, m.genDecl(d)...)
		}
	}
	return out
}

func (m *declMapper) genDecl(d *goast.GenDecl) []ast.Item {
	if d.Tok == token.IMPORT {
		return nil
	}
	var out []ast.Item
	for _, spec := range d.Specs {
		doc := specDoc(spec)
		if doc == nil && !d.Lparen.IsValid() {
			doc = d.Doc
		}
		switch s := spec.(type) {
		case *goast.TypeSpec:
			out = append(out, m.item(typeKind(s), s.Name, doc))
		case *goast.ValueSpec:
			out = append(out, m.valueItem(d.Tok, s, doc))
		}
	}
	return out
}

func (m *declMapper) valueItem(tok token.Token, s *goast.ValueSpec, doc *goast.CommentGroup) ast.Item {
	name := s.Names[0]
	if tok == token.CONST {
		if len(s.Names) == 1 {
			return m.item(ast.ItemConst, name, doc)
		}
		return m.item(ast.ItemOther, name, doc)
	}
	if len(s.Values) == 0 {
		return m.item(ast.ItemVar, name, doc)
	}
	path, ok := selectorPath(s.Values[0])
	if !ok {
		return m.item(ast.ItemVar, name, doc)
	}
	it := m.item(ast.ItemUse, name, doc)
	it.Use = &ast.UseDecl{Path: path, Multi: len(s.Names) > 1}
	if name.Name != path[len(path)-1] {
		it.Use.Rename = name.Name
	}
	return it
}

func (m *declMapper) item(kind ast.ItemKind, name *goast.Ident, doc *goast.CommentGroup) ast.Item {
	start := m.scanner.tokFile.Offset(name.Pos())
	it := ast.Item{
		Kind:  kind,
		Name:  name.Name,
		Attrs: m.scanner.scan(doc),
		Span:  source.SpanFromOffsets(m.scanner.fileID, start, start+len(name.Name)),
	}
	if m.guard != nil && bindable(it.Attrs) {
		it.Attrs = append([]ast.Attr{m.guard.Clone()}, it.Attrs...)
	}
	return it
}

func typeKind(s *goast.TypeSpec) ast.ItemKind {
	if s.Assign.IsValid() || (s.TypeParams != nil && s.TypeParams.NumFields() > 0) {
		return ast.ItemOther
	}
	switch s.Type.(type) {
	case *goast.StructType:
		return ast.ItemStruct
	case *goast.InterfaceType:
		return ast.ItemOther
	default:
		return ast.ItemEnum
	}
}

// selectorPath flattens pkg.Name (or a.b.c) into its identifiers.
func selectorPath(e goast.Expr) ([]string, bool) {
	sel, ok := e.(*goast.SelectorExpr)
	if !ok {
		return nil, false
	}
	switch x := sel.X.(type) {
	case *goast.Ident:
		return []string{x.Name, sel.Sel.Name}, true
	case *goast.SelectorExpr:
		head, ok := selectorPath(x)
		if !ok {
			return nil, false
		}
		return append(head, sel.Sel.Name), true
	default:
		return nil, false
	}
}

func specDoc(spec goast.Spec) *goast.CommentGroup {
	switch s := spec.(type) {
	case *goast.TypeSpec:
		return s.Doc
	case *goast.ValueSpec:
		return s.Doc
	default:
		return nil
	}
}

// bindable reports whether attrs carry at least one role directive.
func bindable(attrs []ast.Attr) bool {
	for _, a := range attrs {
		if _, ok := ast.LookupRole(a.Name); ok {
			return true
		}
	}
	return false
}
