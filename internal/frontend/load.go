package frontend

import (
	"errors"
	"fmt"
	goast "go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"modbind/internal/ast"
	"modbind/internal/diag"
	"modbind/internal/source"
)

// DefaultPrefix is the directive namespace: //modbind:<name>.
const DefaultPrefix = "modbind"

type Options struct {
	Prefix string
	// Skip lists base names never read, typically the generated outputs.
	Skip []string
	// SkipMatch, when set, excludes further base names.
	SkipMatch func(name string) bool
	// FileGuards turns a file's build constraint (its //go:build line and
	// GOOS/GOARCH name suffix) into a leading cfg guard on every bound
	// declaration of that file.
	FileGuards bool
}

// Package is one parsed directory.
type Package struct {
	Dir   string
	Name  string
	Files []source.FileID
	// Module is nil when no file declares //modbind:module.
	Module *ast.Module
}

// LoadDir reads every non-test, non-generated .go file of dir into fs and
// parses it. Files no build configuration compiles, such as
// `//go:build ignore` programs, are left out. IO failures are returned; source problems go to r.
func LoadDir(fs *source.FileSet, dir string, opts Options, r diag.Reporter) (*Package, error) {
	ids, err := ReadDir(fs, dir, opts)
	if err != nil {
		return nil, err
	}
	pkg := ParseFiles(fs, ids, opts, r)
	pkg.Dir = dir
	return pkg, nil
}

// ReadDir loads the candidate files of dir into fs without parsing them.
func ReadDir(fs *source.FileSet, dir string, opts Options) ([]source.FileID, error) {
	names, err := goFiles(dir, opts)
	if err != nil {
		return nil, err
	}
	ids := make([]source.FileID, 0, len(names))
	for _, name := range names {
		id, err := fs.Load(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// goFiles lists candidate source files of dir sorted by name.
func goFiles(dir string, opts Options) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || slices.Contains(opts.Skip, name) {
			continue
		}
		if opts.SkipMatch != nil && opts.SkipMatch(name) {
			continue
		}
		out = append(out, name)
	}
	slices.Sort(out)
	return out, nil
}

// ParseFiles parses files already stored in fs, in the given order.
func ParseFiles(fs *source.FileSet, ids []source.FileID, opts Options, r diag.Reporter) *Package {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	pkg := &Package{}
	var (
		items    []ast.Item
		modAttr  *ast.Attr
		modSpan  source.Span
		nameSpan source.Span
	)
	fset := token.NewFileSet()
	for _, id := range ids {
		f := fs.Get(id)
		if f == nil {
			continue
		}
		file, err := parser.ParseFile(fset, f.Path, f.Content, parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			reportParseError(r, id, fset, err)
			continue
		}
		if goast.IsGenerated(file) {
			continue
		}
		tokFile := fset.File(file.Package)
		build, buildSpan := buildConstraint(file, tokFile, id, filepath.Base(f.Path), r)
		if build != nil && neverBuilt(build) {
			continue
		}
		pkg.Files = append(pkg.Files, id)
		pkgNameStart := tokFile.Offset(file.Name.Pos())
		pkgNameSpan := source.SpanFromOffsets(id, pkgNameStart, pkgNameStart+len(file.Name.Name))

		if pkg.Name == "" {
			pkg.Name = file.Name.Name
			nameSpan = pkgNameSpan
		} else if pkg.Name != file.Name.Name {
			diag.ReportError(r, diag.SrcParseFailed, pkgNameSpan,
				fmt.Sprintf("found packages %s and %s in one directory", pkg.Name, file.Name.Name)).
				WithNote(nameSpan, "package "+pkg.Name+" declared here").
				Emit()
			continue
		}

		sc := &directiveScanner{prefix: opts.Prefix, fileID: id, tokFile: tokFile, reporter: r}
		for _, a := range sc.scan(file.Doc) {
			if a.Name != ast.ModuleName {
				continue
			}
			if modAttr != nil {
				diag.ReportError(r, diag.SrcDuplicateModule, a.Span, "duplicate module directive").
					WithNote(modAttr.Span, "first module directive is here").
					Emit()
				continue
			}
			attr := a
			modAttr = &attr
			modSpan = pkgNameSpan
		}

		mapper := &declMapper{scanner: sc}
		if opts.FileGuards && build != nil {
			mapper.guard = &ast.Attr{Name: ast.GuardName, Raw: build.String(), Span: buildSpan}
		}
		items = append(items, mapper.items(file)...)
	}
	if modAttr != nil {
		pkg.Module = &ast.Module{
			Package: pkg.Name,
			Attr:    modAttr,
			Items:   items,
			Span:    modSpan,
		}
	}
	return pkg
}

func reportParseError(r diag.Reporter, id source.FileID, fset *token.FileSet, err error) {
	var list scanner.ErrorList
	if !errors.As(err, &list) || len(list) == 0 {
		diag.ReportError(r, diag.SrcParseFailed, source.Span{File: id}, err.Error()).Emit()
		return
	}
	for _, e := range list {
		off := e.Pos.Offset
		diag.ReportError(r, diag.SrcParseFailed, source.SpanFromOffsets(id, off, off+1), e.Msg).Emit()
	}
}
