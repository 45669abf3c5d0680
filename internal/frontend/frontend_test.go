package frontend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"modbind/internal/ast"
	"modbind/internal/diag"
	"modbind/internal/source"
)

func parse(t *testing.T, opts Options, files ...string) (*Package, *source.FileSet, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	var ids []source.FileID
	for i, content := range files {
		ids = append(ids, fs.AddVirtual(filepath.Join("pkg", string(rune('a'+i))+".go"), []byte(content)))
	}
	bag := diag.NewBag(0)
	return ParseFiles(fs, ids, opts, diag.BagReporter{Bag: bag}), fs, bag
}

func findItem(t *testing.T, mod *ast.Module, name string) ast.Item {
	t.Helper()
	for _, it := range mod.Items {
		if it.Name == name {
			return it
		}
	}
	t.Fatalf("item %s not found", name)
	return ast.Item{}
}

const geoSource = `//modbind:module name=shapes
package geo

import (
	"math"
	"strings"
)

//modbind:cfg linux
//modbind:function name=hello
func greet() string { return "hi" }

//modbind:attr
//modbind:class
type Point struct{ X, Y float64 }

func (p Point) Norm() float64 { return math.Hypot(p.X, p.Y) }

type Color int

const (
	Red Color = iota
	//modbind:attr name=green
	Green
)

//modbind:attr name=sqrt
var Sqrt = math.Sqrt

var (
	//modbind:attr name=upper
	Upper = strings.ToUpper
	counter int
)

type Shape interface{ Area() float64 }

type Alias = Point
`

func TestParseFilesMapsDeclarations(t *testing.T) {
	pkg, _, bag := parse(t, Options{}, geoSource)
	require.Zero(t, bag.Len())
	require.Equal(t, "geo", pkg.Name)
	require.NotNil(t, pkg.Module)
	require.Equal(t, "geo", pkg.Module.Package)
	require.Equal(t, "module name=shapes", pkg.Module.Attr.String())

	kinds := map[string]ast.ItemKind{
		"greet":   ast.ItemFn,
		"Point":   ast.ItemStruct,
		"Norm":    ast.ItemMethod,
		"Color":   ast.ItemEnum,
		"Red":     ast.ItemConst,
		"Green":   ast.ItemConst,
		"Sqrt":    ast.ItemUse,
		"Upper":   ast.ItemUse,
		"counter": ast.ItemVar,
		"Shape":   ast.ItemOther,
		"Alias":   ast.ItemOther,
	}
	for name, kind := range kinds {
		require.Equal(t, kind, findItem(t, pkg.Module, name).Kind, name)
	}

	greet := findItem(t, pkg.Module, "greet")
	require.Len(t, greet.Attrs, 2)
	require.Equal(t, "cfg linux", greet.Attrs[0].String())
	require.Equal(t, "function name=hello", greet.Attrs[1].String())
	name, ok := greet.Attrs[1].Lookup("name")
	require.True(t, ok)
	require.Equal(t, "hello", name.Value)

	upper := findItem(t, pkg.Module, "Upper")
	require.Equal(t, &ast.UseDecl{Path: []string{"strings", "ToUpper"}, Rename: "Upper"}, upper.Use)
	sqrt := findItem(t, pkg.Module, "Sqrt")
	require.Equal(t, &ast.UseDecl{Path: []string{"math", "Sqrt"}}, sqrt.Use)

	require.Equal(t, "attr name=green", findItem(t, pkg.Module, "Green").Attrs[0].String())
}

func TestParseFilesSpans(t *testing.T) {
	pkg, fs, _ := parse(t, Options{}, geoSource)
	greet := findItem(t, pkg.Module, "greet")
	f := fs.Get(greet.Span.File)
	require.Equal(t, "greet", string(f.Content[greet.Span.Start:greet.Span.End]))

	fn := greet.Attrs[1]
	require.Equal(t, "//modbind:function name=hello", string(f.Content[fn.Span.Start:fn.Span.End]))
	arg := fn.Args[0]
	require.Equal(t, "name=hello", string(f.Content[arg.Span.Start:arg.Span.End]))
}

func TestParseFilesWithoutModule(t *testing.T) {
	pkg, _, bag := parse(t, Options{}, "package plain\n\n//modbind:function\nfunc F() {}\n")
	require.Zero(t, bag.Len())
	require.Nil(t, pkg.Module)
	require.Equal(t, "plain", pkg.Name)
}

func TestParseFilesDuplicateModule(t *testing.T) {
	_, _, bag := parse(t, Options{},
		"//modbind:module\npackage geo\n",
		"//modbind:module name=other\npackage geo\n",
	)
	require.Equal(t, 1, bag.Len())
	require.Equal(t, diag.SrcDuplicateModule, bag.Items()[0].Code)
}

func TestParseFilesSkipsGenerated(t *testing.T) {
	pkg, _, _ := parse(t, Options{},
		"//modbind:module\npackage geo\n\n//modbind:function\nfunc F() {}\n",
		"// Code generated by modbind. DO NOT EDIT.\n\npackage geo\n\n//modbind:function\nfunc G() {}\n",
	)
	require.Len(t, pkg.Files, 1)
	require.Len(t, pkg.Module.Items, 1)
}

func TestParseFilesBadDirective(t *testing.T) {
	_, _, bag := parse(t, Options{},
		"//modbind:module\npackage geo\n\n//modbind:function name=\nfunc F() {}\n\n//modbind:cfg\nfunc G() {}\n\n//modbind:9x\nfunc H() {}\n",
	)
	require.Equal(t, 3, bag.Len())
	for _, d := range bag.Items() {
		require.Equal(t, diag.SrcBadDirective, d.Code)
	}
}

func TestParseFilesUnrelatedDirectiveKept(t *testing.T) {
	pkg, _, bag := parse(t, Options{}, "//modbind:module\npackage geo\n\n//modbind:doc anything = goes\n//modbind:function\nfunc F() {}\n")
	require.Zero(t, bag.Len())
	f := findItem(t, pkg.Module, "F")
	require.Equal(t, []string{"doc", "function"}, []string{f.Attrs[0].Name, f.Attrs[1].Name})
	require.Equal(t, "anything = goes", f.Attrs[0].Raw)
}

func TestParseFilesSyntaxError(t *testing.T) {
	_, _, bag := parse(t, Options{}, "package geo\nfunc {\n")
	require.True(t, bag.HasErrors())
	require.Equal(t, diag.SrcParseFailed, bag.Items()[0].Code)
}

func TestParseFilesMixedPackages(t *testing.T) {
	_, _, bag := parse(t, Options{}, "package a\n", "package b\n")
	require.Equal(t, 1, bag.Len())
	require.Equal(t, diag.SrcParseFailed, bag.Items()[0].Code)
}

func TestParseFilesFileGuards(t *testing.T) {
	src := "//go:build linux && !arm\n\n//modbind:module\npackage geo\n\n//modbind:function\nfunc F() {}\n\nfunc helper() {}\n"
	pkg, _, bag := parse(t, Options{FileGuards: true}, src)
	require.Zero(t, bag.Len())
	f := findItem(t, pkg.Module, "F")
	require.Equal(t, "cfg linux && !arm", f.Attrs[0].String())
	require.Empty(t, findItem(t, pkg.Module, "helper").Attrs)
}

func TestParseFilesMultiAndDeepAlias(t *testing.T) {
	src := "//modbind:module\npackage geo\n\n//modbind:attr name=pair\nvar A, B = x.A, x.B\n\n//modbind:attr name=deep\nvar C = a.b.C\n"
	pkg, _, _ := parse(t, Options{}, src)
	a := findItem(t, pkg.Module, "A")
	require.True(t, a.Use.Multi)
	c := findItem(t, pkg.Module, "C")
	require.Equal(t, []string{"a", "b", "C"}, c.Use.Path)
	require.False(t, c.Use.Simple())
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	write("b.go", "package geo\n\n//modbind:function\nfunc B() {}\n")
	write("a.go", "//modbind:module\npackage geo\n\n//modbind:function\nfunc A() {}\n")
	write("a_test.go", "package geo\n\n//modbind:function\nfunc T() {}\n")
	write("zz_modbind.go", "package geo\n\n//modbind:function\nfunc Z() {}\n")
	write("notes.txt", "not go")

	fs := source.NewFileSet()
	bag := diag.NewBag(0)
	pkg, err := LoadDir(fs, dir, Options{Skip: []string{"zz_modbind.go"}}, diag.BagReporter{Bag: bag})
	require.NoError(t, err)
	require.Zero(t, bag.Len())
	require.Equal(t, dir, pkg.Dir)
	var names []string
	for _, it := range pkg.Module.Items {
		names = append(names, it.Name)
	}
	require.Equal(t, []string{"A", "B"}, names)
}

func TestLoadDirMissing(t *testing.T) {
	_, err := LoadDir(source.NewFileSet(), filepath.Join(t.TempDir(), "nope"), Options{}, diag.BagReporter{})
	require.Error(t, err)
}

func TestLoadDirSkipsIgnoredPrograms(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	write("geo.go", "//modbind:module\npackage geo\n\n//modbind:function\nfunc Area() {}\n")
	write("gen.go", "//go:build ignore\n\npackage main\n\nfunc main() {}\n")
	write("tools.go", "//go:build ignore && linux\n\npackage main\n")
	write("posix.go", "//go:build !windows\n\npackage geo\n\n//modbind:function\nfunc Posix() {}\n")

	fs := source.NewFileSet()
	bag := diag.NewBag(0)
	pkg, err := LoadDir(fs, dir, Options{FileGuards: true}, diag.BagReporter{Bag: bag})
	require.NoError(t, err)
	require.Zero(t, bag.Len(), diag.FormatShortDiagnostics(bag.Items(), fs, false))
	require.NotNil(t, pkg.Module)
	require.Len(t, pkg.Files, 2)
	require.Len(t, pkg.Module.Items, 2)
	require.Equal(t, "cfg !windows", findItem(t, pkg.Module, "Posix").Attrs[0].String())
}

func TestParseFilesFileNameGuards(t *testing.T) {
	tests := []struct {
		name  string
		build string
		want  string
	}{
		{"geo_windows.go", "", "cfg windows"},
		{"geo_amd64.go", "", "cfg amd64"},
		{"geo_linux_arm64.go", "", "cfg linux && arm64"},
		{"geo_linux_amd64.go", "//go:build cgo\n\n", "cfg linux && amd64 && cgo"},
		{"geo_darwin.go", "//go:build go1.22 || race\n\n", "cfg darwin && (go1.22 || race)"},
	}
	for _, tt := range tests {
		fs := source.NewFileSet()
		mod := fs.AddVirtual(filepath.Join("pkg", "geo.go"), []byte("//modbind:module\npackage geo\n"))
		id := fs.AddVirtual(filepath.Join("pkg", tt.name),
			[]byte(tt.build+"package geo\n\n//modbind:function\nfunc Only() {}\n"))
		bag := diag.NewBag(0)
		pkg := ParseFiles(fs, []source.FileID{mod, id}, Options{FileGuards: true}, diag.BagReporter{Bag: bag})
		require.Zero(t, bag.Len(), tt.name)
		only := findItem(t, pkg.Module, "Only")
		require.Equal(t, tt.want, only.Attrs[0].String(), tt.name)
		require.Equal(t, "function", only.Attrs[1].Name, tt.name)
	}
}

func TestNameConstraintIgnoresPlainNames(t *testing.T) {
	for _, name := range []string{"windows.go", "geo.go", "geo_util.go", "linux_geo.go"} {
		require.Nil(t, nameConstraint(name), name)
	}
}

func TestParseFilesWindowsFileWithoutFileGuards(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual(filepath.Join("pkg", "geo_windows.go"),
		[]byte("//modbind:module\npackage geo\n\n//modbind:function\nfunc WinOnly() {}\n"))
	pkg := ParseFiles(fs, []source.FileID{id}, Options{}, diag.BagReporter{Bag: diag.NewBag(0)})
	require.Equal(t, "function", findItem(t, pkg.Module, "WinOnly").Attrs[0].Name)
}
