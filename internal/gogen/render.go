package gogen

import (
	"bytes"
	"fmt"
	"go/build/constraint"
	"go/format"
	"path"
	"strconv"
	"strings"
	"text/template"

	"modbind/internal/ast"
	"modbind/internal/bindgen"
)

const (
	DefaultOutput  = "zz_modbind.go"
	DefaultRuntime = "modbind/rt"
	generatorName  = "modbind"
)

type Config struct {
	// Output is the main file name; helper files derive their names from it.
	Output string
	// Runtime is the import path of the runtime contract package.
	Runtime string
}

func (c Config) withDefaults() Config {
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Runtime == "" {
		c.Runtime = DefaultRuntime
	}
	return c
}

// File is one rendered source file.
type File struct {
	Name    string
	Content []byte
}

// Render produces the main file followed by the guarded helper files
// (each one followed by its stub).
func Render(res *bindgen.Result, cfg Config) ([]File, error) {
	cfg = cfg.withDefaults()
	mod := res.Module
	nameConst, ok := mod.Synthetic(ast.SynthNameConst)
	if !ok {
		return nil, fmt.Errorf("gogen: module %s is not expanded", mod.Package)
	}
	extend, _ := mod.Synthetic(ast.SynthExtend)
	mk, _ := mod.Synthetic(ast.SynthMake)

	hdr := header{
		Tool:    generatorName,
		Package: mod.Package,
		Import:  importSpec(cfg.Runtime),
	}
	main := mainData{
		header:     hdr,
		Module:     nameConst.Value,
		NameConst:  nameConst.Name,
		ExtendFunc: extend.Name,
		MakeFunc:   mk.Name,
	}
	var helpers []File
	guarded := 0
	for _, gs := range extend.Body {
		code := stmtCode(gs.Stmt)
		if len(gs.Guards) == 0 {
			main.Body = append(main.Body, code)
			continue
		}
		guarded++
		expr, err := GuardConstraint(gs.Guards)
		if err != nil {
			return nil, err
		}
		fn := helperName(extend.Name, guarded)
		main.Body = append(main.Body, fn+"(vm, module)")

		on := hdr
		on.Build = expr.String()
		onFile, err := execute(GuardFileName(cfg.Output, guarded, false), "guard", guardData{header: on, Func: fn, Body: code})
		if err != nil {
			return nil, err
		}
		off := hdr
		off.Build = (&constraint.NotExpr{X: expr}).String()
		offFile, err := execute(GuardFileName(cfg.Output, guarded, true), "guard", guardData{header: off, Func: fn, Stub: true})
		if err != nil {
			return nil, err
		}
		helpers = append(helpers, onFile, offFile)
	}
	mainFile, err := execute(cfg.Output, "main", main)
	if err != nil {
		return nil, err
	}
	return append([]File{mainFile}, helpers...), nil
}

type header struct {
	Tool    string
	Package string
	Import  string
	Build   string
}

type mainData struct {
	header
	Module     string
	NameConst  string
	ExtendFunc string
	MakeFunc   string
	Body       []string
}

type guardData struct {
	header
	Func string
	Body string
	Stub bool
}

func execute(name, tmpl string, data any) (File, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, tmpl, data); err != nil {
		return File{}, fmt.Errorf("gogen: render %s: %w", name, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return File{}, fmt.Errorf("gogen: format %s: %w\n%s", name, err, buf.Bytes())
	}
	return File{Name: name, Content: src}, nil
}

func importSpec(runtime string) string {
	if path.Base(runtime) == "rt" {
		return strconv.Quote(runtime)
	}
	return "rt " + strconv.Quote(runtime)
}

// stmtCode renders one registration against the vm and module parameters.
func stmtCode(stmt ast.Stmt) string {
	switch s := stmt.(type) {
	case *ast.SetFunction:
		return fmt.Sprintf("rt.Must(vm.SetAttr(module, %q, vm.NewFunction(%s, %q, %q)))",
			s.Name, s.Func, s.Module, s.Name)
	case *ast.SetClass:
		var b strings.Builder
		b.WriteString("{\n")
		fmt.Fprintf(&b, "cls := vm.NewClass(rt.TypeFor[%s]())\n", s.Type)
		fmt.Fprintf(&b, "cls.SetStrAttr(rt.ModuleAttr, vm.NewStr(%q))\n", s.Module)
		fmt.Fprintf(&b, "rt.Must(vm.SetAttr(module, %q, cls))\n", s.Name)
		b.WriteString("}")
		return b.String()
	case *ast.SetObject:
		value := s.Ident
		if s.Factory {
			value += "(vm)"
		}
		return fmt.Sprintf("rt.Must(vm.SetAttr(module, %q, vm.NewObject(%s)))", s.Name, value)
	default:
		panic(fmt.Sprintf("gogen: unexpected statement %T", stmt))
	}
}

var templates = template.Must(template.New("gogen").Parse(`
{{- define "header" -}}
// Code generated by {{.Tool}}. DO NOT EDIT.
{{if .Build}}
//go:build {{.Build}}
{{end}}
package {{.Package}}

import {{.Import}}
{{end}}

{{- define "main" -}}
{{template "header" .}}
// {{.NameConst}} is the name the module is registered under.
const {{.NameConst}} = {{printf "%q" .Module}}

// {{.ExtendFunc}} registers every binding of {{.Module}} on module.
func {{.ExtendFunc}}(vm rt.VM, module rt.Object) {
{{- range .Body}}
	{{.}}
{{- end}}
}

// {{.MakeFunc}} creates a fresh {{.Module}} module object.
func {{.MakeFunc}}(vm rt.VM) rt.Object {
	module := vm.NewModule({{.NameConst}}, vm.NewDict())
	{{.ExtendFunc}}(vm, module)
	return module
}
{{end}}

{{- define "guard" -}}
{{template "header" .}}
{{if .Stub -}}
func {{.Func}}(rt.VM, rt.Object) {}
{{- else -}}
func {{.Func}}(vm rt.VM, module rt.Object) {
	{{.Body}}
}
{{- end}}
{{end}}
`))

// IsGenerated reports whether content starts with the header Render writes.
func IsGenerated(content []byte) bool {
	return bytes.HasPrefix(content, []byte("// Code generated by "+generatorName+". DO NOT EDIT."))
}
