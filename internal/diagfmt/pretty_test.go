package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"modbind/internal/diag"
	"modbind/internal/source"
)

const geoSrc = "package geo\n\n//modbind:class name=Point\ntype Point struct{ X, Y int }\n\n\t//modbind:attr\nfunc Origin() Point { return Point{} }\n"

func geoFixture(t *testing.T) (*source.FileSet, source.FileID) {
	t.Helper()
	fs := source.NewFileSetWithBase("/work")
	id := fs.AddVirtual("/work/geo/geo.go", []byte(geoSrc))
	return fs, id
}

func spanOf(t *testing.T, id source.FileID, needle string) source.Span {
	t.Helper()
	off := strings.Index(geoSrc, needle)
	if off < 0 {
		t.Fatalf("needle %q not found", needle)
	}
	return source.SpanFromOffsets(id, off, off+len(needle))
}

func TestPrettyHeaderAndCaret(t *testing.T) {
	fs, id := geoFixture(t)
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.BndMissingExposure, spanOf(t, id, "//modbind:class name=Point"), "class Point exposes nothing"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeRelative})
	got := buf.String()

	want := "geo/geo.go:3:1: ERROR BND1006: class Point exposes nothing\n" +
		"  |\n" +
		"3 | //modbind:class name=Point\n" +
		"  | ^" + strings.Repeat("~", len("//modbind:class name=Point")-1) + "\n"
	if got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyCaretAfterTab(t *testing.T) {
	fs, id := geoFixture(t)
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.BndMissingBindingName, spanOf(t, id, "attr"), "attr requires name="))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 4 {
		t.Fatalf("too few lines: %q", buf.String())
	}
	if lines[2] != "6 |     //modbind:attr" {
		t.Fatalf("source line = %q", lines[2])
	}
	caret := strings.TrimPrefix(lines[3], "  | ")
	if caret != strings.Repeat(" ", 14)+"^~~~" {
		t.Fatalf("caret line = %q", lines[3])
	}
}

func TestPrettyNotesFixesAndPreview(t *testing.T) {
	fs, id := geoFixture(t)
	role := spanOf(t, id, "//modbind:class name=Point")
	insert := source.Span{File: id, Start: role.End, End: role.End}
	d := diag.NewError(diag.BndMissingExposure, role, "class Point exposes nothing").
		WithNote(spanOf(t, id, "type Point"), "declared here").
		WithFix("mark as noattr", diag.FixEdit{Span: insert, NewText: " noattr"})
	bag := diag.NewBag(10)
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true, ShowFixes: true, ShowPreview: true})
	got := buf.String()

	for _, want := range []string{
		"note: geo.go:4:1: declared here",
		"4 | type Point struct{ X, Y int }",
		"fix: mark as noattr",
		"- //modbind:class name=Point\n",
		"+ //modbind:class name=Point noattr\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestPrettyContextLines(t *testing.T) {
	fs, id := geoFixture(t)
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.BndKindMismatch, spanOf(t, id, "type Point"), "mismatch"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, Context: 1})
	got := buf.String()
	if !strings.Contains(got, "3 | //modbind:class name=Point\n4 | type Point") {
		t.Fatalf("context line missing:\n%s", got)
	}
	// blank line 5 is skipped
	if strings.Contains(got, "5 |") {
		t.Fatalf("blank context line printed:\n%s", got)
	}
}

func TestPrettyColorToggle(t *testing.T) {
	fs, id := geoFixture(t)
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.BndKindMismatch, spanOf(t, id, "type Point"), "mismatch"))

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatalf("plain output has escapes: %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatalf("colored output has no escapes: %q", colored.String())
	}
}

func TestParsePathMode(t *testing.T) {
	tests := []struct {
		in   string
		want PathMode
		err  bool
	}{
		{"", PathModeAuto, false},
		{"ABS", PathModeAbsolute, false},
		{"relative", PathModeRelative, false},
		{"base", PathModeBasename, false},
		{"nope", PathModeAuto, true},
	}
	for _, tt := range tests {
		got, err := ParsePathMode(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("ParsePathMode(%q) = %v, %v", tt.in, got, err)
		}
	}
}
