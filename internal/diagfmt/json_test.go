package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"modbind/internal/diag"
	"modbind/internal/source"
)

func TestJSONPositionsNotesFixes(t *testing.T) {
	fs, id := geoFixture(t)
	role := spanOf(t, id, "//modbind:class name=Point")
	insert := source.Span{File: id, Start: role.End, End: role.End}
	diags := []diag.Diagnostic{
		diag.NewError(diag.BndMissingExposure, role, "class Point exposes nothing").
			WithNote(spanOf(t, id, "type Point"), "declared here").
			WithFix("mark as noattr", diag.FixEdit{Span: insert, NewText: " noattr"}),
	}

	var buf bytes.Buffer
	err := JSON(&buf, diags, fs, JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeRelative,
		IncludeNotes:     true,
		IncludeFixes:     true,
		IncludePreviews:  true,
	})
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("count = %d", out.Count)
	}
	d := out.Diagnostics[0]
	if d.Severity != "error" || d.Code != "BND1006" {
		t.Fatalf("severity/code = %s/%s", d.Severity, d.Code)
	}
	if d.Location.File != "geo/geo.go" || d.Location.StartLine != 3 || d.Location.StartCol != 1 {
		t.Fatalf("location = %+v", d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Location.StartLine != 4 {
		t.Fatalf("notes = %+v", d.Notes)
	}
	if len(d.Fixes) != 1 || len(d.Fixes[0].Edits) != 1 {
		t.Fatalf("fixes = %+v", d.Fixes)
	}
	edit := d.Fixes[0].Edits[0]
	if len(edit.AfterLines) != 1 || edit.AfterLines[0] != "//modbind:class name=Point noattr" {
		t.Fatalf("after lines = %q", edit.AfterLines)
	}
}

func TestJSONMaxAndOmissions(t *testing.T) {
	fs, id := geoFixture(t)
	sp := spanOf(t, id, "type Point")
	diags := []diag.Diagnostic{
		diag.NewError(diag.BndKindMismatch, sp, "one").WithNote(sp, "n"),
		diag.NewError(diag.BndKindMismatch, sp, "two"),
	}
	out := BuildDiagnosticsOutput(diags, fs, JSONOpts{Max: 1})
	if out.Count != 1 || out.Diagnostics[0].Message != "one" {
		t.Fatalf("out = %+v", out)
	}
	d := out.Diagnostics[0]
	if d.Notes != nil || d.Location.StartLine != 0 {
		t.Fatalf("unexpected notes or positions: %+v", d)
	}
}
