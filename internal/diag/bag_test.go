package diag

import (
	"testing"

	"modbind/internal/source"
)

func TestBagLimitAndErrors(t *testing.T) {
	b := NewBag(2)
	if !b.Add(New(SevWarning, IOStaleOutput, source.Span{}, "w")) {
		t.Fatal("first add rejected")
	}
	if b.HasErrors() {
		t.Fatal("warning counted as error")
	}
	b.Add(NewError(BndKindMismatch, source.Span{}, "e"))
	if b.Add(NewError(BndKindMismatch, source.Span{}, "dropped")) {
		t.Fatal("limit not enforced")
	}
	if !b.HasErrors() || b.Len() != 2 {
		t.Fatalf("HasErrors=%v Len=%d", b.HasErrors(), b.Len())
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(0)
	b.Add(NewError(BndNameCollision, source.Span{File: 1, Start: 5, End: 6}, "x"))
	b.Add(NewError(BndKindMismatch, source.Span{File: 0, Start: 9, End: 10}, "y"))
	b.Add(New(SevWarning, IOStaleOutput, source.Span{File: 0, Start: 9, End: 10}, "z"))
	b.Add(NewError(BndNameCollision, source.Span{File: 1, Start: 5, End: 6}, "x"))

	b.Dedup()
	if b.Len() != 3 {
		t.Fatalf("Dedup left %d items", b.Len())
	}
	b.Sort()
	items := b.Items()
	if items[0].Code != BndKindMismatch || items[1].Code != IOStaleOutput || items[2].Code != BndNameCollision {
		t.Fatalf("unexpected order: %v %v %v", items[0].Code, items[1].Code, items[2].Code)
	}
}

func TestBagMerge(t *testing.T) {
	a := NewBag(1)
	a.Add(NewError(BndKindMismatch, source.Span{}, "a"))
	other := NewBag(0)
	other.Add(NewError(BndMissingExposure, source.Span{}, "b"))
	a.Merge(other)
	if a.Len() != 2 {
		t.Fatalf("Merge produced %d items", a.Len())
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	b := NewBag(0)
	rb := ReportError(BagReporter{Bag: b}, BndMissingExposure, source.Span{}, "class Bad is not exposed").
		WithNote(source.Span{}, "note").
		WithFix("mark as noattr", FixEdit{NewText: " noattr"})
	rb.Emit()
	rb.Emit()
	if b.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", b.Len())
	}
	d := b.Items()[0]
	if len(d.Notes) != 1 || len(d.Fixes) != 1 || d.Fixes[0].Title != "mark as noattr" {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}

func TestCodes(t *testing.T) {
	if BndMissingExposure.ID() != "BND1006" || IOStaleOutput.ID() != "IO4002" || SrcBadDirective.ID() != "SRC2001" {
		t.Fatal("unexpected code ids")
	}
	for _, in := range []string{"BND1006", "bnd1006", "1006"} {
		c, err := ParseCode(in)
		if err != nil || c != BndMissingExposure {
			t.Errorf("ParseCode(%q) = %v, %v", in, c, err)
		}
	}
	if _, err := ParseCode("BND9999"); err == nil {
		t.Error("expected unknown code error")
	}
	codes := Codes()
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("Codes not sorted at %d", i)
		}
	}
	if BndUnsupportedPath.Explain() == BndUnsupportedPath.Title() {
		t.Error("expected long explanation")
	}
}
