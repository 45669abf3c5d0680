package ast

import "testing"

func TestModuleCloneIsDeep(t *testing.T) {
	m := &Module{
		Package: "geo",
		Attr:    &Attr{Name: ModuleName},
		Items: []Item{
			{Kind: ItemUse, Name: "Sqrt", Use: &UseDecl{Path: []string{"math", "Sqrt"}}, Attrs: []Attr{{Name: "attr"}}},
		},
	}
	c := m.Clone()
	c.Items[0].Attrs[0].Name = "changed"
	c.Items[0].Use.Path[0] = "changed"
	c.Attr.Name = "changed"
	if m.Items[0].Attrs[0].Name != "attr" || m.Items[0].Use.Path[0] != "math" || m.Attr.Name != ModuleName {
		t.Fatalf("clone shares state with original")
	}
}

func TestUseDecl(t *testing.T) {
	tests := []struct {
		use    UseDecl
		simple bool
		local  string
	}{
		{UseDecl{Path: []string{"math", "Pi"}}, true, "Pi"},
		{UseDecl{Path: []string{"math", "Pi"}, Rename: "PI"}, true, "PI"},
		{UseDecl{Path: []string{"a", "b", "c"}}, false, "c"},
		{UseDecl{Path: []string{"math", "Pi"}, Multi: true}, false, "Pi"},
		{UseDecl{}, false, ""},
	}
	for _, tt := range tests {
		if got := tt.use.Simple(); got != tt.simple {
			t.Errorf("%v: Simple=%v", tt.use, got)
		}
		if got := tt.use.LocalName(); got != tt.local {
			t.Errorf("%v: LocalName=%q", tt.use, got)
		}
	}
}

func TestSynthetic(t *testing.T) {
	m := &Module{Items: []Item{{Kind: ItemFn, Name: "f"}, {Kind: ItemConst, Synth: SynthNameConst, Value: "geo"}}}
	it, ok := m.Synthetic(SynthNameConst)
	if !ok || it.Value != "geo" {
		t.Fatalf("name const not found")
	}
	if _, ok := m.Synthetic(SynthMake); ok {
		t.Fatalf("unexpected make item")
	}
}
