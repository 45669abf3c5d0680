package ast

import "testing"

func TestAttrTakeFlag(t *testing.T) {
	a := Attr{
		Name: "class",
		Args: []Arg{{Key: "name", Value: "Point", HasValue: true}, {Key: "noattr"}},
		Raw:  "name=Point noattr",
	}
	if !a.TakeFlag("noattr") {
		t.Fatalf("expected noattr to be taken")
	}
	if a.TakeFlag("noattr") {
		t.Fatalf("noattr taken twice")
	}
	if got := a.String(); got != "class name=Point" {
		t.Fatalf("unexpected rendering %q", got)
	}
}

func TestAttrTakeFlagIgnoresKeyValue(t *testing.T) {
	a := Attr{Name: "class", Args: []Arg{{Key: "noattr", Value: "x", HasValue: true}}}
	if a.TakeFlag("noattr") {
		t.Fatalf("key=value must not count as a flag")
	}
	if len(a.Args) != 1 {
		t.Fatalf("args changed: %v", a.Args)
	}
}

func TestAttrFillKeepsExisting(t *testing.T) {
	a := Attr{Name: "class", Args: []Arg{{Key: "module", Value: "other", HasValue: true}}, Raw: "module=other"}
	if a.Fill("module", "geo") {
		t.Fatalf("fill overwrote an explicit value")
	}
	b := Attr{Name: "class"}
	if !b.Fill("module", "geo") {
		t.Fatalf("fill did not add module")
	}
	if got := b.String(); got != "class module=geo" {
		t.Fatalf("unexpected rendering %q", got)
	}
}

func TestAttrCloneIsDeep(t *testing.T) {
	a := Attr{Name: "attr", Args: []Arg{{Key: "name", Value: "x", HasValue: true}}}
	c := a.Clone()
	c.Args[0].Value = "y"
	if a.Args[0].Value != "x" {
		t.Fatalf("clone shares args")
	}
}

func TestArgStringQuotes(t *testing.T) {
	arg := Arg{Key: "name", Value: "a b", HasValue: true}
	if got := arg.String(); got != `name="a b"` {
		t.Fatalf("got %q", got)
	}
}

func TestLookupRole(t *testing.T) {
	tests := []struct {
		name  string
		role  Role
		known bool
	}{
		{"function", RoleFunction, true},
		{"Class", RoleClass, true},
		{"struct_sequence", RoleClass, true},
		{"attr", RoleAttr, true},
		{"cfg", RoleNone, false},
		{"doc", RoleNone, false},
	}
	for _, tt := range tests {
		spec, ok := LookupRole(tt.name)
		if ok != tt.known || spec.Role != tt.role {
			t.Errorf("%s: got (%v, %v), want (%v, %v)", tt.name, spec.Role, ok, tt.role, tt.known)
		}
	}
}

func TestRoleSpecAllows(t *testing.T) {
	fn, _ := LookupRole("function")
	if !fn.Allows(ItemFn) || fn.Allows(ItemMethod) || fn.Allows(ItemStruct) {
		t.Fatalf("function targets wrong")
	}
	cls, _ := LookupRole("class")
	if !cls.Allows(ItemStruct) || !cls.Allows(ItemEnum) || cls.Allows(ItemFn) {
		t.Fatalf("class targets wrong")
	}
	attr, _ := LookupRole("attr")
	for _, k := range []ItemKind{ItemFn, ItemConst, ItemUse} {
		if !attr.Allows(k) {
			t.Errorf("attr should allow %s", k)
		}
	}
	if attr.Allows(ItemVar) {
		t.Errorf("attr should not allow var")
	}
}

func TestRoleSpecsSorted(t *testing.T) {
	specs := RoleSpecs()
	for i := 1; i < len(specs); i++ {
		if specs[i-1].Name > specs[i].Name {
			t.Fatalf("not sorted: %s before %s", specs[i-1].Name, specs[i].Name)
		}
	}
	if len(specs) != 4 {
		t.Fatalf("expected 4 roles, got %d", len(specs))
	}
}
