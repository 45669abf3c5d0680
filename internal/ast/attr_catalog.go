package ast

import (
	"slices"
	"strings"
)

// Directive names that are not roles.
const (
	GuardName  = "cfg"
	ModuleName = "module"
	NoAttrFlag = "noattr"
)

// Role selects which generator handles a directive.
type Role uint8

const (
	RoleNone Role = iota
	RoleFunction
	RoleClass
	RoleAttr
)

func (r Role) String() string {
	switch r {
	case RoleFunction:
		return "function"
	case RoleClass:
		return "class"
	case RoleAttr:
		return "attr"
	default:
		return "none"
	}
}

// AttrTargetMask describes the declaration kinds a role may be applied to.
type AttrTargetMask uint16

const (
	AttrTargetNone  AttrTargetMask = 0
	AttrTargetFn    AttrTargetMask = 1 << iota // plain functions
	AttrTargetType                             // struct and enum types
	AttrTargetConst                            // single constants
	AttrTargetUse                              // import aliases
)

// RoleSpec describes a role directive and its legal hosts.
type RoleSpec struct {
	Name    string
	Role    Role
	Targets AttrTargetMask
}

// Allows reports whether the role can be applied to a declaration of kind k.
func (spec RoleSpec) Allows(k ItemKind) bool {
	return spec.Targets&k.Target() != 0
}

// Composing reports whether attr directives may be stacked on top of the role.
func (spec RoleSpec) Composing() bool {
	return spec.Role == RoleClass
}

var roleRegistry = map[string]RoleSpec{
	"function":        {Name: "function", Role: RoleFunction, Targets: AttrTargetFn},
	"class":           {Name: "class", Role: RoleClass, Targets: AttrTargetType},
	"struct_sequence": {Name: "struct_sequence", Role: RoleClass, Targets: AttrTargetType},
	"attr":            {Name: "attr", Role: RoleAttr, Targets: AttrTargetFn | AttrTargetConst | AttrTargetUse},
}

// Target maps a declaration kind onto the role target mask.
func (k ItemKind) Target() AttrTargetMask {
	switch k {
	case ItemFn:
		return AttrTargetFn
	case ItemStruct, ItemEnum:
		return AttrTargetType
	case ItemConst:
		return AttrTargetConst
	case ItemUse:
		return AttrTargetUse
	default:
		return AttrTargetNone
	}
}

// LookupRole returns the role spec for a directive name (case-insensitive).
func LookupRole(name string) (RoleSpec, bool) {
	if name == "" {
		return RoleSpec{}, false
	}
	spec, ok := roleRegistry[strings.ToLower(name)]
	return spec, ok
}

// IsGuard reports whether name is the conditional-compilation directive.
func IsGuard(name string) bool {
	return strings.EqualFold(name, GuardName)
}

// RoleSpecs returns all role specs sorted by name.
func RoleSpecs() []RoleSpec {
	names := make([]string, 0, len(roleRegistry))
	for name := range roleRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	out := make([]RoleSpec, 0, len(names))
	for _, name := range names {
		out = append(out, roleRegistry[name])
	}
	return out
}
