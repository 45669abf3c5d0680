package diag

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Binding expansion (fatal for the module being expanded).
	BndKindMismatch           Code = 1001
	BndGuardPlacement         Code = 1002
	BndCompositionOrder       Code = 1003
	BndUnsupportedComposition Code = 1004
	BndMultipleComposition    Code = 1005
	BndMissingExposure        Code = 1006
	BndUnsupportedPath        Code = 1007
	BndNameCollision          Code = 1008
	BndMissingBindingName     Code = 1009
	BndInvalidModuleName      Code = 1010
	BndBadArgument            Code = 1011

	// Go source front end.
	SrcBadDirective    Code = 2001
	SrcDuplicateModule Code = 2002
	SrcParseFailed     Code = 2003

	// Rendering.
	GenBadGuard Code = 3001

	// Driver and IO.
	IOFailed      Code = 4001
	IOStaleOutput Code = 4002
	IOToolVersion Code = 4003
)

var codeDescription = map[Code]string{
	UnknownCode:               "Unknown error",
	BndKindMismatch:           "Role applied to the wrong kind of declaration",
	BndGuardPlacement:         "Guard placed after a role directive",
	BndCompositionOrder:       "attr must be placed on top of other role directives",
	BndUnsupportedComposition: "Unsupported role composition",
	BndMultipleComposition:    "More than one composing role on a declaration",
	BndMissingExposure:        "Class is neither exposed nor marked noattr",
	BndUnsupportedPath:        "Import alias is not a simple single-item path",
	BndNameCollision:          "Binding name defined twice in one module",
	BndMissingBindingName:     "attr requires an explicit name",
	BndInvalidModuleName:      "Module name is not a valid identifier",
	BndBadArgument:            "Invalid directive argument",
	SrcBadDirective:           "Malformed directive comment",
	SrcDuplicateModule:        "Package declares more than one module directive",
	SrcParseFailed:            "Go source could not be parsed",
	GenBadGuard:               "Guard is not a valid build constraint",
	IOFailed:                  "File system operation failed",
	IOStaleOutput:             "Generated output is out of date",
	IOToolVersion:             "modbind version does not satisfy [tool].requires",
}

var codeExplanation = map[Code]string{
	BndKindMismatch: "function and attr on a function need a plain func (not a method); " +
		"class and struct_sequence need a struct or a named non-interface type; " +
		"attr also accepts a single const or a `var x = pkg.Name` alias.",
	BndGuardPlacement: "cfg directives apply to the role that follows them. Move every cfg " +
		"above the first role directive of the declaration.",
	BndCompositionOrder: "attr directives may only precede the single class directive of a " +
		"declaration. Once another role has been attached, attr can no longer appear.",
	BndUnsupportedComposition: "`attr` followed by `class` is the only supported composition; " +
		"a function directive cannot follow attr.",
	BndMultipleComposition: "A declaration can be composed once: after `attr ... class` no further " +
		"role directive is allowed.",
	BndMissingExposure: "A class is exposed through the attr directives placed above it. " +
		"To keep the type registered but unexposed, write `class noattr`.",
	BndUnsupportedPath: "Only `var Name = pkg.Name` or `var Alias = pkg.Name` can be exposed with attr.",
	BndNameCollision: "Each binding name may be registered once per module. Rename one of the " +
		"entries with name=...",
	BndMissingBindingName: "Bare attr exposure has no default name; write `attr name=...`.",
	BndInvalidModuleName: "The module name must start with a letter or underscore and contain " +
		"only letters, digits and underscores.",
	GenBadGuard: "cfg arguments are Go build constraint expressions such as `linux && !race`.",
	IOStaleOutput: "Run `modbind gen` to refresh the generated files.",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("BND%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SRC%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("GEN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

// Explain returns the long-form help text, falling back to the title.
func (c Code) Explain() string {
	if text, ok := codeExplanation[c]; ok {
		return text
	}
	return c.Title()
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseCode accepts "BND1006", "bnd1006" or a bare "1006".
func ParseCode(s string) (Code, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, prefix := range []string{"BND", "SRC", "GEN", "IO"} {
		s = strings.TrimPrefix(s, prefix)
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return UnknownCode, fmt.Errorf("invalid diagnostic code %q", s)
	}
	c := Code(n)
	if _, ok := codeDescription[c]; !ok || c == UnknownCode {
		return UnknownCode, fmt.Errorf("unknown diagnostic code %q", s)
	}
	return c, nil
}

// Codes returns all known codes in ascending order.
func Codes() []Code {
	out := make([]Code, 0, len(codeDescription))
	for c := range codeDescription {
		if c != UnknownCode {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}
