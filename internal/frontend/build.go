package frontend

import (
	goast "go/ast"
	"go/build/constraint"
	"go/token"
	"strings"

	"modbind/internal/diag"
	"modbind/internal/source"
)

// Name suffixes the go command treats as implicit GOOS/GOARCH constraints.
var (
	knownOS = map[string]bool{
		"aix": true, "android": true, "darwin": true, "dragonfly": true, "freebsd": true,
		"hurd": true, "illumos": true, "ios": true, "js": true, "linux": true, "nacl": true,
		"netbsd": true, "openbsd": true, "plan9": true, "solaris": true, "wasip1": true,
		"windows": true, "zos": true,
	}
	knownArch = map[string]bool{
		"386": true, "amd64": true, "amd64p32": true, "arm": true, "armbe": true,
		"arm64": true, "arm64be": true, "loong64": true, "mips": true, "mipsle": true,
		"mips64": true, "mips64le": true, "mips64p32": true, "mips64p32le": true,
		"ppc": true, "ppc64": true, "ppc64le": true, "riscv": true, "riscv64": true,
		"s390": true, "s390x": true, "sparc": true, "sparc64": true, "wasm": true,
	}
)

// maxSolveTags bounds the assignments tried by neverBuilt.
const maxSolveTags = 12

// buildConstraint returns the constraint a file is compiled under: the
// GOOS/GOARCH implied by its name joined with its //go:build line. The span
// points at the //go:build line, else at the package name. A nil expression
// means the file is unconstrained.
func buildConstraint(file *goast.File, tokFile *token.File, id source.FileID, name string, r diag.Reporter) (constraint.Expr, source.Span) {
	nameStart := tokFile.Offset(file.Name.Pos())
	span := source.SpanFromOffsets(id, nameStart, nameStart+len(file.Name.Name))
	expr := nameConstraint(name)

	for _, group := range file.Comments {
		if group.Pos() >= file.Package {
			break
		}
		for _, c := range group.List {
			if !constraint.IsGoBuild(c.Text) {
				continue
			}
			start := tokFile.Offset(c.Pos())
			lineSpan := source.SpanFromOffsets(id, start, start+len(c.Text))
			line, err := constraint.Parse(c.Text)
			if err != nil {
				diag.ReportError(r, diag.SrcBadDirective, lineSpan, "invalid //go:build line: "+err.Error()).Emit()
				return expr, span
			}
			return and(expr, line), lineSpan
		}
	}
	return expr, span
}

// nameConstraint mirrors the go command's _GOOS, _GOARCH and _GOOS_GOARCH
// file name suffixes.
func nameConstraint(name string) constraint.Expr {
	name = strings.TrimSuffix(name, ".go")
	i := strings.Index(name, "_")
	if i < 0 {
		return nil
	}
	parts := strings.Split(name[i:], "_")
	n := len(parts)
	last := parts[n-1]
	switch {
	case n >= 2 && knownOS[parts[n-2]] && knownArch[last]:
		return and(&constraint.TagExpr{Tag: parts[n-2]}, &constraint.TagExpr{Tag: last})
	case knownOS[last], knownArch[last]:
		return &constraint.TagExpr{Tag: last}
	}
	return nil
}

func and(x, y constraint.Expr) constraint.Expr {
	switch {
	case x == nil:
		return y
	case y == nil:
		return x
	}
	return &constraint.AndExpr{X: x, Y: y}
}

// neverBuilt reports whether no tag assignment with "ignore" unset
// satisfies expr, as for `//go:build ignore` generator files.
func neverBuilt(expr constraint.Expr) bool {
	var tags []string
	collectTags(expr, &tags)
	if len(tags) > maxSolveTags {
		return false
	}
	for mask := 0; mask < 1<<len(tags); mask++ {
		ok := expr.Eval(func(tag string) bool {
			for i, t := range tags {
				if t == tag {
					return mask&(1<<i) != 0
				}
			}
			return false
		})
		if ok {
			return false
		}
	}
	return true
}

func collectTags(expr constraint.Expr, tags *[]string) {
	switch e := expr.(type) {
	case *constraint.TagExpr:
		if e.Tag == "ignore" {
			return
		}
		for _, t := range *tags {
			if t == e.Tag {
				return
			}
		}
		*tags = append(*tags, e.Tag)
	case *constraint.NotExpr:
		collectTags(e.X, tags)
	case *constraint.AndExpr:
		collectTags(e.X, tags)
		collectTags(e.Y, tags)
	case *constraint.OrExpr:
		collectTags(e.X, tags)
		collectTags(e.Y, tags)
	}
}
