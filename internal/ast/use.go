package ast

// UseDecl describes an import alias: `var Rename = Path[0].Path[1]`.
// Multi marks specs binding several names at once.
type UseDecl struct {
	Path   []string
	Rename string
	Multi  bool
}

func (u UseDecl) Clone() UseDecl {
	u.Path = append([]string(nil), u.Path...)
	return u
}

// Simple reports whether the alias names exactly one item of one package.
func (u UseDecl) Simple() bool {
	return !u.Multi && len(u.Path) == 2
}

// LocalName is the identifier the alias introduces in the declaring package.
func (u UseDecl) LocalName() string {
	if u.Rename != "" {
		return u.Rename
	}
	if len(u.Path) == 0 {
		return ""
	}
	return u.Path[len(u.Path)-1]
}
