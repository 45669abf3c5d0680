package ast

// SynthKind marks the declarations appended by the expander.
type SynthKind uint8

const (
	SynthNone SynthKind = iota
	SynthNameConst
	SynthExtend
	SynthMake
)

// Stmt is one generated registration statement. The set of statements is
// closed: SetFunction, SetClass and SetObject.
type Stmt interface {
	stmtNode()
	// BindingName is the key the statement binds on the module object.
	BindingName() string
}

// SetFunction binds a callable built from Func under Name.
type SetFunction struct {
	Func   string
	Module string
	Name   string
}

// SetClass builds the class value of Type, tags it with Module and binds it under Name.
type SetClass struct {
	Type   string
	Module string
	Name   string
}

// SetObject converts the value of Ident into an interpreter object and binds it.
// Factory means Ident is a function called with the VM to produce the value.
type SetObject struct {
	Ident   string
	Factory bool
	Name    string
}

func (*SetFunction) stmtNode() {}
func (*SetClass) stmtNode()    {}
func (*SetObject) stmtNode()   {}

func (s *SetFunction) BindingName() string { return s.Name }
func (s *SetClass) BindingName() string    { return s.Name }
func (s *SetObject) BindingName() string   { return s.Name }

// GuardedStmt is one entry of the extend routine body.
type GuardedStmt struct {
	Guards []Attr
	Stmt   Stmt
}
