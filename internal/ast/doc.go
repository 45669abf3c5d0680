// Package ast is the syntax model the binding expander works on.
//
// A Module is an ordered list of Items. Every Item carries the directives
// written above it as an ordered, mutable list of Attr values. The front end
// fills the model from Go source; tests build it by hand. After expansion the
// module additionally holds three synthetic items (see SynthKind) whose bodies
// are lists of GuardedStmt.
package ast
