// Package frontend turns a directory of Go source into an ast.Module.
//
// A package becomes a binding module when one of its files carries
// `//modbind:module` in the package doc comment. Directives on top-level
// declarations are collected from their doc comments:
//
//	//modbind:cfg linux && amd64
//	//modbind:function name=hello
//	func greet() string
//
// Files with a `Code generated ... DO NOT EDIT.` header and _test.go files
// are never read.
package frontend
