// Package gogen renders an expanded module as Go source.
//
// The main file holds the module name constant, the extend routine and the
// make routine. Every guarded registration is moved into a helper that lives
// in a pair of files: one compiled under the guard's build constraint, and
// an empty stub compiled under its negation. The extend routine calls the
// helper at the registration's position, so emission order is preserved
// whatever the build configuration.
//
// Generation approach uses text/template + go/format.
package gogen
