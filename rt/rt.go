// Package rt is the runtime contract generated binding code is written
// against. An interpreter embedding modbind modules implements VM.
package rt

import (
	"fmt"
	"reflect"
)

// Object is an interpreter value.
type Object = any

// VM is the interpreter handle passed to generated ExtendModule and
// MakeModule functions.
type VM interface {
	// NewModule creates a module object named name backed by dict.
	NewModule(name string, dict Object) Object
	NewDict() Object
	// SetAttr binds value under name on module.
	SetAttr(module Object, name string, value Object) error
	// NewFunction wraps a Go function as a callable owned by module.
	NewFunction(fn any, module, name string) Object
	// NewClass returns the class object registered for t.
	NewClass(t reflect.Type) Class
	NewStr(s string) Object
	// NewObject converts an arbitrary Go value into an interpreter value.
	NewObject(v any) Object
}

// Class is a class object whose string attributes can be set.
type Class interface {
	SetStrAttr(name string, value Object)
}

// ModuleAttr is the class attribute holding the owning module name.
const ModuleAttr = "__module__"

// Must panics on a registration failure. Generated code has no caller to
// return the error to.
func Must(err error) {
	if err != nil {
		panic(fmt.Errorf("rt: module registration failed: %w", err))
	}
}

// TypeFor returns the reflect.Type of T, including interface types.
func TypeFor[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}
