// Package rttest provides an in-memory rt.VM for tests of generated code.
package rttest

import (
	"fmt"
	"reflect"
	"sync"

	"modbind/rt"
)

// Module is the module object created by Recorder.
type Module struct {
	Name  string
	Attrs map[string]rt.Object
	Order []string
}

// Function is the callable created by Recorder.
type Function struct {
	Fn     any
	Module string
	Name   string
}

// Class is the class object created by Recorder.
type Class struct {
	Type  reflect.Type
	Attrs map[string]rt.Object
}

func (c *Class) SetStrAttr(name string, value rt.Object) {
	c.Attrs[name] = value
}

// Object wraps a converted value.
type Object struct {
	Value any
}

// Recorder implements rt.VM by recording everything in memory. Classes
// are cached per type, the way an interpreter keeps one class object.
type Recorder struct {
	mu      sync.Mutex
	classes map[reflect.Type]*Class
	// FailSetAttr makes SetAttr fail for the given binding name.
	FailSetAttr string
}

var _ rt.VM = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{classes: make(map[reflect.Type]*Class)}
}

func (r *Recorder) NewModule(name string, dict rt.Object) rt.Object {
	attrs, ok := dict.(map[string]rt.Object)
	if !ok {
		attrs = make(map[string]rt.Object)
	}
	return &Module{Name: name, Attrs: attrs}
}

func (r *Recorder) NewDict() rt.Object {
	return make(map[string]rt.Object)
}

func (r *Recorder) SetAttr(module rt.Object, name string, value rt.Object) error {
	m, ok := module.(*Module)
	if !ok {
		return fmt.Errorf("rttest: %T is not a module", module)
	}
	if r.FailSetAttr != "" && r.FailSetAttr == name {
		return fmt.Errorf("rttest: refusing to set %q", name)
	}
	if _, exists := m.Attrs[name]; !exists {
		m.Order = append(m.Order, name)
	}
	m.Attrs[name] = value
	return nil
}

func (r *Recorder) NewFunction(fn any, module, name string) rt.Object {
	return &Function{Fn: fn, Module: module, Name: name}
}

func (r *Recorder) NewClass(t reflect.Type) rt.Class {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.classes[t]; ok {
		return c
	}
	c := &Class{Type: t, Attrs: make(map[string]rt.Object)}
	r.classes[t] = c
	return c
}

func (r *Recorder) NewStr(s string) rt.Object {
	return s
}

func (r *Recorder) NewObject(v any) rt.Object {
	return &Object{Value: v}
}
