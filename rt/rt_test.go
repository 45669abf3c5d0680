package rt_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"modbind/rt"
	"modbind/rt/rttest"
)

type point struct{ X, Y int }

// extend mirrors the code modbind generates for a small module.
func extend(vm rt.VM, module rt.Object) {
	rt.Must(vm.SetAttr(module, "hello", vm.NewFunction(func() string { return "hi" }, "geo", "hello")))
	{
		cls := vm.NewClass(rt.TypeFor[point]())
		cls.SetStrAttr(rt.ModuleAttr, vm.NewStr("geo"))
		rt.Must(vm.SetAttr(module, "Point", cls))
	}
	rt.Must(vm.SetAttr(module, "pi", vm.NewObject(3.14)))
}

func TestGeneratedShape(t *testing.T) {
	vm := rttest.NewRecorder()
	module := vm.NewModule("geo", vm.NewDict())
	extend(vm, module)

	m := module.(*rttest.Module)
	require.Equal(t, []string{"hello", "Point", "pi"}, m.Order)
	require.Equal(t, "hello", m.Attrs["hello"].(*rttest.Function).Name)

	cls := m.Attrs["Point"].(*rttest.Class)
	require.Equal(t, reflect.TypeFor[point](), cls.Type)
	require.Equal(t, "geo", cls.Attrs[rt.ModuleAttr])
	require.Same(t, cls, vm.NewClass(rt.TypeFor[point]()))
}

func TestMustPanicsWithCause(t *testing.T) {
	cause := errors.New("boom")
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		require.ErrorIs(t, err, cause)
	}()
	rt.Must(cause)
}

func TestSetAttrFailureIsFatal(t *testing.T) {
	vm := rttest.NewRecorder()
	vm.FailSetAttr = "pi"
	module := vm.NewModule("geo", vm.NewDict())
	require.Panics(t, func() { extend(vm, module) })
}
