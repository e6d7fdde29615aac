package vm

import (
	"github.com/hetu-lang/hetu/function"
	"github.com/hetu-lang/hetu/namespace"
	"github.com/hetu-lang/hetu/values"
)

// scriptRunner implements function.ScriptRunner by re-entering the
// dispatch loop at fn's DefinitionIP inside a fresh frame closed over fn's
// declaring namespace. One is created per ExecutionContext and installed
// on every script-mode Function declared within it (decl.go's
// execFuncDecl), so functions never need to import this package back.
type scriptRunner struct {
	vm *VirtualMachine
	ec *ExecutionContext
}

func newScriptRunner(vm *VirtualMachine, ec *ExecutionContext) *scriptRunner {
	return &scriptRunner{vm: vm, ec: ec}
}

func (r *scriptRunner) RunFunctionBody(fn *function.Function, this *values.Value, bound *function.BoundArgs) (*values.Value, error) {
	ns := namespace.New(fn.InternalName, fn.ClassID, fn.Closure, r.ec.Options.PrivatePrefix)
	if this != nil {
		_ = ns.Define("this", &namespace.Declaration{ID: "this", Value: this, IsMutable: false}, true)
	}
	for name, v := range bound.Explicit {
		_ = ns.Define(name, &namespace.Declaration{ID: name, Value: v, IsMutable: true}, true)
	}
	for _, p := range bound.PendingDefaults {
		v, err := r.vm.evalDefault(r.ec, ns, p.DefaultIP)
		if err != nil {
			return nil, err
		}
		_ = ns.Define(p.Name, &namespace.Declaration{ID: p.Name, Value: v, IsMutable: true}, true)
	}
	if len(bound.Variadic) > 0 {
		_ = ns.Define("$variadic", &namespace.Declaration{ID: "$variadic", Value: values.NewList(bound.Variadic), IsMutable: false}, true)
	}

	frame := NewFrame(fn, ns, this)
	frame.IP = fn.DefinitionIP
	return r.vm.run(r.ec, frame, r.ec.Unit)
}
