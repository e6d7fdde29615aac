// Package function implements the Function value kind (§3 "Function",
// §4.F): parameter binding, closures, the script/external call protocol,
// and the async wrapper.
package function

import (
	"fmt"

	"github.com/hetu-lang/hetu/hetutype"
	"github.com/hetu-lang/hetu/namespace"
	"github.com/hetu-lang/hetu/values"
)

// Binding errors (§7).
var (
	ErrExtraPositionalArg = fmt.Errorf("extraPositionalArg")
	ErrExtraNamedArg      = fmt.Errorf("extraNamedArg")
	ErrMissingArgument    = fmt.Errorf("missing required argument")
	ErrNotCallable        = fmt.Errorf("notCallable")
)

// Parameter describes one formal parameter (§3 "Function").
type Parameter struct {
	Name         string
	DeclaredType *hetutype.Type
	HasDefault   bool
	DefaultIP    int
	IsOptional   bool
	IsVariadic   bool
	IsNamed      bool
}

// RedirectingConstructor records a constructor-initializer forward (§4.F
// "Redirecting constructor"): positional/named initializer ips evaluated in
// the current frame before the target constructor runs.
type RedirectingConstructor struct {
	TargetName         string
	PositionalInitIPs  []int
	NamedInitIPs       map[string]int
}

// BoundArgs is the result of binding a call's arguments against a
// Function's parameter list (§4.F step 3). Explicit carries values the
// caller actually supplied; PendingDefaults lists, in parameter order,
// parameters that must be filled by lazily evaluating their default-value
// ip in the new frame — script functions only, since external functions
// have no bytecode to evaluate.
type BoundArgs struct {
	Explicit        map[string]*values.Value
	PendingDefaults []Parameter
	Variadic        []*values.Value
}

// bind implements §4.F step 3: named args first, then positional args in
// parameter order, trailing extras collected into the variadic parameter if
// one exists, unknown args raising the appropriate extra-arg error.
func bind(params []Parameter, positional []*values.Value, named map[string]*values.Value) (*BoundArgs, error) {
	out := &BoundArgs{Explicit: make(map[string]*values.Value)}

	namedRemaining := make(map[string]*values.Value, len(named))
	for k, v := range named {
		namedRemaining[k] = v
	}

	posIdx := 0
	var variadicParam *Parameter
	for i := range params {
		p := &params[i]
		if p.IsVariadic {
			variadicParam = p
			continue
		}
		if p.IsNamed {
			if v, ok := namedRemaining[p.Name]; ok {
				out.Explicit[p.Name] = v
				delete(namedRemaining, p.Name)
				continue
			}
			if p.HasDefault {
				out.PendingDefaults = append(out.PendingDefaults, *p)
				continue
			}
			if !p.IsOptional {
				return nil, fmt.Errorf("%w: %s", ErrMissingArgument, p.Name)
			}
			out.Explicit[p.Name] = values.NewNull()
			continue
		}
		if posIdx < len(positional) {
			out.Explicit[p.Name] = positional[posIdx]
			posIdx++
			continue
		}
		if p.HasDefault {
			out.PendingDefaults = append(out.PendingDefaults, *p)
			continue
		}
		if !p.IsOptional {
			return nil, fmt.Errorf("%w: %s", ErrMissingArgument, p.Name)
		}
		out.Explicit[p.Name] = values.NewNull()
	}

	if posIdx < len(positional) {
		if variadicParam == nil {
			return nil, fmt.Errorf("%w: %d extra positional argument(s)", ErrExtraPositionalArg, len(positional)-posIdx)
		}
		out.Variadic = append(out.Variadic, positional[posIdx:]...)
	}
	if len(namedRemaining) > 0 {
		for k := range namedRemaining {
			return nil, fmt.Errorf("%w: %s", ErrExtraNamedArg, k)
		}
	}
	return out, nil
}

// ScriptRunner executes a script function's body inside the VM loop. The
// VM implements this and injects it into every script Function it creates,
// avoiding a direct package import cycle between function and vm (vm
// already imports function to construct values; function must not import
// vm back).
type ScriptRunner interface {
	RunFunctionBody(fn *Function, this *values.Value, bound *BoundArgs) (*values.Value, error)
}

// Function is the uniform representation of both script and external
// functions (§3 "Function").
type Function struct {
	InternalName string
	PublicID     string
	ClassID      string
	Closure      *namespace.Namespace
	Params       []Parameter
	ReturnType   *hetutype.Type

	DefinitionIP int
	Line, Column int

	IsAsync    bool
	IsExternal bool
	IsStatic   bool
	IsConst    bool
	IsField    bool
	IsAbstract bool

	Redirecting    *RedirectingConstructor
	ExternalTypeID string

	// This is the bound receiver, set by BindThis when a method is
	// retrieved off an instance/struct (§4.D receiver threading, §4.F
	// step 3 "bind this to the receiver").
	This *values.Value

	Runner      ScriptRunner
	HostHandler func(positional []*values.Value, named map[string]*values.Value, this *values.Value) (*values.Value, error)

	// AsyncSpawner produces the host-visible future for an async function
	// call (§4.K "A function declared async wraps its body..."); nil for
	// non-async functions. Injected by the VM's async bridge.
	AsyncSpawner func(run func() (*values.Value, error)) (*values.Value, error)
}

// BindThis returns a shallow copy of f with This set to caller, implementing
// the receiver-threading contract that package object's bindReceiver relies
// on structurally (no import of this package from object).
func (f *Function) BindThis(caller *values.Value) *values.Value {
	clone := *f
	clone.This = caller
	return values.NewAccessor(values.TypeFunction, &clone)
}

// Call implements the public contract `call(positionalArgs, namedArgs)`
// and the binding protocol of §4.F.
func (f *Function) Call(positional []*values.Value, named map[string]*values.Value, caller *values.Value) (*values.Value, error) {
	bound, err := bind(f.Params, positional, named)
	if err != nil {
		return nil, err
	}
	this := f.This
	if this == nil {
		this = caller
	}

	run := func() (*values.Value, error) {
		if f.IsExternal {
			if f.HostHandler == nil {
				return nil, fmt.Errorf("%w: external function %s has no host handler bound", ErrNotCallable, f.InternalName)
			}
			return f.HostHandler(flatten(f.Params, bound), named, this)
		}
		if f.Runner == nil {
			return nil, fmt.Errorf("%w: script function %s has no runner bound", ErrNotCallable, f.InternalName)
		}
		return f.Runner.RunFunctionBody(f, this, bound)
	}

	if f.IsAsync && f.AsyncSpawner != nil {
		return f.AsyncSpawner(run)
	}
	return run()
}

func flatten(params []Parameter, b *BoundArgs) []*values.Value {
	out := make([]*values.Value, 0, len(b.Explicit)+len(b.Variadic))
	for _, p := range params {
		if v, ok := b.Explicit[p.Name]; ok {
			out = append(out, v)
		}
	}
	out = append(out, b.Variadic...)
	return out
}

// AsValue wraps f as a uniform Value tagged TypeFunction.
func (f *Function) AsValue() *values.Value {
	return values.NewAccessor(values.TypeFunction, f)
}
