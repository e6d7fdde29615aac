// Package registry implements the host-facing embedding API (§6 "Host
// API"): the surface an embedding Go program uses to stand up a VM
// instance, load and run compiled modules, and exchange values and
// callables with running script code. It owns one ExecutionContext/
// VirtualMachine/module.Cache triple per Registry value, mirroring how the
// teacher's own top-level registry owned one interpreter's worth of global
// state.
package registry

import (
	"fmt"
	"os"
	"time"

	"github.com/hetu-lang/hetu/bytecode"
	"github.com/hetu-lang/hetu/module"
	"github.com/hetu-lang/hetu/namespace"
	"github.com/hetu-lang/hetu/values"
	"github.com/hetu-lang/hetu/vm"
)

// ErrNoCompiler is returned by every operation §6 lists as taking hetu
// source text (`eval`, `compile`, and `evalFile`/`compileFile` when the
// target isn't already bytecode). This build ships no source-to-bytecode
// front end (see bytecode.Writer's doc comment) — a host assembles a
// vm.CodeUnit some other way (by hand, or with a separate compiler package)
// and hands this registry the resulting bytes via loadBytecode/require.
var ErrNoCompiler = fmt.Errorf("registry: no compiler front end in this build; use loadBytecode/require with already-compiled bytecode")

// Options configures Init (§6 `init(options)`).
type Options struct {
	VMVersion           bytecode.Version
	VM                  vm.Options
	MaxExecutionSeconds int
}

// DefaultOptions mirrors §9's documented defaults.
func DefaultOptions() Options {
	return Options{
		VMVersion: bytecode.Version{Major: 1},
		VM:        vm.DefaultOptions(),
	}
}

// Registry is one embeddable VM instance: a global namespace, a module
// cache, and the execution context/virtual machine pair that runs bytecode
// against them. The zero value is not usable; construct with Init.
type Registry struct {
	EC      *vm.ExecutionContext
	Machine *vm.VirtualMachine
	Modules *module.Cache
	version bytecode.Version

	resourceDir string
	reflector   ReflectionHandler
}

// Init installs the global namespace and module cache and returns a ready
// Registry (§6 `init(options)`). Repeated calls each return an independent
// instance — idempotence for a single instance is achieved by the caller
// holding onto the first Registry rather than calling Init again.
func Init(opts Options) *Registry {
	global := namespace.New("global", "", nil, opts.VM.PrivatePrefix)
	modules := module.NewCache()
	ec := vm.NewExecutionContext(global, modules, opts.VM)
	if opts.MaxExecutionSeconds > 0 {
		ec.SetTimeLimit(opts.MaxExecutionSeconds)
	}
	r := &Registry{
		EC:      ec,
		Machine: vm.NewVirtualMachine(opts.VMVersion),
		Modules: modules,
		version: opts.VMVersion,
	}
	r.defineBuiltins()
	return r
}

// defineBuiltins installs the handful of global bindings §6 names as part
// of `init`: the running VM version, `this` (null at top level, bound to a
// receiver only inside a method frame), and `global` itself, addressable as
// an ordinary namespace value.
func (r *Registry) defineBuiltins() {
	must := func(err error) {
		if err != nil {
			panic(fmt.Sprintf("registry: init: %v", err))
		}
	}
	must(r.EC.Global.Define("kHetuVersion", &namespace.Declaration{
		ID: "kHetuVersion", Kind: namespace.DeclConstant, Value: values.NewString(r.version.String()),
	}, true))
	must(r.EC.Global.Define("this", &namespace.Declaration{
		ID: "this", Kind: namespace.DeclVariable, Value: values.NewNull(), IsMutable: true,
	}, true))
	must(r.EC.Global.Define("global", &namespace.Declaration{
		ID: "global", Kind: namespace.DeclConstant, Value: values.NewAccessor(values.TypeNamespace, r.EC.Global),
	}, true))
}

// Eval implements §6 `eval`: compile + load + optionally invoke. Always
// fails with ErrNoCompiler (see package doc) — callers that already hold
// bytecode should use LoadBytecode directly.
func (r *Registry) Eval(source, filename string, moduleID string, invoke string, positional []*values.Value, named map[string]*values.Value) (*values.Value, error) {
	return nil, ErrNoCompiler
}

// Compile implements §6 `compile`: always fails with ErrNoCompiler.
func (r *Registry) Compile(source string, isModuleEntryScript bool) ([]byte, error) {
	return nil, ErrNoCompiler
}

// readResource reads key's raw bytes through the resource context (§6
// `evalFile`/`compileFile` "read text through the resource context"). This
// build's resource context is the local filesystem, rooted at whatever
// directory SetResourceDir configures (default: the process's current
// directory), matching the CLI's single-file invocation model.
func (r *Registry) readResource(key string) ([]byte, error) {
	path := key
	if r.resourceDir != "" && len(key) > 0 && !os.IsPathSeparator(key[0]) {
		path = r.resourceDir + string(os.PathSeparator) + key
	}
	return os.ReadFile(path)
}

// SetResourceDir configures the directory evalFile/compileFile/require
// resolve relative paths against.
func (r *Registry) SetResourceDir(dir string) { r.resourceDir = dir }

// EvalFile implements §6 `evalFile`: read key's bytes through the resource
// context and run them. Bytes already carrying the bytecode magic (§6
// "Bytecode format") are loaded and run directly; anything else is source
// text, which fails with ErrNoCompiler.
func (r *Registry) EvalFile(key string, moduleID string, invoke string, positional []*values.Value, named map[string]*values.Value) (*values.Value, error) {
	raw, err := r.readResource(key)
	if err != nil {
		return nil, err
	}
	if !looksLikeBytecode(raw) {
		return nil, ErrNoCompiler
	}
	if moduleID == "" {
		moduleID = key
	}
	return r.LoadBytecode(raw, moduleID, true, invoke, positional, named)
}

// CompileFile implements §6 `compileFile`: always fails with ErrNoCompiler,
// since producing bytecode from key's text requires the same absent front
// end Compile does.
func (r *Registry) CompileFile(key string, isModuleEntryScript bool) ([]byte, error) {
	return nil, ErrNoCompiler
}

func looksLikeBytecode(raw []byte) bool {
	if len(raw) < 4 {
		return false
	}
	r := bytecode.NewReader(raw, nil)
	magic, err := r.ReadUint32()
	return err == nil && magic == bytecode.Magic
}

// LoadBytecode implements §6 `loadBytecode`: validate+cache raw under
// moduleID, run its instruction stream in a namespace closed over (and,
// when globallyImport is set, exported into) global, then optionally invoke
// a top-level function by name.
func (r *Registry) LoadBytecode(raw []byte, moduleID string, globallyImport bool, invoke string, positional []*values.Value, named map[string]*values.Value) (*values.Value, error) {
	m, err := r.Modules.LoadBytecode(moduleID, raw, r.version)
	if err != nil {
		return nil, err
	}
	ns := m.EnsureNamespace(moduleID, r.EC.Global, r.EC.Options.PrivatePrefix)
	unit := vm.CodeUnit{Instructions: m.Instructions, Pool: m.Reader.Pool()}
	result, err := r.Machine.Execute(r.EC, ns, unit)
	if err != nil {
		return nil, err
	}
	if globallyImport {
		r.EC.Global.Import(ns, false, ns.SymbolNames())
	}
	if invoke == "" {
		return result, nil
	}
	return r.Invoke(invoke, positional, named)
}

// fileLoader adapts Registry to module.ResourceLoader (§4.J), backing
// `require`'s dynamic-import resolution with the same resource context
// EvalFile uses.
type fileLoader struct{ r *Registry }

func (f *fileLoader) LoadModule(path string) (*namespace.Namespace, error) {
	v, err := f.r.EvalFile(path, path, "", nil, nil)
	if err != nil {
		return nil, err
	}
	if v != nil {
		if ns, ok := v.Data.(*namespace.Namespace); ok {
			return ns, nil
		}
	}
	m, ok := f.r.Modules.Get(path)
	if !ok || m.Primary == "" {
		return nil, fmt.Errorf("require: %s produced no namespace", path)
	}
	return m.Namespaces[m.Primary], nil
}

func (f *fileLoader) LoadJSON(path string) (*values.Value, error) {
	raw, err := f.r.readResource(path)
	if err != nil {
		return nil, err
	}
	return decodeJSON(raw)
}

// Require implements §6 `require`: dynamically load path and return its
// top-level namespace as a Value.
func (r *Registry) Require(path string) (*values.Value, error) {
	ns, err := (&fileLoader{r: r}).LoadModule(path)
	if err != nil {
		return nil, err
	}
	return values.NewAccessor(values.TypeNamespace, ns), nil
}

// ResolveImports runs §4.J's import-resolution pass over ns against this
// registry's resource context, exposed so Require's caller can resolve a
// freshly loaded module's own imports.
func (r *Registry) ResolveImports(ns *namespace.Namespace) error {
	return r.Modules.ResolveImports(ns, &fileLoader{r: r})
}

// Define implements §6 `define`: install id in targetModule's namespace (or
// global if targetModule is nil).
func (r *Registry) Define(id string, v *values.Value, isMutable, override bool, targetNS *namespace.Namespace) error {
	ns := targetNS
	if ns == nil {
		ns = r.EC.Global
	}
	return ns.Define(id, &namespace.Declaration{ID: id, Kind: namespace.DeclVariable, Value: v, IsMutable: isMutable}, override)
}

// Fetch implements §6 `fetch`: resolve id against targetModule's namespace
// (or global), recursively walking its closure chain.
func (r *Registry) Fetch(id string, targetNS *namespace.Namespace) (*values.Value, error) {
	ns := targetNS
	if ns == nil {
		ns = r.EC.Global
	}
	decl, err := ns.Lookup(id, "", true)
	if err != nil {
		return nil, err
	}
	return decl.Value, nil
}

// Assign implements §6 `assign`: write id in targetModule's namespace (or
// global), defining it if absent.
func (r *Registry) Assign(id string, v *values.Value, targetNS *namespace.Namespace) error {
	ns := targetNS
	if ns == nil {
		ns = r.EC.Global
	}
	return ns.Set(id, v, true, true, "")
}

// Invoke implements §6 `invoke`: resolve name against global and call it
// with the given arguments. name is looked up as one whole id; the
// `Class.name` and `Class::name` forms are not split into class and member.
func (r *Registry) Invoke(name string, positional []*values.Value, named map[string]*values.Value) (*values.Value, error) {
	v, err := r.resolveInvokeTarget(name)
	if err != nil {
		return nil, err
	}
	fn, ok := v.Data.(callableValue)
	if !ok {
		return nil, fmt.Errorf("notCallable: %s is not callable", name)
	}
	return fn.Call(positional, named, nil)
}

// callableValue is satisfied by *function.Function without importing it by
// name here, keeping this file's import list focused on what it directly
// names (class/function interop lives in bind.go, which does import both).
type callableValue interface {
	Call(positional []*values.Value, named map[string]*values.Value, caller *values.Value) (*values.Value, error)
}

func (r *Registry) resolveInvokeTarget(name string) (*values.Value, error) {
	decl, err := r.EC.Global.Lookup(name, "", true)
	if err != nil {
		return nil, err
	}
	return decl.Value, nil
}

// Version reports the VM version this registry validates loaded bytecode
// against (§4.G `loadBytecode`'s compatibility check).
func (r *Registry) Version() bytecode.Version { return r.version }

// SetTimeLimit bounds every subsequent run's total execution time (§5
// "Concurrency & Resource Model"), delegating to the underlying context.
func (r *Registry) SetTimeLimit(d time.Duration) {
	r.EC.SetTimeLimit(int(d / time.Second))
}
