package vm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hetu-lang/hetu/class"
	"github.com/hetu-lang/hetu/function"
	"github.com/hetu-lang/hetu/hetutype"
	"github.com/hetu-lang/hetu/module"
	"github.com/hetu-lang/hetu/namespace"
	"github.com/hetu-lang/hetu/values"
)

// Options carries the configurable policies §9 leaves implicit: truthy
// coercion strictness, the private-member prefix, whether an undeclared
// assignment target is implicitly declared, whether comparisons coerce
// null to 0, and whether a module's last statement value becomes its
// initializer return value.
type Options struct {
	Truthy                  values.TruthyPolicy
	PrivatePrefix           string
	ImplicitDeclareOnAssign bool
	NullCoercionInCompare   bool
	InitializerIsStmtValue  bool
}

// DefaultOptions mirrors the language's documented defaults (§9).
func DefaultOptions() Options {
	return Options{
		Truthy:                 values.TruthyStrict,
		PrivatePrefix:          "_",
		InitializerIsStmtValue: true,
	}
}

// ExecutionContext is the state shared across every frame of one top-level
// run: the global namespace, the module cache, the live call stack, the
// registered classes, and the deadline governing §5's execution-timeout
// requirement.
type ExecutionContext struct {
	Global  *namespace.Namespace
	Modules *module.Cache
	Options Options
	Stack   *CallStackManager
	profile *profileState

	// Unit is the instruction stream/constant pool currently executing.
	// Single-module runs set it once via Execute; a multi-module host
	// would swap it per-call, which the call opcode does not yet do since
	// no compiler here emits cross-module call sites.
	Unit CodeUnit

	classesMu sync.RWMutex
	classes   map[string]*class.Class

	typesMu sync.RWMutex
	types   map[string]*hetutype.Type

	// runner is the shared function.ScriptRunner every script-mode Function
	// declared within this context is wired to, built lazily on first use.
	runner function.ScriptRunner

	timeoutMu        sync.RWMutex
	ctx              context.Context
	cancel           context.CancelFunc
	maxExecutionTime time.Duration
}

// NewExecutionContext builds a context rooted at global, with execution
// time unlimited until SetTimeLimit is called.
func NewExecutionContext(global *namespace.Namespace, modules *module.Cache, opts Options) *ExecutionContext {
	ctx, cancel := context.WithCancel(context.Background())
	ec := &ExecutionContext{
		Global:  global,
		Modules: modules,
		Options: opts,
		Stack:   NewCallStackManager(),
		profile: newProfileState(),
		classes: make(map[string]*class.Class),
		types:   make(map[string]*hetutype.Type),
		ctx:     ctx,
		cancel:  cancel,
	}
	ec.types["any"] = hetutype.NewIntrinsic(hetutype.Any)
	ec.types["unknown"] = hetutype.NewIntrinsic(hetutype.Unknown)
	ec.types["void"] = hetutype.NewIntrinsic(hetutype.Void)
	ec.types["never"] = hetutype.NewIntrinsic(hetutype.Never)
	ec.types["type"] = hetutype.NewIntrinsic(hetutype.TypeOfType)
	ec.types["function"] = hetutype.NewIntrinsic(hetutype.FunctionIntrinsic)
	ec.types["namespace"] = hetutype.NewIntrinsic(hetutype.NamespaceIntrinsic)
	ec.types["null"] = hetutype.NewIntrinsic(hetutype.Null)
	return ec
}

// RegisterType installs a nominal/function/structural type under name,
// e.g. for a class declaration's synthesized Type.
func (ec *ExecutionContext) RegisterType(name string, t *hetutype.Type) {
	ec.typesMu.Lock()
	defer ec.typesMu.Unlock()
	ec.types[name] = t
}

// LookupType resolves a type name to its Type object (§4.H "Type ops").
func (ec *ExecutionContext) LookupType(name string) (*hetutype.Type, error) {
	ec.typesMu.RLock()
	t, ok := ec.types[name]
	ec.typesMu.RUnlock()
	if ok {
		return t, nil
	}
	if c, err := ec.LookupClass(name); err == nil {
		return c.Type(), nil
	}
	return nil, NewVMError(ErrUndefined, "type %s", name)
}

// SetTimeLimit bounds total execution time (§5 "Concurrency & Resource
// Model", grounded on the teacher's SetTimeLimit/CheckTimeout pair); zero
// or negative seconds means unlimited.
func (ec *ExecutionContext) SetTimeLimit(seconds int) {
	ec.timeoutMu.Lock()
	defer ec.timeoutMu.Unlock()
	if ec.cancel != nil {
		ec.cancel()
	}
	if seconds <= 0 {
		ec.maxExecutionTime = 0
		ec.ctx, ec.cancel = context.WithCancel(context.Background())
		return
	}
	ec.maxExecutionTime = time.Duration(seconds) * time.Second
	ec.ctx, ec.cancel = context.WithTimeout(context.Background(), ec.maxExecutionTime)
}

// CheckTimeout returns ErrTimeout once the configured deadline has passed.
func (ec *ExecutionContext) CheckTimeout() error {
	ec.timeoutMu.RLock()
	deadlineCtx := ec.ctx
	limit := ec.maxExecutionTime
	ec.timeoutMu.RUnlock()
	if deadlineCtx == nil {
		return nil
	}
	select {
	case <-deadlineCtx.Done():
		if deadlineCtx.Err() == context.DeadlineExceeded {
			return NewVMError(ErrTimeout, "maximum execution time of %s exceeded", limit)
		}
		return NewVMError(ErrHalted, "%v", deadlineCtx.Err())
	default:
		return nil
	}
}

// Cancel aborts the context's deadline immediately; the next dispatch
// then stops with ErrHalted.
func (ec *ExecutionContext) Cancel() {
	ec.timeoutMu.Lock()
	defer ec.timeoutMu.Unlock()
	if ec.cancel != nil {
		ec.cancel()
	}
}

// RegisterClass installs c in the context-wide class table (§4.G "class
// registration"), addressed case-sensitively by its declared id.
func (ec *ExecutionContext) RegisterClass(c *class.Class) {
	ec.classesMu.Lock()
	defer ec.classesMu.Unlock()
	ec.classes[c.ID] = c
}

func (ec *ExecutionContext) LookupClass(name string) (*class.Class, error) {
	ec.classesMu.RLock()
	defer ec.classesMu.RUnlock()
	c, ok := ec.classes[name]
	if !ok {
		return nil, NewVMError(ErrUndefined, "class %s", name)
	}
	return c, nil
}

func (ec *ExecutionContext) debug(format string, args ...interface{}) {
	ec.profile.addDebug(fmt.Sprintf(format, args...))
}

// GetHotSpots reports the n most-executed instruction pointers of this
// context's run so far (0 or negative n returns every ip observed), for
// `hetu analyze --profile`.
func (ec *ExecutionContext) GetHotSpots(n int) []HotSpot {
	return ec.profile.hotSpots(n)
}

// GetPerformanceReport renders a human-readable summary of the run's
// instruction throughput, for `hetu analyze --profile`.
func (ec *ExecutionContext) GetPerformanceReport() string {
	return ec.profile.render()
}

// GetDebugReport drains the context's accumulated debug trace (VM-internal
// diagnostics recorded via debug()).
func (ec *ExecutionContext) GetDebugReport() []string {
	return ec.profile.debugRecords()
}
