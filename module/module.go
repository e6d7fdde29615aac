// Package module implements the module cache (§3 "Module", §4.G): bytecode
// header/version validation, per-module namespaces, and JSON resource
// binding.
package module

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/hetu-lang/hetu/bytecode"
	"github.com/hetu-lang/hetu/namespace"
	"github.com/hetu-lang/hetu/opcodes"
	"github.com/hetu-lang/hetu/values"
)

// ErrBytecode/ErrVersion correspond to §7's *bytecode* and *version* error
// kinds.
var (
	ErrBytecode = fmt.Errorf("bytecode")
	ErrVersion  = fmt.Errorf("version")
)

// Module is one loaded compilation unit (§3 "Module").
type Module struct {
	ID              string
	Raw             []byte
	Reader          *bytecode.Reader
	CompilerVersion bytecode.Version
	HasBytecodeVer  bool
	BytecodeVersion bytecode.Version
	CompiledAtUtc   string
	CurrentFile     string
	SourceType      bytecode.SourceType
	// Instructions is the decoded instruction stream trailing the constant
	// pools (§6 "Bytecode format"). A fixture written before this section
	// existed (bare header + pools, nothing after) decodes to an empty
	// stream rather than an error.
	Instructions []*opcodes.Instruction

	Namespaces  map[string]*namespace.Namespace
	JSONSources map[string]*values.Value
	// Primary is the id of the module's top-level namespace, set by the
	// first EnsureNamespace call; preloaded-module imports (§4.J) copy
	// symbols from this namespace rather than an arbitrary one.
	Primary string
}

// NewAnonymousID returns a fresh id for a module with no caller-supplied
// name (e.g. eval'd source, or a REPL entry), following the teacher's
// convention of keying everything the VM tracks by a stable string id —
// here backed by google/uuid rather than an ad hoc counter.
func NewAnonymousID() string {
	return "anon:" + uuid.NewString()
}

// Cache maps module id to its loaded record (§4.G "Module cache").
type Cache struct {
	mu      sync.RWMutex
	modules map[string]*Module
}

func NewCache() *Cache {
	return &Cache{modules: make(map[string]*Module)}
}

func (c *Cache) Get(id string) (*Module, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.modules[id]
	return m, ok
}

func (c *Cache) store(m *Module) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modules[m.ID] = m
}

// LoadBytecode implements §4.G `loadBytecode`: if the module is already
// cached, its existing record is returned (rebind semantics — re-running a
// cached module is the caller's decision, not this layer's); else the
// header is validated (magic, compiler-version compatibility per §4.G's
// rule) and a fresh Module record is constructed and cached.
func (c *Cache) LoadBytecode(id string, raw []byte, vmVersion bytecode.Version) (*Module, error) {
	if m, ok := c.Get(id); ok {
		return m, nil
	}

	r := bytecode.NewReader(raw, nil)
	header, err := bytecode.ReadHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBytecode, err)
	}
	if !vmVersion.Compatible(header.CompilerVersion) {
		return nil, fmt.Errorf("%w: compiler version %s incompatible with VM version %s", ErrVersion, header.CompilerVersion, vmVersion)
	}
	if err := r.ReadConstantPools(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBytecode, err)
	}

	var instrs []*opcodes.Instruction
	if !r.AtEnd() {
		if instrs, err = r.ReadInstructions(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBytecode, err)
		}
	}

	m := &Module{
		ID:              id,
		Raw:             raw,
		Reader:          r,
		CompilerVersion: header.CompilerVersion,
		HasBytecodeVer:  header.HasBytecode,
		BytecodeVersion: header.BytecodeVersion,
		CompiledAtUtc:   header.CompiledAtUtc,
		CurrentFile:     header.CurrentFilename,
		SourceType:      header.SourceType,
		Instructions:    instrs,
		Namespaces:      make(map[string]*namespace.Namespace),
		JSONSources:     make(map[string]*values.Value),
	}
	c.store(m)
	return m, nil
}

// EnsureNamespace returns the module's namespace for id, creating one
// closed over closure if absent. The namespace is always a fresh one, for
// every resource kind; literal code does not run in closure itself.
func (m *Module) EnsureNamespace(id string, closure *namespace.Namespace, privatePrefix string) *namespace.Namespace {
	if ns, ok := m.Namespaces[id]; ok {
		return ns
	}
	ns := namespace.New(id, "", closure, privatePrefix)
	m.Namespaces[id] = ns
	if m.Primary == "" {
		m.Primary = id
	}
	return ns
}
