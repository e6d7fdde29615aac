// Package namespace implements nested lexical scopes with private
// visibility, deferred import resolution, and recursive symbol lookup
// (§3 "Namespace", §4.C).
package namespace

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/hetu-lang/hetu/hetutype"
	"github.com/hetu-lang/hetu/values"
)

// ErrUndefined is raised when a lookup finds no matching symbol anywhere in
// the closure chain (§7 *undefined*).
var ErrUndefined = errors.New("undefined")

// ErrDefined is raised by Define when override is false and id already
// exists (§7 *defined*).
var ErrDefined = errors.New("defined")

// ErrPrivateMember is raised when a lookup's `from` namespace cannot see a
// private symbol (§7 *privateMember*).
var ErrPrivateMember = errors.New("privateMember")

// DeclKind tags the kind of thing a Declaration names (§3 "Declaration").
type DeclKind byte

const (
	DeclVariable DeclKind = iota
	DeclConstant
	DeclFunction
	DeclClass
	DeclStruct
	DeclTypeAlias
	DeclParameter
	DeclExternalClass
)

// LateInit records the bytecode site whose execution initializes a
// variable lazily, triggered by first read.
type LateInit struct {
	IP     int
	Line   int
	Column int
}

// Declaration is a single named entry in a namespace's symbol table.
type Declaration struct {
	ID           string
	Kind         DeclKind
	Value        *values.Value
	DeclaredType *hetutype.Type
	Doc          string
	IsMutable    bool
	IsExternal   bool
	IsStatic     bool
	// IsPrivate caches the prefix check at declaration time. Per §9's
	// resolved open question, this field is never authoritative: every
	// visibility check re-derives privacy from the id's prefix. It exists
	// only so callers that already have a Declaration in hand (e.g. a
	// documentation generator) don't need the namespace's configured
	// prefix to answer "is this private".
	IsPrivate bool
	LateInit  *LateInit
}

// UnresolvedImport is a recorded `import` statement awaiting resolution at
// endOfModule (§4.J).
type UnresolvedImport struct {
	FromPath    string
	Alias       string
	ShowList    []string
	IsExported  bool
	IsPreloaded bool
}

// Namespace is a named scope (§3 "Namespace").
type Namespace struct {
	ID      string
	ClassID string
	Closure *Namespace

	privatePrefix string

	mu              sync.RWMutex
	symbols         map[string]*Declaration
	imports         []*UnresolvedImport
	exports         map[string]struct{}
	willExportAll   bool
	importedSymbols map[string]*Declaration
}

// New creates a namespace scoped under closure (nil for the global
// namespace). privatePrefix configures the visibility rule of §3's
// invariant; the teacher's source language uses "_", Hetu itself uses "_"
// as well, but this is left a parameter so embedders can change it.
func New(id, classID string, closure *Namespace, privatePrefix string) *Namespace {
	return &Namespace{
		ID:              id,
		ClassID:         classID,
		Closure:         closure,
		privatePrefix:   privatePrefix,
		symbols:         make(map[string]*Declaration),
		exports:         make(map[string]struct{}),
		importedSymbols: make(map[string]*Declaration),
	}
}

// FullName is the dotted path from the root namespace to this one, used by
// the private-visibility check (§3 invariant 4, §8 invariant 4).
func (n *Namespace) FullName() string {
	if n.Closure == nil {
		return n.ID
	}
	parent := n.Closure.FullName()
	if parent == "" {
		return n.ID
	}
	return parent + "." + n.ID
}

func (n *Namespace) isPrivate(id string) bool {
	return n.privatePrefix != "" && strings.HasPrefix(id, n.privatePrefix)
}

// Define installs id; if override is false and id already exists, returns
// ErrDefined (§7 *defined*).
func (n *Namespace) Define(id string, decl *Declaration, override bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, exists := n.symbols[id]; exists && !override {
		return fmt.Errorf("%w: %s", ErrDefined, id)
	}
	decl.IsPrivate = n.isPrivate(id)
	n.symbols[id] = decl
	if n.willExportAll {
		n.exports[id] = struct{}{}
	}
	return nil
}

// Delete removes id from the local symbol table (§4.H `delete`).
func (n *Namespace) Delete(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.symbols, id)
}

func (n *Namespace) lookupLocal(id string) (*Declaration, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if d, ok := n.symbols[id]; ok {
		return d, true
	}
	d, ok := n.importedSymbols[id]
	return d, ok
}

// visibilityCheck enforces §3's invariant: a private symbol (by prefix) is
// only resolvable from a namespace whose fullName starts with n's fullName.
func (n *Namespace) visibilityCheck(id, from string) error {
	if !n.isPrivate(id) {
		return nil
	}
	if from == "" {
		return fmt.Errorf("%w: %s", ErrPrivateMember, id)
	}
	nFull := n.FullName()
	if from == nFull || strings.HasPrefix(from, nFull+".") {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrPrivateMember, id)
}

// Lookup resolves id, optionally walking the closure chain (§4.C
// `memberGet`). from is the fullName of the namespace the request
// originates in, used for the privacy check; pass "" when there is no
// caller context (e.g. a host-initiated fetch).
func (n *Namespace) Lookup(id string, from string, isRecursive bool) (*Declaration, error) {
	cur := n
	for cur != nil {
		if d, ok := cur.lookupLocal(id); ok {
			if err := cur.visibilityCheck(id, from); err != nil {
				return nil, err
			}
			return d, nil
		}
		if !isRecursive {
			break
		}
		cur = cur.Closure
	}
	return nil, fmt.Errorf("%w: %s", ErrUndefined, id)
}

// MemberGet resolves a value by id (§4.C), satisfying values.MemberAccessor
// so a Namespace can itself be wrapped as a Value (e.g. the `global`
// binding, or a module's top-level namespace returned by `require`).
func (n *Namespace) MemberGet(id string, from string, caller *values.Value) (*values.Value, error) {
	decl, err := n.Lookup(id, from, true)
	if err != nil {
		return nil, err
	}
	if decl.Value == nil {
		return values.NewNull(), nil
	}
	return decl.Value, nil
}

// MemberSet writes id's value, searching the closure chain (§4.C
// `memberSet`); it never defines an absent id (Set's defineIfAbsent does).
func (n *Namespace) MemberSet(id string, v *values.Value, from string, caller *values.Value) error {
	return n.Set(id, v, false, true, from)
}

// Set is the full-signature form of memberSet (§4.C).
func (n *Namespace) Set(id string, v *values.Value, defineIfAbsent, isRecursive bool, from string) error {
	cur := n
	for cur != nil {
		cur.mu.Lock()
		if d, ok := cur.symbols[id]; ok {
			if err := cur.visibilityCheck(id, from); err != nil {
				cur.mu.Unlock()
				return err
			}
			d.Value = v
			cur.mu.Unlock()
			return nil
		}
		cur.mu.Unlock()
		if !isRecursive {
			break
		}
		cur = cur.Closure
	}
	if !defineIfAbsent {
		return fmt.Errorf("%w: %s", ErrUndefined, id)
	}
	return n.Define(id, &Declaration{ID: id, Kind: DeclVariable, Value: v, IsMutable: true}, false)
}

// SubGet/SubSet: namespaces are not subscriptable (§3 restricts subscript
// access to lists/maps/structs/instances).
func (n *Namespace) SubGet(key *values.Value) (*values.Value, error) {
	return nil, fmt.Errorf("namespace is not subscriptable")
}

func (n *Namespace) SubSet(key *values.Value, v *values.Value) error {
	return fmt.Errorf("namespace is not subscriptable")
}

// DeclareImport records an unresolved `import` statement for resolution at
// endOfModule (§4.J).
func (n *Namespace) DeclareImport(imp *UnresolvedImport) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.imports = append(n.imports, imp)
}

// Imports returns the recorded unresolved imports in declaration order.
func (n *Namespace) Imports() []*UnresolvedImport {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]*UnresolvedImport(nil), n.imports...)
}

// DefineImport installs a resolved import's value as alias, recording its
// origin (§4.J step 2/3 after resolution).
func (n *Namespace) DefineImport(alias string, v *values.Value, fromPath string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.importedSymbols[alias] = &Declaration{ID: alias, Kind: DeclVariable, Value: v}
}

// DeclareExport marks id (or, with id=="", every current and future symbol
// via willExportAll) as exported (§4.C `declareExport`, §4.J "export self").
func (n *Namespace) DeclareExport(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if id == "" {
		n.willExportAll = true
		for k := range n.symbols {
			n.exports[k] = struct{}{}
		}
		return
	}
	n.exports[id] = struct{}{}
}

// Exports returns the set of exported ids.
func (n *Namespace) Exports() map[string]struct{} {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make(map[string]struct{}, len(n.exports))
	for k := range n.exports {
		out[k] = struct{}{}
	}
	return out
}

// ExportedNames returns this namespace's exported ids in deterministic
// sorted order, a stable listing rather than Exports' unordered set.
func (n *Namespace) ExportedNames() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	names := maps.Keys(n.exports)
	slices.Sort(names)
	return names
}

// SymbolNames returns every id declared directly in this namespace (not its
// closure chain), sorted deterministically.
func (n *Namespace) SymbolNames() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	names := maps.Keys(n.symbols)
	slices.Sort(names)
	return names
}

// Import copies symbols from other into n (§4.C `import`). export mirrors
// them into n's own export set; when idOnly is non-nil, only those ids are
// copied (the `show` clause of §4.J).
func (n *Namespace) Import(other *Namespace, export bool, idOnly []string) {
	other.mu.RLock()
	type pair struct {
		id   string
		decl *Declaration
	}
	var items []pair
	if idOnly != nil {
		for _, id := range idOnly {
			if d, ok := other.symbols[id]; ok {
				items = append(items, pair{id, d})
			}
		}
	} else {
		for id, d := range other.symbols {
			if _, isExported := other.exports[id]; isExported || other.willExportAll {
				items = append(items, pair{id, d})
			}
		}
	}
	other.mu.RUnlock()

	n.mu.Lock()
	defer n.mu.Unlock()
	for _, it := range items {
		n.importedSymbols[it.id] = it.decl
		if export {
			n.exports[it.id] = struct{}{}
		}
	}
}
