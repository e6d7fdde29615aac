// Package object implements the dynamic prototype object (§3 "Struct",
// §4.D): an ordered field mapping with prototype delegation, getter/setter
// protocol, and private-field visibility.
package object

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/slices"

	"github.com/hetu-lang/hetu/values"
)

// PrototypeSentinel is the reserved id used to read/write a struct's
// prototype link through ordinary member access (§4.D).
const PrototypeSentinel = "prototype"

var nextAnonymousID int64

// NextAnonymousID returns a fresh monotonic id for anonymous struct
// literals (§3 "Struct": "anonymous struct literals get a synthesized
// monotonic id").
func NextAnonymousID() int64 { return atomic.AddInt64(&nextAnonymousID, 1) }

// Callable is satisfied by any function value bound as a getter/setter/
// constructor/prototype method. Defined locally (rather than imported from
// package function) so this package has no dependency edge onto function,
// matching the one-directional shape used across the VM's components.
type Callable interface {
	Call(positional []*values.Value, named map[string]*values.Value, caller *values.Value) (*values.Value, error)
}

// Struct is a dynamic, prototype-delegating object (§3, §4.D).
type Struct struct {
	ID            int64
	PrivatePrefix string
	InternalPrefix string

	mu        sync.RWMutex
	prototype *Struct
	order     []string
	fields    map[string]*values.Value
}

// New creates an empty struct. privatePrefix/internalPrefix mirror the
// namespace package's configurable visibility prefix and the synthetic-key
// prefix used for getter/setter/constructor entries (`get$id`, `set$id`,
// `$ctor$id`).
func New(privatePrefix, internalPrefix string) *Struct {
	return &Struct{
		ID:             NextAnonymousID(),
		PrivatePrefix:  privatePrefix,
		InternalPrefix: internalPrefix,
		fields:         make(map[string]*values.Value),
	}
}

func (s *Struct) isPrivate(id string) bool {
	return s.PrivatePrefix != "" && len(id) > 0 && hasPrefix(id, s.PrivatePrefix)
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func (s *Struct) isInternal(id string) bool {
	return s.InternalPrefix != "" && hasPrefix(id, s.InternalPrefix)
}

func (s *Struct) getterKey(id string) string { return "get$" + id }
func (s *Struct) setterKey(id string) string { return "set$" + id }
func (s *Struct) ctorKey(id string) string {
	if id == "" {
		return "$ctor$"
	}
	return "$ctor$" + id
}

// SetPrototype replaces the prototype chain link.
func (s *Struct) SetPrototype(p *Struct) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prototype = p
}

// Prototype returns the current prototype link, or nil at the chain root.
func (s *Struct) Prototype() *Struct {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prototype
}

// setOwnField installs a field preserving first-insertion order.
func (s *Struct) setOwnField(id string, v *values.Value) {
	if _, exists := s.fields[id]; !exists {
		s.order = append(s.order, id)
	}
	s.fields[id] = v
}

func (s *Struct) ownField(id string) (*values.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.fields[id]
	return v, ok
}

// bindReceiver re-wraps a retrieved function value so its "this" is the
// original receiver (caller), not the struct instance where it happened to
// be found in the prototype chain (§4.D, §9 "receiver threading").
func bindReceiver(v *values.Value, caller *values.Value) *values.Value {
	if v == nil {
		return v
	}
	if binder, ok := v.Data.(interface {
		BindThis(*values.Value) *values.Value
	}); ok {
		return binder.BindThis(caller)
	}
	return v
}

// MemberGet implements §4.D's lookup order: prototype sentinel, own field,
// own getter (invoked), own constructor entry, then prototype delegation
// with caller threaded through so `this` stays bound to the original
// receiver.
func (s *Struct) MemberGet(id string, from string, caller *values.Value) (*values.Value, error) {
	if caller == nil {
		caller = values.NewAccessor(values.TypeStruct, s)
	}
	if id == PrototypeSentinel {
		if s.Prototype() == nil {
			return values.NewNull(), nil
		}
		return values.NewAccessor(values.TypeStruct, s.Prototype()), nil
	}
	if err := s.visibilityCheck(id, from); err != nil {
		return nil, err
	}
	if v, ok := s.ownField(id); ok {
		return bindReceiver(v, caller), nil
	}
	if getter, ok := s.ownField(s.getterKey(id)); ok {
		return s.invoke(getter, caller)
	}
	if ctor, ok := s.ownField(s.ctorKey(id)); ok {
		return bindReceiver(ctor, caller), nil
	}
	if id == "" {
		if ctor, ok := s.ownField(s.ctorKey("")); ok {
			return bindReceiver(ctor, caller), nil
		}
	}
	if proto := s.Prototype(); proto != nil {
		return proto.MemberGet(id, from, caller)
	}
	return nil, fmt.Errorf("undefined: %s", id)
}

func (s *Struct) invoke(fn *values.Value, caller *values.Value) (*values.Value, error) {
	callable, ok := fn.Data.(Callable)
	if !ok {
		return nil, fmt.Errorf("notCallable: getter for struct is not callable")
	}
	return callable.Call(nil, nil, caller)
}

func (s *Struct) visibilityCheck(id string, from string) error {
	if !s.isPrivate(id) {
		return nil
	}
	// Structs don't carry a fullName of their own (§3 scopes private
	// visibility to namespaces), so `from` is not compared with any
	// declaring namespace: any non-empty `from` may access a private
	// field, and only an anonymous caller (empty `from`) is refused.
	if from == "" {
		return fmt.Errorf("privateMember: %s", id)
	}
	return nil
}

// MemberSet mirrors MemberGet (§4.D): own field, else setter invocation,
// else define-if-absent. Writing the prototype sentinel replaces the
// chain.
func (s *Struct) MemberSet(id string, v *values.Value, from string, caller *values.Value) error {
	if id == PrototypeSentinel {
		proto, ok := v.Data.(*Struct)
		if v.IsNull() {
			s.SetPrototype(nil)
			return nil
		}
		if !ok {
			return fmt.Errorf("typeCast: prototype must be a struct")
		}
		s.SetPrototype(proto)
		return nil
	}
	if err := s.visibilityCheck(id, from); err != nil {
		return err
	}
	s.mu.Lock()
	if _, exists := s.fields[id]; exists {
		s.setOwnField(id, v)
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	if setter, ok := s.ownField(s.setterKey(id)); ok {
		callable, ok := setter.Data.(Callable)
		if !ok {
			return fmt.Errorf("notCallable: setter for struct is not callable")
		}
		_, err := callable.Call([]*values.Value{v}, nil, caller)
		return err
	}
	s.mu.Lock()
	s.setOwnField(id, v)
	s.mu.Unlock()
	return nil
}

// SubGet/SubSet expose struct fields via subscript, matching §4.H's
// distinction between host-collection and object subscripting: for
// structs, a string key behaves like memberGet/memberSet.
func (s *Struct) SubGet(key *values.Value) (*values.Value, error) {
	if !key.IsString() {
		return nil, fmt.Errorf("subGetKey: struct subscript key must be a string")
	}
	return s.MemberGet(key.Str(), "", nil)
}

func (s *Struct) SubSet(key *values.Value, v *values.Value) error {
	if !key.IsString() {
		return fmt.Errorf("subGetKey: struct subscript key must be a string")
	}
	return s.MemberSet(key.Str(), v, "", nil)
}

// Keys/Values/Length/IsEmpty filter internal-prefix keys (§4.D).
func (s *Struct) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.DeleteFunc(slices.Clone(s.order), s.isInternal)
}

func (s *Struct) Values() []*values.Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := slices.DeleteFunc(slices.Clone(s.order), s.isInternal)
	out := make([]*values.Value, len(keys))
	for i, k := range keys {
		out[i] = s.fields[k]
	}
	return out
}

// Length reports the number of non-internal keys (used by values.Truthy's
// lenient policy for structs).
func (s *Struct) Length() int { return len(s.Keys()) }

func (s *Struct) IsEmpty() bool { return s.Length() == 0 }

// Clone performs a deep-ish copy skipping internal-prefix keys unless
// withInternals is set (§4.D `clone`).
func (s *Struct) Clone(withInternals bool) *Struct {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := New(s.PrivatePrefix, s.InternalPrefix)
	out.prototype = s.prototype
	keys := s.order
	if !withInternals {
		keys = slices.DeleteFunc(slices.Clone(s.order), s.isInternal)
	}
	for _, k := range keys {
		out.setOwnField(k, s.fields[k])
	}
	return out
}

// Assign overwrites matching non-internal keys from other (§4.D `assign`).
func (s *Struct) Assign(other *Struct) {
	other.mu.RLock()
	defer other.mu.RUnlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range slices.DeleteFunc(slices.Clone(other.order), other.isInternal) {
		if _, exists := s.fields[k]; exists {
			s.setOwnField(k, other.fields[k])
		}
	}
}

// Merge writes only absent keys from other (§4.D `merge`, also the
// mechanism behind a struct literal's spread item, S6).
func (s *Struct) Merge(other *Struct) {
	other.mu.RLock()
	defer other.mu.RUnlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range slices.DeleteFunc(slices.Clone(other.order), other.isInternal) {
		if _, exists := s.fields[k]; !exists {
			s.setOwnField(k, other.fields[k])
		}
	}
}

// Spread copies every non-internal key from other into s unconditionally,
// in source order, implementing a struct literal's `...other` item (S6).
// Unlike Merge, later explicit fields in the same literal may still
// overwrite a spread field because the compiler emits spread items before
// explicit ones in source order and Define-style struct-literal assembly
// always overwrites.
func (s *Struct) Spread(other *values.Value) error {
	otherStruct, ok := other.Data.(*Struct)
	if !ok {
		return fmt.Errorf("notSpreadableObj: spread source is not a struct")
	}
	otherStruct.mu.RLock()
	defer otherStruct.mu.RUnlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range slices.DeleteFunc(slices.Clone(otherStruct.order), otherStruct.isInternal) {
		s.setOwnField(k, otherStruct.fields[k])
	}
	return nil
}

// DefineField installs a field directly without going through the
// getter/setter protocol, used while assembling a struct literal (§4.I).
func (s *Struct) DefineField(id string, v *values.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setOwnField(id, v)
}

// AsValue wraps s as a uniform Value tagged TypeStruct.
func (s *Struct) AsValue() *values.Value {
	return values.NewAccessor(values.TypeStruct, s)
}
