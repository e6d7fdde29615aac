// Package class implements nominal OO: Class declarations, Instance
// objects, and the Cast view (§3 "Class"/"Instance"/"Cast", §4.E).
package class

import (
	"fmt"

	"github.com/hetu-lang/hetu/function"
	"github.com/hetu-lang/hetu/hetutype"
	"github.com/hetu-lang/hetu/namespace"
	"github.com/hetu-lang/hetu/values"
)

// Class is a nominal type declaration (§3 "Class").
type Class struct {
	ID    string
	Super *Class

	IsAbstract                bool
	IsExternal                bool
	IsEnum                    bool
	HasUserDefinedConstructor bool

	Namespace  *namespace.Namespace
	Interfaces []string

	declared map[string]*namespace.Declaration
}

// New creates a class whose own namespace is closed over closure (typically
// the declaring module's namespace, §4.E "Class decl sequence").
func New(id string, super *Class, closure *namespace.Namespace, privatePrefix string) *Class {
	return &Class{
		ID:        id,
		Super:     super,
		Namespace: namespace.New(id, id, closure, privatePrefix),
		declared:  make(map[string]*namespace.Declaration),
	}
}

// AncestorChain lists id followed by every ancestor id, most-derived first,
// feeding package hetutype's nominal subtype check (§3 "Type").
func (c *Class) AncestorChain() []string {
	chain := []string{c.ID}
	for s := c.Super; s != nil; s = s.Super {
		chain = append(chain, s.ID)
	}
	return chain
}

// Chain returns the Class objects from c up to the root ancestor,
// most-derived first.
func (c *Class) Chain() []*Class {
	var chain []*Class
	for cur := c; cur != nil; cur = cur.Super {
		chain = append(chain, cur)
	}
	return chain
}

// Type returns the nominal Type value describing this class (§3 "Type").
func (c *Class) Type() *hetutype.Type {
	return hetutype.NewNominal(c.ID, c.AncestorChain(), c.Interfaces)
}

// defaultCtorName is the synthesized zero-argument constructor's entry in
// the class namespace when none is user-declared (§3 "Class", §4.E).
const defaultCtorName = "$ctor$"

// FinalizeDeclaration synthesizes a default zero-argument constructor if
// the class is concrete and none was declared (§3 "Class": "If not
// abstract and no user-defined constructor was declared, an implicit
// zero-argument constructor is synthesized at end-of-class-decl").
func (c *Class) FinalizeDeclaration() {
	if c.IsAbstract || c.HasUserDefinedConstructor {
		return
	}
	ctor := &function.Function{
		InternalName: defaultCtorName,
		ClassID:      c.ID,
		Closure:      c.Namespace,
		IsExternal:   true,
	}
	ctor.HostHandler = func(positional []*values.Value, named map[string]*values.Value, this *values.Value) (*values.Value, error) {
		return this, nil
	}
	_ = c.Namespace.Define(defaultCtorName, &namespace.Declaration{
		ID:    defaultCtorName,
		Kind:  namespace.DeclFunction,
		Value: ctor.AsValue(),
	}, true)
}

// ConstructorKey returns the namespace key a constructor named name is
// declared under ("" names the default constructor); exported so a host
// building an external class (package registry's bindExternalClass) can
// declare constructors via DeclareMethod without reaching into this
// package's internal naming convention.
func ConstructorKey(name string) string { return defaultCtorName + name }

// Constructor resolves a named constructor ("" for the default one).
func (c *Class) Constructor(name string) (*function.Function, error) {
	key := defaultCtorName + name
	decl, err := c.Namespace.Lookup(key, "", false)
	if err != nil {
		return nil, fmt.Errorf("undefined: constructor %s.%s", c.ID, name)
	}
	fn, ok := decl.Value.Data.(*function.Function)
	if !ok {
		return nil, fmt.Errorf("notCallable: %s.%s is not a constructor", c.ID, name)
	}
	return fn, nil
}

// OwnFieldDefaults returns this class's own (non-inherited) field defaults,
// keyed by field id, used to seed one Instance field frame at construction.
func (c *Class) OwnFieldDefaults() map[string]*values.Value {
	out := make(map[string]*values.Value)
	for id, decl := range c.localDecls() {
		if decl.Kind == namespace.DeclVariable && !decl.IsStatic {
			v := decl.Value
			if v == nil {
				v = values.NewNull()
			}
			out[id] = v
		}
	}
	return out
}

// localDecls is a thin seam over the namespace's symbol table; namespace
// lists its ids (SymbolNames, Exports) but does not hand out its
// declarations for iteration, so classes keep their own parallel index of
// declared field/method ids populated by DeclareField/DeclareMethod.
func (c *Class) localDecls() map[string]*namespace.Declaration {
	return c.declared
}

// DeclareField records a field declaration, both in the class's namespace
// (for ordinary lookup) and in the class's own local index (used to seed
// instance frames without walking namespace internals).
func (c *Class) DeclareField(id string, v *values.Value, isStatic bool) error {
	decl := &namespace.Declaration{ID: id, Kind: namespace.DeclVariable, Value: v, IsStatic: isStatic, IsMutable: true}
	if err := c.Namespace.Define(id, decl, true); err != nil {
		return err
	}
	c.declared[id] = decl
	return nil
}

// DeclareMethod records a method (including the constructor, named with
// the $ctor$ prefix by convention) in the class namespace.
func (c *Class) DeclareMethod(id string, fn *function.Function) error {
	fn.ClassID = c.ID
	fn.Closure = c.Namespace
	decl := &namespace.Declaration{ID: id, Kind: namespace.DeclFunction, Value: fn.AsValue()}
	if err := c.Namespace.Define(id, decl, true); err != nil {
		return err
	}
	c.declared[id] = decl
	if id == defaultCtorName || (len(id) > len(defaultCtorName) && id[:len(defaultCtorName)] == defaultCtorName) {
		c.HasUserDefinedConstructor = true
	}
	return nil
}
