package registry

import (
	"fmt"
	"strings"

	"github.com/hetu-lang/hetu/class"
	"github.com/hetu-lang/hetu/function"
	"github.com/hetu-lang/hetu/namespace"
	"github.com/hetu-lang/hetu/values"
)

// HostFunc is the signature every host binding under this package uses
// (§6 "bindExternalFunction(id, fn)" etc.): the same shape as
// function.Function.HostHandler, named locally so callers don't need to
// import package function just to supply a callback.
type HostFunc func(positional []*values.Value, named map[string]*values.Value, this *values.Value) (*values.Value, error)

// hostParams declares every external binding's formal parameter list as a
// single catch-all variadic: a host callback's own signature is the real
// contract, so the binding protocol of §4.F step 3 should pass positional
// arguments through unchanged rather than rejecting anything beyond a fixed
// arity (Function.Call's bind() call would otherwise fail any positional
// call against a zero-parameter external function with *extraPositionalArg*).
var hostParams = []function.Parameter{{Name: "args", IsVariadic: true}}

// BindExternalFunction implements §6 `bindExternalFunction(id, fn)`: installs
// fn as a top-level callable named id in the global namespace.
func (r *Registry) BindExternalFunction(id string, fn HostFunc) error {
	f := &function.Function{InternalName: id, PublicID: id, IsExternal: true, HostHandler: fn, Params: hostParams}
	return r.EC.Global.Define(id, &namespace.Declaration{ID: id, Kind: namespace.DeclFunction, Value: f.AsValue()}, true)
}

// BindExternalFunctionType implements §6 `bindExternalFunctionType(id,
// wrapperFn)`: installs wrapperFn exactly as BindExternalFunction does, as a
// callable function value named id; no separate function-type declaration
// is made.
func (r *Registry) BindExternalFunctionType(id string, wrapperFn HostFunc) error {
	return r.BindExternalFunction(id, wrapperFn)
}

// splitMemberID parses the `Class.name` / `Class::name` id convention from
// §6's bindExternalFunction entry, reporting which separator was used.
func splitMemberID(id string) (classID, member string, isStatic bool, ok bool) {
	if i := strings.Index(id, "::"); i >= 0 {
		return id[:i], id[i+2:], false, true
	}
	if i := strings.Index(id, "."); i >= 0 {
		return id[:i], id[i+1:], true, true
	}
	return "", "", false, false
}

// BindExternalMethod implements §6 `bindExternalMethod("Class::method",
// fn)`: attaches fn to an already-registered class (typically one created
// by BindExternalClass) as either a static member (`Class.name`) or an
// instance method (`Class::name`).
func (r *Registry) BindExternalMethod(id string, fn HostFunc) error {
	classID, member, isStatic, ok := splitMemberID(id)
	if !ok {
		return fmt.Errorf("bindExternalMethod: %q is not a Class.name/Class::name id", id)
	}
	c, err := r.EC.LookupClass(classID)
	if err != nil {
		return err
	}
	f := &function.Function{InternalName: member, IsExternal: true, IsStatic: isStatic, HostHandler: fn, Params: hostParams}
	return c.DeclareMethod(member, f)
}

// ExternalClassHandle describes an external class for BindExternalClass
// (§6 "bindExternalClass(handle)"): a nominal class whose fields and
// methods are all backed by host Go code rather than bytecode, the same
// role the teacher's external-class PHP builtins played before a script
// ever ran.
type ExternalClassHandle struct {
	ID         string
	Super      string // superclass id, "" for none
	Abstract   bool
	Fields     map[string]*values.Value
	// Constructors maps a constructor name ("" = default) to its handler.
	Constructors map[string]HostFunc
	// Methods maps instance method name to its handler; the handler's
	// `this` argument is the receiving instance.
	Methods map[string]HostFunc
	// StaticMethods maps class-level method name to its handler.
	StaticMethods map[string]HostFunc
}

// BindExternalClass implements §6 `bindExternalClass(handle)`: registers a
// new external class built entirely from handle's host callbacks,
// installing it the same way a script's `external class` declaration would
// (class.Class with IsExternal set, registered on the context and defined
// as a type constant in global) so script code can `new` it, call its
// methods, and pass its instances around exactly like a script-declared
// class.
func (r *Registry) BindExternalClass(handle ExternalClassHandle) error {
	var super *class.Class
	if handle.Super != "" {
		s, err := r.EC.LookupClass(handle.Super)
		if err != nil {
			return err
		}
		super = s
	}
	c := class.New(handle.ID, super, r.EC.Global, r.EC.Options.PrivatePrefix)
	c.IsAbstract = handle.Abstract
	c.IsExternal = true

	for name, v := range handle.Fields {
		if err := c.DeclareField(name, v, false); err != nil {
			return err
		}
	}
	for name, fn := range handle.Methods {
		f := &function.Function{InternalName: name, IsExternal: true, HostHandler: fn, Params: hostParams}
		if err := c.DeclareMethod(name, f); err != nil {
			return err
		}
	}
	for name, fn := range handle.StaticMethods {
		f := &function.Function{InternalName: name, IsExternal: true, IsStatic: true, HostHandler: fn, Params: hostParams}
		if err := c.DeclareMethod(name, f); err != nil {
			return err
		}
	}
	for name, fn := range handle.Constructors {
		f := &function.Function{InternalName: name, IsExternal: true, HostHandler: fn, Params: hostParams}
		if err := c.DeclareMethod(class.ConstructorKey(name), f); err != nil {
			return err
		}
	}
	c.FinalizeDeclaration()

	r.EC.RegisterClass(c)
	r.EC.RegisterType(c.ID, c.Type())
	return r.EC.Global.Define(c.ID, &namespace.Declaration{
		ID: c.ID, Kind: namespace.DeclConstant, Value: values.NewAccessor(values.TypeType, c.Type()),
	}, true)
}

// New instantiates a class registered via BindExternalClass or a script
// `class` declaration, calling the named constructor ("" for the default).
func (r *Registry) New(classID, ctorName string, positional []*values.Value, named map[string]*values.Value) (*values.Value, error) {
	c, err := r.EC.LookupClass(classID)
	if err != nil {
		return nil, err
	}
	return class.New(c, ctorName, positional, named)
}

// ReflectionHandler is the callback shape §6's bindExternalReflection
// installs: given a value, it produces a structural description of that
// value the way a script-level `reflect` expression would read it (a
// TypeStruct/TypeMap Value is the conventional return shape, left to the
// host to assemble since reflection payloads are host/tooling-specific).
type ReflectionHandler func(v *values.Value) (*values.Value, error)

// BindExternalReflection implements §6 `bindExternalReflection(fn)`:
// installs fn as the handler invoked by the `reflect` builtin. Only one
// reflector is active at a time — a later call replaces the former.
func (r *Registry) BindExternalReflection(fn ReflectionHandler) error {
	r.reflector = fn
	return r.BindExternalFunction("reflect", func(positional []*values.Value, named map[string]*values.Value, this *values.Value) (*values.Value, error) {
		if len(positional) == 0 {
			return nil, fmt.Errorf("argument: reflect requires a value argument")
		}
		return r.reflector(positional[0])
	})
}
