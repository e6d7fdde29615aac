// Package values implements the uniform Value abstraction (§3, §4.B): every
// runtime value — primitive, collection, struct, instance, function, type,
// namespace, or external handle — is encapsulated behind one Value carrying
// a ValueType tag and a member/subscript access contract.
package values

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// ValueType tags the kind of data a Value carries (§3 "Value (uniform
// abstract)").
type ValueType byte

const (
	TypeNull ValueType = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
	TypeBigInt
	TypeList
	TypeSet
	TypeMap
	TypeIterator
	TypeStruct
	TypeInstance
	TypeCast
	TypeFunction
	TypeType
	TypeNamespace
	TypeExternalClass
	TypeExternalInstance
	TypeExternalEnum
)

var typeNames = [...]string{
	"null", "bool", "int", "float", "string", "bigint",
	"list", "set", "map", "iterator",
	"struct", "instance", "cast", "function", "type", "namespace",
	"externalClass", "externalInstance", "externalEnum",
}

func (t ValueType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("unknownValueType(%d)", byte(t))
}

// MemberAccessor is implemented by the composite value kinds (struct,
// instance, cast, namespace, external-instance) that carry their own
// member/subscript protocol. Defining the interface here, rather than
// requiring package values to import object/class/namespace, keeps the
// dependency edge one-directional: those packages import values, not the
// reverse.
type MemberAccessor interface {
	MemberGet(id string, from string, caller *Value) (*Value, error)
	MemberSet(id string, v *Value, from string, caller *Value) error
	SubGet(key *Value) (*Value, error)
	SubSet(key *Value, v *Value) error
}

// Value is the uniform encapsulation every opcode operates on.
type Value struct {
	Type ValueType
	Data interface{}
}

func NewNull() *Value            { return &Value{Type: TypeNull} }
func NewBool(b bool) *Value       { return &Value{Type: TypeBool, Data: b} }
func NewInt(i int64) *Value       { return &Value{Type: TypeInt, Data: i} }
func NewFloat(f float64) *Value   { return &Value{Type: TypeFloat, Data: f} }
func NewString(s string) *Value   { return &Value{Type: TypeString, Data: s} }
func NewBigInt(i *big.Int) *Value { return &Value{Type: TypeBigInt, Data: new(big.Int).Set(i)} }

func NewList(items []*Value) *Value {
	if items == nil {
		items = []*Value{}
	}
	return &Value{Type: TypeList, Data: &items}
}

func NewMap(m map[string]*Value) *Value {
	if m == nil {
		m = map[string]*Value{}
	}
	return &Value{Type: TypeMap, Data: m}
}

// NewAccessor wraps arbitrary payload data with the given ValueType tag.
// Composite kinds (struct/instance/cast/namespace/external-instance) pass
// something implementing MemberAccessor; function/type values pass their
// own payload type, which carries no member-access protocol of its own.
// Accepting interface{} rather than the narrower MemberAccessor lets every
// composite value kind share one constructor without forcing unrelated
// kinds (Function, Type) to grow unused MemberGet/MemberSet/SubGet/SubSet
// stubs.
func NewAccessor(t ValueType, data interface{}) *Value {
	return &Value{Type: t, Data: data}
}

func (v *Value) IsNull() bool   { return v == nil || v.Type == TypeNull }
func (v *Value) IsBool() bool   { return v != nil && v.Type == TypeBool }
func (v *Value) IsInt() bool    { return v != nil && v.Type == TypeInt }
func (v *Value) IsFloat() bool  { return v != nil && v.Type == TypeFloat }
func (v *Value) IsString() bool { return v != nil && v.Type == TypeString }
func (v *Value) IsBigInt() bool { return v != nil && v.Type == TypeBigInt }
func (v *Value) IsNumeric() bool {
	return v != nil && (v.Type == TypeInt || v.Type == TypeFloat || v.Type == TypeBigInt)
}
func (v *Value) IsList() bool      { return v != nil && v.Type == TypeList }
func (v *Value) IsMap() bool       { return v != nil && v.Type == TypeMap }
func (v *Value) IsStruct() bool    { return v != nil && v.Type == TypeStruct }
func (v *Value) IsInstance() bool  { return v != nil && v.Type == TypeInstance }
func (v *Value) IsFunction() bool  { return v != nil && v.Type == TypeFunction }
func (v *Value) IsNamespace() bool { return v != nil && v.Type == TypeNamespace }

func (v *Value) Bool() bool                 { return v.Data.(bool) }
func (v *Value) Int() int64                 { return v.Data.(int64) }
func (v *Value) Float() float64             { return v.Data.(float64) }
func (v *Value) Str() string                { return v.Data.(string) }
func (v *Value) BigInt() *big.Int           { return v.Data.(*big.Int) }
func (v *Value) ListItems() *[]*Value       { return v.Data.(*[]*Value) }
func (v *Value) MapData() map[string]*Value { return v.Data.(map[string]*Value) }

// Accessor returns the MemberAccessor implementation for composite values,
// or (nil, false) for primitives that don't carry one.
func (v *Value) Accessor() (MemberAccessor, bool) {
	if v == nil {
		return nil, false
	}
	a, ok := v.Data.(MemberAccessor)
	return a, ok
}

// TruthyPolicy configures how truthy() coerces non-bool values (§4.B,
// §9 "implicit policies").
type TruthyPolicy byte

const (
	// TruthyStrict: only the literal `true` is truthy.
	TruthyStrict TruthyPolicy = iota
	// TruthyLenient: 0, empty string/list/map/struct, 'false', and null all
	// coerce to false.
	TruthyLenient
)

// Truthy implements §4.B's configurable coercion policy.
func (v *Value) Truthy(policy TruthyPolicy) bool {
	if v == nil || v.Type == TypeNull {
		return false
	}
	if v.Type == TypeBool {
		return v.Bool()
	}
	if policy == TruthyStrict {
		return false
	}
	switch v.Type {
	case TypeInt:
		return v.Int() != 0
	case TypeFloat:
		return v.Float() != 0
	case TypeBigInt:
		return v.BigInt().Sign() != 0
	case TypeString:
		return v.Str() != "" && v.Str() != "false"
	case TypeList:
		return len(*v.ListItems()) != 0
	case TypeMap:
		return len(v.MapData()) != 0
	case TypeStruct:
		if a, ok := v.Accessor(); ok {
			if lenKeeper, ok2 := a.(interface{ Length() int }); ok2 {
				return lenKeeper.Length() != 0
			}
		}
		return true
	default:
		return true
	}
}

// String renders a debug representation, following the teacher's var_dump
// style conventions for a scripting-VM value printer.
func (v *Value) String() string {
	if v.IsNull() {
		return "null"
	}
	switch v.Type {
	case TypeBool:
		return fmt.Sprintf("%t", v.Bool())
	case TypeInt:
		return fmt.Sprintf("%d", v.Int())
	case TypeFloat:
		return fmt.Sprintf("%g", v.Float())
	case TypeString:
		return v.Str()
	case TypeBigInt:
		return v.BigInt().String()
	case TypeList:
		items := *v.ListItems()
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = it.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case TypeMap:
		m := v.MapData()
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %s", k, m[k].String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		if s, ok := v.Data.(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprintf("<%s>", v.Type)
	}
}
