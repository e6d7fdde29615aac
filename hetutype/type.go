// Package hetutype implements the Type value kind (§3 "Type", §4.H "Type
// ops"): intrinsic, nominal, function, and structural type objects plus the
// isA subtype relation.
package hetutype

import (
	"fmt"
	"strings"
)

// Kind distinguishes the four Type variants from §3.
type Kind byte

const (
	KindIntrinsic Kind = iota
	KindNominal
	KindFunction
	KindStructural
)

// Intrinsic names the built-in top/bottom/meta types (§3).
type Intrinsic byte

const (
	Any Intrinsic = iota
	Unknown
	Void
	Never
	TypeOfType
	FunctionIntrinsic
	NamespaceIntrinsic
	Null
)

var intrinsicNames = [...]string{"any", "unknown", "void", "never", "type", "function", "namespace", "null"}

func (i Intrinsic) String() string {
	if int(i) < len(intrinsicNames) {
		return intrinsicNames[i]
	}
	return fmt.Sprintf("unknownIntrinsic(%d)", byte(i))
}

// Type is a single value of the Type value kind.
type Type struct {
	Kind Kind

	// Intrinsic
	Intrinsic Intrinsic

	// Nominal
	ID string
	// AncestorChain lists this nominal type's own id followed by every
	// ancestor id, most-derived first. Filled in by package class
	// (class.Class.Type) so isA never needs to call back into package
	// class, keeping the dependency edge one-directional.
	AncestorChain []string
	Interfaces    []string
	TypeArgs      []*Type
	IsNullable    bool

	// Function
	ParamTypes []*Type
	ReturnType *Type

	// Structural
	FieldTypes map[string]*Type
}

func NewIntrinsic(i Intrinsic) *Type { return &Type{Kind: KindIntrinsic, Intrinsic: i} }

func NewNominal(id string, ancestors, interfaces []string) *Type {
	return &Type{Kind: KindNominal, ID: id, AncestorChain: ancestors, Interfaces: interfaces}
}

func NewFunction(params []*Type, ret *Type) *Type {
	return &Type{Kind: KindFunction, ParamTypes: params, ReturnType: ret}
}

func NewStructural(fields map[string]*Type) *Type {
	return &Type{Kind: KindStructural, FieldTypes: fields}
}

func (t *Type) String() string {
	switch t.Kind {
	case KindIntrinsic:
		return t.Intrinsic.String()
	case KindNominal:
		s := t.ID
		if len(t.TypeArgs) > 0 {
			parts := make([]string, len(t.TypeArgs))
			for i, a := range t.TypeArgs {
				parts[i] = a.String()
			}
			s += "<" + strings.Join(parts, ", ") + ">"
		}
		if t.IsNullable {
			s += "?"
		}
		return s
	case KindFunction:
		parts := make([]string, len(t.ParamTypes))
		for i, p := range t.ParamTypes {
			parts[i] = p.String()
		}
		ret := "void"
		if t.ReturnType != nil {
			ret = t.ReturnType.String()
		}
		return "(" + strings.Join(parts, ", ") + ") -> " + ret
	case KindStructural:
		parts := make([]string, 0, len(t.FieldTypes))
		for k, v := range t.FieldTypes {
			parts = append(parts, k+": "+v.String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "unknownType"
}

func isIntrinsic(t *Type, i Intrinsic) bool { return t.Kind == KindIntrinsic && t.Intrinsic == i }

func contains(list []string, id string) bool {
	for _, x := range list {
		if x == id {
			return true
		}
	}
	return false
}

// IsA implements the subtype relation from §3: any is top, never is
// bottom, nominal types compare via their ancestor/interface chain,
// function types are contravariant in parameters and covariant in return,
// structural types hold iff every field the right side requires is
// satisfied by the left.
func (t *Type) IsA(other *Type) bool {
	if t == nil || other == nil {
		return false
	}
	if isIntrinsic(other, Any) {
		return true
	}
	if isIntrinsic(t, Never) {
		return true
	}
	if t.Kind == KindIntrinsic && other.Kind == KindIntrinsic {
		return t.Intrinsic == other.Intrinsic
	}
	switch other.Kind {
	case KindNominal:
		if t.Kind != KindNominal {
			return false
		}
		if t.ID == other.ID {
			return true
		}
		if contains(t.AncestorChain, other.ID) {
			return true
		}
		return contains(t.Interfaces, other.ID)
	case KindFunction:
		if t.Kind != KindFunction {
			return false
		}
		if len(t.ParamTypes) != len(other.ParamTypes) {
			return false
		}
		// contravariant: t's params must accept what other declares, i.e.
		// other.Param isA t.Param for each position.
		for i := range t.ParamTypes {
			if !other.ParamTypes[i].IsA(t.ParamTypes[i]) {
				return false
			}
		}
		// covariant: t's return must satisfy other's return.
		if t.ReturnType == nil || other.ReturnType == nil {
			return t.ReturnType == other.ReturnType
		}
		return t.ReturnType.IsA(other.ReturnType)
	case KindStructural:
		left := t.FieldTypes
		if t.Kind != KindStructural {
			// a nominal/class instance can still structurally satisfy a
			// structural type if its declared fields (carried separately
			// by package class at instantiation time) match; callers that
			// need this pass a synthesized structural Type for t instead.
			return false
		}
		for name, wantType := range other.FieldTypes {
			gotType, ok := left[name]
			if !ok || !gotType.IsA(wantType) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
