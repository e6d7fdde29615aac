package hetutype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnyIsTop(t *testing.T) {
	any := NewIntrinsic(Any)
	never := NewIntrinsic(Never)
	str := NewNominal("string", nil, nil)
	assert.True(t, str.IsA(any))
	assert.True(t, never.IsA(str))
}

func TestNominalChain(t *testing.T) {
	a := NewNominal("A", nil, nil)
	b := NewNominal("B", []string{"A"}, nil)
	assert.True(t, b.IsA(a))
	assert.False(t, a.IsA(b))
	assert.True(t, b.IsA(b))
}

func TestStructuralSubtyping(t *testing.T) {
	wide := NewStructural(map[string]*Type{
		"name": NewNominal("string", nil, nil),
		"age":  NewNominal("int", nil, nil),
	})
	narrow := NewStructural(map[string]*Type{
		"name": NewNominal("string", nil, nil),
	})
	assert.True(t, wide.IsA(narrow))
	assert.False(t, narrow.IsA(wide))
}

func TestFunctionVariance(t *testing.T) {
	// (A) -> B   isA   (B) -> B   when B <: A  -- params contravariant so a
	// function accepting the wider A type also satisfies a caller expecting
	// one that accepts B.
	a := NewNominal("A", nil, nil)
	b := NewNominal("B", []string{"A"}, nil)
	takesA := NewFunction([]*Type{a}, b)
	takesB := NewFunction([]*Type{b}, b)
	assert.True(t, takesA.IsA(takesB))
}
