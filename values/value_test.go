package values

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNumeric(t *testing.T) {
	v, err := Add(NewInt(40), NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int())

	v, err = Add(NewInt(1), NewFloat(1.5))
	require.NoError(t, err)
	assert.Equal(t, TypeFloat, v.Type)
	assert.Equal(t, 2.5, v.Float())

	v, err = Add(NewBigInt(big.NewInt(1)), NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, TypeBigInt, v.Type)
	assert.Equal(t, "3", v.BigInt().String())
}

func TestAddStringConcat(t *testing.T) {
	v, err := Add(NewString("foo"), NewString("bar"))
	require.NoError(t, err)
	assert.Equal(t, "foobar", v.Str())
}

func TestDivideByZero(t *testing.T) {
	_, err := Devide(NewInt(1), NewInt(0))
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestTruthyPolicies(t *testing.T) {
	assert.False(t, NewInt(0).Truthy(TruthyStrict))
	assert.False(t, NewBool(false).Truthy(TruthyStrict))
	assert.False(t, NewInt(0).Truthy(TruthyLenient))
	assert.True(t, NewInt(1).Truthy(TruthyStrict) == false) // strict: non-bool never truthy
	assert.True(t, NewString("").Truthy(TruthyLenient) == false)
	assert.True(t, NewString("x").Truthy(TruthyLenient))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(NewInt(1), NewFloat(1.0)))
	assert.True(t, Equal(NewNull(), NewNull()))
	assert.False(t, Equal(NewNull(), NewInt(0)))
	assert.True(t, Equal(NewList([]*Value{NewInt(1)}), NewList([]*Value{NewInt(1)})))
}

func TestCompareStrings(t *testing.T) {
	cmp, err := Compare(NewString("a"), NewString("b"), false)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)
}
