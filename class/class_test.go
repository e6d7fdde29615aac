package class

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetu-lang/hetu/values"
)

func TestInheritanceAndCast(t *testing.T) {
	// S2: class A { var n = 'A' }; class B extends A { var n = 'B' };
	// var b = B(); (b as A).n -> 'A'
	a := New("A", nil, nil, "_")
	require.NoError(t, a.DeclareField("n", values.NewString("A"), false))
	a.FinalizeDeclaration()

	b := New("B", a, nil, "_")
	require.NoError(t, b.DeclareField("n", values.NewString("B"), false))
	b.FinalizeDeclaration()

	inst, err := New(b, "", nil, nil)
	require.NoError(t, err)
	assert.True(t, inst.Data.(*Instance).Class.ID == "B")

	nVal, err := inst.Data.(*Instance).MemberGet("n", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "B", nVal.Str())

	castVal, err := NewCast(inst, a)
	require.NoError(t, err)
	casted := castVal.Data.(*Cast)
	av, err := casted.MemberGet("n", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "A", av.Str())
}

func TestCastFailsOnUnrelatedClass(t *testing.T) {
	a := New("A", nil, nil, "_")
	a.FinalizeDeclaration()
	unrelated := New("Z", nil, nil, "_")
	unrelated.FinalizeDeclaration()

	inst, err := New(a, "", nil, nil)
	require.NoError(t, err)
	_, err = NewCast(inst, unrelated)
	assert.Error(t, err)
}

func TestAbstractClassNotInstantiable(t *testing.T) {
	abs := New("Abs", nil, nil, "_")
	abs.IsAbstract = true
	_, err := New(abs, "", nil, nil)
	assert.Error(t, err)
}

func TestAncestorChainFeedsTypeIsA(t *testing.T) {
	a := New("A", nil, nil, "_")
	b := New("B", a, nil, "_")
	bt := b.Type()
	at := a.Type()
	assert.True(t, bt.IsA(at))
	assert.False(t, at.IsA(bt))
}
