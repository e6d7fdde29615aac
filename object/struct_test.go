package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetu-lang/hetu/values"
)

func TestOwnFieldGetSet(t *testing.T) {
	s := New("_", "$")
	require.NoError(t, s.MemberSet("name", values.NewString("jim"), "", nil))
	v, err := s.MemberGet("name", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "jim", v.Str())
}

// fakeFunc implements Callable and BindThis for the prototype-binding test.
type fakeFunc struct{ this *values.Value }

func (f *fakeFunc) Call(positional []*values.Value, named map[string]*values.Value, caller *values.Value) (*values.Value, error) {
	this := f.this
	if this == nil {
		return values.NewNull(), nil
	}
	nameStruct := this.Data.(*Struct)
	return nameStruct.MemberGet("name", "", this)
}

func (f *fakeFunc) BindThis(caller *values.Value) *values.Value {
	return values.NewAccessor(values.TypeFunction, &fakeFunc{this: caller})
}

func TestPrototypeReceiverThreading(t *testing.T) {
	// S3: var p = { greet: function () => this.name }; var s = { name: 'jim' }
	// s.prototype = p; s.greet() -> 'jim'
	proto := New("_", "$")
	proto.DefineField("greet", values.NewAccessor(values.TypeFunction, &fakeFunc{}))

	s := New("_", "$")
	s.DefineField("name", values.NewString("jim"))
	s.SetPrototype(proto)

	greetVal, err := s.MemberGet("greet", "", nil)
	require.NoError(t, err)
	callable := greetVal.Data.(Callable)
	result, err := callable.Call(nil, nil, s.AsValue())
	require.NoError(t, err)
	assert.Equal(t, "jim", result.Str())
}

func TestCloneEquality(t *testing.T) {
	s := New("_", "$")
	s.DefineField("x", values.NewInt(1))
	s.DefineField("$internal", values.NewInt(99))

	c := s.Clone(false)
	v, err := c.MemberGet("x", "", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Int())
	assert.NotContains(t, c.Keys(), "$internal")

	cc := c.Clone(false)
	assert.Equal(t, c.Keys(), cc.Keys())
}

func TestSpreadStructLiteral(t *testing.T) {
	// S6: var a = { x: 1 }; var b = { ...a, y: 2 } -> b == { x: 1, y: 2 }
	a := New("_", "$")
	a.DefineField("x", values.NewInt(1))

	b := New("_", "$")
	require.NoError(t, b.Spread(a.AsValue()))
	b.DefineField("y", values.NewInt(2))

	assert.ElementsMatch(t, []string{"x", "y"}, b.Keys())
	xv, _ := b.MemberGet("x", "", nil)
	yv, _ := b.MemberGet("y", "", nil)
	assert.Equal(t, int64(1), xv.Int())
	assert.Equal(t, int64(2), yv.Int())
}

func TestPrivateFieldVisibility(t *testing.T) {
	s := New("_", "$")
	s.DefineField("_secret", values.NewInt(1))
	_, err := s.MemberGet("_secret", "", nil)
	assert.Error(t, err)
}
