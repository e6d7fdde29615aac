package function

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetu-lang/hetu/values"
)

func hostFn(body func(positional []*values.Value) (*values.Value, error)) *Function {
	return &Function{
		InternalName: "host",
		IsExternal:   true,
		HostHandler: func(positional []*values.Value, named map[string]*values.Value, this *values.Value) (*values.Value, error) {
			return body(positional)
		},
	}
}

func TestBindExactPositionalArgs(t *testing.T) {
	// §8 invariant 5: f(p1, ..., pn) binds each arg to its parameter in order.
	f := hostFn(func(positional []*values.Value) (*values.Value, error) {
		return values.Add(positional[0], positional[1])
	})
	f.Params = []Parameter{{Name: "a"}, {Name: "b"}}

	result, err := f.Call([]*values.Value{values.NewInt(40), values.NewInt(2)}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), result.Int())
}

func TestExtraPositionalArgRaises(t *testing.T) {
	f := hostFn(func(positional []*values.Value) (*values.Value, error) { return values.NewNull(), nil })
	f.Params = []Parameter{{Name: "a"}}

	_, err := f.Call([]*values.Value{values.NewInt(1), values.NewInt(2)}, nil, nil)
	assert.ErrorIs(t, err, ErrExtraPositionalArg)
}

func TestMissingRequiredArg(t *testing.T) {
	f := hostFn(func(positional []*values.Value) (*values.Value, error) { return values.NewNull(), nil })
	f.Params = []Parameter{{Name: "a"}, {Name: "b"}}

	_, err := f.Call([]*values.Value{values.NewInt(1)}, nil, nil)
	assert.ErrorIs(t, err, ErrMissingArgument)
}

func TestVariadicCollectsTrailingArgs(t *testing.T) {
	var gotVariadicLen int
	f := &Function{
		InternalName: "variadic",
		IsExternal:   true,
		Params:       []Parameter{{Name: "first"}, {Name: "rest", IsVariadic: true}},
	}
	f.HostHandler = func(positional []*values.Value, named map[string]*values.Value, this *values.Value) (*values.Value, error) {
		gotVariadicLen = len(positional) - 1
		return values.NewInt(int64(gotVariadicLen)), nil
	}
	_, err := f.Call([]*values.Value{values.NewInt(1), values.NewInt(2), values.NewInt(3)}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, gotVariadicLen)
}

func TestBindThisPreservesReceiver(t *testing.T) {
	f := &Function{InternalName: "m", IsExternal: true}
	f.HostHandler = func(positional []*values.Value, named map[string]*values.Value, this *values.Value) (*values.Value, error) {
		return this, nil
	}
	receiver := values.NewString("receiver")
	bound := f.BindThis(receiver)
	result, err := bound.Data.(*Function).Call(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "receiver", result.Str())
}
