package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetu-lang/hetu/bytecode"
	"github.com/hetu-lang/hetu/opcodes"
	"github.com/hetu-lang/hetu/values"
)

// buildModule assembles a minimal compiled module declaring a top-level
// function "answer" that returns 42, mirroring what a real compiler would
// emit for `func answer() { return 42; }` (§4.F, §4.H "Declarations").
//
// Layout: 0 FuncDecl (skip to 3), 1 body: load 42, 2 EndOfFunc, 3 EndOfCode.
func buildModule(t *testing.T) []byte {
	t.Helper()
	w := bytecode.NewWriter()
	w.WriteHeader(bytecode.Header{
		CompilerVersion: bytecode.Version{Major: 1},
		CompiledAtUtc:   "2026-07-30T00:00:00Z",
		CurrentFilename: "answer.hetu",
		SourceType:      bytecode.SourceModule,
	})
	w.WriteConstantPools(bytecode.ConstantPool{Ints: []int64{42}})
	w.WriteInstructions([]*opcodes.Instruction{
		{Opcode: opcodes.FuncDecl, Str: "answer", Operand2: 3},
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstInt), Operand2: 0},
		{Opcode: opcodes.EndOfFunc},
		{Opcode: opcodes.EndOfCode},
	})
	return w.Bytes()
}

func TestLoadBytecodeRunsAndInvokes(t *testing.T) {
	r := Init(DefaultOptions())
	raw := buildModule(t)

	_, err := r.LoadBytecode(raw, "answer.hetu", true, "", nil, nil)
	require.NoError(t, err)

	result, err := r.Invoke("answer", nil, nil)
	require.NoError(t, err)
	require.True(t, result.IsInt())
	assert.Equal(t, int64(42), result.Int())
}

func TestDefineFetchAssign(t *testing.T) {
	r := Init(DefaultOptions())
	require.NoError(t, r.Define("greeting", values.NewString("hi"), true, false, nil))

	v, err := r.Fetch("greeting", nil)
	require.NoError(t, err)
	assert.Equal(t, "hi", v.Str())

	require.NoError(t, r.Assign("greeting", values.NewString("bye"), nil))
	v, err = r.Fetch("greeting", nil)
	require.NoError(t, err)
	assert.Equal(t, "bye", v.Str())
}

func TestBindExternalFunctionAndInvoke(t *testing.T) {
	r := Init(DefaultOptions())
	require.NoError(t, r.BindExternalFunction("double", func(positional []*values.Value, named map[string]*values.Value, this *values.Value) (*values.Value, error) {
		return values.NewInt(positional[0].Int() * 2), nil
	}))

	result, err := r.Invoke("double", []*values.Value{values.NewInt(21)}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), result.Int())
}

func TestBindExternalClassNewAndMethod(t *testing.T) {
	r := Init(DefaultOptions())
	require.NoError(t, r.BindExternalClass(ExternalClassHandle{
		ID: "Counter",
		Fields: map[string]*values.Value{
			"count": values.NewInt(0),
		},
		Methods: map[string]HostFunc{
			"increment": func(positional []*values.Value, named map[string]*values.Value, this *values.Value) (*values.Value, error) {
				accessor, _ := this.Accessor()
				cur, err := accessor.MemberGet("count", "", this)
				if err != nil {
					return nil, err
				}
				next := values.NewInt(cur.Int() + 1)
				if err := accessor.MemberSet("count", next, "", this); err != nil {
					return nil, err
				}
				return next, nil
			},
		},
	}))

	inst, err := r.New("Counter", "", nil, nil)
	require.NoError(t, err)

	accessor, ok := inst.Accessor()
	require.True(t, ok)
	method, err := accessor.MemberGet("increment", "", inst)
	require.NoError(t, err)
	fn, ok := method.Data.(callableValue)
	require.True(t, ok)

	result, err := fn.Call(nil, nil, inst)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Int())
}
