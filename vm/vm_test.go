package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetu-lang/hetu/bytecode"
	"github.com/hetu-lang/hetu/module"
	"github.com/hetu-lang/hetu/namespace"
	"github.com/hetu-lang/hetu/opcodes"
)

func newTestContext() *ExecutionContext {
	global := namespace.New("global", "", nil, "_")
	return NewExecutionContext(global, module.NewCache(), DefaultOptions())
}

func instr(op opcodes.Opcode) *opcodes.Instruction { return &opcodes.Instruction{Opcode: op} }

// TestArithmeticExpression hand-assembles `var x = 40; x + 2` and checks the
// dispatch loop leaves 42 in localValue at end-of-code (§4.H, §4.I).
func TestArithmeticExpression(t *testing.T) {
	pool := &bytecode.ConstantPool{Ints: []int64{40, 2}}
	unit := CodeUnit{Pool: pool, Instructions: []*opcodes.Instruction{
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstInt), Operand2: 0},
		{Opcode: opcodes.VarDecl, Str: "x"},
		instr(opcodes.EndOfStmt),
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralIdentifier), Str: "x"},
		{Opcode: opcodes.Register, Operand1: int64(RegAdditiveLeft)},
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstInt), Operand2: 1},
		instr(opcodes.Add),
		instr(opcodes.EndOfStmt),
		instr(opcodes.EndOfCode),
	}}

	ec := newTestContext()
	vmachine := NewVirtualMachine(bytecode.Version{Major: 1})
	result, err := vmachine.Execute(ec, ec.Global, unit)
	require.NoError(t, err)
	require.True(t, result.IsInt())
	assert.Equal(t, int64(42), result.Int())
}

// TestStringConcatenation exercises Add's string-concat path through the
// dispatch loop.
func TestStringConcatenation(t *testing.T) {
	pool := &bytecode.ConstantPool{Strings: []string{"foo", "bar"}}
	unit := CodeUnit{Pool: pool, Instructions: []*opcodes.Instruction{
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstString), Operand2: 0},
		{Opcode: opcodes.Register, Operand1: int64(RegAdditiveLeft)},
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstString), Operand2: 1},
		instr(opcodes.Add),
		instr(opcodes.EndOfCode),
	}}

	ec := newTestContext()
	vmachine := NewVirtualMachine(bytecode.Version{Major: 1})
	result, err := vmachine.Execute(ec, ec.Global, unit)
	require.NoError(t, err)
	assert.Equal(t, "foobar", result.Str())
}

// TestIfStmtBranch checks IfStmt's falsy-jump behavior (§4.H "Control
// flow"): a false condition jumps to the else branch, and the then
// branch's instructions must never execute.
func TestIfStmtBranch(t *testing.T) {
	pool := &bytecode.ConstantPool{Ints: []int64{1, 2}}
	unit := CodeUnit{Pool: pool, Instructions: []*opcodes.Instruction{
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralBool), Operand2: 0}, // false
		{Opcode: opcodes.IfStmt, Operand1: 4},                                     // jump to else
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstInt), Operand2: 0},
		{Opcode: opcodes.Skip, Operand1: 5},
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstInt), Operand2: 1}, // else branch
		instr(opcodes.EndOfCode),
	}}

	ec := newTestContext()
	vmachine := NewVirtualMachine(bytecode.Version{Major: 1})
	result, err := vmachine.Execute(ec, ec.Global, unit)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Int())
}

// TestAsyncAwaitChain declares an async function whose body yields 21, calls
// it (getting a Future back immediately), awaits it, and doubles the result
// to 42 (§4.K).
func TestAsyncAwaitChain(t *testing.T) {
	pool := &bytecode.ConstantPool{Ints: []int64{21, 2}}
	unit := CodeUnit{Pool: pool, Instructions: []*opcodes.Instruction{
		// 0: declare async fn answer(), body at ip1, resume at ip3
		{Opcode: opcodes.FuncDecl, Str: "answer", Operand1: 1, Operand2: 3},
		// 1: body — load 21, end function
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstInt), Operand2: 0},
		instr(opcodes.EndOfFunc),
		// 3: resume here — call answer() by id, no args
		{Opcode: opcodes.Call, Operand2: int64(opcodes.CallHasCalleeID), Str: "answer"},
		// 4: await the future
		instr(opcodes.AwaitedValue),
		// 5: double it
		{Opcode: opcodes.Register, Operand1: int64(RegAdditiveLeft)},
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstInt), Operand2: 1},
		instr(opcodes.Multiply),
		instr(opcodes.EndOfCode),
	}}

	ec := newTestContext()
	vmachine := NewVirtualMachine(bytecode.Version{Major: 1})
	result, err := vmachine.Execute(ec, ec.Global, unit)
	require.NoError(t, err)
	require.True(t, result.IsInt())
	assert.Equal(t, int64(42), result.Int())
}

// TestThrowEscapesAsThrownError checks a Throws opcode's payload survives
// decorate() unwrapped, so a host can recover the thrown Value (§7).
func TestThrowEscapesAsThrownError(t *testing.T) {
	pool := &bytecode.ConstantPool{Strings: []string{"boom"}}
	unit := CodeUnit{Pool: pool, Instructions: []*opcodes.Instruction{
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstString), Operand2: 0},
		instr(opcodes.Throws),
	}}

	ec := newTestContext()
	vmachine := NewVirtualMachine(bytecode.Version{Major: 1})
	_, err := vmachine.Execute(ec, ec.Global, unit)
	require.Error(t, err)
	thrown, ok := err.(*ThrownError)
	require.True(t, ok, "expected *ThrownError, got %T", err)
	assert.Equal(t, "boom", thrown.Value.Str())
}

// TestTimeoutHalts checks that cancelling the deadline set by SetTimeLimit
// stops the next dispatch with ErrHalted before any instruction runs (§5).
func TestTimeoutHalts(t *testing.T) {
	ec := newTestContext()
	ec.SetTimeLimit(1)
	ec.Cancel() // force-expire immediately rather than sleeping in a test
	unit := CodeUnit{Pool: &bytecode.ConstantPool{}, Instructions: []*opcodes.Instruction{
		instr(opcodes.EndOfCode),
	}}
	vmachine := NewVirtualMachine(bytecode.Version{Major: 1})
	_, err := vmachine.Execute(ec, ec.Global, unit)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHalted)
}
