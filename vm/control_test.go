package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetu-lang/hetu/bytecode"
	"github.com/hetu-lang/hetu/opcodes"
)

// TestSwitchStmtDispatch hand-assembles a three-arm switch over an int
// subject (== 2) and checks control lands in arm 1's body (ip 17), not
// the default arm (ip 21) or any other arm.
//
// Layout:
//
//	 0-1   stash subject (2) into RegEqualLeft
//	 2-13  three (case value, body ip) arm pushes
//	14     SwitchStmt, Operand1 = default ip (21)
//	15-16  arm 0 body -> result 1
//	17-18  arm 1 body -> result 2  (expected to run)
//	19-20  arm 2 body -> result 3
//	21-22  default body -> result 1 (must not run)
func TestSwitchStmtDispatch(t *testing.T) {
	pool := &bytecode.ConstantPool{Ints: []int64{1, 2, 3, 15, 17, 19}}
	unit := CodeUnit{Pool: pool, Instructions: []*opcodes.Instruction{
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstInt), Operand2: 1}, // 0: subject = 2
		{Opcode: opcodes.Register, Operand1: int64(RegEqualLeft)},                      // 1

		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstInt), Operand2: 0},     // 2: case 1
		{Opcode: opcodes.Register, Operand1: int64(ArgPushPositional)},                     // 3
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstInt), Operand2: 3},     // 4: body ip 15
		{Opcode: opcodes.Register, Operand1: int64(ArgPushNamed), Str: "0"},                // 5

		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstInt), Operand2: 1},     // 6: case 2
		{Opcode: opcodes.Register, Operand1: int64(ArgPushPositional)},                     // 7
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstInt), Operand2: 4},     // 8: body ip 17
		{Opcode: opcodes.Register, Operand1: int64(ArgPushNamed), Str: "1"},                // 9

		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstInt), Operand2: 2},     // 10: case 3
		{Opcode: opcodes.Register, Operand1: int64(ArgPushPositional)},                     // 11
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstInt), Operand2: 5},     // 12: body ip 19
		{Opcode: opcodes.Register, Operand1: int64(ArgPushNamed), Str: "2"},                // 13

		{Opcode: opcodes.SwitchStmt, Operand1: 21}, // 14: default ip 21

		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstInt), Operand2: 0}, // 15: arm0 -> 1
		instr(opcodes.EndOfCode),                                                       // 16

		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstInt), Operand2: 1}, // 17: arm1 -> 2
		instr(opcodes.EndOfCode),                                                       // 18

		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstInt), Operand2: 2}, // 19: arm2 -> 3
		instr(opcodes.EndOfCode),                                                       // 20

		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstInt), Operand2: 0}, // 21: default -> 1
		instr(opcodes.EndOfCode),                                                       // 22
	}}

	ec := newTestContext()
	vmachine := NewVirtualMachine(bytecode.Version{Major: 1})
	result, err := vmachine.Execute(ec, ec.Global, unit)
	require.NoError(t, err)
	require.True(t, result.IsInt())
	assert.Equal(t, int64(2), result.Int())
}

// TestDestructuringDeclList binds two identifiers positionally off a list
// RHS (§4.H "Declarations").
func TestDestructuringDeclList(t *testing.T) {
	pool := &bytecode.ConstantPool{Ints: []int64{10, 20}}
	unit := CodeUnit{Pool: pool, Instructions: []*opcodes.Instruction{
		// [10, 20]
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstInt), Operand2: 0},
		{Opcode: opcodes.Register, Operand1: int64(ArgPushPositional)},
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstInt), Operand2: 1},
		{Opcode: opcodes.Register, Operand1: int64(ArgPushPositional)},
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralList), Operand2: 2},
		{Opcode: opcodes.Register, Operand1: int64(RegAssignRight)},
		// pattern identifiers "a", "b"
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralInlineString), Str: "a"},
		{Opcode: opcodes.Register, Operand1: int64(ArgPushPositional)},
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralInlineString), Str: "b"},
		{Opcode: opcodes.Register, Operand1: int64(ArgPushPositional)},
		{Opcode: opcodes.DestructuringDecl, Operand1: 0},
		instr(opcodes.EndOfStmt),
		// b
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralIdentifier), Str: "b"},
		instr(opcodes.EndOfCode),
	}}
	ec := newTestContext()
	vmachine := NewVirtualMachine(bytecode.Version{Major: 1})
	result, err := vmachine.Execute(ec, ec.Global, unit)
	require.NoError(t, err)
	require.True(t, result.IsInt())
	assert.Equal(t, int64(20), result.Int())
}
