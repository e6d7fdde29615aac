package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetu-lang/hetu/bytecode"
	"github.com/hetu-lang/hetu/opcodes"
)

// TestClassDeclAndInstantiate hand-assembles:
//
//	class Counter { var n = 0 }
//	var c = new Counter()
//	c.n
//
// and checks the synthesized default constructor and field lookup both
// work end to end (§4.E).
func TestClassDeclAndInstantiate(t *testing.T) {
	pool := &bytecode.ConstantPool{Ints: []int64{0}}
	unit := CodeUnit{Pool: pool, Instructions: []*opcodes.Instruction{
		// class Counter { var n = 0 }
		{Opcode: opcodes.ClassDecl, Str: "Counter", Operand2: -1},
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstInt), Operand2: 0},
		{Opcode: opcodes.VarDecl, Str: "n"},
		instr(opcodes.EndOfStmt),
		instr(opcodes.ClassDeclEnd),
		// var c = new Counter()
		{Opcode: opcodes.Call, Str: "Counter", Operand2: int64(opcodes.CallHasNewOperator)},
		{Opcode: opcodes.VarDecl, Str: "c"},
		instr(opcodes.EndOfStmt),
		// c.n
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralIdentifier), Str: "c"},
		{Opcode: opcodes.Register, Operand1: int64(RegPostfixObject)},
		{Opcode: opcodes.MemberGet, Str: "n"},
		instr(opcodes.EndOfCode),
	}}

	ec := newTestContext()
	vmachine := NewVirtualMachine(bytecode.Version{Major: 1})
	result, err := vmachine.Execute(ec, ec.Global, unit)
	require.NoError(t, err)
	require.True(t, result.IsInt())
	assert.Equal(t, int64(0), result.Int())
}

// TestStructLiteralFieldSet builds a struct literal, assigns a field via
// SubSet, and reads it back via SubGet (§3 "Struct").
func TestStructLiteralFieldSet(t *testing.T) {
	pool := &bytecode.ConstantPool{Ints: []int64{7}, Strings: []string{"value"}}
	unit := CodeUnit{Pool: pool, Instructions: []*opcodes.Instruction{
		{Opcode: opcodes.StructDecl, Str: "s"},
		instr(opcodes.EndOfStmt),
		// s["value"] = 7
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralIdentifier), Str: "s"},
		{Opcode: opcodes.Register, Operand1: int64(RegPostfixObject)},
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstString), Operand2: 0},
		{Opcode: opcodes.Register, Operand1: int64(RegPostfixKey)},
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstInt), Operand2: 0},
		{Opcode: opcodes.Register, Operand1: int64(RegAssignRight)},
		instr(opcodes.SubSet),
		instr(opcodes.EndOfStmt),
		// s["value"]
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralIdentifier), Str: "s"},
		{Opcode: opcodes.Register, Operand1: int64(RegPostfixObject)},
		{Opcode: opcodes.Local, Operand1: int64(opcodes.LiteralConstString), Operand2: 0},
		{Opcode: opcodes.Register, Operand1: int64(RegPostfixKey)},
		instr(opcodes.SubGet),
		instr(opcodes.EndOfCode),
	}}

	ec := newTestContext()
	vmachine := NewVirtualMachine(bytecode.Version{Major: 1})
	result, err := vmachine.Execute(ec, ec.Global, unit)
	require.NoError(t, err)
	require.True(t, result.IsInt())
	assert.Equal(t, int64(7), result.Int())
}
