package vm

import (
	"github.com/hetu-lang/hetu/bytecode"
	"github.com/hetu-lang/hetu/object"
	"github.com/hetu-lang/hetu/opcodes"
	"github.com/hetu-lang/hetu/values"
)

// loadLocal decodes a Local instruction's payload into a Value (§4.I). The
// pool index (when the literal kind needs one) travels in Operand2;
// Operand1 selects the LiteralKind. Identifiers resolve against the
// frame's namespace rather than producing a value of their own.
func (vm *VirtualMachine) loadLocal(ec *ExecutionContext, frame *Frame, pool *bytecode.ConstantPool, instr *opcodes.Instruction) (*values.Value, error) {
	kind := opcodes.LiteralKind(instr.Operand1)
	switch kind {
	case opcodes.LiteralNull:
		return values.NewNull(), nil
	case opcodes.LiteralBool:
		return values.NewBool(instr.Operand2 != 0), nil
	case opcodes.LiteralConstInt:
		if idx := int(instr.Operand2); idx < 0 || idx >= len(pool.Ints) {
			return nil, NewVMError(ErrBytecode, "int constant index %d out of range", idx)
		}
		return values.NewInt(pool.Ints[instr.Operand2]), nil
	case opcodes.LiteralConstFloat:
		if idx := int(instr.Operand2); idx < 0 || idx >= len(pool.Floats) {
			return nil, NewVMError(ErrBytecode, "float constant index %d out of range", idx)
		}
		return values.NewFloat(pool.Floats[instr.Operand2]), nil
	case opcodes.LiteralConstString:
		if idx := int(instr.Operand2); idx < 0 || idx >= len(pool.Strings) {
			return nil, NewVMError(ErrBytecode, "string constant index %d out of range", idx)
		}
		return values.NewString(pool.Strings[instr.Operand2]), nil
	case opcodes.LiteralInlineString, opcodes.LiteralInterpolatedString:
		return values.NewString(instr.Str), nil
	case opcodes.LiteralIdentifier:
		decl, err := frame.Namespace.Lookup(instr.Str, frame.Namespace.FullName(), true)
		if err != nil {
			return nil, NewVMError(ErrUndefined, "identifier %s", instr.Str)
		}
		return decl.Value, nil
	case opcodes.LiteralGroup:
		// A parenthesized expression leaves its inner value already staged
		// in RegLocalValue by the instructions that preceded this one.
		return frame.Registers[RegLocalValue], nil
	case opcodes.LiteralList:
		n := int(instr.Operand2)
		items := make([]*values.Value, 0, n)
		for i := 0; i < n && i < len(frame.CallArgs); i++ {
			items = append(items, frame.CallArgs[i])
		}
		frame.CallArgs = nil
		return values.NewList(items), nil
	case opcodes.LiteralStruct:
		st := object.New(ec.Options.PrivatePrefix, "__")
		return st.AsValue(), nil
	case opcodes.LiteralFunction:
		// Script-function literals are materialized ahead of time and
		// handed to the VM via FuncDecl; a Local(function) reference
		// resolves the already-declared identifier by name.
		decl, err := frame.Namespace.Lookup(instr.Str, frame.Namespace.FullName(), true)
		if err != nil {
			return nil, NewVMError(ErrUndefined, "function %s", instr.Str)
		}
		return decl.Value, nil
	case opcodes.LiteralType:
		t, err := ec.LookupType(instr.Str)
		if err != nil {
			return nil, err
		}
		return values.NewAccessor(values.TypeType, t), nil
	default:
		return nil, NewVMError(ErrBytecode, "unknown literal kind %d", kind)
	}
}
