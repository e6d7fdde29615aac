package vm

import (
	"github.com/hetu-lang/hetu/class"
	"github.com/hetu-lang/hetu/function"
	"github.com/hetu-lang/hetu/opcodes"
	"github.com/hetu-lang/hetu/values"
)

// execAssign implements Assign (§4.H "assign"): writes assignRight to the
// identifier named by instr.Str, honoring the implicit-declare-on-assign
// policy (§9), and yields the assigned value as the expression's result.
func (vm *VirtualMachine) execAssign(ec *ExecutionContext, frame *Frame, instr *opcodes.Instruction) (bool, *values.Value, error) {
	v := frame.Registers[RegAssignRight]
	if v == nil {
		v = values.NewNull()
	}
	err := frame.Namespace.Set(instr.Str, v, ec.Options.ImplicitDeclareOnAssign, true, frame.Namespace.FullName())
	if err != nil {
		return false, nil, NewVMError(ErrUndefined, "%v", err)
	}
	frame.Registers[RegLocalValue] = v
	return true, nil, nil
}

// execCall implements Call (§4.F "Calling convention"). With
// CallHasNewOperator set, instr.Str names the class to instantiate and
// Str2-less PublicID-based named-constructor routing is not attempted here
// — the unnamed constructor is used, which every class synthesizes if none
// is user-declared (§3 "Class"). Otherwise the callee is a bound Function
// value: looked up by instr.Str when CallHasCalleeID is set, else taken
// from localSymbol (the result of evaluating a postfix member/identifier
// expression immediately before the Call instruction).
func (vm *VirtualMachine) execCall(ec *ExecutionContext, frame *Frame, instr *opcodes.Instruction) (*values.Value, error) {
	flags := opcodes.CallFlags(instr.Operand2)

	if flags.Has(opcodes.CallHasNewOperator) {
		c, err := ec.LookupClass(instr.Str)
		if err != nil {
			return nil, err
		}
		v, err := class.New(c, "", frame.CallArgs, frame.CallNamed)
		if err != nil {
			return nil, NewVMError(ErrAbstracted, "%v", err)
		}
		return v, nil
	}

	var callee *values.Value
	if flags.Has(opcodes.CallHasCalleeID) {
		decl, err := frame.Namespace.Lookup(instr.Str, frame.Namespace.FullName(), true)
		if err != nil {
			return nil, NewVMError(ErrUndefined, "%s", instr.Str)
		}
		callee = decl.Value
	} else {
		callee = frame.Registers[RegLocalSymbol]
	}

	if callee == nil || callee.IsNull() {
		if flags.Has(opcodes.CallNullable) {
			return values.NewNull(), nil
		}
		return nil, NewVMError(ErrNotCallable, "null is not callable")
	}

	fn, ok := callee.Data.(*function.Function)
	if !ok {
		return nil, NewVMError(ErrNotCallable, "%s is not callable", callee.Type)
	}

	var caller *values.Value
	if frame.This != nil {
		caller = frame.This
	}
	result, err := fn.Call(frame.CallArgs, frame.CallNamed, caller)
	if err != nil {
		return nil, NewVMError(ErrArgument, "%v", err)
	}
	return result, nil
}
