package vm

import (
	"github.com/hetu-lang/hetu/function"
	"github.com/hetu-lang/hetu/values"
)

// RegisterSlot names one of the stack frame's semantic register slots
// (§3 "Stack frame"). These are staging areas for the operand of whichever
// expression is currently mid-evaluation, not a general-purpose allocated
// register file — the compiler emits at most one value per slot per
// expression (§9 "Registers as semantic slots").
type RegisterSlot int

const (
	RegLocalValue RegisterSlot = iota
	RegLocalSymbol
	RegAdditiveLeft
	RegMultiplicativeLeft
	RegRelationLeft
	RegEqualLeft
	RegAndLeft
	RegOrLeft
	RegIfNullLeft
	RegBitwiseOrLeft
	RegBitwiseXorLeft
	RegBitwiseAndLeft
	RegBitwiseShiftLeft
	RegPostfixObject
	RegPostfixKey
	RegAssignRight
	numRegisters
)

// Sentinel slot ids a Register instruction's Operand1 can carry instead of
// a numRegisters-range slot, diverting the value into the frame's pending
// call-argument accumulator (§4.H "Call") rather than the fixed bank.
const (
	ArgPushPositional int64 = -1
	ArgPushNamed      int64 = -2
)

// RegisterBank is the fixed-size bank of named registers held by one stack
// frame.
type RegisterBank [numRegisters]*values.Value

// Clear resets every slot to nil, used when a frame's register bank must
// be empty on return (§8 invariant 1).
func (b *RegisterBank) Clear() {
	for i := range b {
		b[i] = nil
	}
}

// IsClear reports whether every slot is nil.
func (b *RegisterBank) IsClear() bool {
	for _, v := range b {
		if v != nil {
			return false
		}
	}
	return true
}

// NewParameterValue wraps a parameter descriptor so it can travel through
// the same ArgPushPositional accumulator a Call instruction uses, letting
// FuncDecl build its parameter list from ordinary Register pushes rather
// than a dedicated wire shape.
func NewParameterValue(p function.Parameter) *values.Value {
	return values.NewAccessor(values.TypeExternalInstance, &p)
}
