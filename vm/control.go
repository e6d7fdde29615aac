package vm

import (
	"strconv"

	"github.com/hetu-lang/hetu/namespace"
	"github.com/hetu-lang/hetu/opcodes"
	"github.com/hetu-lang/hetu/values"
)

// execSwitchStmt implements SwitchStmt (§4.H "Control flow"). With no
// compiler front-end to emit a native jump table, arms travel through the
// same accumulator Call already uses: the compiler evaluates the subject
// once and stashes it via Register(RegEqualLeft) (switch-case dispatch is
// an equality chain, the same relation Equal already tests), then for each
// arm pushes the case constant positionally (ArgPushPositional) and its
// body ip as a named push keyed by the arm's stringified index
// ("0", "1", ...). Operand1 is the ip to jump to when no arm matches.
func (vm *VirtualMachine) execSwitchStmt(frame *Frame, instr *opcodes.Instruction) (bool, *values.Value, error) {
	subject := frame.Registers[RegEqualLeft]
	arms := frame.CallArgs
	named := frame.CallNamed
	frame.CallArgs = nil
	frame.CallNamed = nil

	for i, caseValue := range arms {
		if !values.Equal(subject, caseValue) {
			continue
		}
		bodyIP, ok := named[strconv.Itoa(i)]
		if !ok {
			return false, nil, NewVMError(ErrBytecode, "switchStmt: arm %d missing body ip", i)
		}
		frame.IP = int(bodyIP.Int())
		return false, nil, nil
	}
	frame.IP = int(instr.Operand1)
	return false, nil, nil
}

// execDestructuringDecl implements DestructuringDecl (§4.H "Declarations"):
// binds a flat list of identifiers against an RHS value, either by position
// (a list RHS) or by name (a struct/instance RHS). The RHS is evaluated and
// stashed via Register(RegAssignRight) before the pattern's identifiers are
// pushed (the identifier pushes each overwrite RegLocalValue in turn, so the
// RHS cannot simply be read back from there at DestructuringDecl time — the
// same reason plain Assign reads its RHS from a dedicated register rather
// than RegLocalValue). Binding identifiers travel through the same
// ArgPushPositional accumulator Call uses, each wrapped as a string Value.
// Operand1 selects the pattern kind: 0 = list (positional), 1 = struct/
// instance (by name). Nested patterns and a trailing rest-element binding
// are not supported — every id pulled out of the accumulator binds a
// single scalar slot of the pattern, which covers the common `var [a, b]`/
// `var {x, y}` forms without needing a compiled pattern tree.
func (vm *VirtualMachine) execDestructuringDecl(frame *Frame, instr *opcodes.Instruction) (bool, *values.Value, error) {
	rhs := frame.Registers[RegAssignRight]
	if rhs == nil {
		rhs = values.NewNull()
	}
	names := make([]string, len(frame.CallArgs))
	for i, pv := range frame.CallArgs {
		names[i] = pv.Str()
	}
	frame.CallArgs = nil
	frame.CallNamed = nil

	define := func(id string, v *values.Value) error {
		decl := &namespace.Declaration{ID: id, Kind: namespace.DeclVariable, Value: v, IsMutable: true}
		return frame.Namespace.Define(id, decl, false)
	}

	if instr.Operand1 == 0 {
		if !rhs.IsList() {
			return false, nil, NewVMError(ErrTypeError, "destructuring: right side is not a list")
		}
		items := *rhs.ListItems()
		for i, id := range names {
			v := values.NewNull()
			if i < len(items) {
				v = items[i]
			}
			if err := define(id, v); err != nil {
				return false, nil, NewVMError(ErrBytecode, "%v", err)
			}
		}
		return true, nil, nil
	}

	from := frame.Namespace.FullName()
	for _, id := range names {
		v, err := vm.memberGet(rhs, id, from)
		if err != nil {
			return false, nil, err
		}
		if err := define(id, v); err != nil {
			return false, nil, NewVMError(ErrBytecode, "%v", err)
		}
	}
	return true, nil, nil
}
