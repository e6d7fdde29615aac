package vm

import (
	"github.com/hetu-lang/hetu/class"
	"github.com/hetu-lang/hetu/hetutype"
	"github.com/hetu-lang/hetu/namespace"
	"github.com/hetu-lang/hetu/opcodes"
	"github.com/hetu-lang/hetu/values"
)

// newChildNamespace opens a nested block scope (§4.H "createStackFrame"/
// "namespaceDecl") closed over parent.
func newChildNamespace(ec *ExecutionContext, parent *namespace.Namespace) *namespace.Namespace {
	return namespace.New("", "", parent, ec.Options.PrivatePrefix)
}

// registerLeftSlot returns the *Left register an opcode reads its left-hand
// operand from; the right-hand operand is always the freshly-evaluated
// localValue register.
func registerLeftSlot(op opcodes.Opcode) RegisterSlot {
	switch op {
	case opcodes.Add, opcodes.Subtract, opcodes.Multiply, opcodes.Devide,
		opcodes.TruncatingDevide, opcodes.Modulo:
		return RegAdditiveLeft
	case opcodes.Lesser, opcodes.Greater, opcodes.LesserOrEqual, opcodes.GreaterOrEqual:
		return RegRelationLeft
	case opcodes.Equal, opcodes.NotEqual:
		return RegEqualLeft
	case opcodes.LogicalAnd:
		return RegAndLeft
	case opcodes.LogicalOr:
		return RegOrLeft
	case opcodes.IfNull:
		return RegIfNullLeft
	case opcodes.BitwiseOr:
		return RegBitwiseOrLeft
	case opcodes.BitwiseXor:
		return RegBitwiseXorLeft
	case opcodes.BitwiseAnd:
		return RegBitwiseAndLeft
	case opcodes.LeftShift, opcodes.RightShift, opcodes.UnsignedRightShift:
		return RegBitwiseShiftLeft
	default:
		return RegMultiplicativeLeft
	}
}

func (vm *VirtualMachine) evalBinary(ec *ExecutionContext, frame *Frame, instr *opcodes.Instruction) (*values.Value, error) {
	right := frame.Registers[RegLocalValue]

	switch instr.Opcode {
	case opcodes.Negative:
		v, err := values.Negative(right)
		return v, wrapArith(err)
	case opcodes.LogicalNot:
		return values.NewBool(!right.Truthy(ec.Options.Truthy)), nil
	case opcodes.BitwiseNot:
		if !right.IsInt() {
			return nil, NewVMError(ErrTypeError, "bitwiseNot requires int")
		}
		return values.NewInt(^right.Int()), nil
	}

	left := frame.Registers[registerLeftSlot(instr.Opcode)]
	switch instr.Opcode {
	case opcodes.Add:
		v, err := values.Add(left, right)
		return v, wrapArith(err)
	case opcodes.Subtract:
		v, err := values.Subtract(left, right)
		return v, wrapArith(err)
	case opcodes.Multiply:
		v, err := values.Multiply(left, right)
		return v, wrapArith(err)
	case opcodes.Devide:
		v, err := values.Devide(left, right)
		return v, wrapArith(err)
	case opcodes.TruncatingDevide:
		v, err := values.TruncatingDevide(left, right)
		return v, wrapArith(err)
	case opcodes.Modulo:
		v, err := values.Modulo(left, right)
		return v, wrapArith(err)
	case opcodes.Equal:
		return values.NewBool(values.Equal(left, right)), nil
	case opcodes.NotEqual:
		return values.NewBool(!values.Equal(left, right)), nil
	case opcodes.Lesser, opcodes.Greater, opcodes.LesserOrEqual, opcodes.GreaterOrEqual:
		cmp, err := values.Compare(left, right, ec.Options.NullCoercionInCompare)
		if err != nil {
			return nil, wrapArith(err)
		}
		switch instr.Opcode {
		case opcodes.Lesser:
			return values.NewBool(cmp < 0), nil
		case opcodes.Greater:
			return values.NewBool(cmp > 0), nil
		case opcodes.LesserOrEqual:
			return values.NewBool(cmp <= 0), nil
		default:
			return values.NewBool(cmp >= 0), nil
		}
	case opcodes.LogicalAnd:
		if !left.Truthy(ec.Options.Truthy) {
			return left, nil
		}
		return right, nil
	case opcodes.LogicalOr:
		if left.Truthy(ec.Options.Truthy) {
			return left, nil
		}
		return right, nil
	case opcodes.IfNull:
		if left.IsNull() {
			return right, nil
		}
		return left, nil
	case opcodes.BitwiseOr, opcodes.BitwiseXor, opcodes.BitwiseAnd,
		opcodes.LeftShift, opcodes.RightShift, opcodes.UnsignedRightShift:
		if !left.IsInt() || !right.IsInt() {
			return nil, NewVMError(ErrTypeError, "%s requires int operands", instr.Opcode)
		}
		l, r := left.Int(), right.Int()
		switch instr.Opcode {
		case opcodes.BitwiseOr:
			return values.NewInt(l | r), nil
		case opcodes.BitwiseXor:
			return values.NewInt(l ^ r), nil
		case opcodes.BitwiseAnd:
			return values.NewInt(l & r), nil
		case opcodes.LeftShift:
			return values.NewInt(l << uint(r)), nil
		case opcodes.RightShift:
			return values.NewInt(l >> uint(r)), nil
		default:
			return values.NewInt(int64(uint64(l) >> uint(r))), nil
		}
	default:
		return nil, NewVMError(ErrOpcodeNotImplemented, "%s", instr.Opcode)
	}
}

func wrapArith(err error) error {
	if err == nil {
		return nil
	}
	return NewVMError(ErrTypeError, "%v", err)
}

func (vm *VirtualMachine) evalTypeOp(ec *ExecutionContext, frame *Frame, instr *opcodes.Instruction) (*values.Value, error) {
	subject := frame.Registers[RegLocalValue]
	switch instr.Opcode {
	case opcodes.TypeValueOf:
		return values.NewAccessor(values.TypeType, valueKindType(subject)), nil
	case opcodes.TypeIs, opcodes.TypeIsNot:
		target, err := ec.LookupType(instr.Str)
		if err != nil {
			return nil, err
		}
		is := valueKindType(subject).IsA(target)
		if instr.Opcode == opcodes.TypeIsNot {
			is = !is
		}
		return values.NewBool(is), nil
	case opcodes.TypeAs:
		target, err := ec.LookupClass(instr.Str)
		if err != nil {
			return nil, err
		}
		if _, ok := subject.Data.(*class.Instance); !ok {
			return nil, NewVMError(ErrTypeCast, "%s is not a class instance", instr.Str)
		}
		return class.NewCast(subject, target)
	case opcodes.DecltypeOf:
		decl, err := frame.Namespace.Lookup(instr.Str, frame.Namespace.FullName(), true)
		if err != nil {
			return nil, NewVMError(ErrUndefined, "%s", instr.Str)
		}
		if decl.DeclaredType == nil {
			return values.NewAccessor(values.TypeType, hetutype.NewIntrinsic(hetutype.Unknown)), nil
		}
		return values.NewAccessor(values.TypeType, decl.DeclaredType), nil
	default:
		return nil, NewVMError(ErrOpcodeNotImplemented, "%s", instr.Opcode)
	}
}

// valueKindType maps a runtime Value to a best-effort Type object for
// typeof/is checks against primitive and instance values.
func valueKindType(v *values.Value) *hetutype.Type {
	switch v.Type {
	case values.TypeNull:
		return hetutype.NewIntrinsic(hetutype.Null)
	case values.TypeFunction:
		return hetutype.NewIntrinsic(hetutype.FunctionIntrinsic)
	case values.TypeNamespace:
		return hetutype.NewIntrinsic(hetutype.NamespaceIntrinsic)
	case values.TypeInstance:
		if inst, ok := v.Data.(*class.Instance); ok {
			return inst.Class.Type()
		}
	case values.TypeCast:
		if c, ok := v.Data.(*class.Cast); ok {
			return c.Instance.Class.Type()
		}
	}
	return hetutype.NewNominal(v.Type.String(), nil, nil)
}

func (vm *VirtualMachine) memberGet(obj *values.Value, id, from string) (*values.Value, error) {
	if obj == nil {
		return nil, NewVMError(ErrUndefined, "member %s on null", id)
	}
	acc, ok := obj.Accessor()
	if !ok {
		return nil, NewVMError(ErrTypeError, "%s has no member %s", obj.Type, id)
	}
	v, err := acc.MemberGet(id, from, obj)
	if err != nil {
		return nil, NewVMError(ErrUndefined, "%v", err)
	}
	return v, nil
}

func (vm *VirtualMachine) memberSet(obj *values.Value, id string, v *values.Value, from string) error {
	if obj == nil {
		return NewVMError(ErrUndefined, "member %s on null", id)
	}
	acc, ok := obj.Accessor()
	if !ok {
		return NewVMError(ErrTypeError, "%s has no member %s", obj.Type, id)
	}
	if err := acc.MemberSet(id, v, from, obj); err != nil {
		return NewVMError(ErrUndefined, "%v", err)
	}
	return nil
}

func (vm *VirtualMachine) subGet(obj, key *values.Value) (*values.Value, error) {
	if obj.IsList() {
		idx := int(key.Int())
		items := *obj.ListItems()
		if idx < 0 || idx >= len(items) {
			return nil, NewVMError(ErrArgument, "list index %d out of range", idx)
		}
		return items[idx], nil
	}
	if obj.IsMap() {
		v, ok := obj.MapData()[key.Str()]
		if !ok {
			return values.NewNull(), nil
		}
		return v, nil
	}
	acc, ok := obj.Accessor()
	if !ok {
		return nil, NewVMError(ErrTypeError, "%s is not subscriptable", obj.Type)
	}
	v, err := acc.SubGet(key)
	if err != nil {
		return nil, NewVMError(ErrUndefined, "%v", err)
	}
	return v, nil
}

func (vm *VirtualMachine) subSet(obj, key, v *values.Value) error {
	if obj.IsList() {
		idx := int(key.Int())
		items := obj.ListItems()
		if idx < 0 || idx >= len(*items) {
			return NewVMError(ErrArgument, "list index %d out of range", idx)
		}
		(*items)[idx] = v
		return nil
	}
	if obj.IsMap() {
		obj.MapData()[key.Str()] = v
		return nil
	}
	acc, ok := obj.Accessor()
	if !ok {
		return NewVMError(ErrTypeError, "%s is not subscriptable", obj.Type)
	}
	if err := acc.SubSet(key, v); err != nil {
		return NewVMError(ErrUndefined, "%v", err)
	}
	return nil
}

// evalDefault runs the short instruction sequence at ip (a parameter's
// default-value expression, §4.F step 3) inside ns, stopping at the first
// EndOfStmt, and returns whatever ended up in localValue.
func (vm *VirtualMachine) evalDefault(ec *ExecutionContext, ns *namespace.Namespace, ip int) (*values.Value, error) {
	frame := NewFrame(nil, ns, nil)
	frame.IP = ip
	instrs := ec.Unit.Instructions
	for frame.IP < len(instrs) {
		instr := instrs[frame.IP]
		if instr.Opcode == opcodes.EndOfStmt {
			return frame.Registers[RegLocalValue], nil
		}
		advance, _, err := vm.step(ec, frame, ec.Unit, instr)
		if err != nil {
			return nil, err
		}
		if advance {
			frame.IP++
		}
	}
	return frame.Registers[RegLocalValue], nil
}
