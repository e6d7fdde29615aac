// Package vm implements the stack-register bytecode interpreter (§4.H,
// §4.I, §4.K): per-call stack frames with a fixed semantic register bank,
// the opcode dispatch loop, and the async suspend/resume bridge.
package vm

import (
	"github.com/hetu-lang/hetu/bytecode"
	"github.com/hetu-lang/hetu/namespace"
	"github.com/hetu-lang/hetu/opcodes"
	"github.com/hetu-lang/hetu/values"
)

// DebugLevel controls how much runtime diagnostic data Execute collects.
type DebugLevel int

const (
	DebugLevelNone DebugLevel = iota
	DebugLevelBasic
	DebugLevelDetailed
)

// CodeUnit is one compiled instruction stream plus the constant pool it
// indexes into (§4.A, §4.I).
type CodeUnit struct {
	Instructions []*opcodes.Instruction
	Pool         *bytecode.ConstantPool
}

// VirtualMachine is the reusable interpreter; ExecutionContext carries the
// per-run state (namespaces, classes, deadline) so one VirtualMachine can
// drive multiple independent runs concurrently.
type VirtualMachine struct {
	Version    bytecode.Version
	DebugLevel DebugLevel
}

func NewVirtualMachine(version bytecode.Version) *VirtualMachine {
	return &VirtualMachine{Version: version}
}

// Execute runs unit's instruction stream to completion inside ns, returning
// whatever value ended up in the localValue register when the top-level
// EndOfCode/EndOfModule instruction was reached (§9 "initializer is
// statement value" policy).
func (vm *VirtualMachine) Execute(ec *ExecutionContext, ns *namespace.Namespace, unit CodeUnit) (*values.Value, error) {
	ec.Unit = unit
	frame := NewFrame(nil, ns, nil)
	return vm.run(ec, frame, unit)
}

func endsExecution(op opcodes.Opcode) bool {
	switch op {
	case opcodes.EndOfFile, opcodes.EndOfCodeBlock, opcodes.EndOfExec,
		opcodes.EndOfFunc, opcodes.EndOfModule, opcodes.EndOfCode:
		return true
	}
	return false
}

// run is the opcode dispatch loop (§4.H). It mutates frame in place and
// returns once an end-of-execution opcode is reached or an error escapes.
func (vm *VirtualMachine) run(ec *ExecutionContext, frame *Frame, unit CodeUnit) (*values.Value, error) {
	ec.Stack.PushFrame(frame)
	defer ec.Stack.PopFrame()

	instrs := unit.Instructions

	for frame.IP < len(instrs) {
		if err := ec.CheckTimeout(); err != nil {
			return nil, err
		}

		instr := instrs[frame.IP]
		ec.profile.observe(frame.IP, instr.Opcode)

		if endsExecution(instr.Opcode) {
			return frame.Registers[RegLocalValue], nil
		}

		advance, result, err := vm.step(ec, frame, unit, instr)
		if err != nil {
			return nil, decorate(err, frame, instr)
		}
		if result != nil {
			return result, nil
		}
		if advance {
			frame.IP++
		}
	}
	return frame.Registers[RegLocalValue], nil
}

// step executes one instruction. advance tells run whether to increment
// IP (false when the instruction already repositioned it, e.g. a jump);
// a non-nil result ends the frame's execution early (a return statement).
func (vm *VirtualMachine) step(ec *ExecutionContext, frame *Frame, unit CodeUnit, instr *opcodes.Instruction) (advance bool, result *values.Value, err error) {
	switch instr.Opcode {

	// --- Meta ---
	case opcodes.LineInfo:
		frame.Line = int(instr.Operand1)
		return true, nil, nil
	case opcodes.File:
		frame.File = instr.Str
		return true, nil, nil
	case opcodes.EndOfStmt:
		return true, nil, nil

	// --- Register traffic ---
	case opcodes.Local:
		v, err := vm.loadLocal(ec, frame, unit.Pool, instr)
		if err != nil {
			return false, nil, err
		}
		frame.Registers[RegLocalValue] = v
		return true, nil, nil

	case opcodes.Register:
		switch instr.Operand1 {
		case ArgPushPositional:
			frame.CallArgs = append(frame.CallArgs, frame.Registers[RegLocalValue])
		case ArgPushNamed:
			if frame.CallNamed == nil {
				frame.CallNamed = make(map[string]*values.Value)
			}
			frame.CallNamed[instr.Str] = frame.Registers[RegLocalValue]
		default:
			slot := RegisterSlot(instr.Operand1)
			if slot < 0 || slot >= numRegisters {
				return false, nil, NewVMError(ErrBytecode, "register slot %d out of range", instr.Operand1)
			}
			frame.Registers[slot] = frame.Registers[RegLocalValue]
		}
		return true, nil, nil

	case opcodes.CreateStackFrame:
		frame.pushNamespace(newChildNamespace(ec, frame.Namespace))
		return true, nil, nil
	case opcodes.RetractStackFrame:
		frame.popNamespace()
		return true, nil, nil

	// --- Control flow ---
	case opcodes.Skip:
		frame.IP = int(instr.Operand1)
		return false, nil, nil
	case opcodes.LoopPoint:
		frame.pushLoop(LoopRecord{StartIP: frame.IP, ContinueIP: int(instr.Operand1), BreakIP: int(instr.Operand2), Namespace: frame.Namespace})
		return true, nil, nil
	case opcodes.BreakLoop:
		rec, ok := frame.currentLoop()
		if !ok {
			return false, nil, NewVMError(ErrBytecode, "break outside loop")
		}
		frame.popLoop()
		frame.Namespace = rec.Namespace
		frame.IP = rec.BreakIP
		return false, nil, nil
	case opcodes.ContinueLoop:
		rec, ok := frame.currentLoop()
		if !ok {
			return false, nil, NewVMError(ErrBytecode, "continue outside loop")
		}
		frame.Namespace = rec.Namespace
		frame.IP = rec.ContinueIP
		return false, nil, nil
	case opcodes.Anchor:
		frame.pushAnchor(int(instr.Operand1))
		return true, nil, nil
	case opcodes.ClearAnchor:
		frame.popAnchor()
		return true, nil, nil
	case opcodes.Goto:
		ip, ok := frame.popAnchor()
		if !ok {
			ip = int(instr.Operand1)
		}
		frame.IP = ip
		return false, nil, nil
	case opcodes.IfStmt, opcodes.WhileStmt:
		if !frame.Registers[RegLocalValue].Truthy(ec.Options.Truthy) {
			frame.IP = int(instr.Operand1)
			return false, nil, nil
		}
		return true, nil, nil
	case opcodes.DoStmt:
		if frame.Registers[RegLocalValue].Truthy(ec.Options.Truthy) {
			frame.IP = int(instr.Operand1)
			return false, nil, nil
		}
		return true, nil, nil
	case opcodes.SwitchStmt:
		return vm.execSwitchStmt(frame, instr)

	// --- Logic / arithmetic, bitwise, type ops, member access ---
	case opcodes.Equal, opcodes.NotEqual, opcodes.Lesser, opcodes.Greater,
		opcodes.LesserOrEqual, opcodes.GreaterOrEqual, opcodes.Add, opcodes.Subtract,
		opcodes.Multiply, opcodes.Devide, opcodes.TruncatingDevide, opcodes.Modulo,
		opcodes.Negative, opcodes.LogicalNot, opcodes.BitwiseNot, opcodes.LogicalOr,
		opcodes.LogicalAnd, opcodes.IfNull, opcodes.BitwiseOr, opcodes.BitwiseXor,
		opcodes.BitwiseAnd, opcodes.LeftShift, opcodes.RightShift, opcodes.UnsignedRightShift:
		v, err := vm.evalBinary(ec, frame, instr)
		if err != nil {
			return false, nil, err
		}
		frame.Registers[RegLocalValue] = v
		return true, nil, nil

	case opcodes.TypeAs, opcodes.TypeIs, opcodes.TypeIsNot, opcodes.TypeValueOf, opcodes.DecltypeOf:
		v, err := vm.evalTypeOp(ec, frame, instr)
		if err != nil {
			return false, nil, err
		}
		frame.Registers[RegLocalValue] = v
		return true, nil, nil

	case opcodes.MemberGet:
		obj := frame.Registers[RegPostfixObject]
		v, err := vm.memberGet(obj, instr.Str, frame.Namespace.FullName())
		if err != nil {
			return false, nil, err
		}
		frame.Registers[RegLocalValue] = v
		return true, nil, nil
	case opcodes.MemberSet:
		obj := frame.Registers[RegPostfixObject]
		if err := vm.memberSet(obj, instr.Str, frame.Registers[RegAssignRight], frame.Namespace.FullName()); err != nil {
			return false, nil, err
		}
		return true, nil, nil
	case opcodes.SubGet:
		obj := frame.Registers[RegPostfixObject]
		v, err := vm.subGet(obj, frame.Registers[RegPostfixKey])
		if err != nil {
			return false, nil, err
		}
		frame.Registers[RegLocalValue] = v
		return true, nil, nil
	case opcodes.SubSet:
		obj := frame.Registers[RegPostfixObject]
		if err := vm.subSet(obj, frame.Registers[RegPostfixKey], frame.Registers[RegAssignRight]); err != nil {
			return false, nil, err
		}
		return true, nil, nil

	// --- Declarations ---
	case opcodes.VarDecl, opcodes.ConstDecl:
		return vm.execVarDecl(ec, frame, instr)
	case opcodes.FuncDecl:
		return vm.execFuncDecl(ec, frame, instr)
	case opcodes.ClassDecl, opcodes.ClassDeclEnd, opcodes.ExternalEnumDecl:
		return vm.execClassDecl(ec, frame, instr)
	case opcodes.StructDecl:
		return vm.execStructDecl(ec, frame, instr)
	case opcodes.DestructuringDecl:
		return vm.execDestructuringDecl(frame, instr)
	case opcodes.NamespaceDecl:
		frame.pushNamespace(newChildNamespace(ec, frame.Namespace))
		return true, nil, nil
	case opcodes.NamespaceDeclEnd:
		frame.popNamespace()
		return true, nil, nil
	case opcodes.ImportExportDecl:
		return vm.execImportExport(frame, instr)
	case opcodes.TypeAliasDecl:
		t, err := ec.LookupType(instr.Str)
		if err != nil {
			return false, nil, err
		}
		ec.RegisterType(instr.Str, t)
		return true, nil, nil

	// --- Assertions & errors ---
	case opcodes.Assertion:
		if !frame.Registers[RegLocalValue].Truthy(ec.Options.Truthy) {
			return false, nil, NewVMError(ErrTypeError, "assertion failed: %s", instr.Str)
		}
		return true, nil, nil
	case opcodes.Throws:
		return false, nil, &ThrownError{Value: frame.Registers[RegLocalValue]}
	case opcodes.Delete:
		frame.Namespace.Delete(instr.Str)
		return true, nil, nil

	// --- Assignment ---
	case opcodes.Assign:
		return vm.execAssign(ec, frame, instr)

	// --- Call ---
	case opcodes.Call:
		v, err := vm.execCall(ec, frame, instr)
		if err != nil {
			return false, nil, err
		}
		frame.Registers[RegLocalValue] = v
		frame.CallArgs = nil
		frame.CallNamed = nil
		return true, nil, nil

	// --- Async ---
	case opcodes.AwaitedValue:
		v, err := await(frame.Registers[RegLocalValue])
		if err != nil {
			return false, nil, err
		}
		frame.Registers[RegLocalValue] = v
		return true, nil, nil

	default:
		return false, nil, NewVMError(ErrOpcodeNotImplemented, "%s", instr.Opcode)
	}
}

// ThrownError carries a script-level thrown value back through Go's error
// path (§7 "thrown values"); a host-level try/catch unwraps it to recover
// the original Value.
type ThrownError struct {
	Value *values.Value
}

func (e *ThrownError) Error() string {
	if e.Value == nil {
		return "thrown: null"
	}
	return "thrown: " + e.Value.String()
}
