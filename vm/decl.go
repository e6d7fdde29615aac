package vm

import (
	"github.com/hetu-lang/hetu/class"
	"github.com/hetu-lang/hetu/function"
	"github.com/hetu-lang/hetu/namespace"
	"github.com/hetu-lang/hetu/object"
	"github.com/hetu-lang/hetu/opcodes"
	"github.com/hetu-lang/hetu/values"
)

// classDeclFlags decode ClassDecl's Operand1 flag byte.
const (
	classFlagAbstract int64 = 1 << iota
	classFlagExternal
	classFlagEnum
)

// execVarDecl implements VarDecl/ConstDecl (§4.H "Declarations"): defines
// instr.Str in the innermost scope with the value currently sitting in
// localValue, routing into the class under construction's field table when
// a classDecl is open (§4.E "Class decl sequence").
func (vm *VirtualMachine) execVarDecl(ec *ExecutionContext, frame *Frame, instr *opcodes.Instruction) (bool, *values.Value, error) {
	v := frame.Registers[RegLocalValue]
	if v == nil {
		v = values.NewNull()
	}
	if len(frame.ClassStack) > 0 {
		c := frame.ClassStack[len(frame.ClassStack)-1]
		isStatic := instr.Operand1 != 0
		if err := c.DeclareField(instr.Str, v, isStatic); err != nil {
			return false, nil, NewVMError(ErrBytecode, "%v", err)
		}
		return true, nil, nil
	}
	decl := &namespace.Declaration{
		ID:        instr.Str,
		Kind:      namespace.DeclVariable,
		Value:     v,
		IsMutable: instr.Opcode != opcodes.ConstDecl,
	}
	if instr.Opcode == opcodes.ConstDecl {
		decl.Kind = namespace.DeclConstant
	}
	if err := frame.Namespace.Define(instr.Str, decl, false); err != nil {
		return false, nil, NewVMError(ErrBytecode, "%v", err)
	}
	return true, nil, nil
}

// execFuncDecl implements FuncDecl: assembles a script-mode function.Function
// from the pending parameter list built up in frame.CallArgs/CallNamed
// (§4.F "Parameter"), wires the shared scriptRunner and async spawner, and
// defines it under instr.Str — or, inside an open class decl, registers it
// as a method (§4.E). The function's body is emitted inline immediately
// after this instruction; Operand2, when positive, names the ip execution
// resumes at to skip over that inline body (a real compiler always emits
// this jump since straight-line flow must not fall into a function's own
// body at declaration time).
func (vm *VirtualMachine) execFuncDecl(ec *ExecutionContext, frame *Frame, instr *opcodes.Instruction) (bool, *values.Value, error) {
	params := make([]function.Parameter, 0, len(frame.CallArgs))
	for _, pv := range frame.CallArgs {
		p, ok := pv.Data.(*function.Parameter)
		if !ok {
			return false, nil, NewVMError(ErrBytecode, "funcDecl: malformed parameter descriptor")
		}
		params = append(params, *p)
	}

	fn := &function.Function{
		InternalName: instr.Str,
		PublicID:     instr.Str,
		Closure:      frame.Namespace,
		Params:       params,
		DefinitionIP: frame.IP + 1,
		Line:         frame.Line,
		IsAsync:      instr.Operand1&1 != 0,
		IsStatic:     instr.Operand1&2 != 0,
		IsAbstract:   instr.Operand1&4 != 0,
		Runner:       vm.runnerFor(ec),
	}
	if fn.IsAsync {
		fn.AsyncSpawner = AsyncSpawner
	}

	frame.CallArgs = nil
	frame.CallNamed = nil

	if len(frame.ClassStack) > 0 {
		c := frame.ClassStack[len(frame.ClassStack)-1]
		if err := c.DeclareMethod(instr.Str, fn); err != nil {
			return false, nil, NewVMError(ErrBytecode, "%v", err)
		}
		if instr.Operand2 > 0 {
			frame.IP = int(instr.Operand2)
			return false, nil, nil
		}
		return true, nil, nil
	}

	if err := frame.Namespace.Define(instr.Str, &namespace.Declaration{ID: instr.Str, Kind: namespace.DeclFunction, Value: fn.AsValue()}, true); err != nil {
		return false, nil, NewVMError(ErrBytecode, "%v", err)
	}
	if instr.Operand2 > 0 {
		frame.IP = int(instr.Operand2)
		return false, nil, nil
	}
	return true, nil, nil
}

// runnerFor returns ec's shared scriptRunner, lazily building one the first
// time a script function is declared in this context.
func (vm *VirtualMachine) runnerFor(ec *ExecutionContext) function.ScriptRunner {
	if ec.runner == nil {
		ec.runner = newScriptRunner(vm, ec)
	}
	return ec.runner
}

// execClassDecl implements ClassDecl/ClassDeclEnd/ExternalEnumDecl (§4.E).
// ClassDecl opens a class body: instr.Str is the class id, Operand1 carries
// the flag bits above, and Operand2 is a pool.Strings index naming the
// superclass (-1 for none). ClassDeclEnd closes the innermost open class,
// synthesizing its default constructor if none was declared.
func (vm *VirtualMachine) execClassDecl(ec *ExecutionContext, frame *Frame, instr *opcodes.Instruction) (bool, *values.Value, error) {
	switch instr.Opcode {
	case opcodes.ClassDecl:
		var super *class.Class
		if instr.Operand2 >= 0 {
			pool := ec.Unit.Pool
			if int(instr.Operand2) >= len(pool.Strings) {
				return false, nil, NewVMError(ErrBytecode, "superclass pool index out of range")
			}
			superName := pool.Strings[instr.Operand2]
			s, err := ec.LookupClass(superName)
			if err != nil {
				return false, nil, err
			}
			super = s
		}
		c := class.New(instr.Str, super, frame.Namespace, ec.Options.PrivatePrefix)
		c.IsAbstract = instr.Operand1&classFlagAbstract != 0
		c.IsExternal = instr.Operand1&classFlagExternal != 0
		c.IsEnum = instr.Operand1&classFlagEnum != 0
		frame.ClassStack = append(frame.ClassStack, c)
		frame.pushNamespace(c.Namespace)
		return true, nil, nil

	case opcodes.ClassDeclEnd:
		if len(frame.ClassStack) == 0 {
			return false, nil, NewVMError(ErrBytecode, "classDeclEnd without open class")
		}
		c := frame.ClassStack[len(frame.ClassStack)-1]
		frame.ClassStack = frame.ClassStack[:len(frame.ClassStack)-1]
		c.FinalizeDeclaration()
		frame.popNamespace()
		ec.RegisterClass(c)
		ec.RegisterType(c.ID, c.Type())
		if err := frame.Namespace.Define(c.ID, &namespace.Declaration{ID: c.ID, Kind: namespace.DeclConstant, Value: values.NewAccessor(values.TypeType, c.Type())}, true); err != nil {
			return false, nil, NewVMError(ErrBytecode, "%v", err)
		}
		return true, nil, nil

	case opcodes.ExternalEnumDecl:
		c := class.New(instr.Str, nil, frame.Namespace, ec.Options.PrivatePrefix)
		c.IsExternal = true
		c.IsEnum = true
		c.FinalizeDeclaration()
		ec.RegisterClass(c)
		ec.RegisterType(c.ID, c.Type())
		return true, nil, nil
	}
	return false, nil, NewVMError(ErrOpcodeNotImplemented, "%s", instr.Opcode)
}

// execStructDecl implements StructDecl (§3 "Struct"): builds a structural
// object directly from the keyed fields accumulated in frame.CallNamed
// (positional values in frame.CallArgs are discarded), then defines it
// under instr.Str.
func (vm *VirtualMachine) execStructDecl(ec *ExecutionContext, frame *Frame, instr *opcodes.Instruction) (bool, *values.Value, error) {
	s := object.New(ec.Options.PrivatePrefix, "__")
	for key, v := range frame.CallNamed {
		if err := s.MemberSet(key, v, frame.Namespace.FullName(), nil); err != nil {
			return false, nil, NewVMError(ErrBytecode, "%v", err)
		}
	}
	frame.CallArgs = nil
	frame.CallNamed = nil

	sv := s.AsValue()
	if instr.Str == "" {
		frame.Registers[RegLocalValue] = sv
		return true, nil, nil
	}
	if err := frame.Namespace.Define(instr.Str, &namespace.Declaration{ID: instr.Str, Kind: namespace.DeclVariable, Value: sv, IsMutable: true}, false); err != nil {
		return false, nil, NewVMError(ErrBytecode, "%v", err)
	}
	return true, nil, nil
}

// execImportExport implements ImportExportDecl (§4.J "Modules"). Operand1==1
// records an export declaration (instr.Str the exported id); otherwise it
// records an unresolved import (instr.Str the module path, Operand2==1
// marking it exported too) for the host to settle via module.Cache's
// ResolveImports once compilation of the importing module finishes — the
// opcode only records intent, since resolution is depth-first across
// modules and the dispatch loop sees one module at a time (ec.Unit).
func (vm *VirtualMachine) execImportExport(frame *Frame, instr *opcodes.Instruction) (bool, *values.Value, error) {
	if instr.Operand1 == 1 {
		frame.Namespace.DeclareExport(instr.Str)
		return true, nil, nil
	}
	frame.Namespace.DeclareImport(&namespace.UnresolvedImport{
		FromPath:   instr.Str,
		IsExported: instr.Operand2 == 1,
	})
	return true, nil, nil
}
