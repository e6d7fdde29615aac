// Package opcodes defines the bytecode instruction set executed by the VM,
// grouped the way the compiler emits them (§4.H): meta, register traffic,
// control flow, logic/arith, bitwise, type ops, member access, declarations,
// assertions, assignment, call.
package opcodes

import "fmt"

// Opcode identifies a single VM instruction.
type Opcode byte

const (
	// Meta (0-19)
	LineInfo Opcode = iota
	File
	EndOfFile
	EndOfCodeBlock
	EndOfStmt
	EndOfExec
	EndOfFunc
	EndOfModule
	EndOfCode

	// Register traffic (20-39)
	Local Opcode = iota + 11
	Register
	CreateStackFrame
	RetractStackFrame

	// Control flow (40-69)
	Skip Opcode = iota + 27
	LoopPoint
	BreakLoop
	ContinueLoop
	Anchor
	ClearAnchor
	Goto
	IfStmt
	WhileStmt
	DoStmt
	SwitchStmt

	// Logic / arithmetic (70-99)
	Equal Opcode = iota + 46
	NotEqual
	Lesser
	Greater
	LesserOrEqual
	GreaterOrEqual
	Add
	Subtract
	Multiply
	Devide
	TruncatingDevide
	Modulo
	Negative
	LogicalNot
	BitwiseNot
	LogicalOr
	LogicalAnd
	IfNull

	// Bitwise (100-119)
	BitwiseOr Opcode = iota + 58
	BitwiseXor
	BitwiseAnd
	LeftShift
	RightShift
	UnsignedRightShift

	// Type ops (120-139)
	TypeAs Opcode = iota + 72
	TypeIs
	TypeIsNot
	TypeValueOf
	DecltypeOf

	// Member access (140-159)
	MemberGet Opcode = iota + 87
	MemberSet
	SubGet
	SubSet

	// Declarations (160-189)
	ImportExportDecl Opcode = iota + 103
	TypeAliasDecl
	FuncDecl
	ClassDecl
	ClassDeclEnd
	ExternalEnumDecl
	StructDecl
	VarDecl
	DestructuringDecl
	ConstDecl
	NamespaceDecl
	NamespaceDeclEnd

	// Assertions & errors (190-199)
	Assertion Opcode = iota + 121
	Throws
	Delete

	// Assignment (200-209)
	Assign Opcode = iota + 128

	// Call (210-219)
	Call Opcode = iota + 137

	// Async (220-229)
	AwaitedValue Opcode = iota + 146
)

var opcodeNames = map[Opcode]string{
	LineInfo:           "lineInfo",
	File:               "file",
	EndOfFile:          "endOfFile",
	EndOfCodeBlock:     "endOfCodeBlock",
	EndOfStmt:          "endOfStmt",
	EndOfExec:          "endOfExec",
	EndOfFunc:          "endOfFunc",
	EndOfModule:        "endOfModule",
	EndOfCode:          "endOfCode",
	Local:              "local",
	Register:           "register",
	CreateStackFrame:   "createStackFrame",
	RetractStackFrame:  "retractStackFrame",
	Skip:               "skip",
	LoopPoint:          "loopPoint",
	BreakLoop:          "breakLoop",
	ContinueLoop:       "continueLoop",
	Anchor:             "anchor",
	ClearAnchor:        "clearAnchor",
	Goto:               "goto",
	IfStmt:             "ifStmt",
	WhileStmt:          "whileStmt",
	DoStmt:             "doStmt",
	SwitchStmt:         "switchStmt",
	Equal:              "equal",
	NotEqual:           "notEqual",
	Lesser:             "lesser",
	Greater:            "greater",
	LesserOrEqual:      "lesserOrEqual",
	GreaterOrEqual:     "greaterOrEqual",
	Add:                "add",
	Subtract:           "subtract",
	Multiply:           "multiply",
	Devide:             "devide",
	TruncatingDevide:   "truncatingDevide",
	Modulo:             "modulo",
	Negative:           "negative",
	LogicalNot:         "logicalNot",
	BitwiseNot:         "bitwiseNot",
	LogicalOr:          "logicalOr",
	LogicalAnd:         "logicalAnd",
	IfNull:             "ifNull",
	BitwiseOr:          "bitwiseOr",
	BitwiseXor:         "bitwiseXor",
	BitwiseAnd:         "bitwiseAnd",
	LeftShift:          "leftShift",
	RightShift:         "rightShift",
	UnsignedRightShift: "unsignedRightShift",
	TypeAs:             "typeAs",
	TypeIs:             "typeIs",
	TypeIsNot:          "typeIsNot",
	TypeValueOf:        "typeValueOf",
	DecltypeOf:         "decltypeOf",
	MemberGet:          "memberGet",
	MemberSet:          "memberSet",
	SubGet:             "subGet",
	SubSet:             "subSet",
	ImportExportDecl:   "importExportDecl",
	TypeAliasDecl:      "typeAliasDecl",
	FuncDecl:           "funcDecl",
	ClassDecl:          "classDecl",
	ClassDeclEnd:       "classDeclEnd",
	ExternalEnumDecl:   "externalEnumDecl",
	StructDecl:         "structDecl",
	VarDecl:            "varDecl",
	DestructuringDecl:  "destructuringDecl",
	ConstDecl:          "constDecl",
	NamespaceDecl:      "namespaceDecl",
	NamespaceDeclEnd:   "namespaceDeclEnd",
	Assertion:          "assertion",
	Throws:             "throws",
	Delete:             "delete",
	Assign:             "assign",
	Call:               "call",
	AwaitedValue:       "awaitedValue",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("unknownOpcode(%d)", byte(op))
}

// LiteralKind selects the payload shape of a Local instruction (§4.I).
type LiteralKind byte

const (
	LiteralNull LiteralKind = iota
	LiteralBool
	LiteralConstInt
	LiteralConstFloat
	LiteralConstString
	LiteralInlineString
	LiteralInterpolatedString
	LiteralIdentifier
	LiteralGroup
	LiteralList
	LiteralStruct
	LiteralFunction
	LiteralType
)

func (k LiteralKind) String() string {
	names := [...]string{
		"null", "bool", "constInt", "constFloat", "constString",
		"inlineString", "interpolatedString", "identifier", "group",
		"list", "struct", "function", "type",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return fmt.Sprintf("unknownLiteralKind(%d)", byte(k))
}

// Instruction is one decoded bytecode instruction. Operand meaning depends on
// Opcode; register slot constants live in package vm (they are VM-private
// semantic addresses, not part of the wire format's operand encoding).
type Instruction struct {
	Opcode Opcode
	// Operand1/Operand2 carry opcode-specific payload (jump offsets, pool
	// indices, flag bytes, arity counts). Kept as plain ints rather than a
	// typed union: the compiler front-end (out of scope here) is the only
	// producer, and different opcodes use the two fields for unrelated
	// purposes.
	Operand1 int64
	Operand2 int64
	Str      string // identifiers, inline strings, path literals
	Line     int
	Column   int
}

func (i *Instruction) String() string {
	return fmt.Sprintf("%s(op1=%d, op2=%d, str=%q) @%d:%d", i.Opcode, i.Operand1, i.Operand2, i.Str, i.Line, i.Column)
}

// CallFlags decodes the flag byte carried by a Call instruction (§4.H).
type CallFlags byte

const (
	CallNullable CallFlags = 1 << iota
	CallHasNewOperator
	CallHasCalleeID
)

func (f CallFlags) Has(flag CallFlags) bool { return f&flag != 0 }
