package bytecode

import "github.com/hetu-lang/hetu/opcodes"

// WriteInstructions appends the ip-ordered instruction stream to w: a u32
// count, then for each instruction its opcode byte, two little-endian int64
// operands, a length-prefixed Str, and a line/column pair (§6 "instructions
// …"). This is the wire-level counterpart of the in-memory
// []*opcodes.Instruction the VM executes directly; nothing in this module
// compiles source text down to it (see Writer's doc comment), but a host
// that already holds an assembled vm.CodeUnit can round-trip it through
// this pair to produce and reload real `.hetu` files.
func (w *Writer) WriteInstructions(instrs []*opcodes.Instruction) {
	w.WriteUint32(uint32(len(instrs)))
	for _, instr := range instrs {
		w.WriteByte(byte(instr.Opcode))
		w.WriteInt64(instr.Operand1)
		w.WriteInt64(instr.Operand2)
		w.WriteUtf8String(instr.Str)
		w.WriteUint16(uint16(instr.Line))
		w.WriteUint16(uint16(instr.Column))
	}
}

// ReadInstructions reads back a stream written by WriteInstructions.
func (r *Reader) ReadInstructions() ([]*opcodes.Instruction, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	out := make([]*opcodes.Instruction, n)
	for i := range out {
		op, err := r.Read()
		if err != nil {
			return nil, err
		}
		op1, err := r.ReadInt64()
		if err != nil {
			return nil, err
		}
		op2, err := r.ReadInt64()
		if err != nil {
			return nil, err
		}
		str, err := r.ReadUtf8String()
		if err != nil {
			return nil, err
		}
		line, err := r.ReadUint16()
		if err != nil {
			return nil, err
		}
		col, err := r.ReadUint16()
		if err != nil {
			return nil, err
		}
		out[i] = &opcodes.Instruction{
			Opcode:   opcodes.Opcode(op),
			Operand1: op1,
			Operand2: op2,
			Str:      str,
			Line:     int(line),
			Column:   int(col),
		}
	}
	return out, nil
}
