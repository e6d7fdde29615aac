package bytecode

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Writer assembles a wire-format buffer. Tests use it to produce fixtures
// without depending on a real compiler front-end, which is out of scope
// here, and `hetu compile` uses it to re-emit a loaded module.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

func (w *Writer) WriteByte(b byte) { w.buf.WriteByte(b) }

func (w *Writer) WriteBool(b bool) {
	if b {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *Writer) WriteUint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteInt64(v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	w.buf.Write(b[:])
}

func (w *Writer) WriteFloat64(v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	w.buf.Write(b[:])
}

func (w *Writer) WriteUtf8String(s string) {
	w.WriteUint16(uint16(len(s)))
	w.buf.WriteString(s)
}

func (w *Writer) WriteStringList(items []string) {
	w.buf.WriteByte(byte(len(items)))
	for _, s := range items {
		w.WriteUtf8String(s)
	}
}

func (w *Writer) WriteVersion(v Version) {
	w.buf.WriteByte(v.Major)
	w.buf.WriteByte(v.Minor)
	w.WriteUint16(v.Patch)
	w.WriteStringList(v.Pre)
	w.WriteStringList(v.Build)
}

func (w *Writer) WriteHeader(h Header) {
	w.WriteUint32(Magic)
	w.WriteVersion(h.CompilerVersion)
	w.WriteBool(h.HasBytecode)
	if h.HasBytecode {
		w.WriteVersion(h.BytecodeVersion)
	}
	w.WriteUtf8String(h.CompiledAtUtc)
	w.WriteUtf8String(h.CurrentFilename)
	w.buf.WriteByte(byte(h.SourceType))
}

func (w *Writer) WriteConstantPools(pool ConstantPool) {
	w.WriteUint16(uint16(len(pool.Ints)))
	for _, v := range pool.Ints {
		w.WriteInt64(v)
	}
	w.WriteUint16(uint16(len(pool.Floats)))
	for _, v := range pool.Floats {
		w.WriteFloat64(v)
	}
	w.WriteUint16(uint16(len(pool.Strings)))
	for _, v := range pool.Strings {
		w.WriteUtf8String(v)
	}
}
