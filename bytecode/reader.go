// Package bytecode implements the cursor reader over the compiler's wire
// format (§4.A, §6 "Bytecode format"): a versioned header, an instruction
// stream, and per-module constant pools for ints, floats, and strings.
package bytecode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrOutOfRange is returned by any read past the end of the buffer; the VM
// wraps it as the *bytecode* error kind (§7).
var ErrOutOfRange = errors.New("bytecode: read past end of buffer")

// Magic is the signature every compiled module must start with.
const Magic uint32 = 0x48455455 // "HETU"

// Version is a compiler version tuple (§4.A): major.minor.patch plus
// optional pre-release/build chunk lists.
type Version struct {
	Major byte
	Minor byte
	Patch uint16
	Pre   []string
	Build []string
}

func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	for _, p := range v.Pre {
		s += "-" + p
	}
	for _, b := range v.Build {
		s += "+" + b
	}
	return s
}

// Compatible implements the rule from §4.G: major>0 requires exact major
// equality; major==0 requires exact equality of major, minor and patch.
// Pre-release and build identifiers are not compared.
func (v Version) Compatible(other Version) bool {
	if v.Major == 0 || other.Major == 0 {
		return v.Major == other.Major && v.Minor == other.Minor && v.Patch == other.Patch
	}
	return v.Major == other.Major
}

// ConstantPool holds a module's constant tables, addressed by u16 index.
type ConstantPool struct {
	Ints    []int64
	Floats  []float64
	Strings []string
}

// Reader is a cursor over a byte buffer (§4.A). It never panics: every
// primitive read checks bounds and returns ErrOutOfRange.
type Reader struct {
	buf  []byte
	ip   int
	pool *ConstantPool
}

// NewReader wraps buf with the given constant pool (may be nil if the
// caller only needs primitive reads, e.g. while parsing the header before
// the pool sections have been read).
func NewReader(buf []byte, pool *ConstantPool) *Reader {
	if pool == nil {
		pool = &ConstantPool{}
	}
	return &Reader{buf: buf, pool: pool}
}

// IP returns the current cursor position.
func (r *Reader) IP() int { return r.ip }

// SetIP repositions the cursor (used by the VM's goto/anchor handling and by
// resume-from-suspension).
func (r *Reader) SetIP(ip int) { r.ip = ip }

// Len reports the total buffer length.
func (r *Reader) Len() int { return len(r.buf) }

// AtEnd reports whether the cursor has consumed the whole buffer.
func (r *Reader) AtEnd() bool { return r.ip >= len(r.buf) }

// Pool exposes the reader's constant pool (populated by ReadConstantPools).
func (r *Reader) Pool() *ConstantPool { return r.pool }

func (r *Reader) need(n int) error {
	if r.ip+n > len(r.buf) {
		return ErrOutOfRange
	}
	return nil
}

// Read returns the next byte.
func (r *Reader) Read() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.buf[r.ip]
	r.ip++
	return b, nil
}

// ReadBool reads a single-byte boolean.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.Read()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// ReadInt16 reads a little-endian signed 16-bit integer.
func (r *Reader) ReadInt16() (int16, error) {
	u, err := r.ReadUint16()
	return int16(u), err
}

// ReadUint16 reads a little-endian unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.ip:])
	r.ip += 2
	return v, nil
}

// ReadUint32 reads a little-endian unsigned 32-bit integer (used for the
// magic signature and the instruction count).
func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.ip:])
	r.ip += 4
	return v, nil
}

// ReadInt64 reads a little-endian signed 64-bit integer.
func (r *Reader) ReadInt64() (int64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := int64(binary.LittleEndian.Uint64(r.buf[r.ip:]))
	r.ip += 8
	return v, nil
}

// ReadFloat64 reads a little-endian IEEE-754 double.
func (r *Reader) ReadFloat64() (float64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	bits := binary.LittleEndian.Uint64(r.buf[r.ip:])
	r.ip += 8
	return math.Float64frombits(bits), nil
}

// ReadUtf8String reads a u16-length-prefixed UTF-8 string.
func (r *Reader) ReadUtf8String() (string, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return "", err
	}
	if err := r.need(int(n)); err != nil {
		return "", err
	}
	s := string(r.buf[r.ip : r.ip+int(n)])
	r.ip += int(n)
	return s, nil
}

// ReadStringList reads a u8-count-prefixed list of length-prefixed strings,
// used for a version tuple's pre/build chunks.
func (r *Reader) ReadStringList() ([]string, error) {
	count, err := r.Read()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, count)
	for i := byte(0); i < count; i++ {
		s, err := r.ReadUtf8String()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ReadVersion reads a version tuple as described in §6.
func (r *Reader) ReadVersion() (Version, error) {
	var v Version
	var err error
	if v.Major, err = r.Read(); err != nil {
		return v, err
	}
	if v.Minor, err = r.Read(); err != nil {
		return v, err
	}
	if v.Patch, err = r.ReadUint16(); err != nil {
		return v, err
	}
	if v.Pre, err = r.ReadStringList(); err != nil {
		return v, err
	}
	if v.Build, err = r.ReadStringList(); err != nil {
		return v, err
	}
	return v, nil
}

// Skip advances the cursor by n bytes without reading them.
func (r *Reader) Skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.ip += n
	return nil
}

// ReadConstantPools reads the three constIntTable/constFloatTable/
// constStringTable sections in order and installs them on the reader.
func (r *Reader) ReadConstantPools() error {
	ints, err := r.readIntTable()
	if err != nil {
		return err
	}
	floats, err := r.readFloatTable()
	if err != nil {
		return err
	}
	strs, err := r.readStringTable()
	if err != nil {
		return err
	}
	r.pool = &ConstantPool{Ints: ints, Floats: floats, Strings: strs}
	return nil
}

func (r *Reader) readIntTable() ([]int64, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	out := make([]int64, n)
	for i := range out {
		if out[i], err = r.ReadInt64(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Reader) readFloatTable() ([]float64, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		if out[i], err = r.ReadFloat64(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Reader) readStringTable() ([]string, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	out := make([]string, n)
	for i := range out {
		if out[i], err = r.ReadUtf8String(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetConstInt resolves a u16 pool index into an int constant.
func (r *Reader) GetConstInt(idx uint16) (int64, error) {
	if int(idx) >= len(r.pool.Ints) {
		return 0, fmt.Errorf("%w: int const index %d, pool size %d", ErrOutOfRange, idx, len(r.pool.Ints))
	}
	return r.pool.Ints[idx], nil
}

// GetConstFloat resolves a u16 pool index into a float constant.
func (r *Reader) GetConstFloat(idx uint16) (float64, error) {
	if int(idx) >= len(r.pool.Floats) {
		return 0, fmt.Errorf("%w: float const index %d, pool size %d", ErrOutOfRange, idx, len(r.pool.Floats))
	}
	return r.pool.Floats[idx], nil
}

// GetConstString resolves a u16 pool index into a string constant.
func (r *Reader) GetConstString(idx uint16) (string, error) {
	if int(idx) >= len(r.pool.Strings) {
		return "", fmt.Errorf("%w: string const index %d, pool size %d", ErrOutOfRange, idx, len(r.pool.Strings))
	}
	return r.pool.Strings[idx], nil
}
