package bytecode

import "fmt"

// SourceType mirrors §6's sourceType byte: script-mode sources execute their
// top-level statements at load time, module-mode sources defer to an
// explicit invoke.
type SourceType byte

const (
	SourceScript SourceType = iota
	SourceModule
)

func (t SourceType) String() string {
	if t == SourceScript {
		return "script"
	}
	return "module"
}

// Header is the decoded file preamble (§6 "Bytecode format").
type Header struct {
	CompilerVersion  Version
	HasBytecode      bool
	BytecodeVersion  Version
	CompiledAtUtc    string
	CurrentFilename  string
	SourceType       SourceType
}

// ReadHeader reads magic + version + timestamps + source type from the
// front of the reader. It does not read the constant pools or the
// instruction stream; callers do that afterward via ReadConstantPools and
// their own instruction decoder.
func ReadHeader(r *Reader) (Header, error) {
	var h Header
	magic, err := r.ReadUint32()
	if err != nil {
		return h, err
	}
	if magic != Magic {
		return h, fmt.Errorf("bytecode: bad magic %#x, want %#x", magic, Magic)
	}
	if h.CompilerVersion, err = r.ReadVersion(); err != nil {
		return h, err
	}
	if h.HasBytecode, err = r.ReadBool(); err != nil {
		return h, err
	}
	if h.HasBytecode {
		if h.BytecodeVersion, err = r.ReadVersion(); err != nil {
			return h, err
		}
	}
	if h.CompiledAtUtc, err = r.ReadUtf8String(); err != nil {
		return h, err
	}
	if h.CurrentFilename, err = r.ReadUtf8String(); err != nil {
		return h, err
	}
	srcType, err := r.Read()
	if err != nil {
		return h, err
	}
	h.SourceType = SourceType(srcType)
	return h, nil
}
