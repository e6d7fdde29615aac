package vm

import (
	"errors"
	"fmt"

	"github.com/hetu-lang/hetu/opcodes"
)

// Base error kinds, one per §7 error category plus the handful the
// dispatch loop itself can raise.
var (
	ErrUndefined   = errors.New("undefined")
	ErrTypeError   = errors.New("typeError")
	ErrArgument    = errors.New("argument")
	ErrNotCallable = errors.New("notCallable")
	ErrAbstracted  = errors.New("abstracted")
	ErrTypeCast    = errors.New("typeCast")
	ErrBytecode    = errors.New("bytecode")
	ErrVersion     = errors.New("version")

	ErrOpcodeNotImplemented = errors.New("opcode not implemented")
	ErrStackUnderflow       = errors.New("stack underflow")
	ErrHalted               = errors.New("execution halted")
	ErrTimeout              = errors.New("execution timed out")
)

// VMError decorates a base error kind with the frame/opcode/ip it was
// raised at, so a host catching it at the §6 boundary can report a useful
// location without every opcode handler formatting a full message itself.
type VMError struct {
	Kind    error
	Message string
	Frame   *Frame
	Opcode  opcodes.Opcode
	IP      int
}

func (e *VMError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Message)
	}
	return e.Kind.Error()
}

func (e *VMError) Unwrap() error { return e.Kind }

func (e *VMError) Is(target error) bool { return errors.Is(e.Kind, target) }

// NewVMError builds a VMError with a formatted message and no location yet;
// decorate fills in frame/opcode/ip once the dispatch loop catches it.
func NewVMError(kind error, format string, args ...interface{}) *VMError {
	return &VMError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// decorate attaches frame/opcode/ip context to err, wrapping it in a
// VMError if it isn't already one. A *ThrownError passes through untouched:
// it carries a script-level thrown Value a host try/catch must recover by
// type assertion, which wrapping it in a VMError would destroy.
func decorate(err error, frame *Frame, instr *opcodes.Instruction) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*ThrownError); ok {
		return err
	}
	vmErr, ok := err.(*VMError)
	if !ok {
		vmErr = &VMError{Kind: ErrTypeError, Message: err.Error()}
	}
	vmErr.Frame = frame
	if instr != nil {
		vmErr.Opcode = instr.Opcode
	}
	if frame != nil {
		vmErr.IP = frame.IP
	}
	return vmErr
}
