package cpu

import (
	"fmt"

	"github.com/pkg/errors"
)

// Fatal error conditions. Use errors.Is to classify an error returned by Step or Load.
var (
	ErrDecode         = errors.New("unknown instruction")
	ErrStackOverflow  = errors.New("call stack overflow")
	ErrStackUnderflow = errors.New("call stack underflow")
	ErrLoad           = errors.New("program does not fit in memory")
	ErrAddressRange   = errors.New("address out of range")
)

// Error defines a runtime error.
type Error struct {
	Instruction       // Instruction being executed when the error occurred.
	Err         error // One of the Err* values.
	Msg         string
}

// NewError creates a new, formatted error message for the given instruction.
func NewError(instr *Instruction, err error, f string, argv ...interface{}) *Error {
	return &Error{
		Instruction: *instr,
		Err:         err,
		Msg:         fmt.Sprintf(f, argv...),
	}
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%04x: %04x: %v", e.IP, e.Word, e.Err)
	}
	return fmt.Sprintf("%04x: %04x: %v: %s", e.IP, e.Word, e.Err, e.Msg)
}

// Cause returns the underlying error condition.
func (e *Error) Cause() error { return e.Err }

// Unwrap returns the underlying error condition.
func (e *Error) Unwrap() error { return e.Err }
