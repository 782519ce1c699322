package insn

import (
	"errors"
	"fmt"

	"dexkit/internal/opcode"
)

var (
	ErrTruncated      = errors.New("insn: truncated instruction")
	ErrFormatMismatch = errors.New("insn: format mismatch")
	ErrPayloadCount   = errors.New("insn: payload count exceeds code length")
	ErrPrecondition   = errors.New("insn: operand out of range")
	ErrMisaligned     = errors.New("insn: payload not aligned to 4 bytes")
)

// FormatError reports malformed input at a code-unit offset.
type FormatError struct {
	Offset int // code units from the start of the method
	Op     opcode.Opcode
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("insn: decode %v at 0x%04x: %v", e.Op, e.Offset, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// PreconditionError reports an operand that does not fit its format. These
// are programming errors of whoever built the instruction; the value is
// never truncated to make it fit.
type PreconditionError struct {
	Op      opcode.Opcode
	Operand string
	Value   int64
	Detail  string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("insn: %v operand %s=%d %s", e.Op, e.Operand, e.Value, e.Detail)
}

func (e *PreconditionError) Unwrap() error { return ErrPrecondition }
