package analysis

import (
	"errors"
	"fmt"
)

var (
	ErrNoFixedPoint      = errors.New("analysis: no fixed point within visit bound")
	ErrIncompatibleMerge = errors.New("analysis: incompatible register types")
	ErrUnknownClass      = errors.New("analysis: unknown class")
	ErrSignature         = errors.New("analysis: parameters do not fit the register frame")
	ErrRegister          = errors.New("analysis: register out of range")
)

// Error is an analysis failure for one method. Index is the instruction
// being processed, or -1 for failures before the first visit.
type Error struct {
	Method string
	Index  int
	Err    error
}

func (e *Error) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("analysis: %s: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("analysis: %s: instruction %d: %v", e.Method, e.Index, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
