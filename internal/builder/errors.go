package builder

import (
	"errors"
	"fmt"
)

var (
	ErrForeignLabel  = errors.New("builder: label belongs to another method")
	ErrInvalidLabel  = errors.New("builder: label is not bound")
	ErrRemoved       = errors.New("builder: location was removed")
	ErrIndex         = errors.New("builder: instruction index out of range")
	ErrEndLocation   = errors.New("builder: end-of-method location holds no instruction")
	ErrNoFixedPoint  = errors.New("builder: offsets did not converge")
	ErrUnbuildable   = errors.New("builder: instruction cannot be represented")
	ErrInconsistent  = errors.New("builder: inconsistent method")
	ErrMissingString = errors.New("builder: string not in pool")
)

// ConsistencyError describes one graph defect found while resolving offsets.
// Resolve reports all of them together.
type ConsistencyError struct {
	Index  int // instruction index, -1 for method-level defects
	Detail string
}

func (e *ConsistencyError) Error() string {
	if e.Index < 0 {
		return "builder: " + e.Detail
	}
	return fmt.Sprintf("builder: instruction %d: %s", e.Index, e.Detail)
}

func (e *ConsistencyError) Unwrap() error { return ErrInconsistent }
