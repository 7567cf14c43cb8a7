package control

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates a loop configuration that cannot run.
	ErrInvalidConfig = errors.New("control: invalid loop configuration")

	// ErrAlreadyRun indicates Run was called on a loop that already ran.
	ErrAlreadyRun = errors.New("control: loop already ran")
)

// TickError wraps the failure that ended a run with the tick it happened on.
type TickError struct {
	Tick int
	Time float64
	Err  error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d (t=%.4f): %v", e.Tick, e.Time, e.Err)
}

func (e *TickError) Unwrap() error {
	return e.Err
}
