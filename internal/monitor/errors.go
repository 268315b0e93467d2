package monitor

import (
	"fmt"

	"codeberg.org/mutker/energymon/internal/errors"
)

const (
	ErrUnexpectedFailure = errors.ErrUnexpectedFailure
	ErrSessionClosed     = errors.ErrSessionClosed
)

// TickError records which step of a tick failed.
type TickError struct {
	Seq       uint64
	Component string
	Operation string
	Err       error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d: %s.%s: %v", e.Seq, e.Component, e.Operation, e.Err)
}

func (e *TickError) Unwrap() error {
	return e.Err
}
