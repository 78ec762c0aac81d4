package queue

import (
	"errors"
	"fmt"
)

// ErrInvalidAction is the root cause of every rejected enqueue.
var ErrInvalidAction = errors.New("invalid action")

// Error is a QueueError: a malformed action rejected synchronously at enqueue time.
// The queue is left unchanged.
type Error struct {
	Kind   string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("queue: %s action rejected: %s", e.Kind, e.Reason)
}

// Unwrap позволяет errors.Is(err, ErrInvalidAction)
func (e *Error) Unwrap() error {
	return ErrInvalidAction
}

func invalid(kind, format string, args ...any) error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}
