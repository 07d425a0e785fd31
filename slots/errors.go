package slots

import "errors"

var (
	// ErrInvalidID is returned by Put for a negative id.
	ErrInvalidID = errors.New("slots: invalid id")

	// ErrConcurrentMutation ends an iteration whose store was modified
	// after the iterator was created.
	ErrConcurrentMutation = errors.New("slots: store modified during iteration")
)
