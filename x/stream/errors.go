package stream

import "github.com/iov-one/drip/errors"

// Stream extension takes codes 1100-1119.
var (
	// ErrInvalidTimeRange is returned when a stream or a projection is
	// given a time window that cannot be used.
	ErrInvalidTimeRange = errors.Register(1100, "invalid time range")

	// ErrDuplicateActiveStream is returned when a stream with the same
	// identity is already active.
	ErrDuplicateActiveStream = errors.Register(1101, "stream already active")

	// ErrInactiveStream is returned when an operation requires a stream
	// state that the stream is not in.
	ErrInactiveStream = errors.Register(1102, "stream not active")

	// ErrInsufficientFunds is returned when the payer's account cannot
	// cover an operation.
	ErrInsufficientFunds = errors.Register(1103, "insufficient funds")
)
