package graph

import "errors"

var (
	// ErrStoreUnavailable wraps every persistence failure. The in-memory
	// graph is unchanged when it is returned.
	ErrStoreUnavailable = errors.New("graph store unavailable")

	// ErrNotFound is returned when a referenced node does not exist.
	ErrNotFound = errors.New("node not found")

	// ErrInvalid is returned for malformed arguments.
	ErrInvalid = errors.New("invalid graph operation")

	// ErrTxClosed is returned when a transaction is used after Update returned.
	ErrTxClosed = errors.New("transaction closed")
)
