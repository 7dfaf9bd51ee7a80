package hub

import "errors"

var (
	// ErrDuplicateConnection means a connection id was registered twice.
	// The transport assigns ids, so hitting this is a logic bug, not a
	// retryable condition.
	ErrDuplicateConnection = errors.New("connection already registered")

	// ErrConnectionNotFound means a lookup referenced a connection the
	// registry has no record of.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrClientDisconnected is returned by a send on a closed connection.
	ErrClientDisconnected = errors.New("client disconnected")
)
