package storage

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrNotFound       = errors.New("key not found")
	ErrInvalidKey     = errors.New("invalid storage key")
	ErrClosed         = errors.New("storage is closed")
	ErrUnknownBackend = errors.New("unknown storage backend")
)
