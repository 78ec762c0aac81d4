package storage

import "errors"

// Common client storage errors
var (
	// ErrActionNotFound indicates that queued action was not found
	ErrActionNotFound = errors.New("queued action not found")

	// ErrEntityNotFound indicates that domain entity was not found
	ErrEntityNotFound = errors.New("entity not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
