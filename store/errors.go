package store

import "errors"

// Sentinel errors for artifact storage.
var (
	// ErrNotFound indicates no artifact exists for the font and key.
	ErrNotFound = errors.New("store: artifact not found")

	// ErrStorageFailure indicates the artifact could not be read or written.
	ErrStorageFailure = errors.New("store: storage failure")

	// ErrInvalidPath indicates a font id that cannot be mapped to a directory.
	ErrInvalidPath = errors.New("store: invalid artifact path")
)
