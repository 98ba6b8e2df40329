package domain

import "errors"

// Sentinel errors - match with errors.Is()
var (
	// ErrNotFound indicates a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a uniqueness or foreign-key violation.
	ErrConflict = errors.New("already exists")

	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyArchive indicates the archive holds no entries at all.
	// Fatal: the run aborts before any writes.
	ErrEmptyArchive = errors.New("archive is empty")

	// ErrPersistence wraps any storage-layer failure (connectivity,
	// constraint violation, timeout). Fatal: the run rolls back.
	ErrPersistence = errors.New("persistence failure")
)
