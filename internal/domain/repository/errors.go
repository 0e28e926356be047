package repository

import "errors"

var (
	// ErrNotFound covers a missing row and, for owner-scoped operations, an
	// ownership mismatch (existence is not leaked through the error).
	ErrNotFound = errors.New("not found")
	// ErrConflict maps unique-constraint violations.
	ErrConflict = errors.New("already exists")
)
