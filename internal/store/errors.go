package store

import "errors"

var (
	// ErrConflict reports an idempotent insert that hit an existing row.
	// The stored row is authoritative and stays untouched.
	ErrConflict = errors.New("row already exists")

	// ErrInvalidDate reports a snapshot date that does not parse as
	// YYYY-MM-DD. Only that snapshot is skipped.
	ErrInvalidDate = errors.New("invalid snapshot date")
)
