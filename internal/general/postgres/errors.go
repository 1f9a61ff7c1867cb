package postgres

import "errors"

var (
	// ErrNotFound is returned when an aggregate identity does not resolve.
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict is returned when a version-checked save observes a
	// stale version. The caller must retry the command from a fresh read.
	ErrVersionConflict = errors.New("stale aggregate version: concurrent update detected")
)
