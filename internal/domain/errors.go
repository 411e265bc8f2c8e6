package domain

import "errors"

var (
	// ErrInvalidInput is returned for missing or invalid arguments
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when a lot or watchlist entry does not exist
	ErrNotFound = errors.New("not found")

	// ErrProvider wraps quote and historical price source failures.
	// It is never surfaced to API callers; services degrade to fallback values.
	ErrProvider = errors.New("price provider failure")
)
