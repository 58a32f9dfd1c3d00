package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity or blob does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingCredential indicates a write token is required but not
	// configured. Fatal to the persist step only; mining and in-memory
	// aggregation proceed without it.
	ErrMissingCredential = errors.New("missing store credential")

	// ErrEmptyRoster indicates no agents could be loaded for the cycle.
	ErrEmptyRoster = errors.New("empty roster")
)
