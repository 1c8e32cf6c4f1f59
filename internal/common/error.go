// Package common defines shared sentinel errors used across the sync engine
// and the repair tooling. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors (malformed entity supplied by a caller).
	ErrValidation = errors.New("validation error")

	// Sync-level errors.
	ErrStorageFailure = errors.New("storage failure")

	// Repair-run flow control.
	ErrBatchLimit  = errors.New("batch limit reached")
	ErrUserIDEmpty = errors.New("user id is required")

	// Enum mapping errors (fail closed on unknown cloud values).
	ErrUnknownEnumValue = errors.New("unknown enum value")
)
