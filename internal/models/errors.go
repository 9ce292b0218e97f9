package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation.
var (
	ErrMissingContent    = errors.New("file content is required")
	ErrMissingID         = errors.New("individual id is required")
	ErrMissingUploadID   = errors.New("upload id is required")
	ErrMissingSource     = errors.New("source person id is required")
	ErrMissingTarget     = errors.New("target person id is required")
	ErrSameSourceTarget  = errors.New("source and target must be different persons")
	ErrInvalidResolution = errors.New("resolution must be merge, import_as_new or skip")
)

// Sentinel errors for entity lookups.
var (
	ErrPersonNotFound  = errors.New("person not found")
	ErrSessionNotFound = errors.New("preview session not found")
)

// Sentinel errors for merge safety checks.
var (
	ErrGenderMismatch    = errors.New("source and target gender differ")
	ErrNotOwner          = errors.New("caller does not own both person records")
	ErrProtectedPerson   = errors.New("source person is protected and cannot be merged away")
	ErrParentSlotTaken   = errors.New("person already has a parent in that slot")
	ErrMergeRolledBack   = errors.New("merge aborted, no changes applied")
	ErrAlreadyMergedAway = errors.New("person was already merged into another record")
)

// ErrDuplicateKey indicates a unique constraint violation (maps to HTTP 409 Conflict).
var ErrDuplicateKey = errors.New("duplicate key")

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return fmt.Errorf("%s exceeds maximum length of %d", field, maxLen)
}
