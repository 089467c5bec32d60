package reconcile

import "errors"

// Common reconciliation errors.
var (
	// ErrNotFound is returned when an explanation is requested for an
	// unknown record id.
	ErrNotFound = errors.New("record not found")

	// ErrNoValidRecords is returned when every input record failed
	// validation.
	ErrNoValidRecords = errors.New("no valid records")
)
