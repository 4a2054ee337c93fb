package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidStatus is returned when a status value is not recognized.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrStatusRegression is returned when a status update would move a
	// job backwards (e.g. completed -> processing). Job statuses only
	// move forward.
	ErrStatusRegression = errors.New("status cannot move backwards")

	// ErrJobFinalized is returned when a progress update arrives for a
	// job that has already reached a terminal status.
	ErrJobFinalized = errors.New("job already finalized")

	// ErrProgressOverflow is returned when recording a task outcome
	// would violate the completed+failed <= total invariant.
	ErrProgressOverflow = errors.New("task outcomes exceed job total")

	// ErrDuplicateResult is returned when a result arrives for a task
	// that already has one. Redelivered tasks must not double-count.
	ErrDuplicateResult = errors.New("task result already recorded")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")
)
