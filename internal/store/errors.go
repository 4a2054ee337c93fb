package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in
	// the store. TTL-expired entries report the same error: consumers
	// must not distinguish "expired" from "never existed".
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when an optimistic update loses its race
	// and exhausts its retries. Callers may retry the whole operation.
	ErrConflict = errors.New("concurrent modification conflict")

	// ErrInvalidEntity is returned when an entity fails validation
	// before being stored.
	ErrInvalidEntity = errors.New("invalid entity")

	// Entity-specific "not found" errors.

	// ErrBatchJobNotFound indicates the batch job does not exist or its
	// record has expired.
	ErrBatchJobNotFound = fmt.Errorf("%w: batch job", ErrNotFound)

	// ErrPublishingJobNotFound indicates the publishing job does not
	// exist or its record has expired.
	ErrPublishingJobNotFound = fmt.Errorf("%w: publishing job", ErrNotFound)

	// ErrResearchJobNotFound indicates the research job does not exist.
	ErrResearchJobNotFound = fmt.Errorf("%w: research job", ErrNotFound)

	// ErrContentNotFound indicates the content item does not exist or
	// is not approved for the requested use.
	ErrContentNotFound = fmt.Errorf("%w: content", ErrNotFound)

	// ErrPerformanceNotFound indicates no performance record exists for
	// the content item.
	ErrPerformanceNotFound = fmt.Errorf("%w: performance record", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for store-specific errors with
// additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "batch_job", "content")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation, e.Entity, e.Message, e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity,
// operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
