package service

import (
	"errors"
	"fmt"
)

// Common service errors. The API layer maps these onto HTTP status
// codes; everything unexpected is wrapped in a ServiceError.
var (
	// ErrJobNotFound indicates the requested job does not exist or its
	// record has expired.
	ErrJobNotFound = errors.New("job not found")

	// ErrContentNotFound indicates the content item does not exist.
	ErrContentNotFound = errors.New("content not found")

	// ErrResearchNotReady indicates the research job is missing or has
	// not completed, so no batch can be created from it.
	ErrResearchNotReady = errors.New("research job not found or not completed")

	// ErrContentNotApproved indicates a publishing job referenced
	// content that has not been approved by an operator.
	ErrContentNotApproved = errors.New("content not approved for publishing")

	// ErrPublishPrecheckFailed indicates the destination connection
	// check failed, so no publishing job was created.
	ErrPublishPrecheckFailed = errors.New("publishing connection check failed")

	// ErrJobFinalized indicates the job already reached a terminal
	// state and rejects the requested change.
	ErrJobFinalized = errors.New("job already finalized")
)

// ServiceError wraps unexpected failures with the operation that
// produced them.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap supports errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// newServiceError wraps err unless it is already one of the package
// sentinels, which pass through untouched so callers can match them.
func newServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		ErrJobNotFound, ErrContentNotFound, ErrResearchNotReady,
		ErrContentNotApproved, ErrPublishPrecheckFailed, ErrJobFinalized,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return &ServiceError{Operation: operation, Message: message, Err: err}
}
