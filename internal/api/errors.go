package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/calyptra/autopress/internal/domain"
	"github.com/calyptra/autopress/internal/service"
	"github.com/calyptra/autopress/internal/store"
)

// MapErrorToStatusCode maps service and domain errors to HTTP status
// codes so handlers never leak internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, service.ErrContentNotFound),
		errors.Is(err, domain.ErrUnknownTargetSite):
		return http.StatusNotFound

	case errors.Is(err, service.ErrResearchNotReady),
		errors.Is(err, service.ErrContentNotApproved),
		errors.Is(err, service.ErrJobFinalized),
		errors.Is(err, store.ErrConflict):
		return http.StatusConflict

	case errors.Is(err, service.ErrPublishPrecheckFailed):
		return http.StatusBadGateway

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrInvalidTargetCount),
		errors.Is(err, domain.ErrInvalidPostDelay),
		errors.Is(err, domain.ErrNoContentIDs):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for an error.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"

	case errors.Is(err, service.ErrJobNotFound):
		return "Job not found"

	case errors.Is(err, service.ErrContentNotFound):
		return "Content not found"

	case errors.Is(err, domain.ErrUnknownTargetSite):
		return "No destination site available"

	case errors.Is(err, service.ErrResearchNotReady):
		return "Research job not found or not completed"

	case errors.Is(err, service.ErrContentNotApproved):
		return "Content is not approved for publishing"

	case errors.Is(err, service.ErrJobFinalized):
		return "Job has already finished"

	case errors.Is(err, store.ErrConflict):
		return "Conflicting update, try again"

	case errors.Is(err, service.ErrPublishPrecheckFailed):
		return "Publishing destination unreachable"

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrInvalidTargetCount),
		errors.Is(err, domain.ErrInvalidPostDelay),
		errors.Is(err, domain.ErrNoContentIDs):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validator error into a short
// client-facing message naming only the offending field.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				return fmt.Sprintf("Invalid %s", fieldParts[1])
			}
		}
	}
	return "Validation error"
}
