package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/calyptra/autopress/internal/domain"
	"github.com/calyptra/autopress/internal/service"
	"github.com/calyptra/autopress/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"job not found", service.ErrJobNotFound, http.StatusNotFound},
		{"content not found", service.ErrContentNotFound, http.StatusNotFound},
		{"unknown target site", domain.ErrUnknownTargetSite, http.StatusNotFound},
		{"research not ready", service.ErrResearchNotReady, http.StatusConflict},
		{"content not approved", service.ErrContentNotApproved, http.StatusConflict},
		{"job finalized", service.ErrJobFinalized, http.StatusConflict},
		{"store conflict", store.ErrConflict, http.StatusConflict},
		{"precheck failed", service.ErrPublishPrecheckFailed, http.StatusBadGateway},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"invalid target count", domain.ErrInvalidTargetCount, http.StatusBadRequest},
		{"invalid post delay", domain.ErrInvalidPostDelay, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{
			"wrapped sentinel",
			fmt.Errorf("context: %w", service.ErrJobNotFound),
			http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	assert.Equal(t, "Job not found", GetSafeErrorMessage(service.ErrJobNotFound))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))

	// Internal details never surface.
	internal := errors.New("dial tcp 10.0.0.5:5432: connection refused")
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(internal))
}

func TestSanitizeValidationError(t *testing.T) {
	err := errors.New(
		"Key: 'CreateBatchJobRequest.TargetCount' " +
			"Error:Field validation for 'TargetCount' failed on the 'required' tag",
	)
	assert.Equal(t, "Invalid TargetCount", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("something else")))
}
