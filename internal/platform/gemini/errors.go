package gemini

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/calyptra/autopress/internal/generation"
)

// classifyAPIError maps a Gemini API error onto the generation error
// taxonomy. Throttling and server-side failures are transient;
// anything the API rejects outright is permanent.
func classifyAPIError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %v", generation.ErrProviderFailure, err)
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		if apiErr.Status == "RESOURCE_EXHAUSTED" {
			return fmt.Errorf("%w: %v", generation.ErrQuotaExceeded, err)
		}
		return fmt.Errorf("%w: %v", generation.ErrRateLimited, err)
	case apiErr.Code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %v", generation.ErrProviderFailure, err)
	default:
		return fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
	}
}
