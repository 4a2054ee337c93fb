package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calyptra/autopress/internal/domain"
)

func TestPreviewRoutingEndpoint(t *testing.T) {
	stubs := newTestStubs()
	stubs.router.determine = func(req *domain.RouteRequest) (string, error) {
		assert.Equal(t, "Spring Wedding Venues", req.Title)
		assert.Equal(t, []string{"weddings"}, req.Categories)
		return "wedding-site", nil
	}
	server := newTestServer(t, stubs)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/routing/preview", map[string]interface{}{
		"title":      "Spring Wedding Venues",
		"body":       "Venue checklist for spring ceremonies.",
		"categories": []string{"weddings"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got RoutingPreviewResponse
	decodeBody(t, resp, &got)
	assert.Equal(t, "wedding-site", got.TargetSiteID)
}

func TestPreviewRoutingEndpoint_MissingTitle(t *testing.T) {
	server := newTestServer(t, newTestStubs())

	resp := doJSON(t, http.MethodPost, server.URL+"/api/routing/preview", map[string]interface{}{
		"body": "no title here",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPreviewRoutingEndpoint_NoSiteAvailable(t *testing.T) {
	stubs := newTestStubs()
	stubs.router.determine = func(_ *domain.RouteRequest) (string, error) {
		return "", domain.ErrUnknownTargetSite
	}
	server := newTestServer(t, stubs)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/routing/preview", map[string]interface{}{
		"title": "Anything",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
