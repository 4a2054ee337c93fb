package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calyptra/autopress/internal/domain"
	"github.com/calyptra/autopress/internal/service"
)

func validCreatePublishingBody(contentIDs ...uuid.UUID) map[string]interface{} {
	ids := make([]string, 0, len(contentIDs))
	for _, id := range contentIDs {
		ids = append(ids, id.String())
	}
	return map[string]interface{}{
		"content_ids":                 ids,
		"credentials_ref":             "creds-main",
		"delay_between_posts_seconds": 30,
		"enable_performance_tracking": true,
	}
}

func TestCreatePublishingJobEndpoint(t *testing.T) {
	stubs := newTestStubs()
	contentID := uuid.New()
	stubs.publishing.schedule = func(
		_ context.Context,
		contentIDs []uuid.UUID,
		credentialsRef string,
		settings domain.PublishSettings,
	) (*domain.PublishingJob, error) {
		assert.Equal(t, []uuid.UUID{contentID}, contentIDs)
		assert.Equal(t, "creds-main", credentialsRef)
		assert.Equal(t, 30*time.Second, settings.DelayBetweenPosts)
		assert.True(t, settings.EnablePerformanceTracking)
		return domain.NewPublishingJob(contentIDs, credentialsRef, settings)
	}
	server := newTestServer(t, stubs)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/publishing-jobs", validCreatePublishingBody(contentID))
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var job domain.PublishingJob
	decodeBody(t, resp, &job)
	assert.Equal(t, domain.PublishingJobStatusPending, job.Status)
	assert.Equal(t, 1, job.Progress.Total)
}

func TestCreatePublishingJobEndpoint_BadRequests(t *testing.T) {
	server := newTestServer(t, newTestStubs())

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"no content ids", map[string]interface{}{
			"content_ids": []string{}, "credentials_ref": "c", "delay_between_posts_seconds": 30,
		}},
		{"malformed content id", map[string]interface{}{
			"content_ids": []string{"nope"}, "credentials_ref": "c", "delay_between_posts_seconds": 30,
		}},
		{"missing credentials_ref", map[string]interface{}{
			"content_ids": []string{uuid.NewString()}, "delay_between_posts_seconds": 30,
		}},
		{"delay below minimum", map[string]interface{}{
			"content_ids": []string{uuid.NewString()}, "credentials_ref": "c", "delay_between_posts_seconds": 5,
		}},
		{"delay above maximum", map[string]interface{}{
			"content_ids": []string{uuid.NewString()}, "credentials_ref": "c", "delay_between_posts_seconds": 999,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, server.URL+"/api/publishing-jobs", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCreatePublishingJobEndpoint_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"precheck failed", service.ErrPublishPrecheckFailed, http.StatusBadGateway},
		{"unapproved content", service.ErrContentNotApproved, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubs := newTestStubs()
			stubs.publishing.schedule = func(
				_ context.Context, _ []uuid.UUID, _ string, _ domain.PublishSettings,
			) (*domain.PublishingJob, error) {
				return nil, tt.err
			}
			server := newTestServer(t, stubs)

			resp := doJSON(t, http.MethodPost, server.URL+"/api/publishing-jobs", validCreatePublishingBody(uuid.New()))
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestGetPublishingJobEndpoint(t *testing.T) {
	stubs := newTestStubs()
	job, err := domain.NewPublishingJob(
		[]uuid.UUID{uuid.New()}, "creds",
		domain.PublishSettings{DelayBetweenPosts: 30 * time.Second},
	)
	require.NoError(t, err)
	stubs.publishing.get = func(_ context.Context, id uuid.UUID) (*domain.PublishingJob, error) {
		if id == job.ID {
			return job, nil
		}
		return nil, service.ErrJobNotFound
	}
	server := newTestServer(t, stubs)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/publishing-jobs/"+job.ID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got domain.PublishingJob
	decodeBody(t, resp, &got)
	assert.Equal(t, job.ID, got.ID)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/publishing-jobs/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetPublishingResultsEndpoint(t *testing.T) {
	stubs := newTestStubs()
	job, err := domain.NewPublishingJob(
		[]uuid.UUID{uuid.New()}, "creds",
		domain.PublishSettings{DelayBetweenPosts: 30 * time.Second},
	)
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, job.RecordResult(domain.PublishingResult{
		TaskID:      uuid.New(),
		ContentID:   job.ContentIDs[0],
		Success:     true,
		SiteID:      "site-main",
		ExternalID:  "42",
		ExternalURL: "https://blog.example.com/?p=42",
		PublishedAt: &now,
	}))
	stubs.publishing.get = func(_ context.Context, id uuid.UUID) (*domain.PublishingJob, error) {
		if id == job.ID {
			return job, nil
		}
		return nil, service.ErrJobNotFound
	}
	server := newTestServer(t, stubs)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/publishing-jobs/"+job.ID.String()+"/results", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var results []domain.PublishingResult
	decodeBody(t, resp, &results)
	require.Len(t, results, 1)
	assert.Equal(t, job.ContentIDs[0], results[0].ContentID)
	assert.Equal(t, "site-main", results[0].SiteID)
	assert.True(t, results[0].Success)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/publishing-jobs/"+uuid.NewString()+"/results", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCancelPublishingJobEndpoint(t *testing.T) {
	stubs := newTestStubs()
	job, err := domain.NewPublishingJob(
		[]uuid.UUID{uuid.New()}, "creds",
		domain.PublishSettings{DelayBetweenPosts: 30 * time.Second},
	)
	require.NoError(t, err)
	stubs.publishing.cancel = func(_ context.Context, id uuid.UUID) (*domain.PublishingJob, error) {
		if id != job.ID {
			return nil, service.ErrJobNotFound
		}
		require.NoError(t, job.Cancel())
		return job, nil
	}
	server := newTestServer(t, stubs)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/publishing-jobs/"+job.ID.String()+"/cancel", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got domain.PublishingJob
	decodeBody(t, resp, &got)
	assert.Equal(t, domain.PublishingJobStatusCancelled, got.Status)
}
