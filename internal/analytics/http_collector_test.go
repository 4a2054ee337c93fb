package analytics

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHTTPCollector_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/posts/wp-4217/metrics", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"views": 1500,
			"comments": 12,
			"shares": 40,
			"engagement_rate": 0.064,
			"avg_time_on_page": 95.5,
			"organic_traffic": 620,
			"click_through_rate": 0.031,
			"bounce_rate": 0.44
		}`))
	}))
	defer server.Close()

	collector, err := NewHTTPCollector(server.URL, testLogger())
	require.NoError(t, err)

	metrics, err := collector.Fetch(context.Background(), "wp-4217")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), metrics.Engagement.Views)
	assert.Equal(t, int64(12), metrics.Engagement.Comments)
	assert.InDelta(t, 0.064, metrics.Engagement.EngagementRate, 1e-9)
	assert.Equal(t, int64(620), metrics.SEO.OrganicTraffic)
	assert.InDelta(t, 0.44, metrics.SEO.BounceRate, 1e-9)
}

func TestHTTPCollector_FetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"views": `))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			collector, err := NewHTTPCollector(server.URL, testLogger())
			require.NoError(t, err)

			_, err = collector.Fetch(context.Background(), "wp-1")
			assert.ErrorIs(t, err, ErrMetricsUnavailable)
		})
	}
}

func TestHTTPCollector_FetchUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	server.Close()

	collector, err := NewHTTPCollector(server.URL, testLogger())
	require.NoError(t, err)

	_, err = collector.Fetch(context.Background(), "wp-1")
	assert.ErrorIs(t, err, ErrMetricsUnavailable)
}

func TestNewHTTPCollector_RequiresBaseURL(t *testing.T) {
	_, err := NewHTTPCollector("", testLogger())
	assert.Error(t, err)
}

func TestHTTPCollector_FetchRequiresPostID(t *testing.T) {
	collector, err := NewHTTPCollector("http://analytics.internal", testLogger())
	require.NoError(t, err)

	_, err = collector.Fetch(context.Background(), "")
	assert.Error(t, err)
}
