package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/calyptra/autopress/internal/domain"
)

const defaultTimeout = 15 * time.Second

// ErrMetricsUnavailable indicates the analytics backend could not
// serve metrics for the requested post. Tracking tasks treat it as
// transient and leave the record untouched.
var ErrMetricsUnavailable = errors.New("metrics unavailable")

// HTTPCollector pulls post metrics from an analytics service over
// HTTP. The backend exposes one JSON document per external post ID.
type HTTPCollector struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// HTTPOption customizes an HTTPCollector.
type HTTPOption func(*HTTPCollector)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(collector *HTTPCollector) {
		collector.httpClient = c
	}
}

// NewHTTPCollector creates a collector against the given analytics
// base URL.
func NewHTTPCollector(baseURL string, logger *slog.Logger, opts ...HTTPOption) (*HTTPCollector, error) {
	if baseURL == "" {
		return nil, errors.New("analytics base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid analytics base URL: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	collector := &HTTPCollector{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger.With("component", "metrics_collector"),
	}
	for _, opt := range opts {
		opt(collector)
	}
	return collector, nil
}

// metricsResponse is the analytics backend's per-post document.
type metricsResponse struct {
	Views            int64   `json:"views"`
	Comments         int64   `json:"comments"`
	Shares           int64   `json:"shares"`
	EngagementRate   float64 `json:"engagement_rate"`
	AvgTimeOnPage    float64 `json:"avg_time_on_page"`
	OrganicTraffic   int64   `json:"organic_traffic"`
	ClickThroughRate float64 `json:"click_through_rate"`
	BounceRate       float64 `json:"bounce_rate"`
}

// Fetch pulls the current metrics snapshot for a published post.
func (c *HTTPCollector) Fetch(ctx context.Context, externalPostID string) (*Metrics, error) {
	if externalPostID == "" {
		return nil, errors.New("external post ID is required")
	}

	endpoint := fmt.Sprintf("%s/api/posts/%s/metrics", c.baseURL, url.PathEscape(externalPostID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build metrics request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetricsUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: post %s returned %d",
			ErrMetricsUnavailable, externalPostID, resp.StatusCode)
	}

	var doc metricsResponse
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: malformed metrics document: %v", ErrMetricsUnavailable, err)
	}

	c.logger.Debug("metrics fetched", "external_post_id", externalPostID, "views", doc.Views)
	return &Metrics{
		Engagement: domain.EngagementMetrics{
			Views:          doc.Views,
			Comments:       doc.Comments,
			Shares:         doc.Shares,
			EngagementRate: doc.EngagementRate,
			AvgTimeOnPage:  doc.AvgTimeOnPage,
		},
		SEO: domain.SEOMetrics{
			OrganicTraffic:   doc.OrganicTraffic,
			ClickThroughRate: doc.ClickThroughRate,
			BounceRate:       doc.BounceRate,
		},
	}, nil
}
