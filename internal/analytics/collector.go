// Package analytics defines the boundary to the external
// metrics-collection capability the performance tracker pulls from.
package analytics

import (
	"context"

	"github.com/calyptra/autopress/internal/domain"
)

// Metrics is one point-in-time pull for a published post.
type Metrics struct {
	Engagement domain.EngagementMetrics
	SEO        domain.SEOMetrics
}

// MetricsCollector fetches current performance metrics for a
// published post by its external ID.
type MetricsCollector interface {
	Fetch(ctx context.Context, externalPostID string) (*Metrics, error)
}
