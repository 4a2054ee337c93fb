// Package publisher defines the boundary to the external
// site-publishing capability. The concrete HTTP client for each
// destination lives outside this core.
package publisher

import (
	"context"
	"time"

	"github.com/calyptra/autopress/internal/domain"
)

// PublishResult is returned by a successful publish call.
type PublishResult struct {
	ExternalID  string
	ExternalURL string
	PublishedAt time.Time
}

// Publisher pushes one content item to a destination site.
type Publisher interface {
	// Publish sends the content item to the destination, authenticating
	// with the credentials named by credentialsRef. May fail with
	// ErrConnectionFailed or ErrAuthRejected; both indicate job-wide
	// misconfiguration and are not retried at task level.
	Publish(
		ctx context.Context,
		content *domain.GeneratedContent,
		site *domain.SiteConfig,
		settings domain.PublishSettings,
		credentialsRef string,
	) (*PublishResult, error)

	// CheckConnection verifies the publishing destination is reachable
	// with the given credentials reference. Called once per job before
	// any tasks are queued.
	CheckConnection(ctx context.Context, credentialsRef string) error
}
