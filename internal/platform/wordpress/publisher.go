// Package wordpress implements the publisher boundary against the
// WordPress REST API. One client serves every configured destination
// site; per-site routing decides the base URL at publish time.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/calyptra/autopress/internal/domain"
	"github.com/calyptra/autopress/internal/publisher"
)

const (
	postsPath      = "/wp-json/wp/v2/posts"
	defaultTimeout = 30 * time.Second
)

// CredentialResolver turns a credentials reference into a bearer
// token. The default resolver reads the environment variable named by
// the reference, so job payloads never carry the secret itself.
type CredentialResolver func(credentialsRef string) (string, error)

func envCredentialResolver(credentialsRef string) (string, error) {
	token := os.Getenv(credentialsRef)
	if token == "" {
		return "", fmt.Errorf("%w: credentials reference %q not set",
			publisher.ErrAuthRejected, credentialsRef)
	}
	return token, nil
}

// Client publishes content items to WordPress destinations.
type Client struct {
	httpClient  *http.Client
	credentials CredentialResolver
	logger      *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithCredentialResolver replaces the default env-var credential
// lookup.
func WithCredentialResolver(r CredentialResolver) Option {
	return func(client *Client) {
		client.credentials = r
	}
}

// NewClient creates a WordPress publishing client.
func NewClient(logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	client := &Client{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		credentials: envCredentialResolver,
		logger:      logger.With("component", "wordpress_publisher"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// postRequest is the WordPress create-post payload.
type postRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Excerpt    string   `json:"excerpt,omitempty"`
	Status     string   `json:"status"`
	Categories []string `json:"category_names,omitempty"`
	Tags       []string `json:"tag_names,omitempty"`
}

// postResponse is the subset of the create-post response we consume.
type postResponse struct {
	ID   int64  `json:"id"`
	Link string `json:"link"`
	Date string `json:"date_gmt"`
}

// Publish creates a post on the destination site.
func (c *Client) Publish(
	ctx context.Context,
	content *domain.GeneratedContent,
	site *domain.SiteConfig,
	settings domain.PublishSettings,
	credentialsRef string,
) (*publisher.PublishResult, error) {
	token, err := c.credentials(credentialsRef)
	if err != nil {
		return nil, err
	}

	status := settings.Status
	if status == "" {
		status = "publish"
	}
	body, err := json.Marshal(postRequest{
		Title:      content.Title,
		Content:    content.Body,
		Excerpt:    content.Excerpt,
		Status:     status,
		Categories: settings.Categories,
		Tags:       settings.Tags,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode post payload: %w", err)
	}

	url := strings.TrimSuffix(site.BaseURL, "/") + postsPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", publisher.ErrConnectionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: site %s returned %d", publisher.ErrAuthRejected, site.ID, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: site %s returned %d", publisher.ErrConnectionFailed, site.ID, resp.StatusCode)
	}

	var created postResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode publish response: %w", err)
	}

	publishedAt := time.Now().UTC()
	if created.Date != "" {
		if parsed, err := time.Parse("2006-01-02T15:04:05", created.Date); err == nil {
			publishedAt = parsed.UTC()
		}
	}

	c.logger.Info("post created",
		"site_id", site.ID,
		"external_id", created.ID,
		"url", created.Link)
	return &publisher.PublishResult{
		ExternalID:  fmt.Sprintf("%d", created.ID),
		ExternalURL: created.Link,
		PublishedAt: publishedAt,
	}, nil
}

// CheckConnection verifies the credentials reference resolves to a
// token. Per-site reachability is surfaced per task, since one job may
// fan out to several destinations.
func (c *Client) CheckConnection(_ context.Context, credentialsRef string) error {
	if credentialsRef == "" {
		return fmt.Errorf("%w: empty credentials reference", publisher.ErrAuthRejected)
	}
	_, err := c.credentials(credentialsRef)
	return err
}
