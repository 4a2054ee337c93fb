package domain

import "errors"

// Common validation errors for site configuration.
var (
	ErrEmptySiteID       = errors.New("site ID cannot be empty")
	ErrEmptyRuleTarget   = errors.New("routing rule target site ID cannot be empty")
	ErrUnknownTargetSite = errors.New("unknown target site")
)

// SiteConfig describes one publishing destination and its topical
// affinity. The site set is config-driven and read-mostly.
type SiteConfig struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	BaseURL    string   `json:"base_url"`
	Categories []string `json:"categories"`
	Keywords   []string `json:"keywords"`
	IsActive   bool     `json:"is_active"`
	// Priority is the tie-break weight; higher-priority sites win
	// scoring ties indirectly via their rule priority.
	Priority int `json:"priority"`
}

// Validate checks if the SiteConfig has valid data.
func (s *SiteConfig) Validate() error {
	if s.ID == "" {
		return ErrEmptySiteID
	}
	return nil
}

// RoutingRule is a scored matcher mapping content characteristics to
// a preferred destination site. Conceptually one rule per site, each
// evaluated against every routing request.
type RoutingRule struct {
	Keywords     []string `json:"keywords"`
	Categories   []string `json:"categories"`
	TargetSiteID string   `json:"target_site_id"`
	// Priority is a percentage weight applied to the raw match score.
	Priority    int    `json:"priority"`
	Description string `json:"description,omitempty"`
}

// Validate checks if the RoutingRule has valid data.
func (r *RoutingRule) Validate() error {
	if r.TargetSiteID == "" {
		return ErrEmptyRuleTarget
	}
	return nil
}

// RouteRequest carries the content characteristics the destination
// router scores. Routing is pure: evaluating a request has no side
// effects, so previews are free.
type RouteRequest struct {
	Title        string   `json:"title"`
	Body         string   `json:"body"`
	Excerpt      string   `json:"excerpt,omitempty"`
	Categories   []string `json:"categories,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	ContentType  string   `json:"content_type,omitempty"`
	TargetSiteID string   `json:"target_site_id,omitempty"`
}
