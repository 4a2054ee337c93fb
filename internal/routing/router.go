package routing

import (
	"log/slog"

	"github.com/calyptra/autopress/internal/domain"
)

// Router picks the destination site for a routing request.
// Precedence: explicit target site on the request, then the fixed
// content-type lookup table, then scored rule matching with the
// configured default site as fallback.
type Router struct {
	sites          *SiteStore
	rules          *RuleStore
	contentTypeMap map[string]string
	defaultSiteID  string
	scoring        ScoringConfig
	logger         *slog.Logger
}

// NewRouter creates a Router. All collaborators are injected; the
// router itself holds no mutable state beyond the stores.
func NewRouter(
	sites *SiteStore,
	rules *RuleStore,
	contentTypeMap map[string]string,
	defaultSiteID string,
	scoring ScoringConfig,
	logger *slog.Logger,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		sites:          sites,
		rules:          rules,
		contentTypeMap: contentTypeMap,
		defaultSiteID:  defaultSiteID,
		scoring:        scoring,
		logger:         logger.With("component", "destination_router"),
	}
}

// DetermineTargetSite returns the site ID the request routes to.
// Side-effect-free and deterministic given unchanged rule state, so
// preview calls are safe.
func (r *Router) DetermineTargetSite(req *domain.RouteRequest) (string, error) {
	// 1. Explicit target, when it names a known site.
	if req.TargetSiteID != "" {
		if _, ok := r.sites.Get(req.TargetSiteID); ok {
			return req.TargetSiteID, nil
		}
		r.logger.Debug("explicit target site unknown, falling through",
			"target_site_id", req.TargetSiteID)
	}

	// 2. Content-type lookup table.
	if req.ContentType != "" {
		if siteID, ok := r.contentTypeMap[req.ContentType]; ok {
			if _, known := r.sites.Get(siteID); known {
				return siteID, nil
			}
		}
	}

	// 3. Scored rule matching. Strictly highest score wins; ties keep
	// the earliest-defined rule.
	var (
		bestScore  float64
		bestSiteID string
	)
	for _, rule := range r.rules.All() {
		score := ScoreRule(r.scoring, &rule, req)
		if score > bestScore {
			bestScore = score
			bestSiteID = rule.TargetSiteID
		}
	}
	if bestScore > 0 && bestSiteID != "" {
		return bestSiteID, nil
	}

	return r.fallbackSite()
}

// fallbackSite returns the configured default site, or the active
// site with the lowest priority when no default is configured.
func (r *Router) fallbackSite() (string, error) {
	if r.defaultSiteID != "" {
		if _, ok := r.sites.Get(r.defaultSiteID); ok {
			return r.defaultSiteID, nil
		}
	}

	var fallback *domain.SiteConfig
	for _, site := range r.sites.All() {
		if !site.IsActive {
			continue
		}
		site := site
		if fallback == nil || site.Priority < fallback.Priority {
			fallback = &site
		}
	}
	if fallback == nil {
		return "", domain.ErrUnknownTargetSite
	}
	return fallback.ID, nil
}
