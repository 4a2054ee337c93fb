package routing

import (
	"sync"

	"github.com/calyptra/autopress/internal/config"
	"github.com/calyptra/autopress/internal/domain"
)

// SiteStore holds the configured destination sites. Read-mostly;
// Reload swaps the whole set atomically so config changes do not
// require a restart.
type SiteStore struct {
	mu    sync.RWMutex
	sites []domain.SiteConfig
	byID  map[string]*domain.SiteConfig
}

// NewSiteStore creates a store with the given initial site set.
func NewSiteStore(sites []domain.SiteConfig) *SiteStore {
	s := &SiteStore{}
	s.Reload(sites)
	return s
}

// Reload replaces the site set.
func (s *SiteStore) Reload(sites []domain.SiteConfig) {
	byID := make(map[string]*domain.SiteConfig, len(sites))
	copied := make([]domain.SiteConfig, len(sites))
	copy(copied, sites)
	for i := range copied {
		byID[copied[i].ID] = &copied[i]
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sites = copied
	s.byID = byID
}

// Get returns the site with the given ID, or false if unknown.
func (s *SiteStore) Get(id string) (*domain.SiteConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	site, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	copied := *site
	return &copied, true
}

// All returns a copy of the current site set in definition order.
func (s *SiteStore) All() []domain.SiteConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make([]domain.SiteConfig, len(s.sites))
	copy(copied, s.sites)
	return copied
}

// RuleStore holds the ordered routing rules. Rule order is
// significant: score ties resolve to the earliest-defined rule.
type RuleStore struct {
	mu    sync.RWMutex
	rules []domain.RoutingRule
}

// NewRuleStore creates a store with the given initial rule set.
func NewRuleStore(rules []domain.RoutingRule) *RuleStore {
	s := &RuleStore{}
	s.Reload(rules)
	return s
}

// Reload replaces the rule set.
func (s *RuleStore) Reload(rules []domain.RoutingRule) {
	copied := make([]domain.RoutingRule, len(rules))
	copy(copied, rules)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = copied
}

// All returns a copy of the current rules in definition order.
func (s *RuleStore) All() []domain.RoutingRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make([]domain.RoutingRule, len(s.rules))
	copy(copied, s.rules)
	return copied
}

// SitesFromConfig converts configured sites into domain objects.
func SitesFromConfig(cfg []config.RoutingSite) []domain.SiteConfig {
	sites := make([]domain.SiteConfig, 0, len(cfg))
	for _, c := range cfg {
		sites = append(sites, domain.SiteConfig{
			ID:         c.ID,
			Name:       c.Name,
			BaseURL:    c.BaseURL,
			Categories: c.Categories,
			Keywords:   c.Keywords,
			IsActive:   c.IsActive,
			Priority:   c.Priority,
		})
	}
	return sites
}

// RulesFromConfig converts configured rules into domain objects.
func RulesFromConfig(cfg []config.RoutingRule) []domain.RoutingRule {
	rules := make([]domain.RoutingRule, 0, len(cfg))
	for _, c := range cfg {
		rules = append(rules, domain.RoutingRule{
			Keywords:     c.Keywords,
			Categories:   c.Categories,
			TargetSiteID: c.TargetSiteID,
			Priority:     c.Priority,
			Description:  c.Description,
		})
	}
	return rules
}
