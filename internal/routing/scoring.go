package routing

import (
	"strings"

	"github.com/calyptra/autopress/internal/domain"
)

// ScoringConfig names the rule-match weights. A rule's raw score is
// KeywordWeight per keyword found in the request text, CategoryWeight
// per category overlap and TagWeight per keyword/tag overlap, scaled
// by rule.Priority/PriorityScale.
type ScoringConfig struct {
	KeywordWeight  float64
	CategoryWeight float64
	TagWeight      float64
	PriorityScale  float64
}

// DefaultScoringConfig returns the reference weights.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		KeywordWeight:  10,
		CategoryWeight: 15,
		TagWeight:      10,
		PriorityScale:  100,
	}
}

// ScoreRule computes the weighted match score of one rule against a
// request. Pure and deterministic.
func ScoreRule(cfg ScoringConfig, rule *domain.RoutingRule, req *domain.RouteRequest) float64 {
	text := strings.ToLower(req.Title + " " + req.Body + " " + req.Excerpt)

	var score float64
	for _, keyword := range rule.Keywords {
		if strings.Contains(text, strings.ToLower(keyword)) {
			score += cfg.KeywordWeight
		}
	}
	score += cfg.CategoryWeight * float64(overlapCount(rule.Categories, req.Categories))
	score += cfg.TagWeight * float64(overlapCount(rule.Keywords, req.Tags))

	if cfg.PriorityScale > 0 {
		score *= float64(rule.Priority) / cfg.PriorityScale
	}
	return score
}

// overlapCount counts case-insensitive matches between two string
// sets, counting each rule-side entry at most once.
func overlapCount(ruleSide, requestSide []string) int {
	if len(ruleSide) == 0 || len(requestSide) == 0 {
		return 0
	}
	requested := make(map[string]struct{}, len(requestSide))
	for _, s := range requestSide {
		requested[strings.ToLower(s)] = struct{}{}
	}
	count := 0
	for _, s := range ruleSide {
		if _, ok := requested[strings.ToLower(s)]; ok {
			count++
		}
	}
	return count
}
