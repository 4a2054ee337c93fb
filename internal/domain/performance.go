package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TrackingPeriod identifies one scheduled post-publish measurement
// pass. Each period runs at most once per content item.
type TrackingPeriod string

// Tracking periods and their delays after publish.
const (
	TrackingPeriod24h TrackingPeriod = "24h"
	TrackingPeriod7d  TrackingPeriod = "7d"
	TrackingPeriod30d TrackingPeriod = "30d"
)

// TrackingDelays maps each period to its dispatch delay after a
// successful publish.
var TrackingDelays = map[TrackingPeriod]time.Duration{
	TrackingPeriod24h: 24 * time.Hour,
	TrackingPeriod7d:  7 * 24 * time.Hour,
	TrackingPeriod30d: 30 * 24 * time.Hour,
}

// Promotion thresholds for the fine-tuning dataset.
const (
	promotionMinViews        = 500
	promotionMinEngagement   = 0.05
	promotionMinQualityScore = 80.0
)

// Common validation errors for performance records.
var (
	ErrEmptyPerformanceContentID = errors.New("performance record content ID cannot be empty")
	ErrInvalidTrackingPeriod     = errors.New("invalid tracking period")
)

// EngagementMetrics is the point-in-time engagement snapshot pulled
// from the external metrics collector.
type EngagementMetrics struct {
	Views          int64   `json:"views"`
	Comments       int64   `json:"comments"`
	Shares         int64   `json:"shares"`
	EngagementRate float64 `json:"engagement_rate"`
	AvgTimeOnPage  float64 `json:"avg_time_on_page"`
}

// SEOMetrics is the point-in-time search snapshot.
type SEOMetrics struct {
	OrganicTraffic   int64   `json:"organic_traffic"`
	ClickThroughRate float64 `json:"click_through_rate"`
	BounceRate       float64 `json:"bounce_rate"`
}

// TrackingSnapshot is one appended trackingHistory entry.
type TrackingSnapshot struct {
	Period    TrackingPeriod    `json:"period"`
	TrackedAt time.Time         `json:"tracked_at"`
	Metrics   EngagementMetrics `json:"metrics"`
	SEO       SEOMetrics        `json:"seo"`
}

// PerformanceRecord tracks the post-publish performance of one
// content item. Created at publish time, mutated by each tracking
// pass, expired by TTL rather than deleted.
type PerformanceRecord struct {
	ContentID       uuid.UUID          `json:"content_id"`
	ExternalPostID  string             `json:"external_post_id"`
	PublishedURL    string             `json:"published_url"`
	PublishedAt     time.Time          `json:"published_at"`
	Current         EngagementMetrics  `json:"current_metrics"`
	SEO             SEOMetrics         `json:"seo_metrics"`
	QualityScore    float64            `json:"quality_score"`
	AIProvider      string             `json:"ai_provider"`
	TrackingHistory []TrackingSnapshot `json:"tracking_history"`
	LastTrackedAt   time.Time          `json:"last_tracked_at"`
}

// NewPerformanceRecord creates the initial record at publish time.
func NewPerformanceRecord(
	contentID uuid.UUID,
	externalPostID, publishedURL, aiProvider string,
	qualityScore float64,
) (*PerformanceRecord, error) {
	if contentID == uuid.Nil {
		return nil, ErrEmptyPerformanceContentID
	}
	return &PerformanceRecord{
		ContentID:       contentID,
		ExternalPostID:  externalPostID,
		PublishedURL:    publishedURL,
		PublishedAt:     time.Now().UTC(),
		QualityScore:    qualityScore,
		AIProvider:      aiProvider,
		TrackingHistory: []TrackingSnapshot{},
	}, nil
}

// HasPeriod reports whether a tracking pass for the given period has
// already been applied. Used to keep tracking idempotent per
// (contentID, period).
func (r *PerformanceRecord) HasPeriod(period TrackingPeriod) bool {
	for i := range r.TrackingHistory {
		if r.TrackingHistory[i].Period == period {
			return true
		}
	}
	return false
}

// ApplyTracking overwrites the current metrics and appends a history
// snapshot for the period. A repeated period is a no-op so duplicate
// queue deliveries cannot double-append.
func (r *PerformanceRecord) ApplyTracking(
	period TrackingPeriod,
	metrics EngagementMetrics,
	seo SEOMetrics,
) error {
	if _, ok := TrackingDelays[period]; !ok {
		return ErrInvalidTrackingPeriod
	}
	if r.HasPeriod(period) {
		return nil
	}
	now := time.Now().UTC()
	r.Current = metrics
	r.SEO = seo
	r.TrackingHistory = append(r.TrackingHistory, TrackingSnapshot{
		Period:    period,
		TrackedAt: now,
		Metrics:   metrics,
		SEO:       seo,
	})
	r.LastTrackedAt = now
	return nil
}

// IsHighPerforming reports whether the record qualifies for the
// fine-tuning dataset: views > 500, engagement rate > 0.05 and
// quality score > 80, all strict.
func (r *PerformanceRecord) IsHighPerforming() bool {
	return r.Current.Views > promotionMinViews &&
		r.Current.EngagementRate > promotionMinEngagement &&
		r.QualityScore > promotionMinQualityScore
}

// QualityRating derives the [0,10] dataset rating: a base of 5 plus a
// views bonus (200/500/1000 thresholds) and an engagement bonus
// (0.05/0.08 thresholds).
func (r *PerformanceRecord) QualityRating() float64 {
	rating := 5.0

	switch views := r.Current.Views; {
	case views >= 1000:
		rating += 3
	case views >= 500:
		rating += 2
	case views >= 200:
		rating += 1
	}

	switch rate := r.Current.EngagementRate; {
	case rate >= 0.08:
		rating += 2
	case rate >= 0.05:
		rating += 1
	}

	if rating > 10 {
		rating = 10
	}
	if rating < 0 {
		rating = 0
	}
	return rating
}

// FineTuningEntry is one appended row of the curated dataset. Entries
// are never edited once added.
type FineTuningEntry struct {
	ContentID     uuid.UUID         `json:"content_id"`
	Period        TrackingPeriod    `json:"period"`
	Content       GeneratedContent  `json:"content"`
	Metrics       EngagementMetrics `json:"performance_metrics"`
	SEO           SEOMetrics        `json:"seo_metrics"`
	QualityRating float64           `json:"quality_rating"`
	AddedAt       time.Time         `json:"added_at"`
}
