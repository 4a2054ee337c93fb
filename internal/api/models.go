package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/calyptra/autopress/internal/domain"
)

// CreateBatchJobRequest is the payload for creating a batch
// generation job from a completed research job.
type CreateBatchJobRequest struct {
	ResearchJobID string `json:"research_job_id" validate:"required,uuid"`
	TargetCount   int    `json:"target_count"    validate:"required,min=1,max=100"`

	BrandVoice     string `json:"brand_voice,omitempty"`
	TargetAudience string `json:"target_audience,omitempty"`
	ContentType    string `json:"content_type"    validate:"required"`

	MinWordCount        int     `json:"min_word_count,omitempty"      validate:"omitempty,min=0"`
	MaxWordCount        int     `json:"max_word_count,omitempty"      validate:"omitempty,min=0"`
	UniquenessThreshold float64 `json:"uniqueness_threshold,omitempty" validate:"min=0,max=1"`
	IncludeSEOFields    bool    `json:"include_seo_fields,omitempty"`
}

// ToSettings converts the request to domain batch settings.
func (r *CreateBatchJobRequest) ToSettings() domain.BatchSettings {
	return domain.BatchSettings{
		TargetCount:    r.TargetCount,
		BrandVoice:     r.BrandVoice,
		TargetAudience: r.TargetAudience,
		ContentType:    r.ContentType,
		Requirements: domain.ContentRequirements{
			MinWordCount:        r.MinWordCount,
			MaxWordCount:        r.MaxWordCount,
			UniquenessThreshold: r.UniquenessThreshold,
			IncludeSEOFields:    r.IncludeSEOFields,
		},
	}
}

// CreatePublishingJobRequest is the payload for scheduling automated
// publishing of approved content items.
type CreatePublishingJobRequest struct {
	ContentIDs     []string `json:"content_ids"     validate:"required,min=1,dive,uuid"`
	CredentialsRef string   `json:"credentials_ref" validate:"required"`

	Status                    string     `json:"status,omitempty"`
	Categories                []string   `json:"categories,omitempty"`
	Tags                      []string   `json:"tags,omitempty"`
	DelayBetweenPostsSeconds  int        `json:"delay_between_posts_seconds" validate:"required,min=10,max=300"`
	EnablePerformanceTracking bool       `json:"enable_performance_tracking,omitempty"`
	AutoOptimization          bool       `json:"auto_optimization,omitempty"`
	ScheduledDate             *time.Time `json:"scheduled_date,omitempty"`
}

// ToSettings converts the request to domain publish settings.
func (r *CreatePublishingJobRequest) ToSettings() domain.PublishSettings {
	return domain.PublishSettings{
		Status:                    r.Status,
		Categories:                r.Categories,
		Tags:                      r.Tags,
		DelayBetweenPosts:         time.Duration(r.DelayBetweenPostsSeconds) * time.Second,
		EnablePerformanceTracking: r.EnablePerformanceTracking,
		AutoOptimization:          r.AutoOptimization,
		ScheduledDate:             r.ScheduledDate,
	}
}

// ParsedContentIDs returns the request's content IDs as UUIDs. The
// validator has already checked the format.
func (r *CreatePublishingJobRequest) ParsedContentIDs() ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(r.ContentIDs))
	for _, raw := range r.ContentIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// RoutingPreviewRequest is the payload for the side-effect-free
// routing preview endpoint.
type RoutingPreviewRequest struct {
	Title        string   `json:"title" validate:"required"`
	Body         string   `json:"body,omitempty"`
	Excerpt      string   `json:"excerpt,omitempty"`
	Categories   []string `json:"categories,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	ContentType  string   `json:"content_type,omitempty"`
	TargetSiteID string   `json:"target_site_id,omitempty"`
}

// ToRouteRequest converts the request to a domain routing request.
func (r *RoutingPreviewRequest) ToRouteRequest() *domain.RouteRequest {
	return &domain.RouteRequest{
		Title:        r.Title,
		Body:         r.Body,
		Excerpt:      r.Excerpt,
		Categories:   r.Categories,
		Tags:         r.Tags,
		ContentType:  r.ContentType,
		TargetSiteID: r.TargetSiteID,
	}
}

// RoutingPreviewResponse carries the routing decision.
type RoutingPreviewResponse struct {
	TargetSiteID string `json:"target_site_id"`
}

// FineTuningDatasetResponse wraps the exported dataset entries.
type FineTuningDatasetResponse struct {
	Count   int                       `json:"count"`
	Entries []*domain.FineTuningEntry `json:"entries"`
}
