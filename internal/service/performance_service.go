package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/calyptra/autopress/internal/analytics"
	"github.com/calyptra/autopress/internal/domain"
	"github.com/calyptra/autopress/internal/store"
	"github.com/calyptra/autopress/internal/task"
)

// PerformanceService runs the scheduled post-publish tracking passes
// and promotes high-performing content into the fine-tuning dataset.
type PerformanceService struct {
	metrics    store.MetricsStore
	content    store.ContentStore
	finetuning store.FineTuningStore
	collector  analytics.MetricsCollector
	logger     *slog.Logger
}

// NewPerformanceService creates a PerformanceService.
func NewPerformanceService(
	metrics store.MetricsStore,
	content store.ContentStore,
	finetuning store.FineTuningStore,
	collector analytics.MetricsCollector,
	logger *slog.Logger,
) (*PerformanceService, error) {
	if metrics == nil || content == nil || finetuning == nil || collector == nil {
		return nil, &ServiceError{Operation: "create_performance_service", Message: "missing dependency"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PerformanceService{
		metrics:    metrics,
		content:    content,
		finetuning: finetuning,
		collector:  collector,
		logger:     logger.With("component", "performance_service"),
	}, nil
}

// TrackContentPerformance runs one tracking pass for a content item:
// pull current metrics from the collector, fold them into the
// performance record, and promote the item into the fine-tuning
// dataset when it clears the thresholds. A pass whose period was
// already applied is a no-op, so duplicate deliveries are harmless.
func (s *PerformanceService) TrackContentPerformance(ctx context.Context, payload task.TrackingPayload) error {
	logger := s.logger.With("content_id", payload.ContentID, "period", payload.Period)

	record, err := s.metrics.GetRecord(ctx, payload.ContentID)
	if err != nil {
		if store.IsNotFoundError(err) {
			logger.Info("dropping tracking pass, performance record expired or missing")
			return nil
		}
		return newServiceError("track_performance", "failed to load performance record", err)
	}
	if record.HasPeriod(payload.Period) {
		logger.Info("tracking pass already applied")
		return nil
	}

	metrics, err := s.collector.Fetch(ctx, record.ExternalPostID)
	if err != nil {
		return newServiceError("track_performance", "failed to fetch metrics", err)
	}

	updated, err := s.metrics.UpdateRecord(ctx, payload.ContentID, func(r *domain.PerformanceRecord) error {
		return r.ApplyTracking(payload.Period, metrics.Engagement, metrics.SEO)
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			logger.Info("dropping tracking pass, performance record expired mid-update")
			return nil
		}
		return newServiceError("track_performance", "failed to update performance record", err)
	}

	logger.Info("tracking pass applied",
		"views", updated.Current.Views,
		"engagement_rate", updated.Current.EngagementRate,
		"quality_score", updated.QualityScore)

	if !updated.IsHighPerforming() {
		return nil
	}
	return s.promote(ctx, updated, payload.Period, logger)
}

// promote appends a fine-tuning entry for a high-performing record.
// The store deduplicates per (contentID, period), so a re-run of the
// same pass cannot add a second entry.
func (s *PerformanceService) promote(
	ctx context.Context,
	record *domain.PerformanceRecord,
	period domain.TrackingPeriod,
	logger *slog.Logger,
) error {
	content, err := s.content.GetContent(ctx, record.ContentID)
	if err != nil {
		if store.IsNotFoundError(err) {
			logger.Warn("skipping promotion, content missing")
			return nil
		}
		return newServiceError("track_performance", "failed to load content for promotion", err)
	}

	entry := &domain.FineTuningEntry{
		ContentID:     record.ContentID,
		Period:        period,
		Content:       *content,
		Metrics:       record.Current,
		SEO:           record.SEO,
		QualityRating: record.QualityRating(),
		AddedAt:       time.Now().UTC(),
	}
	added, err := s.finetuning.Append(ctx, entry)
	if err != nil {
		return newServiceError("track_performance", "failed to append fine-tuning entry", err)
	}
	if added {
		logger.Info("content promoted to fine-tuning dataset",
			"quality_rating", entry.QualityRating)
	}
	return nil
}

// GetPerformance returns the performance record for a content item.
func (s *PerformanceService) GetPerformance(ctx context.Context, contentID uuid.UUID) (*domain.PerformanceRecord, error) {
	record, err := s.metrics.GetRecord(ctx, contentID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrContentNotFound
		}
		return nil, newServiceError("get_performance", "failed to load performance record", err)
	}
	return record, nil
}

// GetFineTuningDataset returns up to limit dataset entries in
// insertion order. A non-positive limit returns the whole dataset.
func (s *PerformanceService) GetFineTuningDataset(ctx context.Context, limit int) ([]*domain.FineTuningEntry, error) {
	entries, err := s.finetuning.List(ctx, limit)
	if err != nil {
		return nil, newServiceError("get_finetuning_dataset", "failed to list dataset", err)
	}
	return entries, nil
}
