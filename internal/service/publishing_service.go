package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/calyptra/autopress/internal/domain"
	"github.com/calyptra/autopress/internal/events"
	"github.com/calyptra/autopress/internal/publisher"
	"github.com/calyptra/autopress/internal/store"
	"github.com/calyptra/autopress/internal/task"
)

// DestinationRouter picks a destination site for a routing request.
// Satisfied by routing.Router.
type DestinationRouter interface {
	DetermineTargetSite(req *domain.RouteRequest) (string, error)
}

// SiteProvider resolves a site ID to its configuration. Satisfied by
// routing.SiteStore.
type SiteProvider interface {
	Get(id string) (*domain.SiteConfig, bool)
}

// PublishingService runs automated staggered publishing: it validates
// a set of approved content items, schedules one publish task per item
// and processes each task through routing and the publisher boundary.
// Successful publishes open a performance record and schedule the
// tracking passes.
type PublishingService struct {
	jobs      store.PublishingJobStore
	content   store.ContentStore
	metrics   store.MetricsStore
	publisher publisher.Publisher
	router    DestinationRouter
	sites     SiteProvider
	emitter   events.EventEmitter
	logger    *slog.Logger
}

// NewPublishingService creates a PublishingService.
func NewPublishingService(
	jobs store.PublishingJobStore,
	content store.ContentStore,
	metrics store.MetricsStore,
	pub publisher.Publisher,
	router DestinationRouter,
	sites SiteProvider,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*PublishingService, error) {
	if jobs == nil || content == nil || metrics == nil || pub == nil ||
		router == nil || sites == nil || emitter == nil {
		return nil, &ServiceError{Operation: "create_publishing_service", Message: "missing dependency"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishingService{
		jobs:      jobs,
		content:   content,
		metrics:   metrics,
		publisher: pub,
		router:    router,
		sites:     sites,
		emitter:   emitter,
		logger:    logger.With("component", "publishing_service"),
	}, nil
}

// SchedulePublishing creates a publishing job over the given content
// IDs. The destination connection is checked once up front and every
// item must be approved; any violation rejects the whole job before a
// single task is queued. Tasks dispatch staggered by the configured
// per-post delay, offset by the optional scheduled start date.
func (s *PublishingService) SchedulePublishing(
	ctx context.Context,
	contentIDs []uuid.UUID,
	credentialsRef string,
	settings domain.PublishSettings,
) (*domain.PublishingJob, error) {
	if err := s.publisher.CheckConnection(ctx, credentialsRef); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPublishPrecheckFailed, err)
	}

	ids := dedupeIDs(contentIDs)
	for _, id := range ids {
		if _, err := s.content.GetApprovedContent(ctx, id); err != nil {
			if store.IsNotFoundError(err) {
				return nil, fmt.Errorf("%w: content %s", ErrContentNotApproved, id)
			}
			return nil, newServiceError("schedule_publishing", "failed to load content", err)
		}
	}

	job, err := domain.NewPublishingJob(ids, credentialsRef, settings)
	if err != nil {
		return nil, newServiceError("schedule_publishing", "invalid publishing job", err)
	}
	if err := s.jobs.CreatePublishingJob(ctx, job); err != nil {
		return nil, newServiceError("schedule_publishing", "failed to save publishing job", err)
	}

	startDelay := time.Duration(0)
	if settings.ScheduledDate != nil {
		if until := time.Until(*settings.ScheduledDate); until > 0 {
			startDelay = until
		}
	}
	for i, contentID := range job.ContentIDs {
		payload := task.PublishPayload{PublishingJobID: job.ID, ContentID: contentID}
		delay := startDelay + time.Duration(i)*settings.DelayBetweenPosts
		event, err := events.NewDelayedTaskRequestEvent(task.TypeContentPublish, payload, delay)
		if err != nil {
			return nil, newServiceError("schedule_publishing", "failed to build publish event", err)
		}
		if err := s.emitter.EmitEvent(ctx, event); err != nil {
			return nil, newServiceError("schedule_publishing", "failed to schedule publish task", err)
		}
	}

	s.logger.Info("publishing job scheduled",
		"job_id", job.ID,
		"item_count", len(job.ContentIDs),
		"delay_between_posts", settings.DelayBetweenPosts,
		"tracking_enabled", settings.EnablePerformanceTracking)
	return job, nil
}

// GetPublishingJob returns the current job state including results.
func (s *PublishingService) GetPublishingJob(ctx context.Context, id uuid.UUID) (*domain.PublishingJob, error) {
	job, err := s.jobs.GetPublishingJob(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrJobNotFound
		}
		return nil, newServiceError("get_publishing_job", "failed to load publishing job", err)
	}
	return job, nil
}

// CancelPublishingJob moves the job to the cancelled terminal state.
// Already-published items stay published.
func (s *PublishingService) CancelPublishingJob(ctx context.Context, id uuid.UUID) (*domain.PublishingJob, error) {
	job, err := s.jobs.UpdatePublishingJob(ctx, id, func(j *domain.PublishingJob) error {
		return j.Cancel()
	})
	if err != nil {
		switch {
		case store.IsNotFoundError(err):
			return nil, ErrJobNotFound
		case errors.Is(err, domain.ErrJobFinalized):
			return nil, ErrJobFinalized
		}
		return nil, newServiceError("cancel_publishing_job", "failed to cancel publishing job", err)
	}
	s.logger.Info("publishing job cancelled", "job_id", id)
	return job, nil
}

// ProcessPublishTask publishes one content item: route it to a
// destination site, push it through the publisher and record the
// result on the job. On success with tracking enabled it opens the
// performance record and schedules the tracking passes. The result is
// always recorded, so a nil return does not imply a publish happened.
func (s *PublishingService) ProcessPublishTask(ctx context.Context, payload task.PublishPayload) error {
	logger := s.logger.With("job_id", payload.PublishingJobID, "content_id", payload.ContentID)

	var (
		settings       domain.PublishSettings
		credentialsRef string
	)
	_, err := s.jobs.UpdatePublishingJob(ctx, payload.PublishingJobID, func(j *domain.PublishingJob) error {
		settings = j.Settings
		credentialsRef = j.CredentialsRef
		return j.MarkTaskStarted()
	})
	if err != nil {
		if errors.Is(err, domain.ErrJobFinalized) {
			logger.Info("dropping publish task for finalized job")
			return nil
		}
		if store.IsNotFoundError(err) {
			logger.Warn("dropping publish task for missing job")
			return nil
		}
		return newServiceError("process_publish", "failed to start publish task", err)
	}

	content, err := s.content.GetApprovedContent(ctx, payload.ContentID)
	if err != nil {
		if store.IsNotFoundError(err) {
			logger.Warn("publish task content missing or unapproved")
			return s.recordResult(ctx, payload, failedResult(payload, "content missing or not approved"))
		}
		return newServiceError("process_publish", "failed to load content", err)
	}

	siteID, err := s.router.DetermineTargetSite(&domain.RouteRequest{
		Title:       content.Title,
		Body:        content.Body,
		Excerpt:     content.Excerpt,
		Categories:  settings.Categories,
		Tags:        settings.Tags,
		ContentType: content.Type,
	})
	if err != nil {
		logger.Warn("no destination site for content", "error", err)
		return s.recordResult(ctx, payload, failedResult(payload, "no destination site available"))
	}
	site, ok := s.sites.Get(siteID)
	if !ok {
		logger.Warn("routed site not configured", "site_id", siteID)
		return s.recordResult(ctx, payload, failedResult(payload, "routed site not configured"))
	}

	pubResult, err := s.publisher.Publish(ctx, content, site, settings, credentialsRef)
	if err != nil {
		logger.Warn("publish failed", "site_id", siteID, "error", err)
		result := failedResult(payload, err.Error())
		result.SiteID = siteID
		return s.recordResult(ctx, payload, result)
	}

	publishedAt := pubResult.PublishedAt
	result := domain.PublishingResult{
		TaskID:                     payload.ContentID,
		ContentID:                  payload.ContentID,
		Success:                    true,
		SiteID:                     siteID,
		ExternalID:                 pubResult.ExternalID,
		ExternalURL:                pubResult.ExternalURL,
		PublishedAt:                &publishedAt,
		PerformanceTrackingEnabled: settings.EnablePerformanceTracking,
	}
	logger.Info("content published",
		"site_id", siteID,
		"external_id", pubResult.ExternalID,
		"external_url", pubResult.ExternalURL)

	if settings.EnablePerformanceTracking {
		if err := s.openTracking(ctx, content, pubResult); err != nil {
			logger.Warn("failed to open performance tracking", "error", err)
		}
	}
	return s.recordResult(ctx, payload, result)
}

// openTracking creates the initial performance record and schedules
// the three tracking passes. The content's uniqueness score, on the
// [0,100] scale, seeds the record's quality score.
func (s *PublishingService) openTracking(
	ctx context.Context,
	content *domain.GeneratedContent,
	pubResult *publisher.PublishResult,
) error {
	record, err := domain.NewPerformanceRecord(
		content.ID,
		pubResult.ExternalID,
		pubResult.ExternalURL,
		content.Metadata.AIProvider,
		content.UniquenessScore*100,
	)
	if err != nil {
		return err
	}
	if err := s.metrics.CreateRecord(ctx, record); err != nil {
		return err
	}

	for period, delay := range domain.TrackingDelays {
		payload := task.TrackingPayload{ContentID: content.ID, Period: period}
		event, err := events.NewDelayedTaskRequestEvent(task.TypePerformanceTracking, payload, delay)
		if err != nil {
			return err
		}
		if err := s.emitter.EmitEvent(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// recordResult writes a publish result onto the job, dropping it when
// the job was finalized or the result was already recorded.
func (s *PublishingService) recordResult(ctx context.Context, payload task.PublishPayload, result domain.PublishingResult) error {
	_, err := s.jobs.UpdatePublishingJob(ctx, payload.PublishingJobID, func(j *domain.PublishingJob) error {
		return j.RecordResult(result)
	})
	if err != nil {
		if errors.Is(err, domain.ErrJobFinalized) ||
			errors.Is(err, domain.ErrDuplicateResult) ||
			store.IsNotFoundError(err) {
			s.logger.Info("dropping publish result",
				"job_id", payload.PublishingJobID, "content_id", payload.ContentID, "reason", err)
			return nil
		}
		return newServiceError("process_publish", "failed to record publish result", err)
	}
	return nil
}

func failedResult(payload task.PublishPayload, reason string) domain.PublishingResult {
	return domain.PublishingResult{
		TaskID:    payload.ContentID,
		ContentID: payload.ContentID,
		Success:   false,
		Error:     reason,
	}
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
