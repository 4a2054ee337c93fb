package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/calyptra/autopress/internal/domain"
	"github.com/calyptra/autopress/internal/events"
	"github.com/calyptra/autopress/internal/generation"
	"github.com/calyptra/autopress/internal/sourcetext"
	"github.com/calyptra/autopress/internal/store"
	"github.com/calyptra/autopress/internal/task"
)

// generatorRetryAttempts bounds in-task retries of transient provider
// failures. Task outcomes are always recorded, so the retry loop lives
// here rather than in the queue runner.
const generatorRetryAttempts = 3

// BatchService runs batch content generation: it turns a completed
// research job into a set of staggered generation tasks and processes
// each task through the generator, the uniqueness gate and the content
// store.
type BatchService struct {
	jobs      store.BatchJobStore
	research  store.ResearchStore
	content   store.ContentStore
	generator generation.Generator
	emitter   events.EventEmitter
	stagger   time.Duration
	retryBase time.Duration
	logger    *slog.Logger
}

// NewBatchService creates a BatchService. The stagger is the
// per-priority dispatch delay between a job's generation tasks.
func NewBatchService(
	jobs store.BatchJobStore,
	research store.ResearchStore,
	content store.ContentStore,
	generator generation.Generator,
	emitter events.EventEmitter,
	stagger time.Duration,
	logger *slog.Logger,
) (*BatchService, error) {
	if jobs == nil || research == nil || content == nil || generator == nil || emitter == nil {
		return nil, &ServiceError{Operation: "create_batch_service", Message: "missing dependency"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchService{
		jobs:      jobs,
		research:  research,
		content:   content,
		generator: generator,
		emitter:   emitter,
		stagger:   stagger,
		retryBase: 2 * time.Second,
		logger:    logger.With("component", "batch_service"),
	}, nil
}

// CreateBatchJob creates a batch job over a completed research job's
// source set. Sources are partitioned into one group per requested
// content item and the resulting tasks are scheduled with a staggered
// dispatch delay in priority order.
func (s *BatchService) CreateBatchJob(
	ctx context.Context,
	researchJobID uuid.UUID,
	settings domain.BatchSettings,
) (*domain.BatchJob, error) {
	research, err := s.research.GetResearchJob(ctx, researchJobID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrResearchNotReady
		}
		return nil, newServiceError("create_batch_job", "failed to load research job", err)
	}
	if !research.IsCompleted() {
		return nil, ErrResearchNotReady
	}
	if len(research.Sources) == 0 {
		return nil, fmt.Errorf("%w: research job has no sources", ErrResearchNotReady)
	}

	job, err := domain.NewBatchJob(researchJobID, settings)
	if err != nil {
		return nil, newServiceError("create_batch_job", "invalid batch settings", err)
	}

	groups := sourcetext.PartitionDocuments(research.Sources, settings.TargetCount)
	tasks := make([]domain.GenerationTask, 0, len(groups))
	for priority, group := range groups {
		t, err := domain.NewGenerationTask(job.ID, group, settings, priority)
		if err != nil {
			return nil, newServiceError("create_batch_job", "failed to build generation task", err)
		}
		tasks = append(tasks, *t)
	}
	job.AttachTasks(tasks)

	if err := s.jobs.CreateBatchJob(ctx, job); err != nil {
		return nil, newServiceError("create_batch_job", "failed to save batch job", err)
	}

	for i := range job.Tasks {
		payload := task.GenerationPayload{BatchJobID: job.ID, TaskID: job.Tasks[i].ID}
		delay := time.Duration(job.Tasks[i].Priority) * s.stagger
		event, err := events.NewDelayedTaskRequestEvent(task.TypeContentGeneration, payload, delay)
		if err != nil {
			return nil, newServiceError("create_batch_job", "failed to build task event", err)
		}
		if err := s.emitter.EmitEvent(ctx, event); err != nil {
			return nil, newServiceError("create_batch_job", "failed to schedule generation task", err)
		}
	}

	s.logger.Info("batch job created",
		"job_id", job.ID,
		"research_job_id", researchJobID,
		"task_count", len(job.Tasks),
		"topic", research.Topic)
	return job, nil
}

// GetBatchJob returns the current job state including progress.
func (s *BatchService) GetBatchJob(ctx context.Context, id uuid.UUID) (*domain.BatchJob, error) {
	job, err := s.jobs.GetBatchJob(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrJobNotFound
		}
		return nil, newServiceError("get_batch_job", "failed to load batch job", err)
	}
	return job, nil
}

// GetBatchResults returns the content items the job produced so far,
// in creation order. Available for running jobs too, so operators can
// review partial output.
func (s *BatchService) GetBatchResults(ctx context.Context, id uuid.UUID) ([]*domain.GeneratedContent, error) {
	if _, err := s.GetBatchJob(ctx, id); err != nil {
		return nil, err
	}
	items, err := s.content.ListContentByBatchJob(ctx, id)
	if err != nil {
		return nil, newServiceError("get_batch_results", "failed to list content", err)
	}
	return items, nil
}

// CancelBatchJob moves the job to the cancelled terminal state.
// In-flight tasks keep running but their outcomes are dropped.
func (s *BatchService) CancelBatchJob(ctx context.Context, id uuid.UUID) (*domain.BatchJob, error) {
	job, err := s.jobs.UpdateBatchJob(ctx, id, func(j *domain.BatchJob) error {
		return j.Cancel()
	})
	if err != nil {
		switch {
		case store.IsNotFoundError(err):
			return nil, ErrJobNotFound
		case errors.Is(err, domain.ErrJobFinalized):
			return nil, ErrJobFinalized
		}
		return nil, newServiceError("cancel_batch_job", "failed to cancel batch job", err)
	}
	s.logger.Info("batch job cancelled", "job_id", id)
	return job, nil
}

// ProcessGenerationTask executes one generation task: build prompt
// context from the task's source group, call the generator (retrying
// transient provider failures), enforce the uniqueness threshold and
// record the outcome on the job. The outcome is always recorded, so a
// nil return does not imply the task produced content.
func (s *BatchService) ProcessGenerationTask(ctx context.Context, payload task.GenerationPayload) error {
	logger := s.logger.With("job_id", payload.BatchJobID, "task_id", payload.TaskID)

	var genTask *domain.GenerationTask
	_, err := s.jobs.UpdateBatchJob(ctx, payload.BatchJobID, func(j *domain.BatchJob) error {
		for i := range j.Tasks {
			if j.Tasks[i].ID == payload.TaskID {
				snapshot := j.Tasks[i]
				genTask = &snapshot
				break
			}
		}
		if genTask == nil {
			return domain.ErrTaskNotFound
		}
		if genTask.State != domain.TaskStatePending {
			// Redelivered task; a processing one reruns below without
			// double-counting the start.
			return nil
		}
		return j.MarkTaskStarted(payload.TaskID)
	})
	if err != nil {
		if errors.Is(err, domain.ErrJobFinalized) {
			logger.Info("dropping generation task for finalized job")
			return nil
		}
		if store.IsNotFoundError(err) {
			logger.Warn("dropping generation task for missing job")
			return nil
		}
		return newServiceError("process_generation", "failed to start task", err)
	}
	if genTask.State == domain.TaskStateCompleted || genTask.State == domain.TaskStateFailed {
		logger.Info("dropping redelivered generation task, outcome already recorded")
		return nil
	}

	result, genErr := s.generateWithRetry(ctx, genTask)
	if genErr != nil {
		logger.Warn("generation task failed", "error", genErr)
		return s.recordOutcome(ctx, payload, nil, genErr.Error())
	}

	uniqueness := sourcetext.UniquenessScore(result.Body, genTask.SourceGroup)
	if uniqueness < genTask.Settings.Requirements.UniquenessThreshold {
		err := fmt.Errorf("%w: score %.2f below threshold %.2f",
			generation.ErrUniquenessTooLow, uniqueness, genTask.Settings.Requirements.UniquenessThreshold)
		logger.Warn("generated content rejected", "error", err)
		return s.recordOutcome(ctx, payload, nil, err.Error())
	}

	metadata := domain.ContentMetadata{
		SourceURLs: sourceURLs(genTask.SourceGroup),
		AIProvider: result.Provider,
	}
	if genTask.Settings.Requirements.IncludeSEOFields {
		metadata.SEOTitle = result.SEOTitle
		metadata.SEODescription = result.SEODescription
		metadata.FocusKeyword = result.FocusKeyword
	}

	content, err := domain.NewGeneratedContent(
		payload.BatchJobID,
		genTask.Settings.ContentType,
		result.Title,
		result.Body,
		result.Excerpt,
		uniqueness,
		metadata,
	)
	if err != nil {
		logger.Warn("generated content invalid", "error", err)
		return s.recordOutcome(ctx, payload, nil, err.Error())
	}
	if err := s.content.CreateContent(ctx, content); err != nil {
		return newServiceError("process_generation", "failed to save content", err)
	}

	logger.Info("generation task completed",
		"content_id", content.ID,
		"uniqueness_score", uniqueness,
		"word_count", content.Metadata.WordCount)
	return s.recordOutcome(ctx, payload, &content.ID, "")
}

// generateWithRetry calls the generator, retrying transient provider
// failures with exponential backoff.
func (s *BatchService) generateWithRetry(ctx context.Context, genTask *domain.GenerationTask) (*generation.Result, error) {
	summary := sourcetext.BuildContext(genTask.SourceGroup)
	req := generation.Request{
		Topic:          summary.Topic,
		Keywords:       summary.Themes,
		KeyInsights:    summary.KeyInsights,
		BestPractices:  summary.BestPractices,
		BrandVoice:     genTask.Settings.BrandVoice,
		TargetAudience: genTask.Settings.TargetAudience,
		ContentType:    genTask.Settings.ContentType,
		MinWordCount:   genTask.Settings.Requirements.MinWordCount,
		MaxWordCount:   genTask.Settings.Requirements.MaxWordCount,
	}

	var result *generation.Result
	backoff := retry.WithMaxRetries(generatorRetryAttempts-1, retry.NewExponential(s.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := s.generator.Generate(ctx, req)
		if err != nil {
			if generation.IsTransient(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// recordOutcome writes a terminal task result onto the job, dropping
// it silently when the job was finalized or the task already has an
// outcome from an earlier delivery.
func (s *BatchService) recordOutcome(ctx context.Context, payload task.GenerationPayload, contentID *uuid.UUID, taskErr string) error {
	_, err := s.jobs.UpdateBatchJob(ctx, payload.BatchJobID, func(j *domain.BatchJob) error {
		return j.RecordTaskOutcome(payload.TaskID, contentID, taskErr)
	})
	if err != nil {
		if errors.Is(err, domain.ErrJobFinalized) ||
			errors.Is(err, domain.ErrDuplicateResult) ||
			store.IsNotFoundError(err) {
			s.logger.Info("dropping task outcome",
				"job_id", payload.BatchJobID, "task_id", payload.TaskID, "reason", err)
			return nil
		}
		return newServiceError("process_generation", "failed to record task outcome", err)
	}
	return nil
}

func sourceURLs(sources []domain.SourceDocument) []string {
	urls := make([]string, 0, len(sources))
	for i := range sources {
		urls = append(urls, sources[i].URL)
	}
	return urls
}
