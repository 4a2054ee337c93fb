package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/calyptra/autopress/internal/domain"
)

// BatchJobStore persists batch generation jobs with a bounded TTL.
// Version: 1.0
type BatchJobStore interface {
	// CreateBatchJob saves a new job. Returns ErrInvalidEntity if the
	// job fails domain validation.
	CreateBatchJob(ctx context.Context, job *domain.BatchJob) error

	// GetBatchJob retrieves a job by ID. Returns ErrBatchJobNotFound
	// if the job does not exist or its record has expired.
	GetBatchJob(ctx context.Context, id uuid.UUID) (*domain.BatchJob, error)

	// UpdateBatchJob applies mutate to the current job state and
	// persists the result atomically with respect to other updates of
	// the same job ID. Concurrent task-completion callbacks racing on
	// the same counters serialize here; implementations use optimistic
	// concurrency and retry on conflict. If mutate returns an error the
	// job is left unchanged and the error is returned verbatim.
	UpdateBatchJob(
		ctx context.Context,
		id uuid.UUID,
		mutate func(job *domain.BatchJob) error,
	) (*domain.BatchJob, error)
}

// PublishingJobStore persists automated publishing jobs with a
// bounded TTL. Same atomicity contract as BatchJobStore.
// Version: 1.0
type PublishingJobStore interface {
	CreatePublishingJob(ctx context.Context, job *domain.PublishingJob) error

	GetPublishingJob(ctx context.Context, id uuid.UUID) (*domain.PublishingJob, error)

	UpdatePublishingJob(
		ctx context.Context,
		id uuid.UUID,
		mutate func(job *domain.PublishingJob) error,
	) (*domain.PublishingJob, error)
}

// ResearchStore provides read access to upstream research jobs and
// their crawled source sets.
// Version: 1.0
type ResearchStore interface {
	// GetResearchJob retrieves a research job with its source
	// documents. Returns ErrResearchJobNotFound if absent.
	GetResearchJob(ctx context.Context, id uuid.UUID) (*domain.ResearchJob, error)
}
