package redisjobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/calyptra/autopress/internal/domain"
	"github.com/calyptra/autopress/internal/store"
)

// RedisBatchJobStore implements store.BatchJobStore on Redis. Jobs are
// JSON documents under a per-job key with a bounded TTL; updates use
// optimistic WATCH transactions so concurrent task callbacks racing on
// the same job serialize correctly.
type RedisBatchJobStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// Compile-time interface check.
var _ store.BatchJobStore = (*RedisBatchJobStore)(nil)

// NewRedisBatchJobStore creates a batch job store with the given
// record TTL.
func NewRedisBatchJobStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisBatchJobStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisBatchJobStore{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "batch_job_store"),
	}
}

func batchJobKey(id uuid.UUID) string {
	return batchJobKeyPrefix + id.String()
}

// CreateBatchJob saves a new job. Fails with ErrInvalidEntity when the
// job does not validate, and with a conflict when the ID already
// exists.
func (s *RedisBatchJobStore) CreateBatchJob(ctx context.Context, job *domain.BatchJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	data, err := json.Marshal(job)
	if err != nil {
		return store.NewStoreError("batch_job", "create", "failed to encode job", err)
	}

	ok, err := s.client.SetNX(ctx, batchJobKey(job.ID), data, s.ttl).Result()
	if err != nil {
		return store.NewStoreError("batch_job", "create", "failed to write job", err)
	}
	if !ok {
		return fmt.Errorf("%w: batch job %s already exists", store.ErrConflict, job.ID)
	}

	s.logger.Debug("batch job created", "job_id", job.ID, "task_count", len(job.Tasks))
	return nil
}

// GetBatchJob retrieves a job by ID.
func (s *RedisBatchJobStore) GetBatchJob(ctx context.Context, id uuid.UUID) (*domain.BatchJob, error) {
	return getJSON[domain.BatchJob](ctx, s.client, batchJobKey(id), store.ErrBatchJobNotFound)
}

// UpdateBatchJob applies mutate atomically per job ID.
func (s *RedisBatchJobStore) UpdateBatchJob(
	ctx context.Context,
	id uuid.UUID,
	mutate func(job *domain.BatchJob) error,
) (*domain.BatchJob, error) {
	return watchUpdate(ctx, s.client, batchJobKey(id), s.ttl, store.ErrBatchJobNotFound, mutate)
}
