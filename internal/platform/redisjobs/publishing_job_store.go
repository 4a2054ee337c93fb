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

// RedisPublishingJobStore implements store.PublishingJobStore on
// Redis with the same document-plus-WATCH layout as the batch job
// store.
type RedisPublishingJobStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ store.PublishingJobStore = (*RedisPublishingJobStore)(nil)

// NewRedisPublishingJobStore creates a publishing job store with the
// given record TTL.
func NewRedisPublishingJobStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisPublishingJobStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisPublishingJobStore{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "publishing_job_store"),
	}
}

func publishingJobKey(id uuid.UUID) string {
	return publishingJobKeyPrefix + id.String()
}

// CreatePublishingJob saves a new job.
func (s *RedisPublishingJobStore) CreatePublishingJob(ctx context.Context, job *domain.PublishingJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	data, err := json.Marshal(job)
	if err != nil {
		return store.NewStoreError("publishing_job", "create", "failed to encode job", err)
	}

	ok, err := s.client.SetNX(ctx, publishingJobKey(job.ID), data, s.ttl).Result()
	if err != nil {
		return store.NewStoreError("publishing_job", "create", "failed to write job", err)
	}
	if !ok {
		return fmt.Errorf("%w: publishing job %s already exists", store.ErrConflict, job.ID)
	}

	s.logger.Debug("publishing job created",
		"job_id", job.ID, "content_count", len(job.ContentIDs))
	return nil
}

// GetPublishingJob retrieves a job by ID.
func (s *RedisPublishingJobStore) GetPublishingJob(ctx context.Context, id uuid.UUID) (*domain.PublishingJob, error) {
	return getJSON[domain.PublishingJob](ctx, s.client, publishingJobKey(id), store.ErrPublishingJobNotFound)
}

// UpdatePublishingJob applies mutate atomically per job ID.
func (s *RedisPublishingJobStore) UpdatePublishingJob(
	ctx context.Context,
	id uuid.UUID,
	mutate func(job *domain.PublishingJob) error,
) (*domain.PublishingJob, error) {
	return watchUpdate(ctx, s.client, publishingJobKey(id), s.ttl, store.ErrPublishingJobNotFound, mutate)
}
