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

// RedisResearchStore implements store.ResearchStore on Redis. The
// crawler writes research jobs here; the orchestration core only
// reads them, but SaveResearchJob is exposed for ingestion and tests.
type RedisResearchStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ store.ResearchStore = (*RedisResearchStore)(nil)

// NewRedisResearchStore creates a research job store with the given
// record TTL.
func NewRedisResearchStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisResearchStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisResearchStore{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "research_store"),
	}
}

func researchJobKey(id uuid.UUID) string {
	return researchJobKeyPrefix + id.String()
}

// SaveResearchJob writes a research job, replacing any existing record
// with the same ID.
func (s *RedisResearchStore) SaveResearchJob(ctx context.Context, job *domain.ResearchJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	data, err := json.Marshal(job)
	if err != nil {
		return store.NewStoreError("research_job", "save", "failed to encode job", err)
	}
	if err := s.client.Set(ctx, researchJobKey(job.ID), data, s.ttl).Err(); err != nil {
		return store.NewStoreError("research_job", "save", "failed to write job", err)
	}

	s.logger.Debug("research job saved", "job_id", job.ID, "source_count", len(job.Sources))
	return nil
}

// GetResearchJob retrieves a research job with its source documents.
func (s *RedisResearchStore) GetResearchJob(ctx context.Context, id uuid.UUID) (*domain.ResearchJob, error) {
	return getJSON[domain.ResearchJob](ctx, s.client, researchJobKey(id), store.ErrResearchJobNotFound)
}
