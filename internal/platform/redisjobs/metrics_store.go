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

// RedisMetricsStore implements store.MetricsStore on Redis. Records
// live long enough to cover the full tracking schedule (reference: 30
// days) and expire by TTL rather than explicit deletion.
type RedisMetricsStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ store.MetricsStore = (*RedisMetricsStore)(nil)

// NewRedisMetricsStore creates a performance record store with the
// given record TTL.
func NewRedisMetricsStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisMetricsStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisMetricsStore{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "metrics_store"),
	}
}

func performanceKey(contentID uuid.UUID) string {
	return performanceKeyPrefix + contentID.String()
}

// CreateRecord saves the initial record at publish time.
func (s *RedisMetricsStore) CreateRecord(ctx context.Context, record *domain.PerformanceRecord) error {
	if record.ContentID == uuid.Nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrEmptyPerformanceContentID)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return store.NewStoreError("performance_record", "create", "failed to encode record", err)
	}

	ok, err := s.client.SetNX(ctx, performanceKey(record.ContentID), data, s.ttl).Result()
	if err != nil {
		return store.NewStoreError("performance_record", "create", "failed to write record", err)
	}
	if !ok {
		return fmt.Errorf("%w: performance record for content %s already exists",
			store.ErrConflict, record.ContentID)
	}

	s.logger.Debug("performance record created", "content_id", record.ContentID)
	return nil
}

// GetRecord retrieves the record for a content item.
func (s *RedisMetricsStore) GetRecord(ctx context.Context, contentID uuid.UUID) (*domain.PerformanceRecord, error) {
	return getJSON[domain.PerformanceRecord](ctx, s.client, performanceKey(contentID), store.ErrPerformanceNotFound)
}

// UpdateRecord applies mutate atomically per content ID.
func (s *RedisMetricsStore) UpdateRecord(
	ctx context.Context,
	contentID uuid.UUID,
	mutate func(record *domain.PerformanceRecord) error,
) (*domain.PerformanceRecord, error) {
	return watchUpdate(ctx, s.client, performanceKey(contentID), s.ttl, store.ErrPerformanceNotFound, mutate)
}
