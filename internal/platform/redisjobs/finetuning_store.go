package redisjobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/calyptra/autopress/internal/domain"
	"github.com/calyptra/autopress/internal/store"
)

// RedisFineTuningStore implements store.FineTuningStore as a Redis
// list plus a guard set. The list keeps insertion order; the guard set
// holds (contentID, period) markers so a re-delivered tracking task
// cannot append the same entry twice. Dataset entries carry no TTL.
type RedisFineTuningStore struct {
	client *redis.Client
	logger *slog.Logger
}

var _ store.FineTuningStore = (*RedisFineTuningStore)(nil)

// NewRedisFineTuningStore creates the dataset store.
func NewRedisFineTuningStore(client *redis.Client, logger *slog.Logger) *RedisFineTuningStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisFineTuningStore{
		client: client,
		logger: logger.With("component", "finetuning_store"),
	}
}

func fineTuningGuard(entry *domain.FineTuningEntry) string {
	return fmt.Sprintf("%s:%s", entry.ContentID, entry.Period)
}

// Append adds an entry unless its (contentID, period) pair was already
// recorded. Returns true when the entry was added.
func (s *RedisFineTuningStore) Append(ctx context.Context, entry *domain.FineTuningEntry) (bool, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return false, store.NewStoreError("finetuning_entry", "append", "failed to encode entry", err)
	}

	guard := fineTuningGuard(entry)
	added, err := s.client.SAdd(ctx, fineTuningGuardKey, guard).Result()
	if err != nil {
		return false, store.NewStoreError("finetuning_entry", "append", "failed to update guard set", err)
	}
	if added == 0 {
		s.logger.Debug("skipping duplicate dataset entry",
			"content_id", entry.ContentID, "period", entry.Period)
		return false, nil
	}

	if err := s.client.RPush(ctx, fineTuningListKey, data).Err(); err != nil {
		// Release the guard so a retried append can still land the entry.
		if remErr := s.client.SRem(ctx, fineTuningGuardKey, guard).Err(); remErr != nil {
			s.logger.Error("failed to release dataset guard after append error",
				"content_id", entry.ContentID, "period", entry.Period, "error", remErr)
		}
		return false, store.NewStoreError("finetuning_entry", "append", "failed to append entry", err)
	}

	s.logger.Info("content promoted to fine-tuning dataset",
		"content_id", entry.ContentID,
		"period", entry.Period,
		"quality_rating", entry.QualityRating)
	return true, nil
}

// List returns up to limit entries in insertion order. A non-positive
// limit returns the whole dataset.
func (s *RedisFineTuningStore) List(ctx context.Context, limit int) ([]*domain.FineTuningEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	raw, err := s.client.LRange(ctx, fineTuningListKey, 0, stop).Result()
	if err != nil {
		return nil, store.NewStoreError("finetuning_entry", "list", "failed to read entries", err)
	}

	entries := make([]*domain.FineTuningEntry, 0, len(raw))
	for _, item := range raw {
		var entry domain.FineTuningEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, store.NewStoreError("finetuning_entry", "list", "failed to decode entry", err)
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}
