package redisjobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/calyptra/autopress/internal/store"
)

const (
	batchJobKeyPrefix      = "autopress:batch_jobs:"
	publishingJobKeyPrefix = "autopress:publishing_jobs:"
	researchJobKeyPrefix   = "autopress:research_jobs:"
	performanceKeyPrefix   = "autopress:performance:"
	fineTuningListKey      = "autopress:finetuning:entries"
	fineTuningGuardKey     = "autopress:finetuning:seen"

	// maxUpdateRetries bounds how often an optimistic update is
	// replayed after losing a WATCH race before giving up with
	// ErrConflict.
	maxUpdateRetries = 5
)

// getJSON loads and decodes the value at key. Returns notFound when
// the key is absent or expired.
func getJSON[T any](ctx context.Context, client *redis.Client, key string, notFound error) (*T, error) {
	data, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return &v, nil
}

// watchUpdate applies mutate to the value at key inside an optimistic
// WATCH transaction, retrying on conflict. The mutate function sees a
// fresh decode on every attempt; if it returns an error the value is
// left unchanged and the error is returned verbatim. Each successful
// write refreshes the record's TTL.
func watchUpdate[T any](
	ctx context.Context,
	client *redis.Client,
	key string,
	ttl time.Duration,
	notFound error,
	mutate func(*T) error,
) (*T, error) {
	var updated *T

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", key, err)
		}

		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("failed to decode %s: %w", key, err)
		}
		if err := mutate(&v); err != nil {
			return err
		}

		encoded, err := json.Marshal(&v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = &v
		return nil
	}

	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		err := client.Watch(ctx, txn, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, store.ErrConflict
}
