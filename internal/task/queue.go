package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	queueKeyPrefix = "autopress:tasks"

	// defaultLease bounds how long a claimed task may run before it is
	// considered abandoned and redelivered.
	defaultLease = 5 * time.Minute
)

// Queue is a Redis-backed delayed task queue with at-least-once
// delivery. Each category maps to a schedule sorted set scored by
// not-before timestamps, a processing sorted set scored by lease
// deadlines, and a hash holding the serialized task envelopes.
// Claiming moves the member from schedule to processing; the payload
// is deleted only on Complete, so a claimer that dies mid-task leaves
// a lease behind and the task is redelivered once the lease expires.
type Queue struct {
	client *redis.Client
	lease  time.Duration
	logger *slog.Logger
}

// NewQueue creates a delayed queue on the given Redis client.
func NewQueue(client *redis.Client, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		client: client,
		lease:  defaultLease,
		logger: logger.With("component", "task_queue"),
	}
}

func scheduleKey(category Category) string {
	return fmt.Sprintf("%s:%s:schedule", queueKeyPrefix, category)
}

func processingKey(category Category) string {
	return fmt.Sprintf("%s:%s:processing", queueKeyPrefix, category)
}

func payloadKey(category Category) string {
	return fmt.Sprintf("%s:%s:payloads", queueKeyPrefix, category)
}

// Enqueue stores the task and schedules it to become due at runAt.
// A runAt in the past makes the task immediately claimable.
func (q *Queue) Enqueue(ctx context.Context, category Category, t *QueuedTask, runAt time.Time) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal task envelope: %w", err)
	}

	member := t.ID.String()
	pipe := q.client.TxPipeline()
	pipe.HSet(ctx, payloadKey(category), member, data)
	pipe.ZAdd(ctx, scheduleKey(category), redis.Z{
		Score:  float64(runAt.UnixMilli()),
		Member: member,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to enqueue task %s: %w", member, err)
	}

	q.logger.Debug("task enqueued",
		"task_id", member,
		"task_type", t.Type,
		"category", category,
		"run_at", runAt.UTC())
	return nil
}

// ClaimDue leases and returns up to limit tasks whose schedule time
// has passed, after requeueing any tasks whose lease expired. Tasks
// another claimer removed first are skipped. Claimed tasks stay in
// Redis until Complete acknowledges them.
func (q *Queue) ClaimDue(ctx context.Context, category Category, limit int, now time.Time) ([]*QueuedTask, error) {
	if limit <= 0 {
		return nil, nil
	}
	if err := q.requeueExpired(ctx, category, now); err != nil {
		return nil, err
	}

	members, err := q.client.ZRangeByScore(ctx, scheduleKey(category), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read due tasks: %w", err)
	}

	deadline := float64(now.Add(q.lease).UnixMilli())
	var claimed []*QueuedTask
	for _, member := range members {
		// The lease lands before the schedule entry goes away, so a
		// crash anywhere in between redelivers instead of losing the
		// task. Ownership is decided by the ZREM.
		if err := q.client.ZAdd(ctx, processingKey(category), redis.Z{
			Score:  deadline,
			Member: member,
		}).Err(); err != nil {
			return claimed, fmt.Errorf("failed to lease task %s: %w", member, err)
		}
		removed, err := q.client.ZRem(ctx, scheduleKey(category), member).Result()
		if err != nil {
			return claimed, fmt.Errorf("failed to claim task %s: %w", member, err)
		}
		if removed == 0 {
			// Lost the claim race; the winner's lease stands.
			continue
		}

		data, err := q.client.HGet(ctx, payloadKey(category), member).Result()
		if errors.Is(err, redis.Nil) {
			q.logger.Warn("dropping claimed task with no payload", "task_id", member, "category", category)
			_ = q.client.ZRem(ctx, processingKey(category), member).Err()
			continue
		}
		if err != nil {
			return claimed, fmt.Errorf("failed to load task payload %s: %w", member, err)
		}

		var t QueuedTask
		if err := json.Unmarshal([]byte(data), &t); err != nil {
			q.logger.Error("discarding undecodable task payload",
				"task_id", member, "category", category, "error", err)
			pipe := q.client.TxPipeline()
			pipe.ZRem(ctx, processingKey(category), member)
			pipe.HDel(ctx, payloadKey(category), member)
			_, _ = pipe.Exec(ctx)
			continue
		}
		claimed = append(claimed, &t)
	}
	return claimed, nil
}

// Complete acknowledges a claimed task, releasing its lease and
// payload. Without this call the task is redelivered after its lease
// expires.
func (q *Queue) Complete(ctx context.Context, category Category, taskID uuid.UUID) error {
	member := taskID.String()
	pipe := q.client.TxPipeline()
	pipe.ZRem(ctx, processingKey(category), member)
	pipe.HDel(ctx, payloadKey(category), member)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to acknowledge task %s: %w", member, err)
	}
	return nil
}

// requeueExpired moves tasks whose lease deadline passed back onto the
// schedule. The schedule entry is restored before the lease is
// released; a crash in between delivers the task twice rather than
// never.
func (q *Queue) requeueExpired(ctx context.Context, category Category, now time.Time) error {
	members, err := q.client.ZRangeByScore(ctx, processingKey(category), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to read expired leases: %w", err)
	}

	for _, member := range members {
		if err := q.client.ZAdd(ctx, scheduleKey(category), redis.Z{
			Score:  float64(now.UnixMilli()),
			Member: member,
		}).Err(); err != nil {
			return fmt.Errorf("failed to requeue task %s: %w", member, err)
		}
		if err := q.client.ZRem(ctx, processingKey(category), member).Err(); err != nil {
			return fmt.Errorf("failed to release expired lease %s: %w", member, err)
		}
		q.logger.Warn("task lease expired, requeued", "task_id", member, "category", category)
	}
	return nil
}

// Pending returns the number of tasks waiting in a category,
// including ones not yet due but excluding leased ones.
func (q *Queue) Pending(ctx context.Context, category Category) (int64, error) {
	n, err := q.client.ZCard(ctx, scheduleKey(category)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count pending tasks: %w", err)
	}
	return n, nil
}
