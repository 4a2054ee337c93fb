package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/calyptra/autopress/internal/events"
)

// SchedulerHandler bridges TaskRequestEvents into the delayed queue.
// It implements events.EventHandler so services can request background
// work without importing this package's queue types.
type SchedulerHandler struct {
	queue  *Queue
	logger *slog.Logger
}

// NewSchedulerHandler creates the bridge handler.
func NewSchedulerHandler(queue *Queue, logger *slog.Logger) *SchedulerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchedulerHandler{
		queue:  queue,
		logger: logger.With("component", "task_scheduler"),
	}
}

// HandleEvent schedules a queued task for the event, honoring the
// event's dispatch delay.
func (h *SchedulerHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	category, err := CategoryForType(event.Type)
	if err != nil {
		return fmt.Errorf("cannot schedule event %s: %w", event.ID, err)
	}

	queued := &QueuedTask{
		ID:         event.ID,
		Type:       event.Type,
		Payload:    event.Payload,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := h.queue.Enqueue(ctx, category, queued, time.Now().Add(event.Delay)); err != nil {
		return fmt.Errorf("failed to schedule task for event %s: %w", event.ID, err)
	}

	h.logger.Debug("scheduled task from event",
		"event_id", event.ID,
		"task_type", event.Type,
		"delay", event.Delay)
	return nil
}
