package task

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/calyptra/autopress/internal/domain"
)

// Category groups task types that share a worker pool. Each category
// has its own delayed queue so a burst in one stage cannot starve the
// others.
type Category string

const (
	CategoryGeneration Category = "generation"
	CategoryPublishing Category = "publishing"
	CategoryTracking   Category = "tracking"
)

// Task type identifiers.
const (
	TypeContentGeneration   = "content_generation"
	TypeContentPublish      = "content_publish"
	TypePerformanceTracking = "performance_tracking"
)

// Categories lists every known category in dispatch order.
func Categories() []Category {
	return []Category{CategoryGeneration, CategoryPublishing, CategoryTracking}
}

// CategoryForType maps a task type to its worker category.
func CategoryForType(taskType string) (Category, error) {
	switch taskType {
	case TypeContentGeneration:
		return CategoryGeneration, nil
	case TypeContentPublish:
		return CategoryPublishing, nil
	case TypePerformanceTracking:
		return CategoryTracking, nil
	default:
		return "", fmt.Errorf("unknown task type %q", taskType)
	}
}

// QueuedTask is the envelope persisted in the delayed queue.
type QueuedTask struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// NewQueuedTask wraps a payload into a queue envelope.
func NewQueuedTask(taskType string, payload interface{}) (*QueuedTask, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}
	return &QueuedTask{
		ID:         uuid.New(),
		Type:       taskType,
		Payload:    data,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// GenerationPayload identifies one generation task within a batch job.
type GenerationPayload struct {
	BatchJobID uuid.UUID `json:"batch_job_id"`
	TaskID     uuid.UUID `json:"task_id"`
}

// PublishPayload identifies one content item scheduled for publishing.
type PublishPayload struct {
	PublishingJobID uuid.UUID `json:"publishing_job_id"`
	ContentID       uuid.UUID `json:"content_id"`
}

// TrackingPayload identifies one performance measurement to take.
type TrackingPayload struct {
	ContentID uuid.UUID             `json:"content_id"`
	Period    domain.TrackingPeriod `json:"period"`
}
