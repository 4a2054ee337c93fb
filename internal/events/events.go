package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TaskRequestEvent asks for a background task to be scheduled. It
// carries everything a scheduler needs without the emitting service
// depending on the task package.
type TaskRequestEvent struct {
	// ID uniquely identifies this event.
	ID uuid.UUID `json:"id"`

	// Type is the task type to schedule.
	Type string `json:"type"`

	// Payload is the task-specific data serialized as JSON.
	Payload json.RawMessage `json:"payload"`

	// Delay is how long dispatch should wait before the task becomes
	// runnable. Zero means immediately.
	Delay time.Duration `json:"delay"`

	// CreatedAt is when the event was created.
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *TaskRequestEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskRequestEvent creates an immediately-runnable task request.
func NewTaskRequestEvent(taskType string, payload interface{}) (*TaskRequestEvent, error) {
	return NewDelayedTaskRequestEvent(taskType, payload, 0)
}

// NewDelayedTaskRequestEvent creates a task request that becomes
// runnable after delay.
func NewDelayedTaskRequestEvent(taskType string, payload interface{}, delay time.Duration) (*TaskRequestEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      taskType,
		Payload:   data,
		Delay:     delay,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler processes emitted events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided
	// context.
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventEmitter publishes events to registered handlers, decoupling
// services from the dispatch machinery.
type EventEmitter interface {
	// EmitEvent publishes the event to all registered handlers.
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}
