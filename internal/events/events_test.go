package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskRequestEvent(t *testing.T) {
	type testPayload struct {
		ContentID uuid.UUID `json:"content_id"`
		Action    string    `json:"action"`
	}

	payload := testPayload{
		ContentID: uuid.New(),
		Action:    "publish",
	}

	event, err := NewTaskRequestEvent("content_publish", payload)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "content_publish", event.Type)
	assert.Zero(t, event.Delay)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	var decoded testPayload
	err = json.Unmarshal(event.Payload, &decoded)
	require.NoError(t, err)
	assert.Equal(t, payload.ContentID, decoded.ContentID)
	assert.Equal(t, payload.Action, decoded.Action)
}

func TestNewDelayedTaskRequestEvent(t *testing.T) {
	event, err := NewDelayedTaskRequestEvent("performance_tracking",
		map[string]string{"period": "24h"}, 24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, event.Delay)
	assert.Equal(t, "performance_tracking", event.Type)
}

func TestUnmarshalPayload(t *testing.T) {
	event, err := NewTaskRequestEvent("content_generation",
		map[string]string{"topic": "garden design"})
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, "garden design", decoded["topic"])
}

// MockEventHandler records received events for assertions.
type MockEventHandler struct {
	LastEvent    *TaskRequestEvent
	HandlerError error
	HandledCount int
}

func (h *MockEventHandler) HandleEvent(ctx context.Context, event *TaskRequestEvent) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestEventHandler(t *testing.T) {
	handler := &MockEventHandler{}

	event, err := NewTaskRequestEvent("content_publish", map[string]string{"key": "value"})
	require.NoError(t, err)

	err = handler.HandleEvent(context.Background(), event)
	assert.NoError(t, err)
	assert.Equal(t, 1, handler.HandledCount)
	assert.Equal(t, event, handler.LastEvent)

	expectedErr := errors.New("handler error")
	handler.HandlerError = expectedErr
	err = handler.HandleEvent(context.Background(), event)
	assert.Equal(t, expectedErr, err)
	assert.Equal(t, 2, handler.HandledCount)
}
