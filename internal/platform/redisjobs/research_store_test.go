package redisjobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calyptra/autopress/internal/domain"
	"github.com/calyptra/autopress/internal/store"
)

func TestResearchStore_SaveAndGet(t *testing.T) {
	client, _ := newTestClient(t)
	s := NewRedisResearchStore(client, 2*time.Hour, nil)
	ctx := context.Background()

	job := &domain.ResearchJob{
		ID:     uuid.New(),
		Topic:  "container gardening",
		Status: domain.ResearchStatusCompleted,
		Sources: []domain.SourceDocument{
			{URL: "https://example.com/a", Title: "A", Content: "first source"},
			{URL: "https://example.com/b", Title: "B", Content: "second source"},
		},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.SaveResearchJob(ctx, job))

	got, err := s.GetResearchJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "container gardening", got.Topic)
	assert.True(t, got.IsCompleted())
	assert.Len(t, got.Sources, 2)
}

func TestResearchStore_GetMissing(t *testing.T) {
	client, _ := newTestClient(t)
	s := NewRedisResearchStore(client, 2*time.Hour, nil)

	_, err := s.GetResearchJob(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrResearchJobNotFound)
}

func TestResearchStore_SaveRejectsInvalid(t *testing.T) {
	client, _ := newTestClient(t)
	s := NewRedisResearchStore(client, 2*time.Hour, nil)

	job := &domain.ResearchJob{ID: uuid.Nil, Status: domain.ResearchStatusCompleted}
	assert.ErrorIs(t, s.SaveResearchJob(context.Background(), job), store.ErrInvalidEntity)
}
