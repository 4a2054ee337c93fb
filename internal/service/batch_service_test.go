package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calyptra/autopress/internal/domain"
	"github.com/calyptra/autopress/internal/generation"
	"github.com/calyptra/autopress/internal/task"
)

func testBatchSettings(targetCount int) domain.BatchSettings {
	return domain.BatchSettings{
		TargetCount:    targetCount,
		BrandVoice:     "friendly expert",
		TargetAudience: "home gardeners",
		ContentType:    "article",
		Requirements: domain.ContentRequirements{
			MinWordCount:        50,
			MaxWordCount:        2000,
			UniquenessThreshold: 0.5,
			IncludeSEOFields:    true,
		},
	}
}

func testResearchJob(sourceCount int) *domain.ResearchJob {
	sources := make([]domain.SourceDocument, 0, sourceCount)
	for i := 0; i < sourceCount; i++ {
		sources = append(sources, domain.SourceDocument{
			URL:     "https://example.com/" + uuid.NewString(),
			Title:   "Raised Bed Gardening Basics",
			Content: "Raised beds need good drainage. Make sure the soil mix drains freely.",
		})
	}
	return &domain.ResearchJob{
		ID:      uuid.New(),
		Topic:   "raised bed gardening",
		Status:  domain.ResearchStatusCompleted,
		Sources: sources,
	}
}

type batchFixture struct {
	svc       *BatchService
	jobs      *mockBatchJobStore
	research  *mockResearchStore
	content   *mockContentStore
	generator *mockGenerator
	emitter   *captureEmitter
}

func newBatchFixture(t *testing.T) *batchFixture {
	t.Helper()
	f := &batchFixture{
		jobs:      newMockBatchJobStore(t),
		research:  newMockResearchStore(),
		content:   newMockContentStore(t),
		generator: &mockGenerator{},
		emitter:   &captureEmitter{},
	}
	svc, err := NewBatchService(
		f.jobs, f.research, f.content, f.generator, f.emitter,
		30*time.Second, testLogger(),
	)
	require.NoError(t, err)
	svc.retryBase = time.Millisecond
	f.svc = svc
	return f
}

func (f *batchFixture) createJob(t *testing.T, research *domain.ResearchJob, settings domain.BatchSettings) *domain.BatchJob {
	t.Helper()
	f.research.jobs[research.ID] = research
	job, err := f.svc.CreateBatchJob(context.Background(), research.ID, settings)
	require.NoError(t, err)
	return job
}

func TestCreateBatchJob(t *testing.T) {
	f := newBatchFixture(t)
	research := testResearchJob(5)

	job := f.createJob(t, research, testBatchSettings(2))

	assert.Equal(t, domain.BatchJobStatusPending, job.Status)
	assert.Len(t, job.Tasks, 2)
	assert.Equal(t, 2, job.Progress.Total)

	// 5 sources over 2 groups: the last group takes the remainder.
	assert.Len(t, job.Tasks[0].SourceGroup, 2)
	assert.Len(t, job.Tasks[1].SourceGroup, 3)

	events := f.emitter.byType(task.TypeContentGeneration)
	require.Len(t, events, 2)
	assert.Equal(t, time.Duration(0), events[0].Delay)
	assert.Equal(t, 30*time.Second, events[1].Delay)

	var payload task.GenerationPayload
	require.NoError(t, events[1].UnmarshalPayload(&payload))
	assert.Equal(t, job.ID, payload.BatchJobID)
	assert.Equal(t, job.Tasks[1].ID, payload.TaskID)
}

func TestCreateBatchJob_ResearchNotReady(t *testing.T) {
	f := newBatchFixture(t)

	t.Run("missing research job", func(t *testing.T) {
		_, err := f.svc.CreateBatchJob(context.Background(), uuid.New(), testBatchSettings(2))
		assert.ErrorIs(t, err, ErrResearchNotReady)
	})

	t.Run("research still processing", func(t *testing.T) {
		research := testResearchJob(3)
		research.Status = domain.ResearchStatusProcessing
		f.research.jobs[research.ID] = research

		_, err := f.svc.CreateBatchJob(context.Background(), research.ID, testBatchSettings(2))
		assert.ErrorIs(t, err, ErrResearchNotReady)
	})

	t.Run("no sources", func(t *testing.T) {
		research := testResearchJob(0)
		f.research.jobs[research.ID] = research

		_, err := f.svc.CreateBatchJob(context.Background(), research.ID, testBatchSettings(2))
		assert.ErrorIs(t, err, ErrResearchNotReady)
	})

	assert.Empty(t, f.emitter.events, "no tasks may be scheduled for rejected jobs")
}

func TestCreateBatchJob_InvalidSettings(t *testing.T) {
	f := newBatchFixture(t)
	research := testResearchJob(3)
	f.research.jobs[research.ID] = research

	_, err := f.svc.CreateBatchJob(context.Background(), research.ID, testBatchSettings(0))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTargetCount)
}

func TestCancelBatchJob(t *testing.T) {
	f := newBatchFixture(t)
	job := f.createJob(t, testResearchJob(4), testBatchSettings(2))

	cancelled, err := f.svc.CancelBatchJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchJobStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CompletedAt)

	_, err = f.svc.CancelBatchJob(context.Background(), job.ID)
	assert.ErrorIs(t, err, ErrJobFinalized)

	_, err = f.svc.CancelBatchJob(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestProcessGenerationTask_Success(t *testing.T) {
	f := newBatchFixture(t)
	f.generator.generate = func(_ int, req generation.Request) (*generation.Result, error) {
		assert.Equal(t, "friendly expert", req.BrandVoice)
		assert.NotEmpty(t, req.Topic)
		return &generation.Result{
			Title:          "Why Your Raised Bed Fails",
			Body:           "Completely original words about vegetable boxes and watering habits nobody wrote before.",
			Excerpt:        "Original take.",
			SEOTitle:       "Raised Bed Failures Explained",
			SEODescription: "What goes wrong with raised beds.",
			FocusKeyword:   "raised bed",
			Provider:       "gemini",
		}, nil
	}
	job := f.createJob(t, testResearchJob(2), testBatchSettings(1))

	payload := task.GenerationPayload{BatchJobID: job.ID, TaskID: job.Tasks[0].ID}
	require.NoError(t, f.svc.ProcessGenerationTask(context.Background(), payload))

	updated, err := f.svc.GetBatchJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchJobStatusCompleted, updated.Status)
	assert.Equal(t, 1, updated.Progress.Completed)
	assert.Equal(t, 100, updated.Progress.Percentage)
	assert.NotNil(t, updated.CompletedAt)
	require.NotNil(t, updated.Tasks[0].ContentID)

	items, err := f.svc.GetBatchResults(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, *updated.Tasks[0].ContentID, items[0].ID)
	assert.Equal(t, "gemini", items[0].Metadata.AIProvider)
	assert.Equal(t, "raised bed", items[0].Metadata.FocusKeyword)
	assert.Len(t, items[0].Metadata.SourceURLs, 2)
	assert.GreaterOrEqual(t, items[0].UniquenessScore, 0.5)
}

func TestProcessGenerationTask_RedeliveredTaskNotRerun(t *testing.T) {
	f := newBatchFixture(t)
	f.generator.generate = func(_ int, _ generation.Request) (*generation.Result, error) {
		return &generation.Result{
			Title:    "Original Title",
			Body:     "Entirely new sentences about drip irrigation timers and mulch depth.",
			Excerpt:  "New.",
			Provider: "gemini",
		}, nil
	}
	job := f.createJob(t, testResearchJob(4), testBatchSettings(2))

	payload := task.GenerationPayload{BatchJobID: job.ID, TaskID: job.Tasks[0].ID}
	require.NoError(t, f.svc.ProcessGenerationTask(context.Background(), payload))
	require.Equal(t, 1, f.generator.calls)

	// The queue may deliver a task more than once. A second delivery of
	// a finished task must not rerun the generator, double-count progress
	// or finish the job while its sibling is still pending.
	require.NoError(t, f.svc.ProcessGenerationTask(context.Background(), payload))

	assert.Equal(t, 1, f.generator.calls)
	updated, err := f.svc.GetBatchJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchJobStatusProcessing, updated.Status)
	assert.Equal(t, 1, updated.Progress.Completed)
	assert.Equal(t, domain.TaskStatePending, updated.Tasks[1].State)

	items, err := f.content.ListContentByBatchJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestProcessGenerationTask_RetriesTransientErrors(t *testing.T) {
	f := newBatchFixture(t)
	f.generator.generate = func(call int, _ generation.Request) (*generation.Result, error) {
		if call < 3 {
			return nil, generation.ErrRateLimited
		}
		return &generation.Result{
			Title:    "Original Title",
			Body:     "Fresh unrelated sentences about compost bins and trellis spacing.",
			Excerpt:  "Fresh.",
			Provider: "gemini",
		}, nil
	}
	job := f.createJob(t, testResearchJob(1), testBatchSettings(1))

	payload := task.GenerationPayload{BatchJobID: job.ID, TaskID: job.Tasks[0].ID}
	require.NoError(t, f.svc.ProcessGenerationTask(context.Background(), payload))

	assert.Equal(t, 3, f.generator.calls)
	updated, err := f.svc.GetBatchJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchJobStatusCompleted, updated.Status)
}

func TestProcessGenerationTask_PermanentErrorFailsWithoutRetry(t *testing.T) {
	f := newBatchFixture(t)
	f.generator.generate = func(_ int, _ generation.Request) (*generation.Result, error) {
		return nil, generation.ErrContentBlocked
	}
	job := f.createJob(t, testResearchJob(1), testBatchSettings(1))

	payload := task.GenerationPayload{BatchJobID: job.ID, TaskID: job.Tasks[0].ID}
	require.NoError(t, f.svc.ProcessGenerationTask(context.Background(), payload))

	assert.Equal(t, 1, f.generator.calls)
	updated, err := f.svc.GetBatchJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchJobStatusCompletedWithErrors, updated.Status)
	assert.Equal(t, 1, updated.Progress.Failed)
	assert.Equal(t, domain.TaskStateFailed, updated.Tasks[0].State)
	assert.Contains(t, updated.Tasks[0].Error, "blocked")
}

func TestProcessGenerationTask_UniquenessGate(t *testing.T) {
	f := newBatchFixture(t)
	research := testResearchJob(1)
	f.generator.generate = func(_ int, _ generation.Request) (*generation.Result, error) {
		// Echo the source text back so the uniqueness score collapses.
		return &generation.Result{
			Title:    "Copied",
			Body:     research.Sources[0].Content,
			Excerpt:  "Copied.",
			Provider: "gemini",
		}, nil
	}
	job := f.createJob(t, research, testBatchSettings(1))

	payload := task.GenerationPayload{BatchJobID: job.ID, TaskID: job.Tasks[0].ID}
	require.NoError(t, f.svc.ProcessGenerationTask(context.Background(), payload))

	updated, err := f.svc.GetBatchJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStateFailed, updated.Tasks[0].State)
	assert.Contains(t, updated.Tasks[0].Error, "uniqueness")

	items, err := f.content.ListContentByBatchJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Empty(t, items, "rejected content must not be persisted")
}

func TestProcessGenerationTask_CancelledJobDropsWork(t *testing.T) {
	f := newBatchFixture(t)
	f.generator.generate = func(_ int, _ generation.Request) (*generation.Result, error) {
		t.Fatal("generator must not run for cancelled jobs")
		return nil, nil
	}
	job := f.createJob(t, testResearchJob(2), testBatchSettings(2))

	_, err := f.svc.CancelBatchJob(context.Background(), job.ID)
	require.NoError(t, err)

	payload := task.GenerationPayload{BatchJobID: job.ID, TaskID: job.Tasks[0].ID}
	require.NoError(t, f.svc.ProcessGenerationTask(context.Background(), payload))

	updated, err := f.svc.GetBatchJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchJobStatusCancelled, updated.Status)
	assert.Equal(t, 0, updated.Progress.Completed)
}

func TestProcessGenerationTask_MissingJobDropsWork(t *testing.T) {
	f := newBatchFixture(t)
	payload := task.GenerationPayload{BatchJobID: uuid.New(), TaskID: uuid.New()}
	assert.NoError(t, f.svc.ProcessGenerationTask(context.Background(), payload))
}

func TestGetBatchJob_NotFound(t *testing.T) {
	f := newBatchFixture(t)
	_, err := f.svc.GetBatchJob(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = f.svc.GetBatchResults(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrJobNotFound)
}
