package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPublishSettings() PublishSettings {
	return PublishSettings{
		Status:                    "publish",
		Categories:                []string{"news"},
		DelayBetweenPosts:         30 * time.Second,
		EnablePerformanceTracking: true,
	}
}

func newTestPublishingJob(t *testing.T, items int) *PublishingJob {
	t.Helper()

	ids := make([]uuid.UUID, items)
	for i := range ids {
		ids[i] = uuid.New()
	}
	job, err := NewPublishingJob(ids, "creds-main", testPublishSettings())
	require.NoError(t, err)
	return job
}

func TestNewPublishingJob(t *testing.T) {
	job := newTestPublishingJob(t, 3)

	assert.Equal(t, PublishingJobStatusPending, job.Status)
	assert.Equal(t, 3, job.Progress.Total)
	assert.Empty(t, job.Results)
	assert.NoError(t, job.Validate())
}

func TestNewPublishingJob_Validation(t *testing.T) {
	_, err := NewPublishingJob(nil, "creds", testPublishSettings())
	assert.ErrorIs(t, err, ErrNoContentIDs)

	settings := testPublishSettings()
	settings.DelayBetweenPosts = time.Second
	_, err = NewPublishingJob([]uuid.UUID{uuid.New()}, "creds", settings)
	assert.ErrorIs(t, err, ErrInvalidPostDelay)

	settings.DelayBetweenPosts = 10 * time.Minute
	_, err = NewPublishingJob([]uuid.UUID{uuid.New()}, "creds", settings)
	assert.ErrorIs(t, err, ErrInvalidPostDelay)
}

func TestPublishingJob_RecordResult(t *testing.T) {
	job := newTestPublishingJob(t, 2)

	now := time.Now().UTC()
	require.NoError(t, job.MarkTaskStarted())
	require.NoError(t, job.RecordResult(PublishingResult{
		TaskID:      uuid.New(),
		ContentID:   job.ContentIDs[0],
		Success:     true,
		SiteID:      "wedding-site",
		ExternalID:  "post-1",
		PublishedAt: &now,
	}))

	assert.Equal(t, PublishingJobStatusProcessing, job.Status)
	assert.Equal(t, 1, job.Progress.Published)
	assert.Equal(t, 50, job.Progress.Percentage)

	require.NoError(t, job.RecordResult(PublishingResult{
		TaskID:    uuid.New(),
		ContentID: job.ContentIDs[1],
		Success:   false,
		Error:     "destination rejected item",
	}))

	assert.Equal(t, PublishingJobStatusPartiallyCompleted, job.Status)
	assert.Equal(t, 100, job.Progress.Percentage)
	require.NotNil(t, job.CompletedAt)
}

func TestPublishingJob_AllSuccessCompletes(t *testing.T) {
	job := newTestPublishingJob(t, 1)

	require.NoError(t, job.RecordResult(PublishingResult{
		TaskID:    uuid.New(),
		ContentID: job.ContentIDs[0],
		Success:   true,
	}))
	assert.Equal(t, PublishingJobStatusCompleted, job.Status)
}

func TestPublishingJob_DuplicateResultRejected(t *testing.T) {
	job := newTestPublishingJob(t, 2)
	taskID := uuid.New()

	require.NoError(t, job.RecordResult(PublishingResult{
		TaskID:    taskID,
		ContentID: job.ContentIDs[0],
		Success:   true,
	}))
	err := job.RecordResult(PublishingResult{
		TaskID:    taskID,
		ContentID: job.ContentIDs[0],
		Success:   true,
	})
	assert.ErrorIs(t, err, ErrDuplicateResult)
	assert.Equal(t, 1, job.Progress.Published)
}

func TestPublishingJob_Cancel(t *testing.T) {
	job := newTestPublishingJob(t, 3)

	require.NoError(t, job.RecordResult(PublishingResult{
		TaskID:    uuid.New(),
		ContentID: job.ContentIDs[0],
		Success:   true,
	}))
	require.NoError(t, job.Cancel())

	assert.Equal(t, PublishingJobStatusCancelled, job.Status)
	assert.Len(t, job.Results, 1)

	err := job.RecordResult(PublishingResult{
		TaskID:    uuid.New(),
		ContentID: job.ContentIDs[1],
		Success:   true,
	})
	assert.ErrorIs(t, err, ErrJobFinalized)
}
