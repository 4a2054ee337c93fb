package domain

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// PublishingJobStatus represents the lifecycle state of an automated
// publishing job.
type PublishingJobStatus string

// Possible publishing job status values.
const (
	PublishingJobStatusPending            PublishingJobStatus = "pending"
	PublishingJobStatusProcessing         PublishingJobStatus = "processing"
	PublishingJobStatusCompleted          PublishingJobStatus = "completed"
	PublishingJobStatusPartiallyCompleted PublishingJobStatus = "partially_completed"
	PublishingJobStatusFailed             PublishingJobStatus = "failed"
	PublishingJobStatusCancelled          PublishingJobStatus = "cancelled"
)

// Bounds on the per-item publish stagger, enforced at the settings
// validation boundary.
const (
	MinDelayBetweenPosts = 10 * time.Second
	MaxDelayBetweenPosts = 5 * time.Minute
)

// Common validation errors for publishing jobs.
var (
	ErrEmptyPublishingJobID = errors.New("publishing job ID cannot be empty")
	ErrNoContentIDs         = errors.New("publishing job requires at least one content ID")
	ErrInvalidPostDelay     = errors.New("delay between posts out of allowed range")
)

// PublishSettings configures an automated publishing job.
type PublishSettings struct {
	Status                    string        `json:"status"`
	Categories                []string      `json:"categories,omitempty"`
	Tags                      []string      `json:"tags,omitempty"`
	DelayBetweenPosts         time.Duration `json:"delay_between_posts"`
	EnablePerformanceTracking bool          `json:"enable_performance_tracking"`
	AutoOptimization          bool          `json:"auto_optimization"`
	ScheduledDate             *time.Time    `json:"scheduled_date,omitempty"`
}

// Validate checks the publish settings, clamping nothing: callers get
// an error rather than silently adjusted values.
func (s *PublishSettings) Validate() error {
	if s.DelayBetweenPosts < MinDelayBetweenPosts || s.DelayBetweenPosts > MaxDelayBetweenPosts {
		return ErrInvalidPostDelay
	}
	return nil
}

// PublishProgress tracks aggregate publish completion; the invariant
// Published+Failed <= Total holds at all times.
type PublishProgress struct {
	Total        int    `json:"total"`
	Published    int    `json:"published"`
	Failed       int    `json:"failed"`
	Processing   int    `json:"processing"`
	Percentage   int    `json:"percentage"`
	CurrentStage string `json:"current_stage"`
}

// Done reports whether every publish task has reached a terminal state.
func (p *PublishProgress) Done() bool {
	return p.Total > 0 && p.Published+p.Failed == p.Total
}

func (p *PublishProgress) recalculate() {
	if p.Total == 0 {
		p.Percentage = 0
		return
	}
	p.Percentage = int(math.Round(float64(p.Published+p.Failed) / float64(p.Total) * 100))
}

// PublishingResult records the outcome of one publish task.
type PublishingResult struct {
	TaskID                     uuid.UUID  `json:"task_id"`
	ContentID                  uuid.UUID  `json:"content_id"`
	Success                    bool       `json:"success"`
	SiteID                     string     `json:"site_id,omitempty"`
	ExternalID                 string     `json:"external_id,omitempty"`
	ExternalURL                string     `json:"external_url,omitempty"`
	Error                      string     `json:"error,omitempty"`
	PublishedAt                *time.Time `json:"published_at,omitempty"`
	PerformanceTrackingEnabled bool       `json:"performance_tracking_enabled"`
}

// PublishingJob publishes an ordered set of approved content items to
// routed destination sites, one staggered task per item.
type PublishingJob struct {
	ID             uuid.UUID           `json:"id"`
	ContentIDs     []uuid.UUID         `json:"content_ids"`
	CredentialsRef string              `json:"credentials_ref"`
	Settings       PublishSettings     `json:"settings"`
	Status         PublishingJobStatus `json:"status"`
	Progress       PublishProgress     `json:"progress"`
	Results        []PublishingResult  `json:"results"`
	CreatedAt      time.Time           `json:"created_at"`
	CompletedAt    *time.Time          `json:"completed_at,omitempty"`
}

// NewPublishingJob creates a pending publishing job over the given
// ordered content IDs.
func NewPublishingJob(
	contentIDs []uuid.UUID,
	credentialsRef string,
	settings PublishSettings,
) (*PublishingJob, error) {
	if len(contentIDs) == 0 {
		return nil, ErrNoContentIDs
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &PublishingJob{
		ID:             uuid.New(),
		ContentIDs:     contentIDs,
		CredentialsRef: credentialsRef,
		Settings:       settings,
		Status:         PublishingJobStatusPending,
		Progress:       PublishProgress{Total: len(contentIDs), CurrentStage: "queued"},
		Results:        []PublishingResult{},
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// Validate checks if the PublishingJob has valid data.
func (j *PublishingJob) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyPublishingJobID
	}
	if len(j.ContentIDs) == 0 {
		return ErrNoContentIDs
	}
	if !isValidPublishingJobStatus(j.Status) {
		return ErrInvalidStatus
	}
	if j.Progress.Published+j.Progress.Failed > j.Progress.Total {
		return ErrProgressOverflow
	}
	return nil
}

// IsTerminal reports whether the job has reached a final status.
func (j *PublishingJob) IsTerminal() bool {
	switch j.Status {
	case PublishingJobStatusCompleted, PublishingJobStatusPartiallyCompleted,
		PublishingJobStatusFailed, PublishingJobStatusCancelled:
		return true
	default:
		return false
	}
}

// MarkTaskStarted bumps the processing counter for one publish task.
func (j *PublishingJob) MarkTaskStarted() error {
	if j.IsTerminal() {
		return ErrJobFinalized
	}
	j.Progress.Processing++
	j.Progress.CurrentStage = "publishing"
	if j.Status == PublishingJobStatusPending {
		j.Status = PublishingJobStatusProcessing
	}
	return nil
}

// RecordResult appends a publish result and updates progress. The
// last result moves the job to completed or partially_completed and
// sets CompletedAt exactly once. Duplicate task IDs and results
// arriving after the job is terminal are rejected.
func (j *PublishingJob) RecordResult(result PublishingResult) error {
	if j.IsTerminal() {
		return ErrJobFinalized
	}
	if j.Progress.Published+j.Progress.Failed >= j.Progress.Total {
		return ErrProgressOverflow
	}
	for i := range j.Results {
		if j.Results[i].TaskID == result.TaskID {
			return ErrDuplicateResult
		}
	}

	j.Results = append(j.Results, result)
	if result.Success {
		j.Progress.Published++
	} else {
		j.Progress.Failed++
	}
	if j.Progress.Processing > 0 {
		j.Progress.Processing--
	}
	j.Progress.recalculate()

	if j.Progress.Done() {
		now := time.Now().UTC()
		if j.Progress.Failed > 0 {
			j.Status = PublishingJobStatusPartiallyCompleted
		} else {
			j.Status = PublishingJobStatusCompleted
		}
		j.Progress.CurrentStage = "finished"
		if j.CompletedAt == nil {
			j.CompletedAt = &now
		}
	}
	return nil
}

// Cancel moves the job into the cancelled terminal state, keeping
// already-recorded results retrievable.
func (j *PublishingJob) Cancel() error {
	if j.IsTerminal() {
		return ErrJobFinalized
	}
	now := time.Now().UTC()
	j.Status = PublishingJobStatusCancelled
	j.Progress.CurrentStage = "cancelled"
	if j.CompletedAt == nil {
		j.CompletedAt = &now
	}
	return nil
}

func isValidPublishingJobStatus(status PublishingJobStatus) bool {
	switch status {
	case PublishingJobStatusPending, PublishingJobStatusProcessing,
		PublishingJobStatusCompleted, PublishingJobStatusPartiallyCompleted,
		PublishingJobStatusFailed, PublishingJobStatusCancelled:
		return true
	default:
		return false
	}
}
