package domain

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// BatchJobStatus represents the lifecycle state of a batch generation job.
type BatchJobStatus string

// Possible batch job status values. Statuses only move forward:
// pending -> processing -> one of the terminal states.
const (
	BatchJobStatusPending             BatchJobStatus = "pending"
	BatchJobStatusProcessing          BatchJobStatus = "processing"
	BatchJobStatusCompleted           BatchJobStatus = "completed"
	BatchJobStatusCompletedWithErrors BatchJobStatus = "completed_with_errors"
	BatchJobStatusFailed              BatchJobStatus = "failed"
	BatchJobStatusCancelled           BatchJobStatus = "cancelled"
)

// TaskState represents the lifecycle state of a single generation or
// publish task within a job.
type TaskState string

// Possible task states.
const (
	TaskStatePending    TaskState = "pending"
	TaskStateProcessing TaskState = "processing"
	TaskStateCompleted  TaskState = "completed"
	TaskStateFailed     TaskState = "failed"
)

// Common validation errors for batch jobs.
var (
	ErrEmptyBatchJobID      = errors.New("batch job ID cannot be empty")
	ErrEmptyBatchResearchID = errors.New("batch job research job ID cannot be empty")
	ErrInvalidTargetCount   = errors.New("target count must be positive")
	ErrEmptySourceGroup     = errors.New("generation task source group cannot be empty")
	ErrTaskNotFound         = errors.New("task not found in job")
)

// ContentRequirements constrains the generated artifact.
type ContentRequirements struct {
	MinWordCount        int     `json:"min_word_count"`
	MaxWordCount        int     `json:"max_word_count"`
	UniquenessThreshold float64 `json:"uniqueness_threshold"`
	IncludeSEOFields    bool    `json:"include_seo_fields"`
}

// BatchSettings configures a batch generation job. Each generation
// task carries a snapshot of these settings so later edits to the job
// cannot change in-flight work.
type BatchSettings struct {
	TargetCount        int                 `json:"target_count"`
	BrandVoice         string              `json:"brand_voice"`
	TargetAudience     string              `json:"target_audience"`
	ContentType        string              `json:"content_type"`
	Requirements       ContentRequirements `json:"requirements"`
	ProviderPreference string              `json:"provider_preference,omitempty"`
}

// Validate checks the batch settings.
func (s *BatchSettings) Validate() error {
	if s.TargetCount <= 0 {
		return ErrInvalidTargetCount
	}
	if s.Requirements.UniquenessThreshold < 0 || s.Requirements.UniquenessThreshold > 1 {
		return errors.New("uniqueness threshold must be in [0,1]")
	}
	return nil
}

// JobProgress tracks aggregate task completion for a job. The
// invariant Completed+Failed <= Total holds at all times; Percentage
// is always round((Completed+Failed)/Total*100).
type JobProgress struct {
	Total                  int           `json:"total"`
	Completed              int           `json:"completed"`
	Failed                 int           `json:"failed"`
	Processing             int           `json:"processing"`
	Percentage             int           `json:"percentage"`
	CurrentStage           string        `json:"current_stage"`
	EstimatedTimeRemaining time.Duration `json:"estimated_time_remaining"`
}

// Done reports whether every task has reached a terminal state.
func (p *JobProgress) Done() bool {
	return p.Total > 0 && p.Completed+p.Failed == p.Total
}

// recalculate refreshes the derived percentage field.
func (p *JobProgress) recalculate() {
	if p.Total == 0 {
		p.Percentage = 0
		return
	}
	p.Percentage = int(math.Round(float64(p.Completed+p.Failed) / float64(p.Total) * 100))
}

// GenerationTask is one schedulable unit of content generation. It is
// owned exclusively by its batch job; lower Priority values dispatch
// earlier.
type GenerationTask struct {
	ID          uuid.UUID        `json:"id"`
	BatchJobID  uuid.UUID        `json:"batch_job_id"`
	SourceGroup []SourceDocument `json:"source_group"`
	Settings    BatchSettings    `json:"settings"`
	Priority    int              `json:"priority"`
	State       TaskState        `json:"state"`
	ContentID   *uuid.UUID       `json:"content_id,omitempty"`
	Error       string           `json:"error,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// NewGenerationTask creates a pending generation task for the given
// job over a non-empty source group.
func NewGenerationTask(
	batchJobID uuid.UUID,
	sources []SourceDocument,
	settings BatchSettings,
	priority int,
) (*GenerationTask, error) {
	if batchJobID == uuid.Nil {
		return nil, ErrEmptyBatchJobID
	}
	if len(sources) == 0 {
		return nil, ErrEmptySourceGroup
	}
	return &GenerationTask{
		ID:          uuid.New(),
		BatchJobID:  batchJobID,
		SourceGroup: sources,
		Settings:    settings,
		Priority:    priority,
		State:       TaskStatePending,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// BatchJob is a batch content generation job: one research result set
// split into TargetCount generation tasks.
type BatchJob struct {
	ID            uuid.UUID        `json:"id"`
	ResearchJobID uuid.UUID        `json:"research_job_id"`
	Settings      BatchSettings    `json:"settings"`
	Status        BatchJobStatus   `json:"status"`
	Progress      JobProgress      `json:"progress"`
	Tasks         []GenerationTask `json:"tasks"`
	CreatedAt     time.Time        `json:"created_at"`
	CompletedAt   *time.Time       `json:"completed_at,omitempty"`
}

// NewBatchJob creates a pending batch job. Tasks are attached
// afterwards via AttachTasks once source partitioning is done.
func NewBatchJob(researchJobID uuid.UUID, settings BatchSettings) (*BatchJob, error) {
	if researchJobID == uuid.Nil {
		return nil, ErrEmptyBatchResearchID
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &BatchJob{
		ID:            uuid.New(),
		ResearchJobID: researchJobID,
		Settings:      settings,
		Status:        BatchJobStatusPending,
		Progress:      JobProgress{CurrentStage: "created"},
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// AttachTasks sets the job's ordered task list and initializes
// progress totals.
func (j *BatchJob) AttachTasks(tasks []GenerationTask) {
	j.Tasks = tasks
	j.Progress.Total = len(tasks)
	j.Progress.CurrentStage = "queued"
	j.Progress.recalculate()
}

// Validate checks if the BatchJob has valid data.
func (j *BatchJob) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyBatchJobID
	}
	if j.ResearchJobID == uuid.Nil {
		return ErrEmptyBatchResearchID
	}
	if !isValidBatchJobStatus(j.Status) {
		return ErrInvalidStatus
	}
	if err := j.Settings.Validate(); err != nil {
		return err
	}
	if j.Progress.Completed+j.Progress.Failed > j.Progress.Total {
		return ErrProgressOverflow
	}
	return nil
}

// IsTerminal reports whether the job has reached a final status.
func (j *BatchJob) IsTerminal() bool {
	switch j.Status {
	case BatchJobStatusCompleted, BatchJobStatusCompletedWithErrors,
		BatchJobStatusFailed, BatchJobStatusCancelled:
		return true
	default:
		return false
	}
}

// MarkTaskStarted moves a task to processing and bumps the processing
// counter. Rejected once the job is terminal so cancelled jobs accept
// no further work.
func (j *BatchJob) MarkTaskStarted(taskID uuid.UUID) error {
	if j.IsTerminal() {
		return ErrJobFinalized
	}
	task := j.findTask(taskID)
	if task == nil {
		return ErrTaskNotFound
	}
	now := time.Now().UTC()
	task.State = TaskStateProcessing
	task.StartedAt = &now
	j.Progress.Processing++
	j.Progress.CurrentStage = "generating"
	if j.Status == BatchJobStatusPending {
		j.Status = BatchJobStatusProcessing
	}
	return nil
}

// RecordTaskOutcome applies a terminal task result to the job,
// updating counters and, when the last task lands, the terminal
// job status. CompletedAt is set exactly once. Outcomes arriving
// after the job is terminal (e.g. post-cancellation) are rejected
// with ErrJobFinalized; an outcome for a task that already has one
// is rejected with ErrDuplicateResult. Neither changes progress.
func (j *BatchJob) RecordTaskOutcome(taskID uuid.UUID, contentID *uuid.UUID, taskErr string) error {
	if j.IsTerminal() {
		return ErrJobFinalized
	}
	task := j.findTask(taskID)
	if task == nil {
		return ErrTaskNotFound
	}
	if task.State == TaskStateCompleted || task.State == TaskStateFailed {
		return ErrDuplicateResult
	}
	if j.Progress.Completed+j.Progress.Failed >= j.Progress.Total {
		return ErrProgressOverflow
	}

	now := time.Now().UTC()
	task.CompletedAt = &now
	if taskErr != "" {
		task.State = TaskStateFailed
		task.Error = taskErr
		j.Progress.Failed++
	} else {
		task.State = TaskStateCompleted
		task.ContentID = contentID
		j.Progress.Completed++
	}
	if j.Progress.Processing > 0 {
		j.Progress.Processing--
	}
	j.Progress.recalculate()

	if j.Progress.Done() {
		if j.Progress.Failed > 0 {
			j.Status = BatchJobStatusCompletedWithErrors
		} else {
			j.Status = BatchJobStatusCompleted
		}
		j.Progress.CurrentStage = "finished"
		if j.CompletedAt == nil {
			j.CompletedAt = &now
		}
	}
	return nil
}

// Cancel moves the job into the cancelled terminal state. Completed
// task results remain attached and retrievable; tasks still in flight
// keep running but their outcomes are rejected by RecordTaskOutcome.
func (j *BatchJob) Cancel() error {
	if j.IsTerminal() {
		return ErrJobFinalized
	}
	now := time.Now().UTC()
	j.Status = BatchJobStatusCancelled
	j.Progress.CurrentStage = "cancelled"
	if j.CompletedAt == nil {
		j.CompletedAt = &now
	}
	return nil
}

// CompletedResults returns the content IDs of all tasks that finished
// successfully, in task priority order.
func (j *BatchJob) CompletedResults() []uuid.UUID {
	ids := make([]uuid.UUID, 0, j.Progress.Completed)
	for i := range j.Tasks {
		if j.Tasks[i].State == TaskStateCompleted && j.Tasks[i].ContentID != nil {
			ids = append(ids, *j.Tasks[i].ContentID)
		}
	}
	return ids
}

func (j *BatchJob) findTask(taskID uuid.UUID) *GenerationTask {
	for i := range j.Tasks {
		if j.Tasks[i].ID == taskID {
			return &j.Tasks[i]
		}
	}
	return nil
}

func isValidBatchJobStatus(status BatchJobStatus) bool {
	switch status {
	case BatchJobStatusPending, BatchJobStatusProcessing,
		BatchJobStatusCompleted, BatchJobStatusCompletedWithErrors,
		BatchJobStatusFailed, BatchJobStatusCancelled:
		return true
	default:
		return false
	}
}
