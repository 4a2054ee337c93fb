package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ResearchStatus represents the processing state of a research job.
type ResearchStatus string

// Possible research job status values.
const (
	ResearchStatusPending    ResearchStatus = "pending"
	ResearchStatusProcessing ResearchStatus = "processing"
	ResearchStatusCompleted  ResearchStatus = "completed"
	ResearchStatusFailed     ResearchStatus = "failed"
)

// Common validation errors for research jobs.
var (
	ErrEmptyResearchJobID = errors.New("research job ID cannot be empty")
	ErrEmptySourceURL     = errors.New("source document URL cannot be empty")
)

// SourceDocument is a single crawled source collected by a research
// job. Content generation tasks consume groups of these documents.
type SourceDocument struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Validate checks if the SourceDocument has valid data.
func (d *SourceDocument) Validate() error {
	if d.URL == "" {
		return ErrEmptySourceURL
	}
	if d.Content == "" {
		return ErrEmptyContent
	}
	return nil
}

// ResearchJob is the upstream crawl/research result set a batch
// generation job is created from. Only the fields the orchestration
// core needs are modeled here; crawling itself happens elsewhere.
type ResearchJob struct {
	ID          uuid.UUID        `json:"id"`
	Topic       string           `json:"topic"`
	Status      ResearchStatus   `json:"status"`
	Sources     []SourceDocument `json:"sources"`
	CreatedAt   time.Time        `json:"created_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// Validate checks if the ResearchJob has valid data.
func (r *ResearchJob) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyResearchJobID
	}
	if !isValidResearchStatus(r.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// IsCompleted reports whether the research job finished successfully
// and its source set is available for batch generation.
func (r *ResearchJob) IsCompleted() bool {
	return r.Status == ResearchStatusCompleted
}

func isValidResearchStatus(status ResearchStatus) bool {
	switch status {
	case ResearchStatusPending, ResearchStatusProcessing,
		ResearchStatusCompleted, ResearchStatusFailed:
		return true
	default:
		return false
	}
}
