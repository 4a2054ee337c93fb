package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for generated content.
var (
	ErrEmptyContentID    = errors.New("content ID cannot be empty")
	ErrEmptyContentTitle = errors.New("content title cannot be empty")
	ErrInvalidUniqueness = errors.New("uniqueness score must be in [0,1]")
)

// wordsPerMinute is the reading-speed assumption used for the derived
// reading time metadata field.
const wordsPerMinute = 200

// ContentMetadata carries provenance and SEO data for a generated
// content item.
type ContentMetadata struct {
	SourceURLs         []string `json:"source_urls"`
	WordCount          int      `json:"word_count"`
	ReadingTimeMinutes int      `json:"reading_time_minutes"`
	AIProvider         string   `json:"ai_provider"`
	SEOTitle           string   `json:"seo_title,omitempty"`
	SEODescription     string   `json:"seo_description,omitempty"`
	FocusKeyword       string   `json:"focus_keyword,omitempty"`
}

// GeneratedContent is one AI-generated content item produced by a
// successful generation task. It is immutable after creation except
// for operator edits and approval, which happen outside this core.
type GeneratedContent struct {
	ID              uuid.UUID       `json:"id"`
	BatchJobID      uuid.UUID       `json:"batch_job_id"`
	Type            string          `json:"type"`
	Title           string          `json:"title"`
	Body            string          `json:"body"`
	Excerpt         string          `json:"excerpt"`
	UniquenessScore float64         `json:"uniqueness_score"`
	Metadata        ContentMetadata `json:"metadata"`
	Approved        bool            `json:"approved"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewGeneratedContent creates a content item and fills in the derived
// metadata fields (word count, reading time).
func NewGeneratedContent(
	batchJobID uuid.UUID,
	contentType, title, body, excerpt string,
	uniqueness float64,
	metadata ContentMetadata,
) (*GeneratedContent, error) {
	words := len(strings.Fields(body))
	metadata.WordCount = words
	metadata.ReadingTimeMinutes = (words + wordsPerMinute - 1) / wordsPerMinute

	content := &GeneratedContent{
		ID:              uuid.New(),
		BatchJobID:      batchJobID,
		Type:            contentType,
		Title:           title,
		Body:            body,
		Excerpt:         excerpt,
		UniquenessScore: uniqueness,
		Metadata:        metadata,
		CreatedAt:       time.Now().UTC(),
	}
	if err := content.Validate(); err != nil {
		return nil, err
	}
	return content, nil
}

// Validate checks if the GeneratedContent has valid data.
func (c *GeneratedContent) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyContentID
	}
	if c.Title == "" {
		return ErrEmptyContentTitle
	}
	if c.Body == "" {
		return ErrEmptyContent
	}
	if c.UniquenessScore < 0 || c.UniquenessScore > 1 {
		return ErrInvalidUniqueness
	}
	return nil
}
