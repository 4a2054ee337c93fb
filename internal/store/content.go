package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/calyptra/autopress/internal/domain"
)

// ContentStore persists generated content items.
// Version: 1.0
type ContentStore interface {
	// CreateContent saves a newly generated content item.
	CreateContent(ctx context.Context, content *domain.GeneratedContent) error

	// GetContent retrieves a content item by ID regardless of approval
	// state. Returns ErrContentNotFound if absent.
	GetContent(ctx context.Context, id uuid.UUID) (*domain.GeneratedContent, error)

	// GetApprovedContent retrieves a content item only if it has been
	// approved by an operator. Returns ErrContentNotFound if the item
	// is missing or not approved.
	GetApprovedContent(ctx context.Context, id uuid.UUID) (*domain.GeneratedContent, error)

	// ListContentByBatchJob returns all content items produced by a
	// batch job, in creation order.
	ListContentByBatchJob(ctx context.Context, batchJobID uuid.UUID) ([]*domain.GeneratedContent, error)
}
