package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/calyptra/autopress/internal/domain"
)

// MetricsStore persists per-content performance records with a long
// TTL (reference: 30 days).
// Version: 1.0
type MetricsStore interface {
	// CreateRecord saves the initial performance record at publish
	// time.
	CreateRecord(ctx context.Context, record *domain.PerformanceRecord) error

	// GetRecord retrieves the performance record for a content item.
	// Returns ErrPerformanceNotFound if absent or expired.
	GetRecord(ctx context.Context, contentID uuid.UUID) (*domain.PerformanceRecord, error)

	// UpdateRecord applies mutate to the current record and persists
	// the result atomically per content ID.
	UpdateRecord(
		ctx context.Context,
		contentID uuid.UUID,
		mutate func(record *domain.PerformanceRecord) error,
	) (*domain.PerformanceRecord, error)
}

// FineTuningStore is the append-only curated dataset of
// high-performing content. Entries are deduplicated by
// (contentID, period) and never edited once added.
// Version: 1.0
type FineTuningStore interface {
	// Append adds an entry unless one already exists for the entry's
	// (contentID, period) pair. Returns true if the entry was added,
	// false if it was a duplicate.
	Append(ctx context.Context, entry *domain.FineTuningEntry) (bool, error)

	// List returns up to limit entries in insertion order.
	List(ctx context.Context, limit int) ([]*domain.FineTuningEntry, error)
}
