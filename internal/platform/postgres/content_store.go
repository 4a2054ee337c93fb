package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/calyptra/autopress/internal/domain"
	"github.com/calyptra/autopress/internal/platform/logger"
	"github.com/calyptra/autopress/internal/store"
)

// PostgresContentStore implements store.ContentStore on PostgreSQL.
// Content metadata is stored as a JSONB column so new metadata fields
// do not need schema migrations.
type PostgresContentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresContentStore creates a content store. The caller owns
// the database handle or transaction.
func NewPostgresContentStore(db store.DBTX, logger *slog.Logger) *PostgresContentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresContentStore{
		db:     db,
		logger: logger.With(slog.String("component", "content_store")),
	}
}

// Ensure PostgresContentStore implements store.ContentStore.
var _ store.ContentStore = (*PostgresContentStore)(nil)

// CreateContent saves a newly generated content item.
func (s *PostgresContentStore) CreateContent(ctx context.Context, content *domain.GeneratedContent) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := content.Validate(); err != nil {
		log.Warn("content validation failed during create",
			slog.String("error", err.Error()),
			slog.String("content_id", content.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	metadata, err := json.Marshal(content.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode content metadata: %w", err)
	}

	query := `
		INSERT INTO generated_content
			(id, batch_job_id, type, title, body, excerpt, uniqueness_score, metadata, approved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		content.ID,
		content.BatchJobID,
		content.Type,
		content.Title,
		content.Body,
		content.Excerpt,
		content.UniquenessScore,
		metadata,
		content.Approved,
		content.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create content",
			slog.String("error", err.Error()),
			slog.String("content_id", content.ID.String()),
			slog.String("batch_job_id", content.BatchJobID.String()))
		return MapError(err)
	}

	log.Info("content created",
		slog.String("content_id", content.ID.String()),
		slog.String("batch_job_id", content.BatchJobID.String()),
		slog.Int("word_count", content.Metadata.WordCount))
	return nil
}

// GetContent retrieves a content item by ID regardless of approval
// state.
func (s *PostgresContentStore) GetContent(ctx context.Context, id uuid.UUID) (*domain.GeneratedContent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := selectContentQuery + ` WHERE id = $1`
	content, err := s.scanContent(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("content not found", slog.String("content_id", id.String()))
			return nil, store.ErrContentNotFound
		}
		log.Error("failed to get content",
			slog.String("error", err.Error()),
			slog.String("content_id", id.String()))
		return nil, MapError(err)
	}
	return content, nil
}

// GetApprovedContent retrieves a content item only if an operator
// approved it. Unapproved items report the same not-found error as
// missing ones.
func (s *PostgresContentStore) GetApprovedContent(ctx context.Context, id uuid.UUID) (*domain.GeneratedContent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := selectContentQuery + ` WHERE id = $1 AND approved`
	content, err := s.scanContent(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("approved content not found", slog.String("content_id", id.String()))
			return nil, store.ErrContentNotFound
		}
		log.Error("failed to get approved content",
			slog.String("error", err.Error()),
			slog.String("content_id", id.String()))
		return nil, MapError(err)
	}
	return content, nil
}

// ListContentByBatchJob returns all content items a batch job
// produced, in creation order.
func (s *PostgresContentStore) ListContentByBatchJob(ctx context.Context, batchJobID uuid.UUID) ([]*domain.GeneratedContent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := selectContentQuery + ` WHERE batch_job_id = $1 ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query, batchJobID)
	if err != nil {
		log.Error("failed to list content by batch job",
			slog.String("error", err.Error()),
			slog.String("batch_job_id", batchJobID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	items := []*domain.GeneratedContent{}
	for rows.Next() {
		content, err := s.scanContent(rows)
		if err != nil {
			log.Error("failed to scan content row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		items = append(items, content)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return items, nil
}

const selectContentQuery = `
	SELECT id, batch_job_id, type, title, body, excerpt, uniqueness_score, metadata, approved, created_at
	FROM generated_content`

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresContentStore) scanContent(row rowScanner) (*domain.GeneratedContent, error) {
	var content domain.GeneratedContent
	var metadata []byte

	err := row.Scan(
		&content.ID,
		&content.BatchJobID,
		&content.Type,
		&content.Title,
		&content.Body,
		&content.Excerpt,
		&content.UniquenessScore,
		&metadata,
		&content.Approved,
		&content.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(metadata, &content.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode content metadata: %w", err)
	}
	return &content, nil
}
