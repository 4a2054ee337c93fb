package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/calyptra/autopress/internal/api/shared"
	"github.com/calyptra/autopress/internal/domain"
)

// PerformanceReader is the service surface the performance endpoints
// depend on.
type PerformanceReader interface {
	GetPerformance(ctx context.Context, contentID uuid.UUID) (*domain.PerformanceRecord, error)
	GetFineTuningDataset(ctx context.Context, limit int) ([]*domain.FineTuningEntry, error)
}

// PerformanceHandler handles performance and fine-tuning dataset
// HTTP requests.
type PerformanceHandler struct {
	service PerformanceReader
	logger  *slog.Logger
}

// NewPerformanceHandler creates a new PerformanceHandler.
func NewPerformanceHandler(service PerformanceReader, logger *slog.Logger) *PerformanceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PerformanceHandler{
		service: service,
		logger:  logger.With("component", "performance_handler"),
	}
}

// GetPerformance handles GET /api/performance/{contentID}.
func (h *PerformanceHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	contentID, err := uuid.Parse(chi.URLParam(r, "contentID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid content ID")
		return
	}

	record, err := h.service.GetPerformance(r.Context(), contentID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, record)
}

// GetFineTuningDataset handles GET /api/fine-tuning/dataset. An
// optional limit query parameter caps the number of entries; zero or
// absent returns the whole dataset.
func (h *PerformanceHandler) GetFineTuningDataset(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	entries, err := h.service.GetFineTuningDataset(r.Context(), limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if entries == nil {
		entries = []*domain.FineTuningEntry{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, FineTuningDatasetResponse{
		Count:   len(entries),
		Entries: entries,
	})
}
