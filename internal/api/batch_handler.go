package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/calyptra/autopress/internal/api/shared"
	"github.com/calyptra/autopress/internal/domain"
)

// BatchOrchestrator is the service surface the batch job endpoints
// depend on.
type BatchOrchestrator interface {
	CreateBatchJob(ctx context.Context, researchJobID uuid.UUID, settings domain.BatchSettings) (*domain.BatchJob, error)
	GetBatchJob(ctx context.Context, id uuid.UUID) (*domain.BatchJob, error)
	GetBatchResults(ctx context.Context, id uuid.UUID) ([]*domain.GeneratedContent, error)
	CancelBatchJob(ctx context.Context, id uuid.UUID) (*domain.BatchJob, error)
}

// BatchHandler handles batch generation job HTTP requests.
type BatchHandler struct {
	service BatchOrchestrator
	logger  *slog.Logger
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(service BatchOrchestrator, logger *slog.Logger) *BatchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchHandler{
		service: service,
		logger:  logger.With("component", "batch_handler"),
	}
}

// CreateBatchJob handles POST /api/batch-jobs. Generation runs in the
// background, so the job is returned with 202 Accepted.
func (h *BatchHandler) CreateBatchJob(w http.ResponseWriter, r *http.Request) {
	var req CreateBatchJobRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}
	researchJobID, err := uuid.Parse(req.ResearchJobID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid research_job_id")
		return
	}

	job, err := h.service.CreateBatchJob(r.Context(), researchJobID, req.ToSettings())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, job)
}

// GetBatchJob handles GET /api/batch-jobs/{id}.
func (h *BatchHandler) GetBatchJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDParam(w, r)
	if !ok {
		return
	}
	job, err := h.service.GetBatchJob(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, job)
}

// GetBatchResults handles GET /api/batch-jobs/{id}/results. Partial
// output of a still-running job is returned as-is.
func (h *BatchHandler) GetBatchResults(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDParam(w, r)
	if !ok {
		return
	}
	items, err := h.service.GetBatchResults(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if items == nil {
		items = []*domain.GeneratedContent{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, items)
}

// CancelBatchJob handles POST /api/batch-jobs/{id}/cancel.
func (h *BatchHandler) CancelBatchJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDParam(w, r)
	if !ok {
		return
	}
	job, err := h.service.CancelBatchJob(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	h.logger.Info("batch job cancelled via API", "job_id", id)
	shared.RespondWithJSON(w, r, http.StatusOK, job)
}

// jobIDParam parses the {id} URL parameter, responding with 400 on a
// malformed ID.
func jobIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid job ID")
		return uuid.Nil, false
	}
	return id, true
}
