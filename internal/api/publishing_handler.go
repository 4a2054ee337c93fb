package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/calyptra/autopress/internal/api/shared"
	"github.com/calyptra/autopress/internal/domain"
)

// PublishingOrchestrator is the service surface the publishing job
// endpoints depend on.
type PublishingOrchestrator interface {
	SchedulePublishing(
		ctx context.Context,
		contentIDs []uuid.UUID,
		credentialsRef string,
		settings domain.PublishSettings,
	) (*domain.PublishingJob, error)
	GetPublishingJob(ctx context.Context, id uuid.UUID) (*domain.PublishingJob, error)
	CancelPublishingJob(ctx context.Context, id uuid.UUID) (*domain.PublishingJob, error)
}

// PublishingHandler handles publishing job HTTP requests.
type PublishingHandler struct {
	service PublishingOrchestrator
	logger  *slog.Logger
}

// NewPublishingHandler creates a new PublishingHandler.
func NewPublishingHandler(service PublishingOrchestrator, logger *slog.Logger) *PublishingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishingHandler{
		service: service,
		logger:  logger.With("component", "publishing_handler"),
	}
}

// CreatePublishingJob handles POST /api/publishing-jobs. Publishing
// runs staggered in the background, so the job is returned with 202
// Accepted once the precheck and approval validation pass.
func (h *PublishingHandler) CreatePublishingJob(w http.ResponseWriter, r *http.Request) {
	var req CreatePublishingJobRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}
	contentIDs, err := req.ParsedContentIDs()
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid content ID")
		return
	}

	job, err := h.service.SchedulePublishing(r.Context(), contentIDs, req.CredentialsRef, req.ToSettings())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, job)
}

// GetPublishingJob handles GET /api/publishing-jobs/{id}. The job
// document carries progress and per-item results.
func (h *PublishingHandler) GetPublishingJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDParam(w, r)
	if !ok {
		return
	}
	job, err := h.service.GetPublishingJob(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, job)
}

// GetPublishingResults handles GET /api/publishing-jobs/{id}/results,
// returning the per-item publish outcomes recorded so far.
func (h *PublishingHandler) GetPublishingResults(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDParam(w, r)
	if !ok {
		return
	}
	job, err := h.service.GetPublishingJob(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	results := job.Results
	if results == nil {
		results = []domain.PublishingResult{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, results)
}

// CancelPublishingJob handles POST /api/publishing-jobs/{id}/cancel.
func (h *PublishingHandler) CancelPublishingJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDParam(w, r)
	if !ok {
		return
	}
	job, err := h.service.CancelPublishingJob(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	h.logger.Info("publishing job cancelled via API", "job_id", id)
	shared.RespondWithJSON(w, r, http.StatusOK, job)
}
