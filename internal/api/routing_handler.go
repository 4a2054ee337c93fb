package api

import (
	"log/slog"
	"net/http"

	"github.com/calyptra/autopress/internal/api/shared"
	"github.com/calyptra/autopress/internal/domain"
)

// RoutePreviewer is the routing surface the preview endpoint depends
// on. Satisfied by routing.Router.
type RoutePreviewer interface {
	DetermineTargetSite(req *domain.RouteRequest) (string, error)
}

// RoutingHandler handles routing preview HTTP requests.
type RoutingHandler struct {
	router RoutePreviewer
	logger *slog.Logger
}

// NewRoutingHandler creates a new RoutingHandler.
func NewRoutingHandler(router RoutePreviewer, logger *slog.Logger) *RoutingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoutingHandler{
		router: router,
		logger: logger.With("component", "routing_handler"),
	}
}

// PreviewRouting handles POST /api/routing/preview. The routing
// decision is computed without publishing anything.
func (h *RoutingHandler) PreviewRouting(w http.ResponseWriter, r *http.Request) {
	var req RoutingPreviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	siteID, err := h.router.DetermineTargetSite(req.ToRouteRequest())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RoutingPreviewResponse{TargetSiteID: siteID})
}
