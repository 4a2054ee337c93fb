package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/calyptra/autopress/internal/api/middleware"
)

// NewRouter assembles the HTTP routes over the given handlers.
func NewRouter(
	batch *BatchHandler,
	publishing *PublishingHandler,
	routing *RoutingHandler,
	performance *PerformanceHandler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.TraceMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Route("/batch-jobs", func(r chi.Router) {
			r.Post("/", batch.CreateBatchJob)
			r.Get("/{id}", batch.GetBatchJob)
			r.Get("/{id}/results", batch.GetBatchResults)
			r.Post("/{id}/cancel", batch.CancelBatchJob)
		})

		r.Route("/publishing-jobs", func(r chi.Router) {
			r.Post("/", publishing.CreatePublishingJob)
			r.Get("/{id}", publishing.GetPublishingJob)
			r.Get("/{id}/results", publishing.GetPublishingResults)
			r.Post("/{id}/cancel", publishing.CancelPublishingJob)
		})

		r.Post("/routing/preview", routing.PreviewRouting)

		r.Get("/performance/{contentID}", performance.GetPerformance)
		r.Get("/fine-tuning/dataset", performance.GetFineTuningDataset)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}
