package ingest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/statusgarden/availability/internal/pkg/httputil"
)

// Handler handles HTTP requests for manual ingestion triggers.
type Handler struct {
	service *Service
}

// NewHandler creates a new ingest handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the ingest routes. The route group is expected to
// be wrapped in bearer token authentication by the caller.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/ingest", h.Trigger)
}

// Trigger handles POST /ingest: runs one ingestion pass synchronously and
// returns its report.
func (h *Handler) Trigger(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Run(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.Success(w, http.StatusOK, report)
}
