package api

import (
	"errors"
	"net/http"

	service "github.com/okian/uranai/internal/app"
)

// UpdateHandler triggers ingestion runs.
type UpdateHandler struct {
	deps Dependencies
}

// NewUpdateHandler creates a new update handler.
func NewUpdateHandler(deps Dependencies) *UpdateHandler {
	return &UpdateHandler{deps: deps}
}

// HandleUpdate handles GET /update. A successful run, including one that
// found today's record already stored, answers 200 with an empty body.
func (h *UpdateHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	if _, err := h.deps.Ingest(r.Context()); err != nil {
		status, code := ingestStatus(err)
		writeError(w, status, code, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ingestStatus maps an ingestion failure to a response status and code.
func ingestStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrFetchFailed):
		return http.StatusBadGateway, "fetch_failed"
	case errors.Is(err, service.ErrDateExtractionFailed):
		return http.StatusUnprocessableEntity, "date_extraction_failed"
	case errors.Is(err, service.ErrRankingExtractionFailed):
		return http.StatusUnprocessableEntity, "ranking_extraction_failed"
	case errors.Is(err, service.ErrStoreFailed):
		return http.StatusInternalServerError, "store_failed"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
