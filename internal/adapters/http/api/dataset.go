package api

import (
	"bytes"
	"net/http"

	"github.com/okian/uranai/internal/domain/model"
	"github.com/okian/uranai/internal/presenter"
)

// DatasetHandler serves the ranking history as JSONP and CSV.
type DatasetHandler struct {
	deps Dependencies
}

// NewDatasetHandler creates a new dataset handler.
func NewDatasetHandler(deps Dependencies) *DatasetHandler {
	return &DatasetHandler{deps: deps}
}

// HandleJSONP handles GET /jsonp?callback=name.
func (h *DatasetHandler) HandleJSONP(w http.ResponseWriter, r *http.Request) {
	const op = "api.jsonp"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	callback := r.URL.Query().Get("callback")
	if callback == "" {
		callback = presenter.DefaultCallback
	}
	if !presenter.ValidCallback(callback) {
		writeError(w, http.StatusBadRequest, "invalid_callback", WrapKind(op, ErrBadRequest, presenter.ErrInvalidCallback))
		return
	}

	ds, ok := h.dataset(w, r, op)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := presenter.WriteJSONP(&buf, callback, ds); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	write(w, presenter.ContentTypeJSONP, buf.Bytes())
}

// HandleCSV handles GET /csv.
func (h *DatasetHandler) HandleCSV(w http.ResponseWriter, r *http.Request) {
	const op = "api.csv"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	ds, ok := h.dataset(w, r, op)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := presenter.WriteCSV(&buf, ds); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	write(w, presenter.ContentTypeCSV, buf.Bytes())
}

// dataset loads the history or answers 503.
func (h *DatasetHandler) dataset(w http.ResponseWriter, r *http.Request, op string) (model.Dataset, bool) {
	ds, err := h.deps.Dataset(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "dataset_unavailable", WrapKind(op, ErrUnavailable, err))
		return nil, false
	}
	return ds, true
}

func write(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
