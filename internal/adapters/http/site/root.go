// Package site serves the placeholder landing page.
package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
)

// ErrServe is returned when the landing page cannot be read.
var ErrServe = errors.New("site serve failed")

const indexFile = "index.html"

// Register attaches the landing page at the exact root path. Any other
// path that reaches this handler answers 404.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/", NewRootHandler().HandleRoot)
}

// RootHandler handles root path requests.
type RootHandler struct{}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleRoot handles GET / requests.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	body, err := fs.ReadFile(FS(), indexFile)
	if err != nil {
		http.Error(w, fmt.Errorf("%w: %w", ErrServe, err).Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}
