package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/placeimages/internal/storage"
)

// CuratedIndex exposes the curated table to the API
type CuratedIndex interface {
	ListCuratedSlugs() []string
	HasCuratedImagery(name string) bool
}

type Handler struct {
	collections *storage.CollectionStore
	curated     CuratedIndex
}

func New(collections *storage.CollectionStore, curated CuratedIndex) *Handler {
	return &Handler{
		collections: collections,
		curated:     curated,
	}
}

// Routes registers every API endpoint on mux
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/collections", h.HandleCollections)
	mux.HandleFunc("/api/collections/", h.HandleCollectionDetail)
	mux.HandleFunc("/api/curated", h.HandleCurated)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}
