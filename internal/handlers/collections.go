package handlers

import (
	"net/http"
	"slices"
	"strings"

	"github.com/lehigh-university-libraries/placeimages/internal/models"
)

// CollectionSummary is one entry of the collection listing
type CollectionSummary struct {
	Slug       string `json:"slug"`
	ImageCount int    `json:"image_count"`
}

// CuratedStatus answers whether a single location has curated imagery
type CuratedStatus struct {
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	HasCurated bool   `json:"has_curated"`
}

func (h *Handler) HandleCollections(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		collections := h.collections.GetAll()
		summaries := make([]CollectionSummary, 0, len(collections))
		for slug, images := range collections {
			summaries = append(summaries, CollectionSummary{Slug: slug, ImageCount: len(images)})
		}
		slices.SortFunc(summaries, func(a, b CollectionSummary) int {
			return strings.Compare(a.Slug, b.Slug)
		})
		h.writeJSON(w, summaries)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleCollectionDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	slug := models.Slugify(strings.TrimPrefix(r.URL.Path, "/api/collections/"))
	images, ok := h.collections.Get(slug)
	if !ok {
		h.writeError(w, "Collection not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, images)
}

func (h *Handler) HandleCurated(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if name := r.URL.Query().Get("name"); name != "" {
		h.writeJSON(w, CuratedStatus{
			Name:       name,
			Slug:       models.Slugify(name),
			HasCurated: h.curated.HasCuratedImagery(name),
		})
		return
	}
	h.writeJSON(w, h.curated.ListCuratedSlugs())
}
