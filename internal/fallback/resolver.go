package fallback

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/placeimages/internal/models"
	"github.com/lehigh-university-libraries/placeimages/internal/storage"
)

const (
	// DefaultPlaceholderBaseURL renders a labelled placeholder for the generic tier
	DefaultPlaceholderBaseURL = "https://placehold.co/1200x800/jpg"

	curatedPhotographer = "Local Photographer"
	genericPhotographer = "Stock Library"
)

// genericCategories is the fixed placeholder set used when no curated entry exists
var genericCategories = []struct {
	Label string
	Tag   string
}{
	{Label: "Skyline", Tag: "skyline"},
	{Label: "Street Life", Tag: "street"},
	{Label: "Landmarks", Tag: "landmarks"},
	{Label: "Night Life", Tag: "nightlife"},
}

// Resolver produces presentable imagery without any network access.
// Curated entries win over the generic placeholder set.
type Resolver struct {
	store              *storage.CuratedStore
	PlaceholderBaseURL string

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a resolver over the given curated table.
// A nil rng is replaced with a time-seeded source.
func New(store *storage.CuratedStore, rng *rand.Rand) *Resolver {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &Resolver{
		store:              store,
		PlaceholderBaseURL: DefaultPlaceholderBaseURL,
		rng:                rng,
	}
}

// Resolve returns a non-empty, fully formed image set for the named location
func (r *Resolver) Resolve(name string) []models.NormalizedImage {
	slug := models.Slugify(name)
	if curated, ok := r.store.Get(slug); ok && len(curated) > 0 {
		slog.Debug("Using curated imagery", "location", name, "slug", slug, "count", len(curated))
		return r.fromCurated(name, slug, curated)
	}

	slog.Debug("No curated imagery, using generic placeholders", "location", name, "slug", slug)
	return r.generic(name, slug)
}

// HasCuratedImagery reports whether the named location has a curated set
func (r *Resolver) HasCuratedImagery(name string) bool {
	return r.store.Has(models.Slugify(name))
}

// ListCuratedSlugs returns all slugs with curated imagery
func (r *Resolver) ListCuratedSlugs() []string {
	return r.store.Slugs()
}

// RegisterCuratedImagery adds or replaces the curated set for slug
func (r *Resolver) RegisterCuratedImagery(slug string, images []models.CuratedImage) {
	r.store.Set(models.Slugify(slug), images)
}

// Seed registers every entry of a seed table
func (r *Resolver) Seed(seeds map[string][]models.CuratedImage) {
	for slug, images := range seeds {
		r.RegisterCuratedImagery(slug, images)
	}
}

func (r *Resolver) fromCurated(name, slug string, curated []models.CuratedImage) []models.NormalizedImage {
	images := make([]models.NormalizedImage, 0, len(curated))
	for i, c := range curated {
		img := models.NormalizedImage{
			ID:             fmt.Sprintf("%s-curated-%d", slug, i+1),
			URL:            c.URL,
			Title:          c.Title,
			Description:    c.Description,
			Photographer:   curatedPhotographer,
			LocationLabel:  c.LocationLabel,
			Likes:          r.intRange(50, 550),
			IsUserUploaded: r.coin(),
			Tags:           models.UniqueTags(c.Tags),
			Source:         models.SourceCurated,
		}
		if img.Title == "" {
			img.Title = name + " View"
		}
		if img.Description == "" {
			img.Description = fmt.Sprintf("Beautiful view of %s captured by a local photographer", name)
		}
		if img.LocationLabel == "" {
			img.LocationLabel = name
		}
		if img.URL == "" {
			img.URL = r.placeholderURL(name, "View")
		}
		if len(img.Tags) == 0 {
			img.Tags = []string{slug, "city", "travel"}
		}
		images = append(images, img)
	}
	return images
}

func (r *Resolver) generic(name, slug string) []models.NormalizedImage {
	images := make([]models.NormalizedImage, 0, len(genericCategories))
	for i, category := range genericCategories {
		images = append(images, models.NormalizedImage{
			ID:            fmt.Sprintf("%s-fallback-%d", slug, i+1),
			URL:           r.placeholderURL(name, category.Label),
			Title:         fmt.Sprintf("%s %s", name, category.Label),
			Description:   fmt.Sprintf("%s of %s", category.Label, name),
			Photographer:  genericPhotographer,
			LocationLabel: name,
			Likes:         r.intRange(100, 600),
			Tags:          []string{slug, category.Tag, "fallback"},
			Source:        models.SourceExternal,
		})
	}
	return images
}

func (r *Resolver) placeholderURL(name, label string) string {
	return r.PlaceholderBaseURL + "?text=" + url.QueryEscape(name+" "+label)
}

// intRange returns a value in [lo, hi)
func (r *Resolver) intRange(lo, hi int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo + r.rng.IntN(hi-lo)
}

func (r *Resolver) coin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(2) == 1
}
