package storage

import (
	"slices"
	"sync"

	"github.com/lehigh-university-libraries/placeimages/internal/models"
)

// CuratedStore is the process-wide table of curated image descriptors keyed by slug.
// Entries are replaced whole and never mutated in place.
type CuratedStore struct {
	entries map[string][]models.CuratedImage
	mu      sync.RWMutex
}

func NewCuratedStore() *CuratedStore {
	return &CuratedStore{
		entries: make(map[string][]models.CuratedImage),
	}
}

func (s *CuratedStore) Get(slug string) ([]models.CuratedImage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	images, exists := s.entries[slug]
	return images, exists
}

func (s *CuratedStore) Has(slug string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.entries[slug]
	return exists
}

// Set stores a copy of images under slug, replacing any previous entry
func (s *CuratedStore) Set(slug string, images []models.CuratedImage) {
	stored := make([]models.CuratedImage, len(images))
	for i, img := range images {
		img.Tags = slices.Clone(img.Tags)
		stored[i] = img
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[slug] = stored
}

// Slugs returns every slug with curated imagery, sorted
func (s *CuratedStore) Slugs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slugs := make([]string, 0, len(s.entries))
	for k := range s.entries {
		slugs = append(slugs, k)
	}
	slices.Sort(slugs)
	return slugs
}

// CollectionStore keeps the finalized image collection of each location in memory
type CollectionStore struct {
	collections map[string][]models.NormalizedImage
	mu          sync.RWMutex
}

func NewCollectionStore() *CollectionStore {
	return &CollectionStore{
		collections: make(map[string][]models.NormalizedImage),
	}
}

// RegisterImages replaces the collection stored for slug
func (s *CollectionStore) RegisterImages(slug string, images []models.NormalizedImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[slug] = slices.Clone(images)
}

func (s *CollectionStore) Get(slug string) ([]models.NormalizedImage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	images, exists := s.collections[slug]
	return images, exists
}

func (s *CollectionStore) GetAll() map[string][]models.NormalizedImage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]models.NormalizedImage, len(s.collections))
	for k, v := range s.collections {
		result[k] = v
	}
	return result
}

func (s *CollectionStore) Delete(slug string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, slug)
}
