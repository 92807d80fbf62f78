package sink

import (
	"github.com/lehigh-university-libraries/placeimages/internal/models"
)

// Registrar receives finalized collections
type Registrar interface {
	RegisterImages(slug string, images []models.NormalizedImage)
}

// Multi fans a registration out to every sink in order
type Multi []Registrar

func (m Multi) RegisterImages(slug string, images []models.NormalizedImage) {
	for _, s := range m {
		if s == nil {
			continue
		}
		s.RegisterImages(slug, images)
	}
}
