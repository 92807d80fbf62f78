package fallback

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lehigh-university-libraries/placeimages/internal/models"
	"gopkg.in/yaml.v3"
)

// LoadSeeds reads a curated seed table from a YAML file keyed by location name or slug
func LoadSeeds(path string) (map[string][]models.CuratedImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curated seeds: %w", err)
	}

	return ParseSeeds(data)
}

// ParseSeeds decodes a curated seed table
func ParseSeeds(data []byte) (map[string][]models.CuratedImage, error) {
	var raw map[string][]models.CuratedImage
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse curated seeds: %w", err)
	}

	seeds := make(map[string][]models.CuratedImage, len(raw))
	for key, images := range raw {
		slug := models.Slugify(key)
		if slug == "" {
			continue
		}
		valid := images[:0:0]
		for _, img := range images {
			if img.URL == "" {
				slog.Warn("Skipping curated image without URL", "slug", slug, "title", img.Title)
				continue
			}
			valid = append(valid, img)
		}
		if len(valid) == 0 {
			continue
		}
		seeds[slug] = valid
	}

	return seeds, nil
}
