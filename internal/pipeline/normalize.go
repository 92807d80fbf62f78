package pipeline

import (
	"strings"

	"github.com/lehigh-university-libraries/placeimages/internal/models"
)

const unknownPhotographer = "Unknown Photographer"

// Normalize converts a provider record into the internal image format
func Normalize(img models.ExternalImage, location models.LocationRequest) models.NormalizedImage {
	title := firstNonEmpty(img.AltDescription, img.Description, location.Name+" View")
	description := firstNonEmpty(img.Description, img.AltDescription, location.DefaultDescription())

	label := location.Label()
	if img.Location != nil && img.Location.Name != "" {
		label = img.Location.Name
	}

	tags := make([]string, 0, len(img.Tags))
	for _, tag := range img.Tags {
		tags = append(tags, tag.Title)
	}

	return models.NormalizedImage{
		ID:            img.ID,
		URL:           img.URLs.Best(),
		Title:         capitalize(title),
		Description:   description,
		Photographer:  firstNonEmpty(img.User.Name, img.User.Username, unknownPhotographer),
		LocationLabel: label,
		Likes:         img.Likes,
		Tags:          models.UniqueTags(tags),
		Source:        models.SourceExternal,
		ProviderMetadata: &models.ProviderMetadata{
			ProviderID:   img.ID,
			Username:     img.User.Username,
			Avatar:       img.User.ProfileImage["medium"],
			ThumbnailURL: img.URLs.Thumb,
			FullURL:      img.URLs.Full,
			Downloads:    img.Downloads,
			CreatedAt:    img.CreatedAt,
		},
	}
}

// NormalizeAll normalizes a result list, dropping records without an id or URL
func NormalizeAll(images []models.ExternalImage, location models.LocationRequest) []models.NormalizedImage {
	out := make([]models.NormalizedImage, 0, len(images))
	for _, img := range images {
		n := Normalize(img, location)
		if n.ID == "" || n.URL == "" {
			continue
		}
		out = append(out, n)
	}
	return out
}

// ToCurated reduces normalized images to curated descriptors for promotion
func ToCurated(images []models.NormalizedImage) []models.CuratedImage {
	curated := make([]models.CuratedImage, 0, len(images))
	for _, img := range images {
		curated = append(curated, models.CuratedImage{
			URL:           img.URL,
			Title:         img.Title,
			Description:   img.Description,
			LocationLabel: img.LocationLabel,
			Tags:          img.Tags,
		})
	}
	return curated
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
