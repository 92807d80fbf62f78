package pipeline

import (
	"testing"
	"time"

	"github.com/lehigh-university-libraries/placeimages/internal/models"
)

func TestNormalize(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	img := models.ExternalImage{
		ID:             "abc",
		URLs:           models.ImageURLs{Full: "https://img.example.test/full.jpg", Regular: "https://img.example.test/regular.jpg", Thumb: "https://img.example.test/thumb.jpg"},
		AltDescription: "tram climbing a hill",
		User:           models.ExternalUser{Username: "anasilva", ProfileImage: map[string]string{"medium": "https://img.example.test/ana.jpg"}},
		Location:       &models.ExternalArea{Name: "Alfama, Lisbon"},
		Tags:           []models.ExternalTag{{Title: "Tram"}, {Title: "tram"}, {Title: "Portugal"}},
		Likes:          42,
		Downloads:      7,
		CreatedAt:      created,
	}

	n := Normalize(img, models.LocationRequest{Name: "Lisbon", Country: "Portugal"})

	if n.ID != "abc" || n.URL != "https://img.example.test/regular.jpg" {
		t.Errorf("Unexpected id/url: %s %s", n.ID, n.URL)
	}
	if n.Title != "Tram climbing a hill" {
		t.Errorf("Expected capitalized alt description as title, got %q", n.Title)
	}
	if n.Description != "tram climbing a hill" {
		t.Errorf("Expected alt description as description, got %q", n.Description)
	}
	if n.Photographer != "anasilva" {
		t.Errorf("Expected username fallback for photographer, got %q", n.Photographer)
	}
	if n.LocationLabel != "Alfama, Lisbon" {
		t.Errorf("Expected provider location label, got %q", n.LocationLabel)
	}
	if len(n.Tags) != 2 {
		t.Errorf("Expected 2 unique tags, got %v", n.Tags)
	}
	if n.Source != models.SourceExternal || n.IsUserUploaded {
		t.Errorf("Expected external, non-user image")
	}
	if n.ProviderMetadata == nil || n.ProviderMetadata.Downloads != 7 || !n.ProviderMetadata.CreatedAt.Equal(created) {
		t.Errorf("Unexpected provider metadata: %+v", n.ProviderMetadata)
	}
	if n.ProviderMetadata.Avatar != "https://img.example.test/ana.jpg" {
		t.Errorf("Expected avatar to be kept, got %q", n.ProviderMetadata.Avatar)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	n := Normalize(models.ExternalImage{ID: "x", URLs: models.ImageURLs{Small: "s"}}, models.LocationRequest{Name: "Porto", Country: "Portugal"})

	if n.Title != "Porto View" {
		t.Errorf("Expected default title, got %q", n.Title)
	}
	if n.Description != "Photo of Porto, Portugal" {
		t.Errorf("Expected default description, got %q", n.Description)
	}
	if n.Photographer != unknownPhotographer {
		t.Errorf("Expected unknown photographer, got %q", n.Photographer)
	}
	if n.LocationLabel != "Porto, Portugal" {
		t.Errorf("Expected location label from request, got %q", n.LocationLabel)
	}
}

func TestNormalizeAllDropsUnusable(t *testing.T) {
	images := []models.ExternalImage{
		{ID: "ok", URLs: models.ImageURLs{Regular: "u"}},
		{ID: "", URLs: models.ImageURLs{Regular: "u"}},
		{ID: "nourl"},
	}

	out := NormalizeAll(images, models.LocationRequest{Name: "Faro"})
	if len(out) != 1 || out[0].ID != "ok" {
		t.Errorf("Expected only the usable image, got %+v", out)
	}
}

func TestToCurated(t *testing.T) {
	curated := ToCurated([]models.NormalizedImage{{URL: "u", Title: "t", Tags: []string{"a"}}})
	if len(curated) != 1 || curated[0].URL != "u" || curated[0].Title != "t" || curated[0].Tags[0] != "a" {
		t.Errorf("Unexpected curated conversion: %+v", curated)
	}
}
