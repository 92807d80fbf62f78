package models

import (
	"strings"
	"time"
)

// LocationRequest identifies a catalog location that needs imagery
type LocationRequest struct {
	Name        string   `json:"name" parquet:"name"`
	Country     string   `json:"country" parquet:"country"`
	CountryCode string   `json:"country_code,omitempty" parquet:"country_code,optional"`
	Region      string   `json:"region,omitempty" parquet:"region,optional"`
	Population  int64    `json:"population,omitempty" parquet:"population,optional"`
	Latitude    *float64 `json:"latitude,omitempty" parquet:"latitude,optional"`
	Longitude   *float64 `json:"longitude,omitempty" parquet:"longitude,optional"`
}

// Slug returns the lookup key for the location
func (l LocationRequest) Slug() string {
	return Slugify(l.Name)
}

// Label renders "Name, Country", or just the name when the country is unknown
func (l LocationRequest) Label() string {
	if l.Country == "" {
		return l.Name
	}
	return l.Name + ", " + l.Country
}

// DefaultDescription is used for provider images that carry no description of their own
func (l LocationRequest) DefaultDescription() string {
	return "Photo of " + l.Label()
}

// ImageSource records where a normalized image's attribution came from
type ImageSource string

const (
	SourceExternal ImageSource = "external"
	SourceUser     ImageSource = "user"
	SourceCurated  ImageSource = "curated"
)

// NormalizedImage is the internal record handed to the collection sink
type NormalizedImage struct {
	ID               string            `json:"id" yaml:"id"`
	URL              string            `json:"url" yaml:"url"`
	Title            string            `json:"title" yaml:"title"`
	Description      string            `json:"description" yaml:"description"`
	Photographer     string            `json:"photographer" yaml:"photographer"`
	LocationLabel    string            `json:"location_label" yaml:"location_label"`
	Likes            int               `json:"likes" yaml:"likes"`
	IsUserUploaded   bool              `json:"is_user_uploaded" yaml:"is_user_uploaded"`
	Tags             []string          `json:"tags" yaml:"tags"`
	Source           ImageSource       `json:"source" yaml:"source"`
	ProviderMetadata *ProviderMetadata `json:"provider_metadata,omitempty" yaml:"provider_metadata,omitempty"`
}

// ProviderMetadata keeps the provider-side details of an external image
type ProviderMetadata struct {
	ProviderID   string    `json:"provider_id" yaml:"provider_id"`
	Username     string    `json:"username,omitempty" yaml:"username,omitempty"`
	Avatar       string    `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty" yaml:"thumbnail_url,omitempty"`
	FullURL      string    `json:"full_url,omitempty" yaml:"full_url,omitempty"`
	Downloads    int       `json:"downloads" yaml:"downloads"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

// CuratedImage is a hand-authored partial descriptor for a known location.
// Missing fields are filled in by the fallback resolver.
type CuratedImage struct {
	URL           string   `json:"url" yaml:"url"`
	Title         string   `json:"title,omitempty" yaml:"title,omitempty"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
	LocationLabel string   `json:"location_label,omitempty" yaml:"location_label,omitempty"`
	Tags          []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Slugify lower-cases a location name and joins its words with hyphens
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// UniqueTags drops empty and repeated tags, keeping first-seen order
func UniqueTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
