package models

import "time"

// ExternalImage is a photo record as returned by the image-search provider
type ExternalImage struct {
	ID             string        `json:"id"`
	URLs           ImageURLs     `json:"urls"`
	AltDescription string        `json:"alt_description"`
	Description    string        `json:"description"`
	User           ExternalUser  `json:"user"`
	Location       *ExternalArea `json:"location,omitempty"`
	Tags           []ExternalTag `json:"tags"`
	Likes          int           `json:"likes"`
	Downloads      int           `json:"downloads"`
	CreatedAt      time.Time     `json:"created_at"`
}

// ImageURLs holds the provider's renditions of one photo
type ImageURLs struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

// Best returns the highest display-suitable resolution available
func (u ImageURLs) Best() string {
	for _, candidate := range []string{u.Regular, u.Full, u.Small, u.Raw, u.Thumb} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

type ExternalUser struct {
	Name         string            `json:"name"`
	Username     string            `json:"username"`
	ProfileImage map[string]string `json:"profile_image,omitempty"`
}

type ExternalArea struct {
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type ExternalTag struct {
	Title string `json:"title"`
}
