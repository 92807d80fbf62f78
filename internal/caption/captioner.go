package caption

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/placeimages/internal/models"
)

const (
	DefaultTemperature = 0.2
	DefaultTimeout     = 20 * time.Second

	promptTemplate = `Write one short sentence describing a travel photograph taken in %s.
The photo is titled %q.%s
Respond with the sentence only, without quotes.`
)

// Captioner replaces templated descriptions of provider images with generated ones
type Captioner struct {
	provider    Provider
	model       string
	temperature float64
	timeout     time.Duration
}

// NewCaptioner wraps provider. Zero temperature and timeout fall back to defaults.
func NewCaptioner(provider Provider, cfg Config) *Captioner {
	c := &Captioner{
		provider:    provider,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}
	if c.temperature == 0 {
		c.temperature = DefaultTemperature
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	return c
}

// Enrich returns a copy of images where every image still carrying the default
// description for location gets a generated one. Failures keep the default.
func (c *Captioner) Enrich(ctx context.Context, location models.LocationRequest, images []models.NormalizedImage) []models.NormalizedImage {
	out := make([]models.NormalizedImage, len(images))
	copy(out, images)

	fallback := location.DefaultDescription()
	for i := range out {
		if out[i].Description != fallback {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		text, err := c.caption(ctx, location, out[i])
		if err != nil {
			slog.Warn("Failed to generate caption", "location", location.Name, "image", out[i].ID, "err", err)
			continue
		}
		out[i].Description = text
	}
	return out
}

func (c *Captioner) caption(ctx context.Context, location models.LocationRequest, img models.NormalizedImage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.provider.Complete(ctx, Request{
		Model:       c.model,
		Temperature: c.temperature,
		Prompt:      BuildPrompt(location, img),
	})
	if err != nil {
		return "", err
	}

	text = strings.Trim(strings.TrimSpace(text), `"`)
	if text == "" {
		return "", fmt.Errorf("empty caption")
	}
	return text, nil
}

// BuildPrompt renders the caption prompt for one image
func BuildPrompt(location models.LocationRequest, img models.NormalizedImage) string {
	var tags string
	if len(img.Tags) > 0 {
		tags = "\nIt is tagged: " + strings.Join(img.Tags, ", ") + "."
	}
	return fmt.Sprintf(promptTemplate, location.Label(), img.Title, tags)
}
