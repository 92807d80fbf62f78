package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/placeimages/internal/models"
	"github.com/lehigh-university-libraries/placeimages/internal/pacing"
)

const (
	DefaultBaseURL        = "https://api.unsplash.com"
	DefaultAuthScheme     = "Client-ID"
	DefaultRequestDelay   = 100 * time.Millisecond
	DefaultRequestTimeout = 10 * time.Second

	// MaxPerPage caps how many results a single query asks for
	MaxPerPage = 5
)

// ErrMissingCredential is returned when no provider access key is configured
var ErrMissingCredential = errors.New("image search access key not configured")

// Config holds the provider connection settings
type Config struct {
	BaseURL        string        `mapstructure:"base_url"`
	AccessKey      string        `mapstructure:"access_key"`
	AuthScheme     string        `mapstructure:"auth_scheme"`
	Color          string        `mapstructure:"color"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// Client searches an Unsplash-compatible photo API for location imagery.
// Successive requests are paced by the request delay, DefaultRequestDelay
// until SetRequestDelay changes it.
type Client struct {
	HTTPClient   *http.Client
	config       Config
	requestDelay atomic.Int64
	sleep        func(context.Context, time.Duration) error
}

// NewClient creates a new search client, filling unset config values with defaults
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.AuthScheme == "" {
		config.AuthScheme = DefaultAuthScheme
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}
	if config.UserAgent == "" {
		config.UserAgent = "placeimages/dev"
	}

	c := &Client{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		config: config,
		sleep:  pacing.Sleep,
	}
	c.SetRequestDelay(DefaultRequestDelay)
	return c
}

// SetRequestDelay sets the pause between successive provider requests.
// Negative values are treated as zero.
func (c *Client) SetRequestDelay(d time.Duration) {
	c.requestDelay.Store(int64(max(d, 0)))
}

// RequestDelay returns the pause applied between successive provider requests
func (c *Client) RequestDelay() time.Duration {
	return time.Duration(c.requestDelay.Load())
}

// searchResponse is the provider's search payload
type searchResponse struct {
	Total      int                    `json:"total"`
	TotalPages int                    `json:"total_pages"`
	Results    []models.ExternalImage `json:"results"`
}

// GetLocationImages collects up to maxImages unique photos for a location by walking
// the query templates in order. Failed queries count as empty. The only error returned
// is the context's, when the caller cancels the run.
func (c *Client) GetLocationImages(ctx context.Context, name, country string, maxImages int) ([]models.ExternalImage, error) {
	logger := slog.With("location", name, "country", country)

	if maxImages <= 0 {
		return nil, nil
	}
	if c.config.AccessKey == "" {
		logger.Warn("Skipping image search", "err", ErrMissingCredential)
		return nil, nil
	}

	images := make([]models.ExternalImage, 0, maxImages)
	seen := make(map[string]struct{}, maxImages)

	cursor := c.Queries(name, country)
	for len(images) < maxImages {
		result, ok := cursor.Next(ctx, min(MaxPerPage, maxImages-len(images)))
		if !ok {
			break
		}

		if result.Err != nil {
			logger.Warn("Image search query failed, continuing with next template", "query", result.Query, "err", result.Err)
			continue
		}

		added := 0
		for _, img := range result.Images {
			if img.ID == "" {
				continue
			}
			if _, dup := seen[img.ID]; dup {
				continue
			}
			seen[img.ID] = struct{}{}
			images = append(images, img)
			added++
			if len(images) == maxImages {
				break
			}
		}

		logger.Debug("Image search query finished", "query", result.Query, "returned", len(result.Images), "added", added, "total", len(images))
	}

	if err := ctx.Err(); err != nil && len(images) == 0 {
		return nil, err
	}

	logger.Info("Collected location images", "count", len(images), "queries", cursor.Issued())
	return images, nil
}

// search issues a single provider request
func (c *Client) search(ctx context.Context, query string, perPage int) QueryResult {
	result := QueryResult{Query: query}
	reqID := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("orientation", "landscape")
	params.Set("order_by", "relevant")
	if c.config.Color != "" {
		params.Set("color", c.config.Color)
	}

	searchURL := c.config.BaseURL + "/search/photos?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, http.NoBody)
	if err != nil {
		result.Err = &ProviderRequestError{Query: query, Err: fmt.Errorf("failed to create request: %w", err)}
		return result
	}
	req.Header.Set("Authorization", c.config.AuthScheme+" "+c.config.AccessKey)
	req.Header.Set("Accept-Version", "v1")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Request-ID", reqID)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		result.Err = &ProviderRequestError{Query: query, Err: fmt.Errorf("failed to query provider: %w", err)}
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		result.Err = &ProviderRequestError{
			Query:      query,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("provider returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
		return result
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		result.Err = &ProviderRequestError{Query: query, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode provider response: %w", err)}
		return result
	}

	slog.Debug("Provider search response", "request_id", reqID, "query", query, "results", len(payload.Results), "total", payload.Total)

	result.Images = payload.Results
	return result
}
