package models

import (
	"log/slog"
	"time"
)

const (
	DefaultBatchSize         = 10
	DefaultInterBatchDelay   = 2 * time.Second
	DefaultInterRequestDelay = 100 * time.Millisecond
	DefaultMaxRetries        = 3
	DefaultImagesPerLocation = 4
)

// PipelineConfig governs throughput of a run against the provider's rate limits
type PipelineConfig struct {
	BatchSize         int           `yaml:"batch_size" mapstructure:"batch_size"`
	InterBatchDelay   time.Duration `yaml:"inter_batch_delay" mapstructure:"inter_batch_delay"`
	InterRequestDelay time.Duration `yaml:"inter_request_delay" mapstructure:"inter_request_delay"`
	// MaxRetries is recorded policy only; the search client applies a fixed delay and never retries.
	MaxRetries         int  `yaml:"max_retries" mapstructure:"max_retries"`
	UseFallbackOnEmpty bool `yaml:"use_fallback_on_empty" mapstructure:"use_fallback_on_empty"`
	ImagesPerLocation  int  `yaml:"images_per_location" mapstructure:"images_per_location"`
}

// DefaultPipelineConfig returns the reference pipeline settings
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		BatchSize:          DefaultBatchSize,
		InterBatchDelay:    DefaultInterBatchDelay,
		InterRequestDelay:  DefaultInterRequestDelay,
		MaxRetries:         DefaultMaxRetries,
		UseFallbackOnEmpty: true,
		ImagesPerLocation:  DefaultImagesPerLocation,
	}
}

// Validate clamps values that would stall or break a run
func (c *PipelineConfig) Validate() {
	if c.BatchSize < 1 {
		slog.Warn("Batch size must be at least 1, clamping", "batch_size", c.BatchSize)
		c.BatchSize = 1
	}
	if c.ImagesPerLocation < 1 {
		slog.Warn("Images per location must be at least 1, using default", "images_per_location", c.ImagesPerLocation)
		c.ImagesPerLocation = DefaultImagesPerLocation
	}
	if c.InterBatchDelay < 0 {
		c.InterBatchDelay = 0
	}
	if c.InterRequestDelay < 0 {
		c.InterRequestDelay = 0
	}
}

// BatchOutcome is the per-location result of one run
type BatchOutcome struct {
	LocationName   string        `json:"location_name" yaml:"location_name"`
	Country        string        `json:"country" yaml:"country"`
	Success        bool          `json:"success" yaml:"success"`
	ImageCount     int           `json:"image_count" yaml:"image_count"`
	ErrorMessage   string        `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	ProcessingTime time.Duration `json:"processing_time" yaml:"processing_time"`
}

// ProcessingTimeMs returns the processing time in milliseconds
func (o BatchOutcome) ProcessingTimeMs() int64 {
	return o.ProcessingTime.Milliseconds()
}

// NeedsCuration reports whether a human still has to supply imagery
func (o BatchOutcome) NeedsCuration() bool {
	return !o.Success || o.ImageCount == 0
}

// RunStatistics summarizes a run. It is derived from outcomes and never stored on its own.
type RunStatistics struct {
	Total             int           `json:"total" yaml:"total"`
	Successful        int           `json:"successful" yaml:"successful"`
	Failed            int           `json:"failed" yaml:"failed"`
	SuccessRate       float64       `json:"success_rate" yaml:"success_rate"`
	TotalImages       int           `json:"total_images" yaml:"total_images"`
	AvgProcessingTime time.Duration `json:"avg_processing_time" yaml:"avg_processing_time"`
}

// GetRunStatistics computes the run summary from a list of outcomes
func GetRunStatistics(outcomes []BatchOutcome) RunStatistics {
	stats := RunStatistics{Total: len(outcomes)}
	if len(outcomes) == 0 {
		return stats
	}

	var total time.Duration
	for _, o := range outcomes {
		if o.Success {
			stats.Successful++
		} else {
			stats.Failed++
		}
		stats.TotalImages += o.ImageCount
		total += o.ProcessingTime
	}

	stats.SuccessRate = float64(stats.Successful) / float64(stats.Total) * 100
	stats.AvgProcessingTime = total / time.Duration(stats.Total)

	return stats
}

// NeedsCuration filters the outcomes that still need manual imagery
func NeedsCuration(outcomes []BatchOutcome) []BatchOutcome {
	var out []BatchOutcome
	for _, o := range outcomes {
		if o.NeedsCuration() {
			out = append(out, o)
		}
	}
	return out
}
