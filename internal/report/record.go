package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/placeimages/internal/models"
)

const timestampLayout = "2006-01-02_15-04-05"

// RunRecord is the persisted account of one acquisition run
type RunRecord struct {
	ID         string                `yaml:"id" json:"id"`
	Timestamp  string                `yaml:"timestamp" json:"timestamp"`
	Source     string                `yaml:"source,omitempty" json:"source,omitempty"`
	Config     models.PipelineConfig `yaml:"config" json:"config"`
	Statistics models.RunStatistics  `yaml:"statistics" json:"statistics"`
	Outcomes   []models.BatchOutcome `yaml:"outcomes" json:"outcomes"`
}

// NewRunRecord builds a record for outcomes produced from source with cfg
func NewRunRecord(source string, cfg models.PipelineConfig, outcomes []models.BatchOutcome) *RunRecord {
	return &RunRecord{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().Format(timestampLayout),
		Source:     source,
		Config:     cfg,
		Statistics: models.GetRunStatistics(outcomes),
		Outcomes:   outcomes,
	}
}

// SaveYAML writes the record into dir and returns the file path
func SaveYAML(dir string, record *RunRecord) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create runs directory: %w", err)
	}

	shortID := record.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.yaml", record.Timestamp, shortID))

	data, err := yaml.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	return filename, nil
}

// LoadYAML reads a record saved by SaveYAML
func LoadYAML(path string) (*RunRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run record: %w", err)
	}

	var record RunRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse run record %s: %w", path, err)
	}
	return &record, nil
}
