package locations

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/lehigh-university-libraries/placeimages/internal/models"
)

// Loader reads a location catalog from disk
type Loader struct {
	path string
}

// NewLoader creates a new catalog loader
func NewLoader(path string) *Loader {
	return &Loader{
		path: path,
	}
}

// Load loads every location from a catalog file (JSONL, JSON array or Parquet)
func (l *Loader) Load() ([]models.LocationRequest, error) {
	return l.LoadSample(0)
}

// LoadSample loads at most limit locations. A limit below 1 loads everything.
func (l *Loader) LoadSample(limit int) ([]models.LocationRequest, error) {
	ext := strings.ToLower(filepath.Ext(l.path))

	var (
		records []models.LocationRequest
		err     error
	)
	switch ext {
	case ".parquet":
		records, err = l.loadParquet(limit)
	case ".jsonl", ".json":
		records, err = l.loadJSON(limit)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl, .json)", ext)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("Loaded locations", "path", l.path, "count", len(records))
	return records, nil
}

// loadJSON accepts either a JSON array or one JSON object per line
func (l *Loader) loadJSON(limit int) ([]models.LocationRequest, error) {
	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open location file: %w", err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	first, err := peekNonSpace(reader)
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read location file: %w", err)
	}

	if first == '[' {
		var all []models.LocationRequest
		if err := json.NewDecoder(reader).Decode(&all); err != nil {
			return nil, fmt.Errorf("failed to parse JSON array: %w", err)
		}
		records := make([]models.LocationRequest, 0, len(all))
		for i, record := range all {
			if limit > 0 && len(records) >= limit {
				break
			}
			if keep(record, i+1) {
				records = append(records, record)
			}
		}
		return records, nil
	}

	var records []models.LocationRequest
	scanner := bufio.NewScanner(reader)
	lineNum := 0
	for scanner.Scan() {
		if limit > 0 && len(records) >= limit {
			break
		}
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var record models.LocationRequest
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		if keep(record, lineNum) {
			records = append(records, record)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading location file: %w", err)
	}

	return records, nil
}

func (l *Loader) loadParquet(limit int) ([]models.LocationRequest, error) {
	slog.Debug("Opening Parquet file", "path", l.path)

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[models.LocationRequest](pf)
	defer reader.Close()

	var records []models.LocationRequest
	rows := make([]models.LocationRequest, 128)
	rowNum := 0

	for limit <= 0 || len(records) < limit {
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			rowNum++
			if limit > 0 && len(records) >= limit {
				break
			}
			if keep(row, rowNum) {
				records = append(records, row)
			}
		}
		if err != nil {
			if err != io.EOF {
				return nil, fmt.Errorf("failed to read parquet rows: %w", err)
			}
			break
		}
	}

	return records, nil
}

func keep(record models.LocationRequest, position int) bool {
	if strings.TrimSpace(record.Name) == "" {
		slog.Warn("Skipping location without name", "position", position, "country", record.Country)
		return false
	}
	return true
}

func peekNonSpace(r *bufio.Reader) (byte, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			continue
		}
		return b, r.UnreadByte()
	}
}
