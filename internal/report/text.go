package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/lehigh-university-libraries/placeimages/internal/models"
)

// Render writes record in the given format: text, json or csv
func Render(w io.Writer, record *RunRecord, format string) error {
	switch format {
	case "text":
		return printTextReport(w, record)
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(record)
	case "csv":
		return WriteCSV(w, record.Outcomes)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printTextReport(w io.Writer, record *RunRecord) error {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "Image Acquisition Run")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Run:       %s\n", record.ID)
	fmt.Fprintf(w, "Started:   %s\n", record.Timestamp)
	if record.Source != "" {
		fmt.Fprintf(w, "Source:    %s\n", record.Source)
	}
	fmt.Fprintf(w, "Batches:   size %d, %v apart\n", record.Config.BatchSize, record.Config.InterBatchDelay)

	PrintSummary(w, record.Statistics)
	PrintNeedsCuration(w, record.Outcomes)
	return nil
}

// PrintSummary writes the run statistics block
func PrintSummary(w io.Writer, stats models.RunStatistics) {
	fmt.Fprintln(w, "\n========================================")
	fmt.Fprintln(w, "Run Summary")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Total Locations:    %d\n", stats.Total)
	fmt.Fprintf(w, "Successful:         %d\n", stats.Successful)
	fmt.Fprintf(w, "Failed:             %d\n", stats.Failed)
	fmt.Fprintf(w, "Success Rate:       %.2f%%\n", stats.SuccessRate)
	fmt.Fprintf(w, "Total Images:       %d\n", stats.TotalImages)
	fmt.Fprintf(w, "Avg Processing:     %dms\n", stats.AvgProcessingTime.Milliseconds())
	fmt.Fprintln(w, "========================================")
}

// PrintNeedsCuration lists the locations left without usable imagery
func PrintNeedsCuration(w io.Writer, outcomes []models.BatchOutcome) {
	pending := models.NeedsCuration(outcomes)
	if len(pending) == 0 {
		fmt.Fprintln(w, "\nEvery location has imagery.")
		return
	}

	fmt.Fprintf(w, "\nNeeds Curation (%d):\n", len(pending))
	for _, o := range pending {
		if o.ErrorMessage != "" {
			fmt.Fprintf(w, "  ❌ %s (%s): %s\n", o.LocationName, o.Country, truncate(o.ErrorMessage, 80))
			continue
		}
		fmt.Fprintf(w, "  ⚠️  %s (%s): no images\n", o.LocationName, o.Country)
	}
}

// WriteCSV writes the outcomes that need manual curation as CSV
func WriteCSV(w io.Writer, outcomes []models.BatchOutcome) error {
	writer := csv.NewWriter(w)

	header := []string{"Location", "Country", "Success", "Image Count", "Processing Ms", "Error"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, o := range models.NeedsCuration(outcomes) {
		row := []string{
			o.LocationName,
			o.Country,
			strconv.FormatBool(o.Success),
			strconv.Itoa(o.ImageCount),
			strconv.FormatInt(o.ProcessingTimeMs(), 10),
			o.ErrorMessage,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
