package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/placeimages/internal/locations"
	"github.com/lehigh-university-libraries/placeimages/internal/report"
)

func newFetchCmd(opts *rootOptions) *cobra.Command {
	var (
		locationsPath string
		sample        int
		batchSize     int
		delay         time.Duration
		images        int
		noFallback    bool
		runsDir       string
		csvPath       string
		skipArchive   bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Acquire imagery for every location in a catalog",
		Long: `Runs the acquisition pipeline over a location catalog (.jsonl, .json or .parquet).
Catalogs given as http(s) URLs are downloaded once and cached.

Locations are processed in sequential batches; every location in a batch is searched
concurrently and the run pauses between batches to stay within the provider's rate
limits. Locations without live results get curated or placeholder imagery.`,
		Example: `  # Fetch imagery for every city in a catalog
  placeimages fetch --locations cities.jsonl

  # Smaller batches with a longer pause, no placeholder fallback
  placeimages fetch --locations cities.parquet --batch-size 5 --delay 5s --no-fallback

  # Try the first 20 cities and export the ones that need curation
  placeimages fetch --locations cities.json --sample 20 --csv needs-curation.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			pipelineCfg := cfg.Pipeline

			if cmd.Flags().Changed("batch-size") {
				if batchSize < 1 {
					return fmt.Errorf("--batch-size must be at least 1, got %d", batchSize)
				}
				pipelineCfg.BatchSize = batchSize
			}
			if cmd.Flags().Changed("delay") {
				pipelineCfg.InterBatchDelay = delay
			}
			if cmd.Flags().Changed("images") {
				pipelineCfg.ImagesPerLocation = images
			}
			if noFallback {
				pipelineCfg.UseFallbackOnEmpty = false
			}
			if runsDir == "" {
				runsDir = cfg.Output.RunsDir
			}
			cfg.Pipeline = pipelineCfg

			if !locations.IsRemote(locationsPath) {
				if _, err := os.Stat(locationsPath); err != nil {
					return fmt.Errorf("location file not found: %s", locationsPath)
				}
			}
			loader, err := locations.LoadOrDownload(cmd.Context(), locationsPath, cfg.Locations)
			if err != nil {
				return err
			}
			locs, err := loader.LoadSample(sample)
			if err != nil {
				return fmt.Errorf("failed to load locations: %w", err)
			}

			deps, err := newPipeline(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := deps.close(); err != nil {
					slog.Error("Failed to close sinks", "err", err)
				}
			}()

			outcomes := deps.orchestrator.ProcessAll(cmd.Context(), locs, &pipelineCfg)

			record := report.NewRunRecord(locationsPath, pipelineCfg, outcomes)

			out := cmd.OutOrStdout()
			report.PrintSummary(out, record.Statistics)
			report.PrintNeedsCuration(out, outcomes)

			path, err := report.SaveYAML(runsDir, record)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n✅ Run record saved to: %s\n", path)

			if csvPath != "" {
				f, err := os.Create(csvPath)
				if err != nil {
					return fmt.Errorf("failed to create CSV file: %w", err)
				}
				defer f.Close()
				if err := report.WriteCSV(f, outcomes); err != nil {
					return fmt.Errorf("failed to write CSV: %w", err)
				}
				fmt.Fprintf(out, "✅ Locations needing curation written to: %s\n", csvPath)
			}

			if !skipArchive {
				if err := archiveRun(cmd.Context(), cfg, path); err != nil {
					slog.Warn("Failed to archive run record", "path", path, "err", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&locationsPath, "locations", "l", "", "Path or URL of the location catalog (.jsonl, .json or .parquet)")
	cmd.Flags().IntVar(&sample, "sample", 0, "Only process the first N locations (0 for all)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Locations processed concurrently per batch (default from config)")
	cmd.Flags().DurationVar(&delay, "delay", 0, "Pause between batches (default from config)")
	cmd.Flags().IntVar(&images, "images", 0, "Images to collect per location (default from config)")
	cmd.Flags().BoolVar(&noFallback, "no-fallback", false, "Leave locations empty instead of using fallback imagery")
	cmd.Flags().StringVar(&runsDir, "runs-dir", "", "Directory for run records (default from config)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write locations needing curation to this CSV file")
	cmd.Flags().BoolVar(&skipArchive, "no-archive", false, "Do not upload the run record even when an archive is configured")
	_ = cmd.MarkFlagRequired("locations")

	return cmd
}
