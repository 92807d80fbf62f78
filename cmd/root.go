package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/placeimages/internal/config"
)

// rootOptions carries the persistent flags and the loaded configuration to subcommands
type rootOptions struct {
	configPath string
	verbose    bool
	cfg        *config.Config
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "placeimages",
		Short: "Acquire representative photographs for a catalog of cities",
		Long: `placeimages searches an Unsplash-compatible photo API for every location in a
catalog, normalizes the results and guarantees each location ends up with a usable
image set, falling back to curated or placeholder imagery when the provider has nothing.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			logLevel := slog.LevelInfo
			if opts.verbose {
				logLevel = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default ./config.yaml or ./config/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newFetchCmd(opts))
	cmd.AddCommand(newCuratedCmd(opts))
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newServeCmd(opts))

	return cmd
}
