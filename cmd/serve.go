package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/placeimages/internal/handlers"
	"github.com/lehigh-university-libraries/placeimages/internal/locations"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		port          int
		locationsPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve collections over a read-only JSON API",
		Long: `Starts an HTTP server exposing the registered collections and the curated table.

When --locations is given, a run over that catalog starts in the background and
collections become available as each location completes.`,
		Example: `  # Start server on default port 8888
  placeimages serve --locations cities.jsonl

  # Start server on custom port
  placeimages serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if !cmd.Flags().Changed("port") {
				port = cfg.Server.Port
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

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if locationsPath != "" {
				loader, err := locations.LoadOrDownload(ctx, locationsPath, cfg.Locations)
				if err != nil {
					return err
				}
				locs, err := loader.Load()
				if err != nil {
					return fmt.Errorf("failed to load locations: %w", err)
				}
				// Sinks are closed only after the background run has returned
				stop := startBackgroundRun(ctx, deps.orchestrator, locs, cfg.Pipeline)
				defer stop()
			}

			mux := http.NewServeMux()
			handlers.New(deps.collections, deps.resolver).Routes(mux)

			addr := ":" + strconv.Itoa(port)
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Collections API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8888, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&locationsPath, "locations", "l", "", "Location catalog to process in the background")

	return cmd
}
