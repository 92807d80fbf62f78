package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/placeimages/internal/caption"
	"github.com/lehigh-university-libraries/placeimages/internal/config"
	"github.com/lehigh-university-libraries/placeimages/internal/fallback"
	"github.com/lehigh-university-libraries/placeimages/internal/models"
	"github.com/lehigh-university-libraries/placeimages/internal/pipeline"
	"github.com/lehigh-university-libraries/placeimages/internal/report"
	"github.com/lehigh-university-libraries/placeimages/internal/search"
	"github.com/lehigh-university-libraries/placeimages/internal/sink"
	"github.com/lehigh-university-libraries/placeimages/internal/storage"
)

// newResolver builds the fallback resolver and seeds it from the configured curated file
func newResolver(cfg *config.Config) (*fallback.Resolver, error) {
	resolver := fallback.New(storage.NewCuratedStore(), nil)

	if cfg.Curated.SeedsPath == "" {
		return resolver, nil
	}

	seeds, err := fallback.LoadSeeds(cfg.Curated.SeedsPath)
	if err != nil {
		return nil, err
	}
	resolver.Seed(seeds)
	slog.Info("Loaded curated seeds", "path", cfg.Curated.SeedsPath, "locations", len(seeds))

	return resolver, nil
}

// closableSink is a sink holding connections that must be released after a run
type closableSink interface {
	sink.Registrar
	Close() error
}

var openKafka = func(cfg sink.KafkaConfig) (closableSink, error) {
	producer, err := sink.NewKafka(cfg)
	if err != nil {
		return nil, err
	}
	return producer, nil
}

// pipelineDeps is everything a run needs, plus the cleanup of its sinks
type pipelineDeps struct {
	orchestrator *pipeline.Orchestrator
	resolver     *fallback.Resolver
	collections  *storage.CollectionStore
	close        func() error
}

func newPipeline(cfg *config.Config) (*pipelineDeps, error) {
	resolver, err := newResolver(cfg)
	if err != nil {
		return nil, err
	}

	client := search.NewClient(cfg.Search)

	collections := storage.NewCollectionStore()
	sinks := sink.Multi{collections}
	closeFn := func() error { return nil }

	if cfg.KafkaEnabled() {
		producer, err := openKafka(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, producer)
		closeFn = producer.Close
	}

	orchestrator := pipeline.New(client, resolver, sinks)

	provider, err := caption.NewProvider(cfg.Caption)
	if err != nil {
		if closeErr := closeFn(); closeErr != nil {
			slog.Error("Failed to close sinks", "err", closeErr)
		}
		return nil, fmt.Errorf("failed to configure caption provider: %w", err)
	}
	if provider != nil {
		slog.Info("Caption enrichment enabled", "provider", cfg.Caption.Provider, "model", cfg.Caption.Model)
		orchestrator.WithEnricher(caption.NewCaptioner(provider, cfg.Caption))
	}

	return &pipelineDeps{
		orchestrator: orchestrator,
		resolver:     resolver,
		collections:  collections,
		close:        closeFn,
	}, nil
}

// startBackgroundRun processes locs in a goroutine. The returned stop cancels the
// run and blocks until ProcessAll has returned.
func startBackgroundRun(ctx context.Context, orchestrator *pipeline.Orchestrator, locs []models.LocationRequest, cfg models.PipelineConfig) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		orchestrator.ProcessAll(ctx, locs, &cfg)
	}()
	return func() {
		cancel()
		<-done
	}
}

// archiveRun uploads a saved run record when an archive target is configured
func archiveRun(ctx context.Context, cfg *config.Config, path string) error {
	if !cfg.Archive.Enabled() {
		return nil
	}

	archiver, err := report.NewArchiver(ctx, cfg.Archive)
	if err != nil {
		return err
	}
	_, err = archiver.Upload(ctx, path)
	return err
}
