package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lehigh-university-libraries/placeimages/internal/models"
	"github.com/lehigh-university-libraries/placeimages/internal/pacing"
)

// Searcher finds live imagery for a location. An empty result means
// "nothing found", not a failure.
type Searcher interface {
	GetLocationImages(ctx context.Context, name, country string, maxImages int) ([]models.ExternalImage, error)
}

// RequestPacer is implemented by searchers that pace their provider requests.
// ProcessAll hands it the run's InterRequestDelay.
type RequestPacer interface {
	SetRequestDelay(d time.Duration)
}

// Resolver supplies fallback imagery and accepts promoted curated sets
type Resolver interface {
	Resolve(name string) []models.NormalizedImage
	RegisterCuratedImagery(slug string, images []models.CuratedImage)
}

// Sink receives the finalized collection of a location. Registration is
// fire-and-forget and re-registering a slug replaces its previous entry.
type Sink interface {
	RegisterImages(slug string, images []models.NormalizedImage)
}

// Enricher optionally rewrites accepted external images before registration
type Enricher interface {
	Enrich(ctx context.Context, location models.LocationRequest, images []models.NormalizedImage) []models.NormalizedImage
}

// Orchestrator drives a run over a list of locations in sequential batches
type Orchestrator struct {
	searcher Searcher
	resolver Resolver
	sink     Sink
	enricher Enricher
	sleep    func(context.Context, time.Duration) error
}

// New creates an orchestrator. sink may be nil when registration is not wanted.
func New(searcher Searcher, resolver Resolver, sink Sink) *Orchestrator {
	return &Orchestrator{
		searcher: searcher,
		resolver: resolver,
		sink:     sink,
		sleep:    pacing.Sleep,
	}
}

// WithEnricher sets the enricher applied to accepted external images
func (o *Orchestrator) WithEnricher(e Enricher) *Orchestrator {
	o.enricher = e
	return o
}

// ProcessAll runs every location and returns one outcome per location in input
// order. Per-location failures are recorded, never returned. A searcher that
// implements RequestPacer is set to the config's InterRequestDelay first.
func (o *Orchestrator) ProcessAll(ctx context.Context, locations []models.LocationRequest, config *models.PipelineConfig) []models.BatchOutcome {
	cfg := models.DefaultPipelineConfig()
	if config != nil {
		cfg = *config
	}
	cfg.Validate()

	if pacer, ok := o.searcher.(RequestPacer); ok {
		pacer.SetRequestDelay(cfg.InterRequestDelay)
	}

	outcomes := make([]models.BatchOutcome, len(locations))
	batches := Partition(len(locations), cfg.BatchSize)

	slog.Info("Starting image acquisition run",
		"locations", len(locations),
		"batches", len(batches),
		"batch_size", cfg.BatchSize,
		"request_delay", cfg.InterRequestDelay,
		"use_fallback", cfg.UseFallbackOnEmpty)

	runStart := time.Now()
	for b, bounds := range batches {
		start, end := bounds[0], bounds[1]

		if b > 0 {
			if err := o.sleep(ctx, cfg.InterBatchDelay); err != nil {
				slog.Warn("Run cancelled, skipping remaining batches", "next_batch", b+1, "err", err)
				abandon(outcomes[start:], locations[start:], err)
				break
			}
		}
		if err := ctx.Err(); err != nil {
			slog.Warn("Run cancelled, skipping remaining batches", "next_batch", b+1, "err", err)
			abandon(outcomes[start:], locations[start:], err)
			break
		}

		slog.Info("Processing batch", "batch", b+1, "total", len(batches), "size", end-start)

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				outcomes[i] = o.processLocation(ctx, locations[i], cfg)
				return nil
			})
		}
		_ = g.Wait()

		succeeded := 0
		for _, outcome := range outcomes[start:end] {
			if outcome.Success {
				succeeded++
			}
		}
		slog.Info("Batch complete", "batch", b+1, "succeeded", succeeded, "failed", end-start-succeeded)
	}

	stats := models.GetRunStatistics(outcomes)
	slog.Info("Image acquisition run finished",
		"total", stats.Total,
		"successful", stats.Successful,
		"failed", stats.Failed,
		"images", stats.TotalImages,
		"elapsed", time.Since(runStart).Round(time.Millisecond))

	return outcomes
}

// processLocation runs one location's task and converts any error or panic into
// a failed outcome.
func (o *Orchestrator) processLocation(ctx context.Context, location models.LocationRequest, cfg models.PipelineConfig) (outcome models.BatchOutcome) {
	start := time.Now()
	logger := slog.With("location", location.Name, "country", location.Country)

	defer func() {
		if r := recover(); r != nil {
			err := &LocationProcessingError{Location: location.Name, Err: fmt.Errorf("panic: %v", r)}
			logger.Error("Location task panicked", "err", err)
			outcome = BuildOutcome(location, nil, err, time.Since(start))
		}
	}()

	images, fromSearch, err := o.collect(ctx, location, cfg)
	if err != nil {
		logger.Warn("Failed to process location", "err", err)
		return BuildOutcome(location, nil, err, time.Since(start))
	}

	o.register(location, images, fromSearch)

	outcome = BuildOutcome(location, images, nil, time.Since(start))
	logger.Info("Processed location", "images", outcome.ImageCount, "live", fromSearch, "ms", outcome.ProcessingTimeMs())
	return outcome
}

// collect computes the accepted image set for a location without side effects.
// fromSearch reports whether the images came from the live provider.
func (o *Orchestrator) collect(ctx context.Context, location models.LocationRequest, cfg models.PipelineConfig) (images []models.NormalizedImage, fromSearch bool, err error) {
	if location.Name == "" {
		return nil, false, &LocationProcessingError{Err: ErrMissingName}
	}

	external, err := o.searcher.GetLocationImages(ctx, location.Name, location.Country, cfg.ImagesPerLocation)
	if err != nil {
		return nil, false, &LocationProcessingError{Location: location.Name, Err: err}
	}

	images = NormalizeAll(external, location)
	if len(images) > 0 {
		if o.enricher != nil {
			images = o.enricher.Enrich(ctx, location, images)
		}
		return images, true, nil
	}

	if !cfg.UseFallbackOnEmpty {
		slog.Debug("No live imagery and fallback disabled", "location", location.Name)
		return nil, false, nil
	}

	return o.resolver.Resolve(location.Name), false, nil
}

// register hands an accepted set to the sink and promotes live results into
// the curated table so later lookups in this process are stable.
func (o *Orchestrator) register(location models.LocationRequest, images []models.NormalizedImage, fromSearch bool) {
	if len(images) == 0 {
		return
	}

	slug := location.Slug()
	if o.sink != nil {
		o.sink.RegisterImages(slug, images)
	}
	if fromSearch && o.resolver != nil {
		o.resolver.RegisterCuratedImagery(slug, ToCurated(images))
	}
}

// BuildOutcome assembles the reported outcome of one location
func BuildOutcome(location models.LocationRequest, images []models.NormalizedImage, err error, elapsed time.Duration) models.BatchOutcome {
	outcome := models.BatchOutcome{
		LocationName:   location.Name,
		Country:        location.Country,
		Success:        err == nil,
		ProcessingTime: elapsed,
	}
	if err != nil {
		outcome.ErrorMessage = err.Error()
		return outcome
	}
	outcome.ImageCount = len(images)
	return outcome
}

// Partition splits n items into contiguous [start, end) ranges of at most size items
func Partition(n, size int) [][2]int {
	if size < 1 {
		size = 1
	}
	batches := make([][2]int, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		batches = append(batches, [2]int{start, min(start+size, n)})
	}
	return batches
}

func abandon(outcomes []models.BatchOutcome, locations []models.LocationRequest, err error) {
	for i := range outcomes {
		outcomes[i] = BuildOutcome(locations[i], nil, &LocationProcessingError{Location: locations[i].Name, Err: err}, 0)
	}
}
