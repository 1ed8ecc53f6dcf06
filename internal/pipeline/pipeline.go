package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/hotspot-etl/internal/domain"
	"github.com/couchcryptid/hotspot-etl/internal/ebd"
	"github.com/couchcryptid/hotspot-etl/internal/observability"
	"github.com/google/uuid"
)

// Source opens the two EBD exports.
type Source interface {
	OpenSampling(ctx context.Context) (io.ReadCloser, error)
	OpenObservations(ctx context.Context) (io.ReadCloser, error)
}

// ReportLoader writes a finished run's output to a destination.
type ReportLoader interface {
	LoadReport(ctx context.Context, out domain.Output) error
}

// Pipeline runs the checklist load, observation aggregation, scoring and
// report loading in sequence.
type Pipeline struct {
	source   Source
	loaders  []ReportLoader
	geocoder domain.Geocoder
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
	latest   atomic.Pointer[domain.Output]
}

// New creates a Pipeline. Loaders run in order after scoring; pass a nil
// geocoder to disable coordinate backfill.
func New(source Source, loaders []ReportLoader, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:   source,
		loaders:  loaders,
		geocoder: geocoder,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once a run has completed and its report is loaded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no report has been produced yet")
	}
	return nil
}

// Latest returns the output of the most recent successful run.
func (p *Pipeline) Latest() (domain.Output, bool) {
	out := p.latest.Load()
	if out == nil {
		return domain.Output{}, false
	}
	return *out, true
}

// Run executes one full pass over the exports. Both inputs are opened and
// their headers validated before any row is processed, so a missing file or
// column fails the run without writing anything.
func (p *Pipeline) Run(ctx context.Context) (domain.Output, error) {
	start := time.Now()
	runID := uuid.NewString()
	p.logger.Info("pipeline started", "run_id", runID)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	samplingRC, err := p.source.OpenSampling(ctx)
	if err != nil {
		return domain.Output{}, fmt.Errorf("open sampling export: %w", err)
	}
	defer samplingRC.Close()

	observationRC, err := p.source.OpenObservations(ctx)
	if err != nil {
		return domain.Output{}, fmt.Errorf("open observation export: %w", err)
	}
	defer observationRC.Close()

	sampling, err := ebd.NewSamplingReader(samplingRC)
	if err != nil {
		return domain.Output{}, fmt.Errorf("sampling export: %w", err)
	}
	observations, err := ebd.NewObservationReader(observationRC)
	if err != nil {
		return domain.Output{}, fmt.Errorf("observation export: %w", err)
	}

	currentYear := domain.CurrentYear()
	census := domain.NewCensus(currentYear)
	p.logger.Info("recency window", "from_year", currentYear-domain.RecentYears, "to_year", currentYear)

	loaded, err := consume(ctx, p, fileSampling, sampling, census.AddChecklist, p.metrics.ChecklistsAccepted)
	if err != nil {
		return domain.Output{}, fmt.Errorf("load checklists: %w", err)
	}
	p.logger.Info("checklists loaded",
		"rows", loaded.rows,
		"accepted", loaded.accepted,
		"hotspots", len(census.Hotspots),
	)

	aggregated, err := consume(ctx, p, fileObservation, observations, census.AddObservation, p.metrics.ObservationsAccepted)
	if err != nil {
		return domain.Output{}, fmt.Errorf("aggregate observations: %w", err)
	}
	p.logger.Info("observations aggregated",
		"rows", aggregated.rows,
		"accepted", aggregated.accepted,
		"species", len(census.Region.AllTimeSpecies),
	)

	if p.geocoder != nil {
		res := domain.BackfillCoordinates(ctx, census, p.geocoder, p.logger)
		p.logger.Info("coordinate backfill complete",
			"attempted", res.Attempted,
			"resolved", res.Resolved,
			"failed", res.Failed,
		)
	}

	out := domain.BuildOutput(census)
	out.RunID = runID
	for _, season := range domain.Seasons {
		n := len(out.Seasonal[season])
		p.metrics.HotspotReports.WithLabelValues(season.String()).Set(float64(n))
		p.logger.Info("season scored", "season", season.String(), "hotspots", n)
	}

	for _, l := range p.loaders {
		if err := l.LoadReport(ctx, out); err != nil {
			return domain.Output{}, fmt.Errorf("load report: %w", err)
		}
	}

	p.latest.Store(&out)
	p.ready.Store(true)
	elapsed := time.Since(start)
	p.metrics.RunDuration.Observe(elapsed.Seconds())
	p.logger.Info("pipeline finished", "run_id", runID, "duration", elapsed, "hotspot_reports", out.Seasonal.Len())
	return out, nil
}
