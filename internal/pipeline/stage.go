package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/couchcryptid/hotspot-etl/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metric label values for the two exports.
const (
	fileSampling    = "sampling"
	fileObservation = "observation"
)

const (
	progressInterval    = 50_000 // accepted rows between progress logs
	cancelCheckInterval = 4096   // rows between context checks
)

// rowReader is satisfied by ebd.SamplingReader and ebd.ObservationReader.
type rowReader[T any] interface {
	Next() (T, error)
	Line() int
}

type stageStats struct {
	rows     int
	accepted int
}

// consume streams every row of r into add, counting reads, skips and accepts.
func consume[T any](ctx context.Context, p *Pipeline, file string, r rowReader[T], add func(T) domain.SkipReason, acceptedTotal prometheus.Counter) (stageStats, error) {
	var stats stageStats
	rowsRead := p.metrics.RowsRead.WithLabelValues(file)

	for {
		if stats.rows%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
		}

		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("%s line %d: %w", file, r.Line()+1, err)
		}
		stats.rows++
		rowsRead.Inc()

		if reason := add(rec); reason != domain.Accepted {
			p.metrics.RowsSkipped.WithLabelValues(file, string(reason)).Inc()
			p.logger.Debug("row skipped", "file", file, "line", r.Line(), "reason", string(reason))
			continue
		}
		stats.accepted++
		acceptedTotal.Inc()
		if stats.accepted%progressInterval == 0 {
			p.logger.Info("progress", "file", file, "rows", stats.rows, "accepted", stats.accepted)
		}
	}
}
