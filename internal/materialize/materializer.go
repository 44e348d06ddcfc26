package materialize

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tempo-lab/project-tempo/internal/core/occurrence"
	"github.com/tempo-lab/project-tempo/internal/core/storage"
	"github.com/tempo-lab/project-tempo/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// Materializer extends series instances up to a rolling horizon. Runs are
// stateless: each one reads the durable watermark of every series it touches.
type Materializer struct {
	seriesStore   storage.SeriesStore
	instanceStore storage.InstanceStore
	params        JobParameter
	now           func() time.Time
	inflight      singleflight.Group
}

// NewMaterializer creates a Materializer over the given stores.
func NewMaterializer(seriesStore storage.SeriesStore, instanceStore storage.InstanceStore, params JobParameter) *Materializer {
	return &Materializer{
		seriesStore:   seriesStore,
		instanceStore: instanceStore,
		params:        params.normalized(),
		now:           time.Now,
	}
}

// Run materializes every active series, one page at a time.
// Per-series failures are logged and counted; they never stop the run.
func (m *Materializer) Run(ctx context.Context) (Summary, error) {
	started := m.now()
	var summary Summary

	slog.Info("[Materializer] Starting run",
		"batch_size", m.params.BatchSize,
		"workers", m.params.WorkerCount,
		"horizon_days", m.params.horizonDays(),
	)

	afterID := ""
	for {
		page, err := m.seriesStore.ListActiveSeries(ctx, afterID, m.params.BatchSize)
		if err != nil {
			metrics.ObserveRun(metrics.ResultFailed, time.Since(started))
			return summary, fmt.Errorf("list active series: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for _, o := range materializeConcurrently(ctx, m.seriesStore, m.instanceStore, page, m.params, started) {
			summary.SeriesScanned++
			if o.err != nil {
				summary.Failed++
				reason := failureReason(o.err)
				metrics.IncSeriesFailure(reason)
				slog.Error("[Materializer] Series failed",
					"series_id", o.series.ID,
					"slug", o.series.Slug,
					"reason", reason,
					"error", o.err,
				)
				continue
			}
			if o.result.Instances > 0 {
				summary.Materialized++
			}
			if o.result.Truncated {
				summary.Truncated++
			}
			summary.Instances += o.result.Instances
		}

		if err := ctx.Err(); err != nil {
			metrics.ObserveRun(summary.result(), time.Since(started))
			return summary, err
		}
		if len(page) < m.params.BatchSize {
			break
		}
		afterID = page[len(page)-1].ID
	}

	metrics.ObserveRun(summary.result(), time.Since(started))
	slog.Info("[Materializer] Run complete",
		"series_scanned", summary.SeriesScanned,
		"series_materialized", summary.Materialized,
		"instances", summary.Instances,
		"truncated", summary.Truncated,
		"failed", summary.Failed,
		"elapsed", time.Since(started),
	)
	return summary, nil
}

// MaterializeSeries extends one series on demand. Concurrent calls for the
// same series share a single execution.
func (m *Materializer) MaterializeSeries(ctx context.Context, series occurrence.EventSeries) (SeriesResult, error) {
	if series.Status != occurrence.StatusActive {
		return SeriesResult{SeriesID: series.ID}, fmt.Errorf("%w: %s is %s", occurrence.ErrSeriesNotActive, series.Slug, series.Status)
	}

	v, err, shared := m.inflight.Do(series.ID, func() (interface{}, error) {
		return materializeOne(ctx, m.seriesStore, m.instanceStore, series, m.params, m.now())
	})
	if shared {
		slog.Debug("[Materializer] Joined in-flight materialization", "series_id", series.ID)
	}
	res, _ := v.(SeriesResult)
	if err != nil {
		metrics.IncSeriesFailure(failureReason(err))
		return res, err
	}
	return res, nil
}
