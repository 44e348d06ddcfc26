package materialize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/tempo-lab/project-tempo/internal/core/occurrence"
	"github.com/tempo-lab/project-tempo/internal/core/partition"
	"github.com/tempo-lab/project-tempo/internal/core/rrule"
	"github.com/tempo-lab/project-tempo/internal/core/storage"
	"github.com/tempo-lab/project-tempo/internal/metrics"
)

const (
	defaultBatchSize   = 500
	defaultWorkerCount = 4
	defaultHorizon     = 90 * 24 * time.Hour
)

// instanceNamespace scopes deterministic instance ids.
var instanceNamespace = uuid.MustParse("5b7d0c8e-3f43-4c55-9a0f-6a1d8f2e4b17")

// JobParameter controls throughput and reach of a materialization run.
type JobParameter struct {
	BatchSize   int
	WorkerCount int
	Horizon     time.Duration
}

// DefaultJobParameter returns the defaults used when config leaves a field unset.
func DefaultJobParameter() JobParameter {
	return JobParameter{
		BatchSize:   defaultBatchSize,
		WorkerCount: defaultWorkerCount,
		Horizon:     defaultHorizon,
	}
}

func (p JobParameter) normalized() JobParameter {
	n := p
	if n.BatchSize <= 0 {
		n.BatchSize = defaultBatchSize
	}
	if n.WorkerCount <= 0 {
		n.WorkerCount = defaultWorkerCount
	}
	if n.Horizon <= 0 {
		n.Horizon = defaultHorizon
	}
	return n
}

func (p JobParameter) horizonDays() int {
	return int(p.Horizon / (24 * time.Hour))
}

// SeriesResult is the outcome of materializing one series.
type SeriesResult struct {
	SeriesID  string
	Instances int
	Through   mo.Option[rrule.Date]
	Truncated bool
}

// Summary aggregates the results of a full run.
type Summary struct {
	SeriesScanned int
	Materialized  int
	Instances     int
	Truncated     int
	Failed        int
}

func (s Summary) result() string {
	switch {
	case s.Failed == 0:
		return metrics.ResultSuccess
	case s.Failed < s.SeriesScanned:
		return metrics.ResultPartial
	default:
		return metrics.ResultFailed
	}
}

// InstanceID derives a stable id for one occurrence of a series, so reruns
// produce the same rows.
func InstanceID(seriesID string, d rrule.Date) string {
	return uuid.NewSHA1(instanceNamespace, []byte(seriesID+"/"+d.String())).String()
}

// materializeOne generates and flushes the instances of one series after its
// watermark. Truncated expansions only advance the watermark to the last
// generated date so the next run picks up where this one stopped.
func materializeOne(
	ctx context.Context,
	seriesStore storage.SeriesStore,
	instanceStore storage.InstanceStore,
	series occurrence.EventSeries,
	params JobParameter,
	now time.Time,
) (SeriesResult, error) {
	res := SeriesResult{SeriesID: series.ID}

	today, err := series.Today(now)
	if err != nil {
		return res, err
	}
	horizonEnd := today.AddDays(params.horizonDays())

	watermark, err := seriesStore.ReadWatermark(ctx, series.ID)
	if err != nil {
		return res, fmt.Errorf("%w: %w", errStorage, err)
	}
	if last, ok := watermark.Get(); ok && !horizonEnd.After(last) {
		res.Through = watermark
		return res, nil
	}

	rule, err := series.Rule()
	if err != nil {
		return res, err
	}

	exp, err := occurrence.ExpandSeries(series, rule, watermark, horizonEnd)
	if err != nil {
		return res, err
	}

	through := horizonEnd
	if exp.Truncated {
		res.Truncated = true
		metrics.IncTruncated()
		if len(exp.Occurrences) == 0 {
			return res, nil
		}
		through = exp.Occurrences[len(exp.Occurrences)-1].Date
		slog.Warn("[Materializer] Expansion truncated, watermark held back",
			"series_id", series.ID,
			"slug", series.Slug,
			"through", through.String(),
			"horizon_end", horizonEnd.String(),
		)
	}

	instances := make([]storage.Instance, 0, len(exp.Occurrences))
	for _, occ := range exp.Occurrences {
		instances = append(instances, storage.Instance{
			ID:       InstanceID(series.ID, occ.Date),
			SeriesID: series.ID,
			Date:     occ.Date,
			StartsAt: occ.Start,
			EndsAt:   occ.End,
			Title:    series.Title,
		})
	}

	if err := instanceStore.Flush(ctx, series.ID, instances, through); err != nil {
		return res, fmt.Errorf("%w: %w", errStorage, err)
	}

	metrics.AddInstances(len(instances))
	res.Instances = len(instances)
	res.Through = mo.Some(through)
	return res, nil
}

var errStorage = errors.New("storage")

// failureReason classifies a per-series error for the failure counter.
func failureReason(err error) string {
	var perr *rrule.ParseError
	switch {
	case errors.As(err, &perr):
		return metrics.ReasonInvalidRule
	case errors.Is(err, occurrence.ErrInvalidTimezone):
		return metrics.ReasonInvalidTimezone
	default:
		return metrics.ReasonStorage
	}
}

// shard splits a page of series across workers by partition so that a series
// is handled by exactly one worker within a run.
func shard(page []occurrence.EventSeries, workers int) [][]occurrence.EventSeries {
	buckets := make([][]occurrence.EventSeries, workers)
	for _, s := range page {
		w := partition.Owner(s.ID, workers)
		buckets[w] = append(buckets[w], s)
	}
	return buckets
}

type seriesOutcome struct {
	series occurrence.EventSeries
	result SeriesResult
	err    error
}

func materializeConcurrently(
	ctx context.Context,
	seriesStore storage.SeriesStore,
	instanceStore storage.InstanceStore,
	page []occurrence.EventSeries,
	params JobParameter,
	now time.Time,
) []seriesOutcome {
	workerCount := minInt(params.WorkerCount, len(page))
	if workerCount <= 0 {
		return nil
	}

	buckets := shard(page, workerCount)
	results := make(chan seriesOutcome, len(page))

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go func(assigned []occurrence.EventSeries) {
			defer wg.Done()
			for _, s := range assigned {
				if ctx.Err() != nil {
					results <- seriesOutcome{series: s, err: ctx.Err()}
					continue
				}
				res, err := materializeOne(ctx, seriesStore, instanceStore, s, params, now)
				results <- seriesOutcome{series: s, result: res, err: err}
			}
		}(buckets[i])
	}

	wg.Wait()
	close(results)

	out := make([]seriesOutcome, 0, len(page))
	for o := range results {
		out = append(out, o)
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
