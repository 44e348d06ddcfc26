package materialize

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const finalRunTimeout = 30 * time.Second

// Scheduler runs materialization on a cron schedule.
// It is stateless: each run independently reads durable watermarks.
type Scheduler struct {
	schedule     string
	runTimeout   time.Duration
	materializer *Materializer
}

// NewScheduler validates the cron expression (standard five-field syntax or
// a descriptor such as "@hourly").
func NewScheduler(schedule string, runTimeout time.Duration, materializer *Materializer) (*Scheduler, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid materialize schedule %q: %w", schedule, err)
	}
	if runTimeout <= 0 {
		runTimeout = 10 * time.Minute
	}
	return &Scheduler{
		schedule:     schedule,
		runTimeout:   runTimeout,
		materializer: materializer,
	}, nil
}

// Start runs an initial catch-up, then materializes on schedule until ctx is
// cancelled, then runs once more with a bounded context before returning.
func (s *Scheduler) Start(ctx context.Context) error {
	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	if _, err := c.AddFunc(s.schedule, func() { s.runOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule materialization: %w", err)
	}

	slog.Info("[Scheduler] Starting materialization scheduler",
		"schedule", s.schedule,
		"run_timeout", s.runTimeout,
		"batch_size", s.materializer.params.BatchSize,
		"workers", s.materializer.params.WorkerCount,
	)

	s.runOnce(ctx)
	c.Start()

	<-ctx.Done()
	slog.Info("[Scheduler] Stopping (context cancelled)")

	// Wait for an in-flight run to observe cancellation before the final run.
	<-c.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), finalRunTimeout)
	defer cancel()

	slog.Info("[Scheduler] Running final materialization before shutdown...")
	s.runOnce(shutdownCtx)
	slog.Info("[Scheduler] Final materialization complete")

	return nil
}

func (s *Scheduler) runOnce(parent context.Context) {
	if parent.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(parent, s.runTimeout)
	defer cancel()

	summary, err := s.materializer.Run(ctx)
	if err != nil {
		slog.Error("[Scheduler] Materialization run failed",
			"error", err,
			"series_scanned", summary.SeriesScanned,
		)
		return
	}
	if summary.Failed > 0 {
		slog.Warn("[Scheduler] Materialization finished with failures",
			"failed", summary.Failed,
			"series_scanned", summary.SeriesScanned,
		)
	}
}

// cronLogger routes robfig/cron's logging through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("[Cron] "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("[Cron] "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
