// Package loadgen drives a running job board over HTTP and checks that the
// analytics it reports match the traffic sent.
package loadgen

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/apmboard/pkg/logger"
)

// ErrInvalidConfig reports unusable run settings.
var ErrInvalidConfig = errors.New("invalid loadgen config")

func (c *Config) normalize() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("%w: at least one job is required", ErrInvalidConfig)
	}
	if c.Events < 0 {
		return fmt.Errorf("%w: events must not be negative", ErrInvalidConfig)
	}
	if c.RepeatRate < 0 || c.RepeatRate > 1 {
		return fmt.Errorf("%w: repeat rate must be within [0, 1]", ErrInvalidConfig)
	}
	if c.Workers < 1 {
		c.Workers = runtime.NumCPU()
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
	return nil
}

// Run executes the complete load test and returns its statistics. A
// verification failure is returned together with the stats gathered so far.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	stats := &Stats{StartTime: time.Now()}
	log := cfg.Logger
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting job board load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("jobs", cfg.Jobs),
		logger.Int("events", cfg.Events),
		logger.Int("workers", cfg.Workers),
		logger.Float64("repeatRate", cfg.RepeatRate),
	)

	// Step 1: Check service health
	if err := client.health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Create jobs concurrently
	ids, err := createJobs(ctx, cfg, client, stats)
	if err != nil {
		return stats, fmt.Errorf("job creation failed: %w", err)
	}
	if cfg.Cleanup {
		defer cleanup(context.WithoutCancel(ctx), cfg, client, ids)
	}

	// Step 3: Track events concurrently
	actions, expected := planActions(ids, cfg.Events, cfg.RepeatRate)
	if err := submitActions(ctx, cfg, client, actions, stats); err != nil {
		return stats, fmt.Errorf("event submission failed: %w", err)
	}

	// Step 4: Verify results
	verifyErr := verifyResults(ctx, &cfg, client, expected, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if verifyErr != nil {
		return stats, fmt.Errorf("result verification failed: %w", verifyErr)
	}
	log.Info(ctx, "test completed successfully")
	return stats, nil
}

func createJobs(ctx context.Context, cfg Config, client *HTTPClient, stats *Stats) ([]string, error) {
	inputs := generateJobs(cfg.Jobs)
	ids := make([]string, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, in := range inputs {
		g.Go(func() error {
			id, err := client.createJob(gctx, in)
			if err != nil {
				return err
			}
			ids[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.JobsCreated = len(ids)
	cfg.Logger.Info(ctx, "jobs created", logger.Int("count", len(ids)))
	return ids, nil
}

// submitActions sends every action. Individual failures are counted, not
// fatal, and later surface as mismatches.
func submitActions(ctx context.Context, cfg Config, client *HTTPClient, actions []Action, stats *Stats) error {
	var counted, repeated, failed, submitted atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	var logOnce sync.Once
	for _, a := range actions {
		g.Go(func() error {
			submitted.Add(1)
			ok, err := client.track(gctx, a)
			switch {
			case err != nil:
				failed.Add(1)
				logOnce.Do(func() {
					cfg.Logger.Warn(gctx, "tracking request failed", logger.Error(err))
				})
			case ok:
				counted.Add(1)
			default:
				repeated.Add(1)
			}
			return gctx.Err()
		})
	}
	err := g.Wait()

	stats.EventsSubmitted = int(submitted.Load())
	stats.EventsCounted = int(counted.Load())
	stats.EventsRepeated = int(repeated.Load())
	stats.EventsFailed = int(failed.Load())

	cfg.Logger.Info(ctx, "event submission completed",
		logger.Int("counted", stats.EventsCounted),
		logger.Int("repeated", stats.EventsRepeated),
		logger.Int("failed", stats.EventsFailed),
	)
	return err
}

func cleanup(ctx context.Context, cfg Config, client *HTTPClient, ids []string) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, id := range ids {
		g.Go(func() error { return client.deleteJob(gctx, id) })
	}
	if err := g.Wait(); err != nil {
		cfg.Logger.Warn(ctx, "cleanup incomplete", logger.Error(err))
		return
	}
	cfg.Logger.Info(ctx, "created jobs deleted", logger.Int("count", len(ids)))
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var successRate, eventsPerSecond float64

	if stats.EventsSubmitted > 0 {
		ok := stats.EventsCounted + stats.EventsRepeated
		successRate = float64(ok) / float64(stats.EventsSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		eventsPerSecond = float64(stats.EventsSubmitted) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("jobsCreated", stats.JobsCreated),
		logger.Int("eventsSubmitted", stats.EventsSubmitted),
		logger.Int("eventsCounted", stats.EventsCounted),
		logger.Int("eventsRepeated", stats.EventsRepeated),
		logger.Int("eventsFailed", stats.EventsFailed),
		logger.Int("jobsVerified", stats.JobsVerified),
		logger.Int("mismatches", stats.Mismatches),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("eventsPerSecond", eventsPerSecond),
	)
}
