package main

import (
	"context"
	"fmt"

	"github.com/okian/apmboard/internal/adapters/mq/publisher"
	"github.com/okian/apmboard/internal/adapters/storage"
	app "github.com/okian/apmboard/internal/app"
	"github.com/okian/apmboard/internal/config"
	"github.com/okian/apmboard/pkg/logger"
)

// openService builds the service over the configured storage backend and,
// when nats_url is set, a NATS publisher.
func openService(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Service, error) {
	blob, err := storage.Open(ctx, cfg.Storage())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.StorageBackend, err)
	}

	opts := []app.Option{
		app.WithBlob(blob),
		app.WithLogger(log),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithQueueSize(cfg.NotifyQueueSize),
		app.WithWorkerCount(cfg.NotifyWorkers),
		app.WithSummaryLimits(cfg.TopJobsLimit, cfg.RecentActivityLimit),
	}

	if cfg.SeedOnEmpty {
		jobs, err := storage.SeedJobs()
		if err != nil {
			_ = blob.Close()
			return nil, fmt.Errorf("failed to read seed jobs: %w", err)
		}
		opts = append(opts, app.WithSeedJobs(jobs))
	}

	if cfg.NATSURL != "" {
		pub, err := publisher.NewNATS(cfg.NATSURL, log.Named("nats"))
		if err != nil {
			_ = blob.Close()
			return nil, err
		}
		opts = append(opts, app.WithPublisher(pub))
		log.Info(ctx, "publishing change notifications to NATS")
	}

	return app.New(opts...), nil
}
