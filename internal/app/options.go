package service

import (
	"time"

	"github.com/okian/apmboard/internal/adapters/mq/publisher"
	"github.com/okian/apmboard/internal/adapters/storage"
	"github.com/okian/apmboard/internal/domain/model"
	"github.com/okian/apmboard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithBlob sets the storage backend. Defaults to an in-memory blob.
func WithBlob(b storage.Blob) Option {
	return func(s *Service) {
		if b != nil {
			s.blob = b
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPublisher sets where change notifications are delivered.
func WithPublisher(p publisher.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithDedupeSize sets how many session views are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		s.dedupeSize = size
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSeedJobs sets the jobs written to an empty store.
func WithSeedJobs(jobs []model.JobPosting) Option {
	return func(s *Service) {
		s.seed = jobs
	}
}

// WithQueueSize sets the notification queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of notification workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithSummaryLimits caps the top jobs and recent activity lists of the
// analytics summary. Zero keeps the default.
func WithSummaryLimits(topJobs, recentActivity int) Option {
	return func(s *Service) {
		if topJobs != 0 {
			s.topJobs = topJobs
		}
		if recentActivity != 0 {
			s.recentActivity = recentActivity
		}
	}
}
