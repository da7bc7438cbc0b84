// Package service provides the core business service behind the HTTP API
// and the CLI.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/apmboard/internal/adapters/mq/publisher"
	"github.com/okian/apmboard/internal/adapters/mq/queue"
	"github.com/okian/apmboard/internal/adapters/mq/worker"
	"github.com/okian/apmboard/internal/adapters/repository"
	"github.com/okian/apmboard/internal/adapters/storage"
	"github.com/okian/apmboard/internal/apperr"
	"github.com/okian/apmboard/internal/domain/analytics"
	"github.com/okian/apmboard/internal/domain/dedupe"
	"github.com/okian/apmboard/internal/domain/model"
	"github.com/okian/apmboard/pkg/logger"
	"github.com/okian/apmboard/pkg/metrics"
)

const (
	defaultQueueSize      = 1024
	defaultWorkerCount    = 2
	defaultDedupeSize     = 10000
	defaultTopJobs        = 10
	defaultRecentActivity = 20
	statsTimeout          = 2 * time.Second
)

// Service implements the job board operations.
type Service struct {
	mu sync.RWMutex

	// Core components
	blob      storage.Blob
	store     *storage.RecordStore
	jobs      *repository.Repository
	deduper   dedupe.Deduper
	publisher publisher.Publisher
	notify    *queue.InMemoryQueue
	pool      *worker.Pool

	// Configuration
	seed           []model.JobPosting
	dedupeSize     int
	queueSize      int
	workerCount    int
	topJobs        int
	recentActivity int
	now            func() time.Time

	// State
	started   bool
	stopped   bool
	startedAt time.Time

	logger logger.Logger
}

// New constructs a Service. The storage is usable immediately; Start only
// launches the notification workers.
func New(opts ...Option) *Service {
	s := &Service{
		dedupeSize:     defaultDedupeSize,
		queueSize:      defaultQueueSize,
		workerCount:    defaultWorkerCount,
		topJobs:        defaultTopJobs,
		recentActivity: defaultRecentActivity,
		publisher:      publisher.Noop{},
		now:            time.Now,
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.blob == nil {
		s.blob = storage.Instrument(storage.NewMemoryBlob())
	}

	s.store = storage.NewRecordStore(s.blob,
		storage.WithLogger(s.logger.Named("store")),
		storage.WithSeed(s.seed),
	)
	s.jobs = repository.New(s.store,
		repository.WithClock(s.now),
		repository.WithLogger(s.logger.Named("repository")),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.notify = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.notify, s.publisher,
		worker.WithLogger(s.logger.Named("notify")),
	)
	return s
}

// Start launches the notification workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.stopped {
		return ErrStopped
	}
	s.logger.Info(ctx, "starting job board service...")

	s.pool.Start(context.WithoutCancel(ctx))
	s.started = true
	s.startedAt = s.now()

	s.logger.Info(ctx, "job board service started",
		logger.String("backend", s.store.Backend()),
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop drains pending notifications and closes the publisher and storage.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.logger.Info(ctx, "stopping job board service...")

	err := s.pool.Shutdown(ctx)
	if err != nil {
		s.logger.Warn(ctx, "notification workers did not drain", logger.Error(err))
	}
	if perr := s.publisher.Close(); perr != nil {
		s.logger.Error(ctx, "error closing publisher", logger.Error(perr))
	}
	if cerr := s.store.Close(); cerr != nil {
		s.logger.Error(ctx, "error closing storage", logger.Error(cerr))
		if err == nil {
			err = apperr.Storage("service.Stop", cerr)
		}
	}

	s.started = false
	s.stopped = true
	s.logger.Info(ctx, "job board service stopped")
	return err
}

// Ping probes the storage backend.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Backend names the storage backend in use.
func (s *Service) Backend() string { return s.store.Backend() }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
	defer cancel()

	stats := map[string]interface{}{
		"started":        s.started,
		"backend":        s.store.Backend(),
		"workerCount":    s.pool.Size(),
		"queueSize":      s.queueSize,
		"queueLength":    s.notify.Len(ctx),
		"dedupeSize":     s.dedupeSize,
		"dedupeEntries":  s.deduper.Size(),
		"topJobsLimit":   s.topJobs,
		"recentActivity": s.recentActivity,
	}
	if s.started {
		stats["uptimeSeconds"] = int64(s.now().Sub(s.startedAt).Seconds())
	}

	if jobs, err := s.store.LoadJobs(ctx); err == nil {
		stats["totalJobs"] = len(jobs)
	}
	if events, err := s.store.LoadEvents(ctx); err == nil {
		stats["totalEvents"] = len(events)
	}
	return stats
}

// RefreshMetrics recomputes the job and event log gauges.
func (s *Service) RefreshMetrics(ctx context.Context) error {
	jobs, err := s.store.LoadJobs(ctx)
	if err != nil {
		return err
	}
	events, err := s.store.LoadEvents(ctx)
	if err != nil {
		return err
	}
	publishGauges(jobs, events)
	return nil
}

func publishGauges(jobs []model.JobPosting, events []model.AnalyticsEvent) {
	byStatus := make(map[string]int, len(model.Statuses()))
	for _, st := range model.Statuses() {
		byStatus[string(st)] = 0
	}
	for _, j := range jobs {
		byStatus[string(j.Status)]++
	}
	metrics.UpdateJobCounts(len(jobs), byStatus)
	metrics.UpdateEventLogSize(len(events))
}

// summaryOptions returns the configured analytics limits.
func (s *Service) summaryOptions() []analytics.Option {
	return []analytics.Option{
		analytics.WithTopJobs(s.topJobs),
		analytics.WithRecentActivity(s.recentActivity),
	}
}

// announce queues a change notification. Delivery is best effort.
func (s *Service) announce(ctx context.Context, action string, ids []string, job *model.JobPosting, count int) {
	change := &publisher.JobChange{
		Action: action,
		JobIDs: ids,
		Job:    job,
		Count:  count,
		At:     model.Stamp(s.now()),
	}
	s.enqueue(ctx, publisher.Notification{Change: change})
}

func (s *Service) announceEvent(ctx context.Context, e model.AnalyticsEvent) {
	s.enqueue(ctx, publisher.Notification{Event: &e})
}

func (s *Service) enqueue(ctx context.Context, n publisher.Notification) {
	if !s.notify.Enqueue(context.WithoutCancel(ctx), n) {
		s.logger.Debug(ctx, "notification dropped", logger.String("subject", n.Subject()))
	}
}
