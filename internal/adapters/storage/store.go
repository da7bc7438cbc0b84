package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/okian/apmboard/internal/apperr"
	"github.com/okian/apmboard/internal/domain/model"
	"github.com/okian/apmboard/pkg/logger"
	"github.com/okian/apmboard/pkg/metrics"
)

// RecordStore is the only writer of the board's blobs. Every
// read-modify-write runs under one process-local mutex; writers in other
// processes sharing the same backend can still overwrite each other.
type RecordStore struct {
	blob   Blob
	logger logger.Logger
	seed   []model.JobPosting
	mu     sync.Mutex
}

// NewRecordStore creates a store over blob.
func NewRecordStore(blob Blob, opts ...Option) *RecordStore {
	s := &RecordStore{
		blob:   blob,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend names the underlying blob store.
func (s *RecordStore) Backend() string { return s.blob.Name() }

// Ping probes the backend.
func (s *RecordStore) Ping(ctx context.Context) error {
	if err := s.blob.Ping(ctx); err != nil {
		return apperr.Storage("storage.ping", err)
	}
	return nil
}

// Close releases the backend.
func (s *RecordStore) Close() error { return s.blob.Close() }

// LoadJobs returns the current collection. An absent key is initialized
// with the seed jobs when configured.
func (s *RecordStore) LoadJobs(ctx context.Context) ([]model.JobPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadJobs(ctx)
}

// UpdateJobs loads the collection, passes it to fn and writes the result
// back only when fn reports a change. The returned slice is what was
// stored (or loaded, when nothing changed).
func (s *RecordStore) UpdateJobs(ctx context.Context, fn func([]model.JobPosting) ([]model.JobPosting, bool, error)) ([]model.JobPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.loadJobs(ctx)
	if err != nil {
		return nil, err
	}
	next, changed, err := fn(jobs)
	if err != nil {
		return nil, err
	}
	if !changed {
		return jobs, nil
	}
	if err := s.put(ctx, KeyJobs, next); err != nil {
		return nil, err
	}
	return next, nil
}

// LoadEvents returns the event log in insertion order.
func (s *RecordStore) LoadEvents(ctx context.Context) ([]model.AnalyticsEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadEvents(ctx)
}

// AppendEvent adds e to the end of the event log.
func (s *RecordStore) AppendEvent(ctx context.Context, e model.AnalyticsEvent) error {
	_, err := s.UpdateEvents(ctx, func(events []model.AnalyticsEvent) ([]model.AnalyticsEvent, bool) {
		return append(events, e), true
	})
	return err
}

// UpdateEvents is the event log counterpart of UpdateJobs.
func (s *RecordStore) UpdateEvents(ctx context.Context, fn func([]model.AnalyticsEvent) ([]model.AnalyticsEvent, bool)) ([]model.AnalyticsEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.loadEvents(ctx)
	if err != nil {
		return nil, err
	}
	next, changed := fn(events)
	if !changed {
		return events, nil
	}
	if err := s.put(ctx, KeyAnalytics, next); err != nil {
		return nil, err
	}
	return next, nil
}

// ReplaceAll overwrites the jobs collection and, when events is non-nil,
// the event log.
func (s *RecordStore) ReplaceAll(ctx context.Context, jobs []model.JobPosting, events []model.AnalyticsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if jobs == nil {
		jobs = []model.JobPosting{}
	}
	if err := s.put(ctx, KeyJobs, jobs); err != nil {
		return err
	}
	if events == nil {
		return nil
	}
	return s.put(ctx, KeyAnalytics, events)
}

// Clear removes the jobs collection and the event log. Settings are kept.
func (s *RecordStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{KeyJobs, KeyAnalytics} {
		if err := s.blob.Delete(ctx, key); err != nil {
			return apperr.Storage("storage.clear", err)
		}
	}
	return nil
}

// LoadSettings returns the stored admin settings or the defaults.
func (s *RecordStore) LoadSettings(ctx context.Context) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, _, err := load[json.RawMessage](ctx, s, KeySettings)
	if err != nil {
		return model.Settings{}, err
	}
	settings := model.DefaultSettings()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &settings); err != nil {
			metrics.RecordStorageDecodeFailure(KeySettings)
			s.logger.Warn(ctx, "stored settings unreadable, using defaults", logger.Error(err))
			return model.DefaultSettings(), nil
		}
	}
	return settings, nil
}

// SaveSettings persists settings.
func (s *RecordStore) SaveSettings(ctx context.Context, settings model.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(ctx, KeySettings, settings)
}

func (s *RecordStore) loadJobs(ctx context.Context) ([]model.JobPosting, error) {
	jobs, found, err := load[[]model.JobPosting](ctx, s, KeyJobs)
	if err != nil {
		return nil, err
	}
	if !found && len(s.seed) > 0 {
		seeded := make([]model.JobPosting, len(s.seed))
		copy(seeded, s.seed)
		if err := s.put(ctx, KeyJobs, seeded); err != nil {
			return nil, err
		}
		s.logger.Info(ctx, "seeded job collection", logger.Int("jobs", len(seeded)))
		return seeded, nil
	}
	if jobs == nil {
		jobs = []model.JobPosting{}
	}
	return jobs, nil
}

func (s *RecordStore) loadEvents(ctx context.Context) ([]model.AnalyticsEvent, error) {
	events, _, err := load[[]model.AnalyticsEvent](ctx, s, KeyAnalytics)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []model.AnalyticsEvent{}
	}
	return events, nil
}

// load decodes key. found is false when the key is absent. A document that
// does not decode is logged, counted and reported as found with the zero
// value.
func load[T any](ctx context.Context, s *RecordStore, key string) (v T, found bool, err error) {
	raw, err := s.blob.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, false, apperr.Storage("storage.get", err)
	}
	var decoded T
	if err := json.Unmarshal(raw, &decoded); err != nil {
		metrics.RecordStorageDecodeFailure(key)
		s.logger.Error(ctx, "discarding undecodable document",
			logger.String("key", key),
			logger.String("backend", s.blob.Name()),
			logger.Error(err))
		return v, true, nil
	}
	return decoded, true, nil
}

func (s *RecordStore) put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return apperr.Internal("storage.put", err)
	}
	if err := s.blob.Put(ctx, key, raw); err != nil {
		return apperr.Storage("storage.put", err)
	}
	return nil
}
