package service

import (
	"context"
	"time"

	"github.com/okian/apmboard/internal/adapters/mq/publisher"
	"github.com/okian/apmboard/internal/apperr"
	"github.com/okian/apmboard/internal/domain/model"
	"github.com/okian/apmboard/pkg/logger"
	"github.com/okian/apmboard/pkg/metrics"
)

// Export returns a snapshot of jobs and events.
func (s *Service) Export(ctx context.Context) (model.Snapshot, error) {
	jobs, err := s.store.LoadJobs(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	events, err := s.store.LoadEvents(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	metrics.RecordExport()
	return model.NewSnapshot(jobs, events, s.now()), nil
}

// ExportFilename is the download name for a snapshot taken now.
func (s *Service) ExportFilename() string {
	return model.ExportFilename(s.now())
}

// Import replaces the jobs collection, and the event log when the document
// carries one. It reports false for an unreadable document, leaving the
// store untouched. Records are taken as-is.
func (s *Service) Import(ctx context.Context, raw []byte) (bool, error) {
	doc, err := model.DecodeImport(raw)
	if err != nil {
		metrics.RecordImport("rejected")
		s.logger.Warn(ctx, "import rejected", logger.Error(err))
		return false, nil
	}
	if err := s.store.ReplaceAll(ctx, doc.Jobs, doc.Events); err != nil {
		metrics.RecordImport("error")
		return false, err
	}
	metrics.RecordImport("ok")
	s.logger.Info(ctx, "data imported",
		logger.Int("jobs", len(doc.Jobs)),
		logger.Int("events", len(doc.Events)),
		logger.Any("eventsReplaced", doc.Events != nil),
	)
	s.announce(ctx, publisher.ActionImported, nil, nil, len(doc.Jobs))
	return true, nil
}

// ClearAll removes every job and event. Settings are kept.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info(ctx, "all jobs and events cleared")
	s.announce(ctx, publisher.ActionCleared, nil, nil, 0)
	return nil
}

// PruneEvents drops events older than retentionDays. Zero uses the stored
// analyticsRetentionDays setting. Events with an unreadable timestamp are
// kept. It returns the number of events removed.
func (s *Service) PruneEvents(ctx context.Context, retentionDays int) (int, error) {
	const op = "service.PruneEvents"

	if retentionDays < 0 {
		return 0, apperr.Validation(op, msgInvalidRetention)
	}
	if retentionDays == 0 {
		settings, err := s.store.LoadSettings(ctx)
		if err != nil {
			return 0, err
		}
		retentionDays = settings.AnalyticsRetentionDays
	}
	cutoff := s.now().Add(-time.Duration(retentionDays) * 24 * time.Hour)

	removed := 0
	_, err := s.store.UpdateEvents(ctx, func(events []model.AnalyticsEvent) ([]model.AnalyticsEvent, bool) {
		kept := make([]model.AnalyticsEvent, 0, len(events))
		for _, e := range events {
			if t, ok := e.Time(); ok && t.Before(cutoff) {
				continue
			}
			kept = append(kept, e)
		}
		removed = len(events) - len(kept)
		return kept, removed > 0
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info(ctx, "pruned analytics events",
			logger.Int("removed", removed),
			logger.Int("retentionDays", retentionDays),
		)
		s.announce(ctx, publisher.ActionEventsPruned, nil, nil, removed)
	}
	return removed, nil
}
