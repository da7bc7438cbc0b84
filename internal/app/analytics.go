package service

import (
	"context"

	"github.com/okian/apmboard/internal/apperr"
	"github.com/okian/apmboard/internal/domain/analytics"
	"github.com/okian/apmboard/internal/domain/dedupe"
	"github.com/okian/apmboard/internal/domain/model"
	"github.com/okian/apmboard/pkg/logger"
	"github.com/okian/apmboard/pkg/metrics"
)

// AnalyticsReport is the filtered event log plus the board summary.
type AnalyticsReport struct {
	Events  []model.AnalyticsEvent `json:"events"`
	Summary analytics.Summary      `json:"summary"`
}

// Analytics returns the events for jobID and eventType (either may be
// empty) and the summary of the whole board.
func (s *Service) Analytics(ctx context.Context, jobID, eventType string) (AnalyticsReport, error) {
	jobs, err := s.store.LoadJobs(ctx)
	if err != nil {
		return AnalyticsReport{}, err
	}
	events, err := s.store.LoadEvents(ctx)
	if err != nil {
		return AnalyticsReport{}, err
	}
	return AnalyticsReport{
		Events:  analytics.FilterEvents(events, jobID, eventType),
		Summary: analytics.Summarize(jobs, events, s.now(), s.summaryOptions()...),
	}, nil
}

// Overview returns the admin dashboard figures.
func (s *Service) Overview(ctx context.Context) (analytics.DashboardOverview, error) {
	jobs, err := s.store.LoadJobs(ctx)
	if err != nil {
		return analytics.DashboardOverview{}, err
	}
	return analytics.Overview(jobs), nil
}

// TrackInput is one view or click reported by a client.
type TrackInput struct {
	JobID     string `json:"jobId"`
	EventType string `json:"eventType"`
	UserAgent string `json:"userAgent"`
	Referrer  string `json:"referrer"`
	// SessionID, when set, makes repeated views of a job within the
	// same session count once.
	SessionID string `json:"sessionId,omitempty"`
}

// TrackResult reports what Track did.
type TrackResult struct {
	Message string `json:"message"`
	Counted bool   `json:"counted"`
}

// Track bumps the job counter for the event and appends it to the log.
func (s *Service) Track(ctx context.Context, in TrackInput) (TrackResult, error) {
	const op = "service.Track"

	if in.JobID == "" || in.EventType == "" {
		return TrackResult{}, apperr.Validation(op, msgTrackRequired)
	}
	eventType, err := model.ParseEventType(in.EventType)
	if err != nil {
		return TrackResult{}, apperr.New(apperr.KindValidation, op, msgTrackEventType, err)
	}
	msg := string(eventType) + " tracked successfully"

	var key string
	if in.SessionID != "" && eventType == model.EventView {
		key = dedupe.Key(in.SessionID, in.JobID)
		if s.deduper.SeenAndRecord(ctx, key) {
			if _, err := s.jobs.Get(ctx, in.JobID); err != nil {
				return TrackResult{}, err
			}
			metrics.RecordDuplicateView()
			s.logger.Debug(ctx, "repeated session view ignored", logger.String("jobId", in.JobID))
			return TrackResult{Message: msg}, nil
		}
	}

	var ok bool
	if eventType == model.EventView {
		_, ok, err = s.jobs.IncrementViews(ctx, in.JobID)
	} else {
		_, ok, err = s.jobs.IncrementClicks(ctx, in.JobID)
	}
	if err != nil || !ok {
		if key != "" {
			s.deduper.Unrecord(ctx, key)
		}
		if err != nil {
			return TrackResult{}, err
		}
		return TrackResult{}, apperr.NotFound(op, msgJobNotFound)
	}

	event := model.NewEvent(in.JobID, eventType, s.now(), in.UserAgent, in.Referrer)
	if err := s.store.AppendEvent(ctx, event); err != nil {
		s.logger.Error(ctx, "counter bumped but event not logged",
			logger.String("jobId", in.JobID), logger.Error(err))
		return TrackResult{}, err
	}
	metrics.RecordTrackedEvent(string(eventType))
	s.announceEvent(ctx, event)
	return TrackResult{Message: msg, Counted: true}, nil
}
