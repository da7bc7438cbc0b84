// Package publisher announces board changes to downstream consumers.
package publisher

import (
	"context"
	"time"

	"github.com/okian/apmboard/internal/domain/model"
)

// Subjects used for change notifications.
const (
	SubjectJobsChanged     = "apm.jobs.changed"
	SubjectAnalyticsEvents = "apm.analytics.events"
)

// Change actions.
const (
	ActionCreated      = "created"
	ActionUpdated      = "updated"
	ActionDeleted      = "deleted"
	ActionStatusBulk   = "status_bulk_updated"
	ActionImported     = "imported"
	ActionCleared      = "cleared"
	ActionEventsPruned = "events_pruned"
)

// JobChange describes one mutation of the job collection.
type JobChange struct {
	Action string            `json:"action"`
	JobIDs []string          `json:"jobIds,omitempty"`
	Job    *model.JobPosting `json:"job,omitempty"`
	Count  int               `json:"count,omitempty"`
	At     time.Time         `json:"at"`
}

// Publisher delivers notifications. Implementations must be safe for
// concurrent use.
type Publisher interface {
	PublishJobChange(ctx context.Context, change JobChange) error
	PublishEvent(ctx context.Context, event model.AnalyticsEvent) error
	Close() error
}

// Notification is one queued delivery: exactly one of Change or Event is set.
type Notification struct {
	Change *JobChange
	Event  *model.AnalyticsEvent
}

// Subject returns the subject n is published on.
func (n Notification) Subject() string {
	if n.Event != nil {
		return SubjectAnalyticsEvents
	}
	return SubjectJobsChanged
}

// Deliver sends n through p.
func Deliver(ctx context.Context, p Publisher, n Notification) error {
	switch {
	case n.Event != nil:
		return p.PublishEvent(ctx, *n.Event)
	case n.Change != nil:
		return p.PublishJobChange(ctx, *n.Change)
	}
	return nil
}

// Noop discards every notification.
type Noop struct{}

func (Noop) PublishJobChange(context.Context, JobChange) error { return nil }
func (Noop) PublishEvent(context.Context, model.AnalyticsEvent) error { return nil }
func (Noop) Close() error { return nil }
