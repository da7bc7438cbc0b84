package model

import (
	"strconv"
	"time"
)

// TimestampLayout is the ISO-8601 form used for event timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// AnalyticsEvent is one recorded view or click. The log is append-only
// and ordered by insertion.
type AnalyticsEvent struct {
	ID        string    `json:"id"`
	JobID     string    `json:"jobId"`
	EventType EventType `json:"eventType"`
	Timestamp string    `json:"timestamp"`
	UserAgent string    `json:"userAgent"`
	Referrer  string    `json:"referrer"`
}

// NewEventID builds jobID-type-epochMillis. Two identical events in the
// same millisecond share an id.
func NewEventID(jobID string, t EventType, at time.Time) string {
	return jobID + "-" + string(t) + "-" + strconv.FormatInt(at.UnixMilli(), 10)
}

// NewEvent creates an event stamped at the given instant.
func NewEvent(jobID string, t EventType, at time.Time, userAgent, referrer string) AnalyticsEvent {
	at = Stamp(at)
	return AnalyticsEvent{
		ID:        NewEventID(jobID, t, at),
		JobID:     jobID,
		EventType: t,
		Timestamp: FormatTimestamp(at),
		UserAgent: userAgent,
		Referrer:  referrer,
	}
}

// FormatTimestamp renders t in UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Time parses the stored timestamp. Events imported with an unreadable
// timestamp report ok=false.
func (e AnalyticsEvent) Time() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, e.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
