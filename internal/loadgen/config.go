package loadgen

import (
	"time"

	"github.com/okian/apmboard/pkg/logger"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Jobs       int           // Number of synthetic jobs to create
	Events     int           // Number of view/click events to track
	RepeatRate float64       // Share of views replayed with an already used session
	Workers    int           // Number of concurrent requests
	Timeout    time.Duration // HTTP request timeout
	Cleanup    bool          // Delete created jobs afterwards
	Logger     logger.Logger
}

// Action is one tracking request.
type Action struct {
	JobID     string `json:"jobId"`
	EventType string `json:"eventType"`
	SessionID string `json:"sessionId,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`

	// Repeat marks a view whose session already viewed the job.
	Repeat bool `json:"-"`
}

// Counts is the expected or observed analytics of one job.
type Counts struct {
	Views  int `json:"views"`
	Clicks int `json:"clicks"`
}

// Stats holds run statistics.
type Stats struct {
	JobsCreated     int
	EventsSubmitted int
	EventsCounted   int
	EventsRepeated  int
	EventsFailed    int
	JobsVerified    int
	Mismatches      int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
