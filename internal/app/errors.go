package service

import "errors"

// ErrStopped is returned when starting a service that was already stopped.
var ErrStopped = errors.New("service stopped")

// Client-facing messages.
const (
	msgTrackRequired    = "jobId and eventType are required"
	msgTrackEventType   = `eventType must be either "view" or "click"`
	msgJobNotFound      = "Job not found"
	msgInvalidRetention = "retentionDays must be a positive number"
)
