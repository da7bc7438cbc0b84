package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot is the export document.
type Snapshot struct {
	Jobs       []JobPosting     `json:"jobs"`
	Analytics  []AnalyticsEvent `json:"analytics"`
	ExportedAt string           `json:"exportedAt"`
}

// NewSnapshot builds an export of the given collections. Nil slices are
// emitted as empty arrays.
func NewSnapshot(jobs []JobPosting, events []AnalyticsEvent, at time.Time) Snapshot {
	if jobs == nil {
		jobs = []JobPosting{}
	}
	if events == nil {
		events = []AnalyticsEvent{}
	}
	return Snapshot{Jobs: jobs, Analytics: events, ExportedAt: FormatTimestamp(at)}
}

// ExportFilename is the suggested download name for a snapshot taken at t.
func ExportFilename(t time.Time) string {
	return "apm-jobs-export-" + t.UTC().Format(time.DateOnly) + ".json"
}

// ImportDocument is a decoded import payload. Events is nil when the
// document carried no analytics array, in which case the event log is
// left untouched.
type ImportDocument struct {
	Jobs   []JobPosting
	Events []AnalyticsEvent
}

// DecodeImport parses raw as an import document. jobs must be an array;
// analytics is honored only when it is an array.
func DecodeImport(raw []byte) (ImportDocument, error) {
	var doc struct {
		Jobs      json.RawMessage `json:"jobs"`
		Analytics json.RawMessage `json:"analytics"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ImportDocument{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if !isArray(doc.Jobs) {
		return ImportDocument{}, fmt.Errorf("%w: jobs must be an array", ErrInvalidSnapshot)
	}
	var out ImportDocument
	if err := json.Unmarshal(doc.Jobs, &out.Jobs); err != nil {
		return ImportDocument{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if out.Jobs == nil {
		out.Jobs = []JobPosting{}
	}
	if isArray(doc.Analytics) {
		if err := json.Unmarshal(doc.Analytics, &out.Events); err != nil {
			return ImportDocument{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
		if out.Events == nil {
			out.Events = []AnalyticsEvent{}
		}
	}
	return out, nil
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
