// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Status is the application state of a job posting.
type Status string

const (
	StatusOpen      Status = "Open"
	StatusClosed    Status = "Closed"
	StatusYetToOpen Status = "Yet to Open"
)

// Statuses lists every valid status in display order.
func Statuses() []Status {
	return []Status{StatusOpen, StatusClosed, StatusYetToOpen}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusClosed, StatusYetToOpen:
		return true
	}
	return false
}

// InvalidStatusMessage is the message returned for an unknown status.
func InvalidStatusMessage() string {
	names := make([]string, 0, 3)
	for _, s := range Statuses() {
		names = append(names, string(s))
	}
	return "Invalid status. Must be one of: " + strings.Join(names, ", ")
}

// ParseStatus converts s into a Status. Matching is exact.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// EventType is the kind of an interaction event.
type EventType string

const (
	EventView  EventType = "view"
	EventClick EventType = "click"
)

// Valid reports whether t is view or click.
func (t EventType) Valid() bool {
	return t == EventView || t == EventClick
}

// ParseEventType converts s into an EventType.
func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidEventType, s)
	}
	return t, nil
}
