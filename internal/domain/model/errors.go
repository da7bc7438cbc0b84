package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidEventType = errors.New("invalid event type")
	ErrMissingFields    = errors.New("missing required fields")
	ErrEmptyField       = errors.New("field cannot be empty")
	ErrInvalidSettings  = errors.New("invalid settings")
	ErrInvalidSnapshot  = errors.New("invalid import document")
)
