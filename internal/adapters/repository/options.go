// Package repository implements job CRUD, filtering and bulk status
// changes over the record store.
package repository

import (
	"time"

	"github.com/okian/apmboard/pkg/logger"
)

// Option applies a configuration option to the Repository.
type Option func(*Repository)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the repository logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}
