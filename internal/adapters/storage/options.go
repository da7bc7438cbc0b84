package storage

import (
	"github.com/okian/apmboard/internal/domain/model"
	"github.com/okian/apmboard/pkg/logger"
)

// Option applies a configuration option to the RecordStore.
type Option func(*RecordStore)

// WithLogger sets the logger used for decode failures.
func WithLogger(l logger.Logger) Option {
	return func(s *RecordStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSeed sets the jobs written when the jobs key is absent.
func WithSeed(jobs []model.JobPosting) Option {
	return func(s *RecordStore) {
		s.seed = jobs
	}
}
