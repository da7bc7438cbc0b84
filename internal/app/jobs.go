package service

import (
	"context"

	"github.com/okian/apmboard/internal/adapters/mq/publisher"
	"github.com/okian/apmboard/internal/adapters/repository"
	"github.com/okian/apmboard/internal/apperr"
	"github.com/okian/apmboard/internal/domain/model"
)

// JobView is a job as returned to clients.
type JobView struct {
	model.JobPosting
	DaysAdded int `json:"daysAdded"`
}

func (s *Service) view(j model.JobPosting) JobView {
	return JobView{JobPosting: j, DaysAdded: model.DaysAdded(j.CreatedAt, s.now())}
}

// ListJobs returns the jobs matching q in collection order.
func (s *Service) ListJobs(ctx context.Context, q repository.Query) ([]JobView, error) {
	jobs, err := s.jobs.List(ctx)
	if err != nil {
		return nil, err
	}
	jobs = repository.Apply(jobs, q)
	out := make([]JobView, len(jobs))
	for i, j := range jobs {
		out[i] = s.view(j)
	}
	return out, nil
}

// GetJob returns one job.
func (s *Service) GetJob(ctx context.Context, id string) (JobView, error) {
	j, err := s.jobs.Get(ctx, id)
	if err != nil {
		return JobView{}, err
	}
	return s.view(j), nil
}

// CreateJob validates and stores a new job.
func (s *Service) CreateJob(ctx context.Context, in model.JobInput) (JobView, error) {
	j, err := s.jobs.Create(ctx, in)
	if err != nil {
		return JobView{}, err
	}
	s.announce(ctx, publisher.ActionCreated, []string{j.ID}, &j, 1)
	return s.view(j), nil
}

// UpdateJob applies a partial update.
func (s *Service) UpdateJob(ctx context.Context, id string, p model.JobPatch) (JobView, error) {
	j, err := s.jobs.Update(ctx, id, p)
	if err != nil {
		return JobView{}, err
	}
	s.announce(ctx, publisher.ActionUpdated, []string{j.ID}, &j, 1)
	return s.view(j), nil
}

// DeleteJob removes a job. Its analytics events are kept.
func (s *Service) DeleteJob(ctx context.Context, id string) error {
	ok, err := s.jobs.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("service.DeleteJob", msgJobNotFound)
	}
	s.announce(ctx, publisher.ActionDeleted, []string{id}, nil, 1)
	return nil
}

// BulkUpdateStatus sets status on every listed job that exists and
// returns how many were changed.
func (s *Service) BulkUpdateStatus(ctx context.Context, ids []string, status model.Status) (int, error) {
	n, err := s.jobs.BulkUpdateStatus(ctx, ids, status)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.announce(ctx, publisher.ActionStatusBulk, ids, nil, n)
	}
	return n, nil
}
