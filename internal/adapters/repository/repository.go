package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/okian/apmboard/internal/apperr"
	"github.com/okian/apmboard/internal/domain/model"
	"github.com/okian/apmboard/internal/domain/slug"
	"github.com/okian/apmboard/pkg/logger"
	"github.com/okian/apmboard/pkg/metrics"
)

// JobStore is the persistence the repository needs.
type JobStore interface {
	LoadJobs(ctx context.Context) ([]model.JobPosting, error)
	UpdateJobs(ctx context.Context, fn func([]model.JobPosting) ([]model.JobPosting, bool, error)) ([]model.JobPosting, error)
}

// Repository owns the job collection semantics.
type Repository struct {
	store  JobStore
	now    func() time.Time
	logger logger.Logger
}

// New creates a repository over store.
func New(store JobStore, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		now:    time.Now,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Now returns the repository clock at stored precision.
func (r *Repository) Now() time.Time { return model.Stamp(r.now()) }

// List returns every job in collection order.
func (r *Repository) List(ctx context.Context) ([]model.JobPosting, error) {
	return r.store.LoadJobs(ctx)
}

// Get returns the job with id.
func (r *Repository) Get(ctx context.Context, id string) (model.JobPosting, error) {
	jobs, err := r.store.LoadJobs(ctx)
	if err != nil {
		return model.JobPosting{}, err
	}
	if i := indexOf(jobs, id); i >= 0 {
		return jobs[i], nil
	}
	return model.JobPosting{}, notFound("repository.get")
}

// Create validates in and appends a new job. The id is derived from the
// company name and the creation time and is unique within the collection.
func (r *Repository) Create(ctx context.Context, in model.JobInput) (model.JobPosting, error) {
	const op = "repository.create"
	if err := in.Validate(); err != nil {
		return model.JobPosting{}, invalid(op, err)
	}

	now := r.Now()
	status := model.StatusYetToOpen
	if in.Status != nil && *in.Status != "" {
		status = *in.Status
	}
	job := model.JobPosting{
		Company:         in.Company,
		CompanyLogo:     optionalPtr(in.CompanyLogo),
		Role:            in.Role,
		Location:        optionalPtr(in.Location),
		Season:          optionalPtr(in.Season),
		Status:          status,
		ApplicationLink: in.ApplicationLink,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := r.store.UpdateJobs(ctx, func(jobs []model.JobPosting) ([]model.JobPosting, bool, error) {
		job.ID = uniqueID(jobs, slug.Make(in.Company), now)
		return append(jobs, job), true, nil
	})
	if err != nil {
		return model.JobPosting{}, err
	}
	metrics.RecordJobMutation("create")
	r.logger.Info(ctx, "job created", logger.String("job_id", job.ID), logger.String("company", job.Company))
	return job, nil
}

// Update validates p and merges it into the job with id. Nothing is
// written when the job does not exist.
func (r *Repository) Update(ctx context.Context, id string, p model.JobPatch) (model.JobPosting, error) {
	const op = "repository.update"
	if err := p.Validate(); err != nil {
		return model.JobPosting{}, invalid(op, err)
	}

	var updated model.JobPosting
	_, err := r.store.UpdateJobs(ctx, func(jobs []model.JobPosting) ([]model.JobPosting, bool, error) {
		i := indexOf(jobs, id)
		if i < 0 {
			return nil, false, notFound(op)
		}
		jobs[i].Apply(p)
		jobs[i].UpdatedAt = r.Now()
		updated = jobs[i]
		return jobs, true, nil
	})
	if err != nil {
		return model.JobPosting{}, err
	}
	metrics.RecordJobMutation("update")
	return updated, nil
}

// Delete removes the job with id. Its events stay in the log.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	deleted := false
	_, err := r.store.UpdateJobs(ctx, func(jobs []model.JobPosting) ([]model.JobPosting, bool, error) {
		i := indexOf(jobs, id)
		if i < 0 {
			return jobs, false, nil
		}
		deleted = true
		return append(jobs[:i], jobs[i+1:]...), true, nil
	})
	if err != nil {
		return false, err
	}
	if deleted {
		metrics.RecordJobMutation("delete")
		r.logger.Info(ctx, "job deleted", logger.String("job_id", id))
	}
	return deleted, nil
}

// BulkUpdateStatus sets status on every listed job and returns how many
// were changed. Unknown ids are skipped; an invalid status changes nothing.
func (r *Repository) BulkUpdateStatus(ctx context.Context, ids []string, status model.Status) (int, error) {
	const op = "repository.bulk_update_status"
	if !status.Valid() {
		return 0, apperr.New(apperr.KindValidation, op, model.InvalidStatusMessage(), model.ErrInvalidStatus)
	}

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	count := 0
	_, err := r.store.UpdateJobs(ctx, func(jobs []model.JobPosting) ([]model.JobPosting, bool, error) {
		now := r.Now()
		for i := range jobs {
			if _, ok := want[jobs[i].ID]; !ok {
				continue
			}
			jobs[i].Status = status
			jobs[i].UpdatedAt = now
			count++
		}
		return jobs, count > 0, nil
	})
	if err != nil {
		return 0, err
	}
	if count > 0 {
		metrics.RecordJobMutation("bulk_update_status")
	}
	return count, nil
}

// IncrementViews adds one view to the job. ok is false when the job does
// not exist, in which case nothing is written.
func (r *Repository) IncrementViews(ctx context.Context, id string) (model.JobPosting, bool, error) {
	return r.increment(ctx, id, func(c *model.Counters) { c.Views++ })
}

// IncrementClicks adds one click to the job.
func (r *Repository) IncrementClicks(ctx context.Context, id string) (model.JobPosting, bool, error) {
	return r.increment(ctx, id, func(c *model.Counters) { c.Clicks++ })
}

func (r *Repository) increment(ctx context.Context, id string, bump func(*model.Counters)) (model.JobPosting, bool, error) {
	var (
		job model.JobPosting
		ok  bool
	)
	_, err := r.store.UpdateJobs(ctx, func(jobs []model.JobPosting) ([]model.JobPosting, bool, error) {
		i := indexOf(jobs, id)
		if i < 0 {
			return jobs, false, nil
		}
		bump(&jobs[i].Analytics)
		jobs[i].UpdatedAt = r.Now()
		job, ok = jobs[i], true
		return jobs, true, nil
	})
	if err != nil {
		return model.JobPosting{}, false, err
	}
	return job, ok, nil
}

// uniqueID returns base-epochMillis, moving forward one millisecond at a
// time until no job in jobs uses it.
func uniqueID(jobs []model.JobPosting, base string, at time.Time) string {
	taken := make(map[string]struct{}, len(jobs))
	for _, j := range jobs {
		taken[j.ID] = struct{}{}
	}
	ms := at.UnixMilli()
	for {
		id := base + "-" + strconv.FormatInt(ms, 10)
		if _, ok := taken[id]; !ok {
			return id
		}
		ms++
	}
}

func indexOf(jobs []model.JobPosting, id string) int {
	for i := range jobs {
		if jobs[i].ID == id {
			return i
		}
	}
	return -1
}

func optionalPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return model.Optional(*s)
}

func notFound(op string) error {
	return apperr.New(apperr.KindNotFound, op, msgNotFound, ErrNotFound)
}

func invalid(op string, err error) error {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return apperr.New(apperr.KindValidation, op, verr.Message, err)
	}
	return apperr.New(apperr.KindValidation, op, err.Error(), err)
}
