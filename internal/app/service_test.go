package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/okian/apmboard/internal/adapters/mq/publisher"
	"github.com/okian/apmboard/internal/adapters/repository"
	"github.com/okian/apmboard/internal/adapters/storage"
	service "github.com/okian/apmboard/internal/app"
	"github.com/okian/apmboard/internal/apperr"
	"github.com/okian/apmboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recorder struct {
	mu      sync.Mutex
	changes []publisher.JobChange
	events  []model.AnalyticsEvent
}

func (r *recorder) PublishJobChange(_ context.Context, c publisher.JobChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
	return nil
}

func (r *recorder) PublishEvent(_ context.Context, e model.AnalyticsEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.changes))
	for i, c := range r.changes {
		out[i] = c.Action
	}
	return out
}

func newService(opts ...service.Option) (*service.Service, *clock) {
	c := &clock{t: testNow}
	opts = append([]service.Option{service.WithClock(c.Now)}, opts...)
	return service.New(opts...), c
}

func acme() model.JobInput {
	return model.JobInput{Company: "Acme Corp", Role: "APM Intern", ApplicationLink: "https://acme.test/apply"}
}

func TestServiceJobs(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service over an empty store", t, func() {
		svc, clk := newService()
		defer func() { _ = svc.Stop(ctx) }()

		Convey("When a job is created", func() {
			job, err := svc.CreateJob(ctx, acme())
			So(err, ShouldBeNil)

			Convey("Then it should carry defaults and daysAdded", func() {
				So(job.ID, ShouldEqual, "acme-corp-1714557600000")
				So(job.Status, ShouldEqual, model.StatusYetToOpen)
				So(job.Analytics, ShouldResemble, model.Counters{})
				So(job.DaysAdded, ShouldEqual, 1)
			})

			Convey("And it should age as the clock moves", func() {
				clk.Advance(30 * time.Hour)
				got, err := svc.GetJob(ctx, job.ID)
				So(err, ShouldBeNil)
				So(got.DaysAdded, ShouldEqual, 2)
			})

			Convey("And listing should filter by query", func() {
				_, err := svc.CreateJob(ctx, model.JobInput{Company: "Globex", Role: "PM", ApplicationLink: "x"})
				So(err, ShouldBeNil)

				all, err := svc.ListJobs(ctx, repository.Query{})
				So(err, ShouldBeNil)
				So(len(all), ShouldEqual, 2)

				hits, err := svc.ListJobs(ctx, repository.Query{Search: "intern"})
				So(err, ShouldBeNil)
				So(len(hits), ShouldEqual, 1)
				So(hits[0].Company, ShouldEqual, "Acme Corp")
			})

			Convey("And deleting it twice should report not found", func() {
				So(svc.DeleteJob(ctx, job.ID), ShouldBeNil)
				err := svc.DeleteJob(ctx, job.ID)
				So(apperr.IsNotFound(err), ShouldBeTrue)
				So(apperr.Message(err), ShouldEqual, "Job not found")
			})
		})

		Convey("When a create request is missing fields", func() {
			_, err := svc.CreateJob(ctx, model.JobInput{Company: "Acme"})
			So(apperr.IsValidation(err), ShouldBeTrue)
			So(apperr.Message(err), ShouldEqual, "Missing required fields: role, applicationLink")
		})

		Convey("When bulk updating statuses", func() {
			a, _ := svc.CreateJob(ctx, acme())
			b, _ := svc.CreateJob(ctx, acme())

			n, err := svc.BulkUpdateStatus(ctx, []string{a.ID, "missing", b.ID}, model.StatusOpen)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)

			_, err = svc.BulkUpdateStatus(ctx, []string{a.ID}, model.Status("Paused"))
			So(apperr.IsValidation(err), ShouldBeTrue)
			got, _ := svc.GetJob(ctx, a.ID)
			So(got.Status, ShouldEqual, model.StatusOpen)
		})
	})

	Convey("Given a service with seed jobs", t, func() {
		seed, err := storage.SeedJobs()
		So(err, ShouldBeNil)
		svc, _ := newService(service.WithSeedJobs(seed))

		jobs, err := svc.ListJobs(ctx, repository.Query{})
		So(err, ShouldBeNil)
		So(len(jobs), ShouldEqual, len(seed))
	})
}

func TestServiceTrack(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with one job", t, func() {
		svc, _ := newService()
		job, err := svc.CreateJob(ctx, acme())
		So(err, ShouldBeNil)

		Convey("When required fields are missing", func() {
			_, err := svc.Track(ctx, service.TrackInput{JobID: job.ID})
			So(apperr.IsValidation(err), ShouldBeTrue)
			So(apperr.Message(err), ShouldEqual, "jobId and eventType are required")
		})

		Convey("When the event type is unknown", func() {
			_, err := svc.Track(ctx, service.TrackInput{JobID: job.ID, EventType: "hover"})
			So(apperr.IsValidation(err), ShouldBeTrue)
			So(apperr.Message(err), ShouldEqual, `eventType must be either "view" or "click"`)
		})

		Convey("When the job does not exist", func() {
			_, err := svc.Track(ctx, service.TrackInput{JobID: "nope", EventType: "view"})
			So(apperr.IsNotFound(err), ShouldBeTrue)

			report, err := svc.Analytics(ctx, "", "")
			So(err, ShouldBeNil)
			So(report.Events, ShouldBeEmpty)
		})

		Convey("When a view and a click are tracked", func() {
			res, err := svc.Track(ctx, service.TrackInput{JobID: job.ID, EventType: "view", UserAgent: "ua", Referrer: "ref"})
			So(err, ShouldBeNil)
			So(res.Message, ShouldEqual, "view tracked successfully")
			So(res.Counted, ShouldBeTrue)
			_, err = svc.Track(ctx, service.TrackInput{JobID: job.ID, EventType: "click"})
			So(err, ShouldBeNil)

			Convey("Then counters and the event log should agree", func() {
				got, _ := svc.GetJob(ctx, job.ID)
				So(got.Analytics, ShouldResemble, model.Counters{Views: 1, Clicks: 1})

				report, err := svc.Analytics(ctx, job.ID, "")
				So(err, ShouldBeNil)
				So(len(report.Events), ShouldEqual, 2)
				So(report.Events[0].UserAgent, ShouldEqual, "ua")
				So(report.Summary.TotalViews, ShouldEqual, 1)
				So(report.Summary.ClickThroughRate, ShouldAlmostEqual, 100.0)

				clicks, _ := svc.Analytics(ctx, "", "click")
				So(len(clicks.Events), ShouldEqual, 1)
			})
		})

		Convey("When the same session views a job twice", func() {
			in := service.TrackInput{JobID: job.ID, EventType: "view", SessionID: "s1"}
			first, err := svc.Track(ctx, in)
			So(err, ShouldBeNil)
			second, err := svc.Track(ctx, in)
			So(err, ShouldBeNil)

			Convey("Then only the first should count", func() {
				So(first.Counted, ShouldBeTrue)
				So(second.Counted, ShouldBeFalse)
				So(second.Message, ShouldEqual, "view tracked successfully")
				got, _ := svc.GetJob(ctx, job.ID)
				So(got.Analytics.Views, ShouldEqual, 1)
			})

			Convey("And another session should still count", func() {
				_, err := svc.Track(ctx, service.TrackInput{JobID: job.ID, EventType: "view", SessionID: "s2"})
				So(err, ShouldBeNil)
				got, _ := svc.GetJob(ctx, job.ID)
				So(got.Analytics.Views, ShouldEqual, 2)
			})
		})

		Convey("When a session views a missing job", func() {
			in := service.TrackInput{JobID: "nope", EventType: "view", SessionID: "s1"}
			_, err := svc.Track(ctx, in)
			So(apperr.IsNotFound(err), ShouldBeTrue)
			_, err = svc.Track(ctx, in)
			So(apperr.IsNotFound(err), ShouldBeTrue)
		})
	})
}

func TestServiceImportExport(t *testing.T) {
	ctx := context.Background()

	Convey("Given a board with jobs and events", t, func() {
		svc, _ := newService()
		job, _ := svc.CreateJob(ctx, acme())
		_, err := svc.Track(ctx, service.TrackInput{JobID: job.ID, EventType: "view"})
		So(err, ShouldBeNil)

		Convey("When its export is imported back", func() {
			snap, err := svc.Export(ctx)
			So(err, ShouldBeNil)
			So(snap.ExportedAt, ShouldEqual, "2024-05-01T10:00:00.000Z")
			raw, err := json.Marshal(snap)
			So(err, ShouldBeNil)

			ok, err := svc.Import(ctx, raw)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			Convey("Then the collections should be unchanged", func() {
				again, err := svc.Export(ctx)
				So(err, ShouldBeNil)
				So(again.Jobs, ShouldResemble, snap.Jobs)
				So(again.Analytics, ShouldResemble, snap.Analytics)
			})
		})

		Convey("When the document is unreadable", func() {
			for _, raw := range []string{`nope`, `{"jobs":"x"}`, `{"analytics":[]}`} {
				ok, err := svc.Import(ctx, []byte(raw))
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			}
			jobs, _ := svc.ListJobs(ctx, repository.Query{})
			So(len(jobs), ShouldEqual, 1)
		})

		Convey("When the document has no analytics array", func() {
			ok, err := svc.Import(ctx, []byte(`{"jobs":[]}`))
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			report, _ := svc.Analytics(ctx, "", "")
			So(len(report.Events), ShouldEqual, 1)
			jobs, _ := svc.ListJobs(ctx, repository.Query{})
			So(jobs, ShouldBeEmpty)
		})

		Convey("When everything is cleared", func() {
			So(svc.ClearAll(ctx), ShouldBeNil)
			snap, err := svc.Export(ctx)
			So(err, ShouldBeNil)
			So(snap.Jobs, ShouldBeEmpty)
			So(snap.Analytics, ShouldBeEmpty)
		})
	})
}

func TestServicePruneAndSettings(t *testing.T) {
	ctx := context.Background()

	Convey("Given events spread over time", t, func() {
		svc, clk := newService()
		job, _ := svc.CreateJob(ctx, acme())
		_, _ = svc.Track(ctx, service.TrackInput{JobID: job.ID, EventType: "view"})
		clk.Advance(10 * 24 * time.Hour)
		_, _ = svc.Track(ctx, service.TrackInput{JobID: job.ID, EventType: "click"})

		Convey("When pruning with a short retention", func() {
			removed, err := svc.PruneEvents(ctx, 5)
			So(err, ShouldBeNil)
			So(removed, ShouldEqual, 1)

			report, _ := svc.Analytics(ctx, "", "")
			So(len(report.Events), ShouldEqual, 1)
			So(report.Events[0].EventType, ShouldEqual, model.EventClick)
		})

		Convey("When pruning with the stored retention", func() {
			removed, err := svc.PruneEvents(ctx, 0)
			So(err, ShouldBeNil)
			So(removed, ShouldEqual, 0)
		})

		Convey("When the retention is negative", func() {
			_, err := svc.PruneEvents(ctx, -1)
			So(apperr.IsValidation(err), ShouldBeTrue)
		})
	})

	Convey("Given default settings", t, func() {
		svc, _ := newService()

		got, err := svc.Settings(ctx)
		So(err, ShouldBeNil)
		So(got.EmailNotifications, ShouldBeTrue)

		Convey("When updating one field", func() {
			updated, err := svc.UpdateSettings(ctx, service.SettingsPatch{AnalyticsRetentionDays: model.Ptr(30)})
			So(err, ShouldBeNil)
			So(updated.AnalyticsRetentionDays, ShouldEqual, 30)
			So(updated.EmailNotifications, ShouldBeTrue)
			So(updated.UpdatedAt.Equal(testNow), ShouldBeTrue)

			again, _ := svc.Settings(ctx)
			So(again.AnalyticsRetentionDays, ShouldEqual, 30)
		})

		Convey("When the retention is out of range", func() {
			_, err := svc.UpdateSettings(ctx, service.SettingsPatch{AnalyticsRetentionDays: model.Ptr(0)})
			So(apperr.IsValidation(err), ShouldBeTrue)
		})
	})
}

func TestServiceLifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service with a publisher", t, func() {
		rec := &recorder{}
		svc, _ := newService(service.WithPublisher(rec), service.WithWorkerCount(1))
		So(svc.Start(ctx), ShouldBeNil)

		stats := svc.GetStats()
		So(stats["started"], ShouldEqual, true)
		So(stats["backend"], ShouldEqual, storage.BackendMemory)

		job, err := svc.CreateJob(ctx, acme())
		So(err, ShouldBeNil)
		_, err = svc.Track(ctx, service.TrackInput{JobID: job.ID, EventType: "view"})
		So(err, ShouldBeNil)
		So(svc.DeleteJob(ctx, job.ID), ShouldBeNil)

		Convey("When it is stopped", func() {
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then queued notifications should have been delivered", func() {
				So(rec.actions(), ShouldResemble, []string{publisher.ActionCreated, publisher.ActionDeleted})
				So(len(rec.events), ShouldEqual, 1)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})

			Convey("And it cannot be started again", func() {
				So(svc.Start(ctx), ShouldEqual, service.ErrStopped)
				So(svc.Stop(ctx), ShouldBeNil)
			})
		})
	})
}
