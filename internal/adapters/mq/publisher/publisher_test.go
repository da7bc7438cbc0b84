package publisher_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/okian/apmboard/internal/adapters/mq/publisher"
	"github.com/okian/apmboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type recorder struct {
	changes []publisher.JobChange
	events  []model.AnalyticsEvent
}

func (r *recorder) PublishJobChange(_ context.Context, c publisher.JobChange) error {
	r.changes = append(r.changes, c)
	return nil
}

func (r *recorder) PublishEvent(_ context.Context, e model.AnalyticsEvent) error {
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Close() error { return nil }

func TestNotification(t *testing.T) {
	Convey("Given notifications", t, func() {
		ctx := context.Background()
		change := publisher.Notification{Change: &publisher.JobChange{Action: publisher.ActionCreated, JobIDs: []string{"a"}}}
		event := publisher.Notification{Event: &model.AnalyticsEvent{ID: "a-view-1", JobID: "a", EventType: model.EventView}}

		Convey("Then subjects should follow the payload", func() {
			So(change.Subject(), ShouldEqual, publisher.SubjectJobsChanged)
			So(event.Subject(), ShouldEqual, publisher.SubjectAnalyticsEvents)
		})

		Convey("Then delivery should route to the matching method", func() {
			r := &recorder{}
			So(publisher.Deliver(ctx, r, change), ShouldBeNil)
			So(publisher.Deliver(ctx, r, event), ShouldBeNil)
			So(publisher.Deliver(ctx, r, publisher.Notification{}), ShouldBeNil)
			So(len(r.changes), ShouldEqual, 1)
			So(len(r.events), ShouldEqual, 1)
		})

		Convey("Then the noop publisher should accept everything", func() {
			var p publisher.Publisher = publisher.Noop{}
			So(publisher.Deliver(ctx, p, change), ShouldBeNil)
			So(p.Close(), ShouldBeNil)
		})
	})
}

func TestNATSPublisher(t *testing.T) {
	url := os.Getenv("APMBOARD_TEST_NATS_URL")
	if url == "" {
		t.Skip("APMBOARD_TEST_NATS_URL not set")
	}

	Convey("Given a NATS server", t, func() {
		sub, err := nats.Connect(url)
		So(err, ShouldBeNil)
		defer sub.Close()

		msgs := make(chan *nats.Msg, 1)
		s, err := sub.ChanSubscribe(publisher.SubjectJobsChanged, msgs)
		So(err, ShouldBeNil)
		defer s.Unsubscribe() //nolint:errcheck // test cleanup
		So(sub.Flush(), ShouldBeNil)

		p, err := publisher.NewNATS(url, nil)
		So(err, ShouldBeNil)
		defer p.Close()

		change := publisher.JobChange{Action: publisher.ActionDeleted, JobIDs: []string{"acme-1"}, At: time.Now().UTC()}
		So(p.PublishJobChange(context.Background(), change), ShouldBeNil)

		select {
		case m := <-msgs:
			var got publisher.JobChange
			So(json.Unmarshal(m.Data, &got), ShouldBeNil)
			So(got.Action, ShouldEqual, publisher.ActionDeleted)
			So(got.JobIDs, ShouldResemble, []string{"acme-1"})
		case <-time.After(5 * time.Second):
			So("timed out waiting for message", ShouldBeEmpty)
		}
	})
}
