package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/apmboard/internal/adapters/mq/publisher"
	"github.com/okian/apmboard/internal/adapters/mq/queue"
	"github.com/okian/apmboard/internal/adapters/mq/worker"
	"github.com/okian/apmboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type mockPublisher struct {
	mu      sync.Mutex
	changes []publisher.JobChange
	events  []model.AnalyticsEvent
	fail    error
	delay   time.Duration
}

func (m *mockPublisher) PublishJobChange(ctx context.Context, c publisher.JobChange) error {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.changes = append(m.changes, c)
	return nil
}

func (m *mockPublisher) PublishEvent(_ context.Context, e model.AnalyticsEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.events = append(m.events, e)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.changes), len(m.events)
}

func TestPool(t *testing.T) {
	Convey("Given a pool draining a queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		pub := &mockPublisher{}
		pool := worker.NewPool(3, q, pub)
		So(pool.Size(), ShouldEqual, 3)
		pool.Start(ctx)

		for i := 0; i < 10; i++ {
			So(q.Enqueue(ctx, queue.Message{Change: &publisher.JobChange{Action: publisher.ActionCreated}}), ShouldBeTrue)
		}
		So(q.Enqueue(ctx, queue.Message{Event: &model.AnalyticsEvent{ID: "e1"}}), ShouldBeTrue)

		Convey("When shutting down", func() {
			So(pool.Shutdown(ctx), ShouldBeNil)

			Convey("Then every queued message should have been delivered", func() {
				changes, events := pub.counts()
				So(changes, ShouldEqual, 10)
				So(events, ShouldEqual, 1)
				So(q.IsClosed(), ShouldBeTrue)
			})
		})
	})

	Convey("Given a failing publisher", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue()
		pub := &mockPublisher{fail: errors.New("nats down")}
		pool := worker.NewPool(1, q, pub)
		pool.Start(ctx)
		q.Enqueue(ctx, queue.Message{Change: &publisher.JobChange{Action: publisher.ActionDeleted}})

		Convey("Then failures should not stop the pool", func() {
			So(pool.Shutdown(ctx), ShouldBeNil)
			changes, _ := pub.counts()
			So(changes, ShouldEqual, 0)
		})
	})

	Convey("Given a pool that was never started", t, func() {
		q := queue.NewInMemoryQueue()
		pool := worker.NewPool(0, q, publisher.Noop{})
		So(pool.Size(), ShouldEqual, 2)
		So(pool.Shutdown(context.Background()), ShouldBeNil)
		So(q.IsClosed(), ShouldBeTrue)
	})
}

func TestWorkerShutdown(t *testing.T) {
	Convey("Given a running worker", t, func() {
		q := queue.NewInMemoryQueue()
		w := worker.NewInMemoryWorker(q, &mockPublisher{}, worker.WithName("test"), worker.WithDeliveryTimeout(time.Second))
		go w.Run(context.Background())

		Convey("Then shutdown should stop it and be repeatable", func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			So(w.Shutdown(ctx), ShouldBeNil)
			So(w.Shutdown(ctx), ShouldBeNil)
		})
	})

	Convey("Given a slow publisher", t, func() {
		q := queue.NewInMemoryQueue()
		pub := &mockPublisher{delay: time.Second}
		w := worker.NewInMemoryWorker(q, pub, worker.WithDeliveryTimeout(10*time.Millisecond))
		go w.Run(context.Background())
		q.Enqueue(context.Background(), queue.Message{Change: &publisher.JobChange{Action: publisher.ActionUpdated}})
		_ = q.Close()

		Convey("Then delivery should be abandoned after the timeout", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()
			So(w.Shutdown(ctx), ShouldBeNil)
			changes, _ := pub.counts()
			So(changes, ShouldEqual, 0)
		})
	})
}
