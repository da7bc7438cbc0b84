// Package queue buffers change notifications between the request path and
// the delivery workers. Enqueue never blocks; a full queue drops.
package queue

import (
	"context"
	"sync"

	"github.com/okian/apmboard/internal/adapters/mq/publisher"
	"github.com/okian/apmboard/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Message is the payload type flowing through the queue.
type Message = publisher.Notification

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds m to the queue. Returns false if the queue is full or
	// closed and m was dropped.
	Enqueue(ctx context.Context, m Message) bool

	// Dequeue returns a channel that receives queued messages. It is
	// closed once the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Message

	Len(ctx context.Context) int

	// Close stops accepting messages. Already queued messages can still
	// be dequeued.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	messages chan Message
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.messages = make(chan Message, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

func (q *InMemoryQueue) Enqueue(ctx context.Context, m Message) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueDrop("closed")
		return false
	}
	if ctx != nil && ctx.Err() != nil {
		metrics.RecordQueueDrop("context_cancelled")
		return false
	}

	select {
	case q.messages <- m:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.messages))
		return true
	default:
		metrics.RecordQueueDrop("queue_full")
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

func (q *InMemoryQueue) Dequeue(context.Context) <-chan Message {
	return q.messages
}

func (q *InMemoryQueue) Len(context.Context) int {
	n := len(q.messages)
	metrics.UpdateQueueSize(n)
	return n
}

func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.messages)
	q.closed = true
	return nil
}

func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
