// Package storage persists the board's collections as whole JSON documents
// in a key-value blob store and exposes them through RecordStore.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/okian/apmboard/pkg/metrics"
)

// Well-known keys.
const (
	KeyJobs      = "apm_jobs_data"
	KeyAnalytics = "apm_analytics_data"
	KeySettings  = "apm_admin_settings"
)

// Blob is a persistent key to bytes store. Get returns ErrNotFound when the
// key is absent. Writes replace the whole value.
type Blob interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
	Name() string
}

// Instrument wraps b so every call is timed and failures are counted.
func Instrument(b Blob) Blob {
	if _, ok := b.(*instrumented); ok {
		return b
	}
	return &instrumented{next: b}
}

type instrumented struct {
	next Blob
}

func (i *instrumented) observe(op string, start time.Time, err error) {
	metrics.RecordStorageLatency(i.next.Name(), op, float64(time.Since(start).Microseconds())/1000)
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.RecordStorageError(i.next.Name(), op)
		metrics.RecordErrorByComponent("storage", op)
	}
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	v, err := i.next.Get(ctx, key)
	i.observe("get", start, err)
	return v, err
}

func (i *instrumented) Put(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := i.next.Put(ctx, key, value)
	i.observe("put", start, err)
	return err
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := i.next.Delete(ctx, key)
	i.observe("delete", start, err)
	return err
}

func (i *instrumented) Ping(ctx context.Context) error {
	start := time.Now()
	err := i.next.Ping(ctx)
	i.observe("ping", start, err)
	return err
}

func (i *instrumented) Close() error { return i.next.Close() }
func (i *instrumented) Name() string { return i.next.Name() }

func validKey(key string) bool {
	if key == "" || len(key) > 128 {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
		default:
			return false
		}
	}
	return key != "." && key != ".."
}
