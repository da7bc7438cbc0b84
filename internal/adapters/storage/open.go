package storage

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Backends lists every supported backend.
func Backends() []string {
	return []string{BackendMemory, BackendFile, BackendRedis, BackendPostgres}
}

// OpenOptions selects and configures a backend.
type OpenOptions struct {
	Backend     string
	DataDir     string
	Redis       RedisOptions
	PostgresDSN string
}

// Open builds the configured backend wrapped with instrumentation.
func Open(ctx context.Context, opts OpenOptions) (Blob, error) {
	var (
		b   Blob
		err error
	)
	switch opts.Backend {
	case BackendMemory, "":
		b = NewMemoryBlob()
	case BackendFile:
		b, err = NewFileBlob(opts.DataDir)
	case BackendRedis:
		b, err = NewRedisBlob(ctx, opts.Redis)
	case BackendPostgres:
		b, err = NewPostgresBlob(ctx, opts.PostgresDSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(b), nil
}
