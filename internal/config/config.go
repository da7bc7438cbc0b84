// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers an optional YAML file and APMBOARD_* env vars on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/okian/apmboard/internal/adapters/storage"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StorageBackend is one of memory, file, redis, postgres.
	StorageBackend string `koanf:"storage_backend"`

	// DataDir holds the JSON documents of the file backend.
	DataDir string `koanf:"data_dir"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisPrefix   string `koanf:"redis_prefix"`

	PostgresDSN string `koanf:"postgres_dsn"`

	// NATSURL enables change notifications when set.
	NATSURL string `koanf:"nats_url"`

	// SeedOnEmpty writes the sample jobs when the store has no jobs key.
	SeedOnEmpty bool `koanf:"seed_on_empty"`

	// DedupeSize bounds the remembered session views.
	DedupeSize int `koanf:"dedupe_size"`

	// TopJobsLimit and RecentActivityLimit cap the analytics summary lists.
	TopJobsLimit        int `koanf:"top_jobs_limit"`
	RecentActivityLimit int `koanf:"recent_activity_limit"`

	// NotifyQueueSize and NotifyWorkers size the notification pipeline.
	NotifyQueueSize int `koanf:"notify_queue_size"`
	NotifyWorkers   int `koanf:"notify_workers"`

	// ShutdownTimeoutSec bounds graceful shutdown.
	ShutdownTimeoutSec int `koanf:"shutdown_timeout_sec"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		StorageBackend:      storage.BackendMemory,
		DataDir:             "data",
		RedisPrefix:         "apmboard:",
		SeedOnEmpty:         true,
		DedupeSize:          10_000,
		TopJobsLimit:        10,
		RecentActivityLimit: 20,
		NotifyQueueSize:     1024,
		NotifyWorkers:       2,
		ShutdownTimeoutSec:  10,
	}
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return invalid("addr must not be empty")
	case !slices.Contains(storage.Backends(), c.StorageBackend):
		return invalid(fmt.Sprintf("unknown storage_backend %q (want one of %s)",
			c.StorageBackend, strings.Join(storage.Backends(), ", ")))
	case c.StorageBackend == storage.BackendFile && c.DataDir == "":
		return invalid("data_dir is required for the file backend")
	case c.StorageBackend == storage.BackendRedis && c.RedisAddr == "":
		return invalid("redis_addr is required for the redis backend")
	case c.StorageBackend == storage.BackendPostgres && c.PostgresDSN == "":
		return invalid("postgres_dsn is required for the postgres backend")
	case c.RedisDB < 0:
		return invalid("redis_db must not be negative")
	case c.LogFormat != "text" && c.LogFormat != "json":
		return invalid("log_format must be text or json")
	case c.TopJobsLimit < 1 || c.RecentActivityLimit < 1:
		return invalid("top_jobs_limit and recent_activity_limit must be positive")
	case c.NotifyQueueSize < 1 || c.NotifyWorkers < 1:
		return invalid("notify_queue_size and notify_workers must be positive")
	}
	return nil
}

// Storage returns the backend selection for storage.Open.
func (c *Config) Storage() storage.OpenOptions {
	return storage.OpenOptions{
		Backend: c.StorageBackend,
		DataDir: c.DataDir,
		Redis: storage.RedisOptions{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
			Prefix:   c.RedisPrefix,
		},
		PostgresDSN: c.PostgresDSN,
	}
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}
