package config_test

import (
	"errors"
	"testing"

	"github.com/okian/apmboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.StorageBackend, convey.ShouldEqual, "memory")
			convey.So(cfg.SeedOnEmpty, convey.ShouldBeTrue)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.TopJobsLimit, convey.ShouldEqual, 10)
			convey.So(cfg.RecentActivityLimit, convey.ShouldEqual, 20)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("And it should map onto storage options", func() {
			cfg.StorageBackend = "redis"
			cfg.RedisAddr = "localhost:6379"
			cfg.RedisDB = 2
			opts := cfg.Storage()
			convey.So(opts.Backend, convey.ShouldEqual, "redis")
			convey.So(opts.Redis.Addr, convey.ShouldEqual, "localhost:6379")
			convey.So(opts.Redis.DB, convey.ShouldEqual, 2)
			convey.So(opts.Redis.Prefix, convey.ShouldEqual, "apmboard:")
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with inconsistent settings", t, func() {
		cases := map[string]func(*config.Config){
			"addr must not be empty":          func(c *config.Config) { c.Addr = " " },
			"unknown storage_backend":         func(c *config.Config) { c.StorageBackend = "mongo" },
			"data_dir is required":            func(c *config.Config) { c.StorageBackend = "file"; c.DataDir = "" },
			"redis_addr is required":          func(c *config.Config) { c.StorageBackend = "redis" },
			"postgres_dsn is required":        func(c *config.Config) { c.StorageBackend = "postgres" },
			"log_format must be text or json": func(c *config.Config) { c.LogFormat = "xml" },
			"must be positive":                func(c *config.Config) { c.TopJobsLimit = 0 },
		}

		for want, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, want)
		}
	})
}
