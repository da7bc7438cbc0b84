package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/apmboard/internal/adapters/repository"
	app "github.com/okian/apmboard/internal/app"
	"github.com/okian/apmboard/internal/domain/model"
	"github.com/okian/apmboard/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func useFileStore(t *testing.T) string {
	dir := t.TempDir()
	t.Setenv("APMBOARD_STORAGE_BACKEND", "file")
	t.Setenv("APMBOARD_DATA_DIR", dir)
	t.Setenv("APMBOARD_SEED_ON_EMPTY", "false")
	return dir
}

func TestSetup(t *testing.T) {
	convey.Convey("Given configuration in the environment", t, func() {
		t.Setenv("APMBOARD_ADDR", ":8181")
		t.Setenv("APMBOARD_LOG_LEVEL", "debug")
		t.Setenv("APMBOARD_LOG_FORMAT", "json")

		convey.Convey("Then setup loads it and initializes the logger", func() {
			cfg, log, err := setup(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(log, convey.ShouldNotBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8181")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			_ = logger.SetFormat("text")
			_ = logger.SetLevelString("info")
		})
	})

	convey.Convey("Given an invalid configuration", t, func() {
		t.Setenv("APMBOARD_STORAGE_BACKEND", "redis")

		convey.Convey("Then setup fails", func() {
			cfg, _, err := setup(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func TestOpenService(t *testing.T) {
	convey.Convey("Given the file backend with seeding enabled", t, func() {
		useFileStore(t)
		t.Setenv("APMBOARD_SEED_ON_EMPTY", "true")
		ctx := context.Background()

		cfg, log, err := setup(ctx)
		convey.So(err, convey.ShouldBeNil)

		svc, err := openService(ctx, cfg, log)
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		convey.Convey("Then the first read returns the seed jobs", func() {
			convey.So(svc.Backend(), convey.ShouldEqual, "file")
			jobs, err := svc.ListJobs(ctx, repository.Query{})
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(jobs), convey.ShouldBeGreaterThan, 0)
		})
	})
}

func TestExportImport(t *testing.T) {
	convey.Convey("Given a store with one job", t, func() {
		ctx := context.Background()
		svc := app.New()
		defer func() { _ = svc.Stop(ctx) }()

		_, err := svc.CreateJob(ctx, model.JobInput{Company: "Acme", Role: "APM", ApplicationLink: "https://acme.test/apply"})
		convey.So(err, convey.ShouldBeNil)
		path := filepath.Join(t.TempDir(), "export.json")

		convey.Convey("When it is exported to a file", func() {
			var out bytes.Buffer
			convey.So(runExport(ctx, svc, &out, path), convey.ShouldBeNil)
			convey.So(out.String(), convey.ShouldContainSubstring, "Exported 1 jobs")

			raw, err := os.ReadFile(path)
			convey.So(err, convey.ShouldBeNil)
			var snap model.Snapshot
			convey.So(json.Unmarshal(raw, &snap), convey.ShouldBeNil)
			convey.So(len(snap.Jobs), convey.ShouldEqual, 1)

			convey.Convey("Then importing it after a clear restores the job", func() {
				convey.So(svc.ClearAll(ctx), convey.ShouldBeNil)
				out.Reset()
				convey.So(runImport(ctx, svc, &out, path), convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldContainSubstring, "Data imported successfully")

				jobs, err := svc.ListJobs(ctx, repository.Query{})
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(jobs), convey.ShouldEqual, 1)
				convey.So(jobs[0].Company, convey.ShouldEqual, "Acme")
			})
		})

		convey.Convey("When it is exported to stdout", func() {
			var out bytes.Buffer
			convey.So(runExport(ctx, svc, &out, ""), convey.ShouldBeNil)
			convey.So(out.String(), convey.ShouldContainSubstring, `"exportedAt"`)
		})

		convey.Convey("When a malformed file is imported", func() {
			convey.So(os.WriteFile(path, []byte(`{"jobs": "nope"}`), 0o600), convey.ShouldBeNil)
			err := runImport(ctx, svc, &bytes.Buffer{}, path)

			convey.Convey("Then it fails and keeps the stored job", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "invalid data format")
				jobs, _ := svc.ListJobs(ctx, repository.Query{})
				convey.So(len(jobs), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the import file does not exist", func() {
			err := runImport(ctx, svc, &bytes.Buffer{}, filepath.Join(t.TempDir(), "missing.json"))
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestClearCommand(t *testing.T) {
	convey.Convey("Given the clear command", t, func() {
		useFileStore(t)
		var out, errOut bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&errOut)
		defer func() {
			rootCmd.SetOut(nil)
			rootCmd.SetErr(nil)
			rootCmd.SetArgs(nil)
			clearForce = false
			_ = logger.SetOutput(os.Stdout)
		}()

		convey.Convey("Then it refuses without --yes and clears with it", func() {
			rootCmd.SetArgs([]string{"clear"})
			err := rootCmd.ExecuteContext(context.Background())
			convey.So(errors.Is(err, errNotConfirmed), convey.ShouldBeTrue)

			rootCmd.SetArgs([]string{"clear", "--yes"})
			convey.So(rootCmd.ExecuteContext(context.Background()), convey.ShouldBeNil)
			convey.So(out.String(), convey.ShouldContainSubstring, "All data cleared successfully")
		})
	})
}

func TestRouter(t *testing.T) {
	convey.Convey("Given the full router", t, func() {
		ctx := context.Background()
		svc := app.New()
		defer func() { _ = svc.Stop(ctx) }()
		handler := newRouter(ctx, svc, logger.Nop())

		get := func(path string) *httptest.ResponseRecorder {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			return rec
		}

		convey.Convey("Then the API, docs and pages are all mounted", func() {
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/jobs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/admin").Code, convey.ShouldEqual, http.StatusOK)

			home := get("/")
			convey.So(home.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(home.Body.String(), convey.ShouldContainSubstring, "APM Job Board")
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metric updaters", t, func() {
		ctx := context.Background()
		svc := app.New()
		defer func() { _ = svc.Stop(ctx) }()

		convey.Convey("Then single updates do not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(ctx, svc, logger.Nop()) }, convey.ShouldNotPanic)
		})

		convey.Convey("And the loops return once the context is done", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				startServiceMetricsUpdater(ctx, svc, logger.Nop())
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("metric updaters did not stop")
			}
		})
	})
}
