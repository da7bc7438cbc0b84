package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager()

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Enabled(), ShouldBeTrue)
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(false),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then options should be applied", func() {
				So(manager.Enabled(), ShouldBeFalse)
				So(manager.RefreshInterval(), ShouldEqual, 5*time.Second)
				manager.jobsTotal.Set(3)
				So(testutil.ToFloat64(manager.jobsTotal), ShouldEqual, 3)
			})

			Convey("And metric names should carry namespace and subsystem", func() {
				manager.exportsTotal.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_namespace_test_subsystem_exports_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording business metrics", func() {
			before := testutil.ToFloat64(globalManager.jobMutations.WithLabelValues("create"))
			RecordJobMutation("create")
			RecordJobMutation("create")

			Convey("Then counters should advance", func() {
				after := testutil.ToFloat64(globalManager.jobMutations.WithLabelValues("create"))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When updating job gauges", func() {
			UpdateJobCounts(5, map[string]int{"Open": 3, "Closed": 2})

			Convey("Then gauges should reflect the counts", func() {
				So(testutil.ToFloat64(globalManager.jobsTotal), ShouldEqual, 5)
				So(testutil.ToFloat64(globalManager.jobsByStatus.WithLabelValues("Open")), ShouldEqual, 3)
			})
		})

		Convey("When recording the remaining metrics", func() {
			So(func() {
				RecordTrackedEvent("view")
				RecordDuplicateView()
				UpdateEventLogSize(10)
				RecordImport("success")
				RecordExport()
				RecordPublish("apm.jobs.changed", "ok")
				RecordHTTPRequest("jobs", "GET", "200")
				RecordHTTPRequestDuration("jobs", "GET", "200", 12)
				RecordStorageLatency("memory", "get", 0.2)
				RecordStorageError("memory", "put")
				RecordStorageDecodeFailure("apm_jobs_data")
				RecordErrorByComponent("api", "client_error")
				RecordErrorByType("client_error", "medium")
				RecordErrorByEndpoint("jobs", "POST", "client_error")
				RecordErrorLatency("http", "client_error", 1)
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(4)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("When recording is disabled", func() {
			SetEnabled(false)
			defer SetEnabled(true)
			before := testutil.ToFloat64(globalManager.exportsTotal)
			RecordExport()

			Convey("Then nothing should change", func() {
				So(testutil.ToFloat64(globalManager.exportsTotal), ShouldEqual, before)
			})
		})
	})
}

func TestMetricsExposition(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordExport()
		handler := promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})

		Convey("When scraping it", func() {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

			Convey("Then job board metrics should be exposed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.Contains(w.Body.String(), "apmboard_exports_total"), ShouldBeTrue)
				So(strings.Contains(w.Body.String(), "go_goroutines"), ShouldBeFalse)
			})
		})
	})
}
