package main

import (
	"context"
	"runtime"
	"time"

	app "github.com/okian/apmboard/internal/app"
	"github.com/okian/apmboard/pkg/logger"
	"github.com/okian/apmboard/pkg/metrics"
)

const (
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// startSystemMetricsUpdater updates system metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes the job and event gauges until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service, log logger.Logger) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	updateServiceMetrics(ctx, svc, log)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(ctx, svc, log)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		// Average GC pause time
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

func updateServiceMetrics(ctx context.Context, svc *app.Service, log logger.Logger) {
	if err := svc.RefreshMetrics(ctx); err != nil {
		log.Warn(ctx, "metrics refresh failed", logger.Error(err))
	}
	if queueLen, ok := svc.GetStats()["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
}
