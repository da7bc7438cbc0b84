// Command loadgen creates synthetic jobs on a running board, tracks views
// and clicks against them concurrently, and verifies the stored analytics.
package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/apmboard/internal/loadgen"
	"github.com/okian/apmboard/pkg/logger"
)

// Default configuration constants.
const (
	defaultJobs        = 20
	defaultEvents      = 2000
	defaultRepeatRate  = 0.1
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		jobs       = flag.Int("jobs", defaultJobs, "Number of synthetic jobs to create")
		events     = flag.Int("events", defaultEvents, "Number of view/click events to track")
		repeatRate = flag.Float64("repeat", defaultRepeatRate, "Share of views replayed with an already used session")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent requests")
		timeout    = flag.Duration("timeout", loadgen.DefaultTimeout, "HTTP request timeout")
		cleanup    = flag.Bool("cleanup", false, "Delete the created jobs when done")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	_, err := loadgen.Run(ctx, loadgen.Config{
		BaseURL:    *baseURL,
		Jobs:       *jobs,
		Events:     *events,
		RepeatRate: *repeatRate,
		Workers:    *workers,
		Timeout:    *timeout,
		Cleanup:    *cleanup,
		Logger:     logger.Named("loadgen"),
	})
	if err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
