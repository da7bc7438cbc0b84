package loadgen

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/okian/apmboard/pkg/logger"
)

// Mismatch describes a job whose stored analytics differ from the plan.
type Mismatch struct {
	JobID    string
	Expected Counts
	Observed Counts
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: expected %d views/%d clicks, observed %d views/%d clicks",
		m.JobID, m.Expected.Views, m.Expected.Clicks, m.Observed.Views, m.Observed.Clicks)
}

// compareCounts lists every job whose observed counts differ, sorted by id.
func compareCounts(expected, observed map[string]Counts) []Mismatch {
	var out []Mismatch
	for id, want := range expected {
		if got := observed[id]; got != want {
			out = append(out, Mismatch{JobID: id, Expected: want, Observed: got})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JobID < out[j].JobID })
	return out
}

// verifyResults reads back every job and compares its analytics to the plan.
func verifyResults(ctx context.Context, cfg *Config, client *HTTPClient, expected map[string]Counts, stats *Stats) error {
	log := cfg.Logger
	log.Info(ctx, "verifying analytics", logger.Int("jobs", len(expected)))

	var mu sync.Mutex
	observed := make(map[string]Counts, len(expected))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for id := range expected {
		g.Go(func() error {
			counts, err := client.jobCounts(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			observed[id] = counts
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	mismatches := compareCounts(expected, observed)
	stats.JobsVerified = len(observed)
	stats.Mismatches = len(mismatches)
	for _, m := range mismatches {
		log.Warn(ctx, "analytics mismatch", logger.String("detail", m.String()))
	}
	if len(mismatches) > 0 {
		return fmt.Errorf("%d of %d jobs have unexpected analytics", len(mismatches), len(expected))
	}

	log.Info(ctx, "analytics verified", logger.Int("jobs", stats.JobsVerified))
	return nil
}
