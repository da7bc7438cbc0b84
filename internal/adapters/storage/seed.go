package storage

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/okian/apmboard/internal/domain/model"
)

//go:embed seed_jobs.json
var seedJobs []byte

// SeedJobs returns the bundled starter listings.
func SeedJobs() ([]model.JobPosting, error) {
	var jobs []model.JobPosting
	if err := json.Unmarshal(seedJobs, &jobs); err != nil {
		return nil, fmt.Errorf("decode seed jobs: %w", err)
	}
	return jobs, nil
}
