package loadgen

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const randomFloatDivisor = 1000000

var (
	roles     = []string{"Associate Product Manager", "APM Intern", "Rotational Product Manager", "Product Analyst"}
	locations = []string{"San Francisco, CA", "New York, NY", "Seattle, WA", "Remote"}
	seasons   = []string{"Summer 2025", "Fall 2025", "New Grad 2026"}
)

type jobInput struct {
	Company         string `json:"company"`
	Role            string `json:"role"`
	Location        string `json:"location"`
	Season          string `json:"season"`
	Status          string `json:"status"`
	ApplicationLink string `json:"applicationLink"`
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func randomIndex(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generateJobs builds n distinct open postings.
func generateJobs(n int) []jobInput {
	jobs := make([]jobInput, n)
	for i := range jobs {
		company := fmt.Sprintf("%s Co %d", jobsPrefix, i)
		jobs[i] = jobInput{
			Company:         company,
			Role:            roles[i%len(roles)],
			Location:        locations[i%len(locations)],
			Season:          seasons[i%len(seasons)],
			Status:          "Open",
			ApplicationLink: fmt.Sprintf("https://careers.example.com/loadgen/%d", i),
		}
	}
	return jobs
}

// planActions spreads n events over ids and returns them with the counts
// the board should end up with. A view replayed with a session that already
// viewed the job is expected to count once, whichever request lands first.
func planActions(ids []string, n int, repeatRate float64) ([]Action, map[string]Counts) {
	actions := make([]Action, 0, n)
	expected := make(map[string]Counts, len(ids))
	sessions := make(map[string][]string, len(ids))
	for _, id := range ids {
		expected[id] = Counts{}
	}
	if len(ids) == 0 {
		return actions, expected
	}

	for i := 0; i < n; i++ {
		id := ids[randomIndex(len(ids))]
		c := expected[id]
		a := Action{JobID: id, UserAgent: userAgent}

		switch {
		case getRandomFloat() < clickRate:
			a.EventType = EventClick
			c.Clicks++
		case len(sessions[id]) > 0 && getRandomFloat() < repeatRate:
			a.EventType = EventView
			a.SessionID = sessions[id][randomIndex(len(sessions[id]))]
			a.Repeat = true
		default:
			a.EventType = EventView
			a.SessionID = uuid.NewString()
			sessions[id] = append(sessions[id], a.SessionID)
			c.Views++
		}
		expected[id] = c
		actions = append(actions, a)
	}
	return actions, expected
}
