package api

import (
	"net/http"
	"time"
)

// StatsProvider exposes runtime counters for GET /stats.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler answers GET /stats.
type StatsHandler struct {
	provider StatsProvider
	now      func() time.Time
}

// NewStatsHandler creates a stats handler over provider.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider, now: time.Now}
}

// HandleStats writes the provider's counters in the success envelope,
// stamped with the time they were read.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	stats := h.provider.GetStats()
	stats["generatedAt"] = h.now().UTC().Format(time.RFC3339)
	writeData(w, http.StatusOK, stats)
}
