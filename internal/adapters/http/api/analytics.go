package api

import (
	"net/http"

	service "github.com/okian/apmboard/internal/app"
)

type trackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Counted bool   `json:"counted"`
}

// handleAnalytics handles GET /analytics.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := s.deps.Analytics(r.Context(), q.Get("jobId"), q.Get("eventType"))
	if err != nil {
		s.fail(w, r, err, msgFetchAnalytics)
		return
	}
	writeData(w, http.StatusOK, report)
}

// handleTrack handles POST /analytics/track. userAgent and referrer fall
// back to the request headers.
func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	var in service.TrackInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(w, r, err, msgTrack)
		return
	}
	if in.UserAgent == "" {
		in.UserAgent = r.UserAgent()
	}
	if in.Referrer == "" {
		in.Referrer = r.Referer()
	}
	res, err := s.deps.Track(r.Context(), in)
	if err != nil {
		s.fail(w, r, err, msgTrack)
		return
	}
	writeJSON(w, http.StatusOK, trackResponse{Success: true, Message: res.Message, Counted: res.Counted})
}
