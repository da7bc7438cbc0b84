// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/apmboard/internal/adapters/repository"
	service "github.com/okian/apmboard/internal/app"
	"github.com/okian/apmboard/internal/apperr"
	"github.com/okian/apmboard/internal/domain/analytics"
	"github.com/okian/apmboard/internal/domain/model"
	"github.com/okian/apmboard/pkg/logger"
)

const maxBodyBytes = 10 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ListJobs(ctx context.Context, q repository.Query) ([]service.JobView, error)
	GetJob(ctx context.Context, id string) (service.JobView, error)
	CreateJob(ctx context.Context, in model.JobInput) (service.JobView, error)
	UpdateJob(ctx context.Context, id string, p model.JobPatch) (service.JobView, error)
	DeleteJob(ctx context.Context, id string) error

	Analytics(ctx context.Context, jobID, eventType string) (service.AnalyticsReport, error)
	Track(ctx context.Context, in service.TrackInput) (service.TrackResult, error)
	Overview(ctx context.Context) (analytics.DashboardOverview, error)

	BulkUpdateStatus(ctx context.Context, ids []string, status model.Status) (int, error)
	Export(ctx context.Context) (model.Snapshot, error)
	ExportFilename() string
	Import(ctx context.Context, raw []byte) (bool, error)
	ClearAll(ctx context.Context) error
	PruneEvents(ctx context.Context, retentionDays int) (int, error)

	Settings(ctx context.Context) (model.Settings, error)
	UpdateSettings(ctx context.Context, p service.SettingsPatch) (model.Settings, error)

	Ping(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps          Dependencies
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	logger        logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:          deps,
		healthHandler: NewHealthHandler(deps),
		statsHandler:  NewStatsHandler(statsProvider),
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	for _, rt := range s.routes() {
		mux.Handle(rt.pattern, s.wrap(rt.handler, rt.endpoint))
	}
}

type route struct {
	pattern  string
	endpoint string
	handler  http.HandlerFunc
}

func (s *Server) routes() []route {
	return []route{
		{"GET /jobs", "jobs", s.handleListJobs},
		{"POST /jobs", "jobs", s.handleCreateJob},
		{"GET /jobs/{id}", "job", s.handleGetJob},
		{"PUT /jobs/{id}", "job", s.handleUpdateJob},
		{"DELETE /jobs/{id}", "job", s.handleDeleteJob},
		{"GET /analytics", "analytics", s.handleAnalytics},
		{"POST /analytics/track", "track", s.handleTrack},
		{"POST /admin/bulk", "bulk", s.handleBulk},
		{"GET /admin/overview", "overview", s.handleOverview},
		{"GET /admin/settings", "settings", s.handleGetSettings},
		{"PUT /admin/settings", "settings", s.handleUpdateSettings},
		{"GET /stats", "stats", s.statsHandler.HandleStats},
		{"GET /healthz", "healthz", s.healthHandler.HandleHealth},
		{"GET /metrics", "metrics", s.healthHandler.HandleMetrics},
	}
}

// wrap applies the middleware chain, outermost first.
func (s *Server) wrap(h http.HandlerFunc, endpoint string) http.Handler {
	return RequestIDMiddleware(MetricsMiddleware(RecoverMiddleware(h, s.logger), endpoint))
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, dataResponse{Success: true, Data: v})
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: msg})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

// fail maps err onto a response. Client errors carry their own message;
// anything else is logged and answered with fallback.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := apperr.HTTPStatus(err)
	if status < http.StatusInternalServerError {
		writeError(w, status, apperr.Message(err))
		return
	}
	s.logger.Error(r.Context(), fallback,
		logger.String("method", r.Method),
		logger.String("path", r.URL.Path),
		logger.Error(err),
	)
	writeError(w, status, fallback)
}

// decodeJSON reads the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return apperr.New(apperr.KindValidation, "api.decode", msgInvalidBody, fmt.Errorf("%w: %v", ErrBadRequest, err))
	}
	return nil
}
