package api

import (
	"net/http"

	"github.com/okian/apmboard/internal/adapters/repository"
	service "github.com/okian/apmboard/internal/app"
	"github.com/okian/apmboard/internal/domain/model"
)

type listResponse struct {
	Success bool              `json:"success"`
	Data    []service.JobView `json:"data"`
	Count   int               `json:"count"`
}

// handleListJobs handles GET /jobs.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jobs, err := s.deps.ListJobs(r.Context(), repository.Query{
		Status:   q.Get("status"),
		Company:  q.Get("company"),
		Search:   q.Get("search"),
		Location: q.Get("location"),
		Season:   q.Get("season"),
	})
	if err != nil {
		s.fail(w, r, err, msgFetchJobs)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Success: true, Data: jobs, Count: len(jobs)})
}

// handleCreateJob handles POST /jobs.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var in model.JobInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(w, r, err, msgCreateJob)
		return
	}
	job, err := s.deps.CreateJob(r.Context(), in)
	if err != nil {
		s.fail(w, r, err, msgCreateJob)
		return
	}
	writeData(w, http.StatusCreated, job)
}

// handleGetJob handles GET /jobs/{id}.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.deps.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err, msgFetchJob)
		return
	}
	writeData(w, http.StatusOK, job)
}

// handleUpdateJob handles PUT /jobs/{id}.
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	var p model.JobPatch
	if err := decodeJSON(w, r, &p); err != nil {
		s.fail(w, r, err, msgUpdateJob)
		return
	}
	job, err := s.deps.UpdateJob(r.Context(), r.PathValue("id"), p)
	if err != nil {
		s.fail(w, r, err, msgUpdateJob)
		return
	}
	writeData(w, http.StatusOK, job)
}

// handleDeleteJob handles DELETE /jobs/{id}.
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.DeleteJob(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err, msgDeleteJob)
		return
	}
	writeMessage(w, msgJobDeleted)
}
