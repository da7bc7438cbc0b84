package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	service "github.com/okian/apmboard/internal/app"
	"github.com/okian/apmboard/internal/domain/model"
)

// Bulk actions accepted by POST /admin/bulk.
const (
	ActionUpdateStatus = "updateStatus"
	ActionExport       = "export"
	ActionImport       = "import"
	ActionClear        = "clear"
	ActionPruneEvents  = "pruneEvents"
)

type bulkRequest struct {
	Action        string          `json:"action"`
	JobIDs        json.RawMessage `json:"jobIds"`
	Status        string          `json:"status"`
	Data          json.RawMessage `json:"data"`
	RetentionDays *int            `json:"retentionDays"`
}

type bulkStatusResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	UpdatedCount int    `json:"updatedCount"`
}

type exportResponse struct {
	Success  bool           `json:"success"`
	Data     model.Snapshot `json:"data"`
	Filename string         `json:"filename"`
}

type pruneResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	RemovedCount int    `json:"removedCount"`
}

// handleBulk handles POST /admin/bulk.
func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, msgBulk)
		return
	}

	switch req.Action {
	case "":
		writeError(w, http.StatusBadRequest, msgActionRequired)
	case ActionUpdateStatus:
		s.bulkUpdateStatus(w, r, req)
	case ActionExport:
		snap, err := s.deps.Export(r.Context())
		if err != nil {
			s.fail(w, r, err, msgBulk)
			return
		}
		writeJSON(w, http.StatusOK, exportResponse{Success: true, Data: snap, Filename: s.deps.ExportFilename()})
	case ActionImport:
		if !present(req.Data) {
			writeError(w, http.StatusBadRequest, msgImportRequired)
			return
		}
		ok, err := s.deps.Import(r.Context(), req.Data)
		if err != nil {
			s.fail(w, r, err, msgBulk)
			return
		}
		if !ok {
			writeError(w, http.StatusBadRequest, msgImportInvalid)
			return
		}
		writeMessage(w, msgImported)
	case ActionClear:
		if err := s.deps.ClearAll(r.Context()); err != nil {
			s.fail(w, r, err, msgBulk)
			return
		}
		writeMessage(w, msgCleared)
	case ActionPruneEvents:
		days := 0
		if req.RetentionDays != nil {
			if *req.RetentionDays < 1 {
				writeError(w, http.StatusBadRequest, msgRetentionInvalid)
				return
			}
			days = *req.RetentionDays
		}
		removed, err := s.deps.PruneEvents(r.Context(), days)
		if err != nil {
			s.fail(w, r, err, msgBulk)
			return
		}
		writeJSON(w, http.StatusOK, pruneResponse{
			Success:      true,
			Message:      "Pruned " + strconv.Itoa(removed) + " events",
			RemovedCount: removed,
		})
	default:
		writeError(w, http.StatusBadRequest, msgInvalidAction)
	}
}

func (s *Server) bulkUpdateStatus(w http.ResponseWriter, r *http.Request, req bulkRequest) {
	var ids []string
	if !isArray(req.JobIDs) || json.Unmarshal(req.JobIDs, &ids) != nil || req.Status == "" {
		writeError(w, http.StatusBadRequest, msgBulkStatusInput)
		return
	}
	n, err := s.deps.BulkUpdateStatus(r.Context(), ids, model.Status(req.Status))
	if err != nil {
		s.fail(w, r, err, msgBulk)
		return
	}
	writeJSON(w, http.StatusOK, bulkStatusResponse{
		Success:      true,
		Message:      "Updated " + strconv.Itoa(n) + " jobs",
		UpdatedCount: n,
	})
}

// present reports whether raw carries a truthy JSON value.
func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// handleOverview handles GET /admin/overview.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := s.deps.Overview(r.Context())
	if err != nil {
		s.fail(w, r, err, msgOverview)
		return
	}
	writeData(w, http.StatusOK, ov)
}

// handleGetSettings handles GET /admin/settings.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.deps.Settings(r.Context())
	if err != nil {
		s.fail(w, r, err, msgSettings)
		return
	}
	writeData(w, http.StatusOK, settings)
}

// handleUpdateSettings handles PUT /admin/settings.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var p service.SettingsPatch
	if err := decodeJSON(w, r, &p); err != nil {
		s.fail(w, r, err, msgSaveSettings)
		return
	}
	settings, err := s.deps.UpdateSettings(r.Context(), p)
	if err != nil {
		s.fail(w, r, err, msgSaveSettings)
		return
	}
	writeData(w, http.StatusOK, settings)
}
