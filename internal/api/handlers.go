package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// RunRequest carries the per-run inputs accepted from a trigger call.
type RunRequest struct {
	Label      string            `json:"-"`
	RunID      string            `json:"-"`
	Overrides  map[string]string `json:"overrides,omitempty"`
	Positional []string          `json:"positional,omitempty"`
	DryRun     bool              `json:"dry_run,omitempty"`
}

// RunResult classifies one finished run.
type RunResult struct {
	RunID    string `json:"run_id"`
	Label    string `json:"label"`
	Status   string `json:"status"` // succeeded, failed, error
	ExitCode int    `json:"exit_code"`
	Error    string `json:"error,omitempty"`
}

// JobInfo is one entry of the job listing.
type JobInfo struct {
	Label   string   `json:"label"`
	Aliases []string `json:"aliases,omitempty"`
}

// HealthzResponse reports server liveness.
type HealthzResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthzResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.runner.ListJobs()
	if err != nil {
		s.logger.Error("failed to list jobs", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load configuration")
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleRunJob(w http.ResponseWriter, r *http.Request) {
	req := RunRequest{
		Label: chi.URLParam(r, "label"),
		RunID: uuid.NewString(),
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	s.runMu.Lock()
	result := s.runner.RunJob(r.Context(), req)
	s.runMu.Unlock()

	status := http.StatusOK
	switch result.Status {
	case "failed":
		status = http.StatusUnprocessableEntity
	case "error":
		status = http.StatusBadRequest
	}
	writeJSON(w, status, result)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
