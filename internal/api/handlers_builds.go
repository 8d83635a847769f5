package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dgallion1/guides/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	trigger := r.URL.Query().Get("trigger")
	if trigger == "" {
		trigger = "api"
	}
	job := pipeline.NewJob(trigger)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"build_id": job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/builds/%s/status", job.ID),
	})
}

func (s *Server) handleBuildStatus(w http.ResponseWriter, r *http.Request) {
	buildID := chi.URLParam(r, "buildID")
	job := s.orchestrator.GetJob(buildID)
	if job == nil {
		jsonError(w, "build not found", http.StatusNotFound)
		return
	}
	writeJSON(w, job.Snapshot())
}

func (s *Server) handleLatestBuild(w http.ResponseWriter, r *http.Request) {
	job := s.latest(w)
	if job == nil {
		return
	}
	res := job.Result()
	writeJSON(w, map[string]any{
		"build":       job.Snapshot(),
		"formats":     formatsOf(res),
		"documents":   len(res.Documents),
		"duration_ms": res.Duration.Milliseconds(),
	})
}

// latest returns the latest successful build, writing a 503 when there is
// none yet.
func (s *Server) latest(w http.ResponseWriter) *pipeline.Job {
	job := s.orchestrator.Latest()
	if job == nil || job.Result() == nil {
		jsonError(w, "no build available", http.StatusServiceUnavailable)
		return nil
	}
	return job
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
