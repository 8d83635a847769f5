package api

import (
	"net/http"
)

func (s *Server) handleBuildStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats":       s.orchestrator.Stats(),
	})
}
