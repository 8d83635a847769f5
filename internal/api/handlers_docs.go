package api

import (
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/dgallion1/guides/internal/diag"
	"github.com/dgallion1/guides/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

var contentTypes = map[string]string{
	"html":  "text/html; charset=utf-8",
	"latex": "application/x-latex; charset=utf-8",
}

// handleDocument serves one rendered document of the latest build.
// /docs/html/guide/intro.html serves the html output of guide/intro; an
// empty path serves the root document.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	job := s.latest(w)
	if job == nil {
		return
	}
	outputs, ok := job.Result().Outputs[format]
	if !ok {
		jsonError(w, "format not built: "+format, http.StatusNotFound)
		return
	}

	file := strings.Trim(chi.URLParam(r, "*"), "/")
	file = strings.TrimSuffix(file, pipeline.OutputExtension(format))
	if file == "" {
		file = s.cfg.Root
	}
	file = path.Clean(file)
	content, ok := outputs[file]
	if !ok {
		jsonError(w, "document not found: "+file, http.StatusNotFound)
		return
	}

	ct, ok := contentTypes[format]
	if !ok {
		ct = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("X-Build-Id", job.ID)
	w.Write([]byte(content))
}

func (s *Server) handleTOC(w http.ResponseWriter, r *http.Request) {
	job := s.latest(w)
	if job == nil {
		return
	}
	toc := job.Result().TOC
	if toc == nil {
		jsonError(w, "root document not built", http.StatusNotFound)
		return
	}
	writeJSON(w, toc)
}

// handleDiagnostics lists the diagnostics of the latest build, optionally
// filtered by ?severity= and ?file=.
func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	job := s.latest(w)
	if job == nil {
		return
	}
	res := job.Result()
	severity := r.URL.Query().Get("severity")
	file := r.URL.Query().Get("file")

	out := diag.List{}
	for _, d := range res.Diagnostics {
		if severity != "" && d.Severity.String() != severity {
			continue
		}
		if file != "" && d.Location.File != file {
			continue
		}
		out = append(out, d)
	}
	writeJSON(w, map[string]any{
		"build_id":    job.ID,
		"warnings":    res.Diagnostics.Count(diag.Warning),
		"errors":      res.Diagnostics.Count(diag.Error),
		"diagnostics": out,
	})
}

func formatsOf(res *pipeline.Result) []string {
	out := make([]string, 0, len(res.Outputs))
	for f := range res.Outputs {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}
