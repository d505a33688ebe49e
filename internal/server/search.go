package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/edulga/edulga/internal/engine"
	"github.com/edulga/edulga/internal/students"
	"github.com/google/uuid"
)

type searchRequest struct {
	Query string `json:"query"`
}

// handleSearch serves the discovery routes:
//
//	POST /search/text/{id}    -> article discovery and extraction
//	POST /search/videos/{id}  -> video discovery and transcription
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/search/")
	var mode engine.Mode
	var idPart string
	switch {
	case strings.HasPrefix(rest, "text/"):
		mode = engine.ModeText
		idPart = strings.TrimPrefix(rest, "text/")
	case strings.HasPrefix(rest, "videos/"):
		mode = engine.ModeVideo
		idPart = strings.TrimPrefix(rest, "videos/")
	default:
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid student id")
		return
	}
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	// Discovery is only offered to enrolled students.
	if _, err := s.store.Get(r.Context(), id); err != nil {
		if errors.Is(err, students.ErrNotFound) {
			writeError(w, http.StatusNotFound, "student not found")
			return
		}
		slog.Error("get student failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	// Same key shape as the MCP tools, so both surfaces share entries.
	cacheKey := engine.CacheKey("search", string(mode), req.Query)
	if out, ok := engine.CacheGet(r.Context(), cacheKey); ok {
		writeJSON(w, http.StatusOK, out)
		return
	}

	results, err := engine.Run(r.Context(), engine.PipelineRequest{
		Query:       req.Query,
		Mode:        mode,
		RequesterID: id.String(),
	})
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrEmptyQuery), errors.Is(err, engine.ErrInvalidMode):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, engine.ErrNotConfigured):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			slog.Error("pipeline failed",
				slog.String("mode", string(mode)),
				slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "search failed")
		}
		return
	}
	out := engine.SearchOutput{
		Query:   req.Query,
		Mode:    mode,
		Count:   len(results),
		Results: results,
	}
	engine.CacheSet(r.Context(), cacheKey, out)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(engine.FormatMetrics())); err != nil {
		slog.Warn("metrics write failed", slog.Any("error", err))
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
