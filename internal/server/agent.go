package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/edulga/edulga/internal/agent"
	"github.com/edulga/edulga/internal/engine"
	"github.com/edulga/edulga/internal/students"
	"github.com/google/uuid"
)

type askRequest struct {
	Request string `json:"request"`
}

// handleAgent serves the three persona routes:
//
//	POST /agent/roadmap/{id}        -> the Architect
//	POST /agent/explain/text/{id}   -> the Sage
//	POST /agent/explain/video/{id}  -> the Maestro
func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/agent/")
	var persona agent.Persona
	var idPart string
	switch {
	case strings.HasPrefix(rest, "roadmap/"):
		persona = agent.PersonaArchitect
		idPart = strings.TrimPrefix(rest, "roadmap/")
	case strings.HasPrefix(rest, "explain/text/"):
		persona = agent.PersonaSage
		idPart = strings.TrimPrefix(rest, "explain/text/")
	case strings.HasPrefix(rest, "explain/video/"):
		persona = agent.PersonaMaestro
		idPart = strings.TrimPrefix(rest, "explain/video/")
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
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	reply, err := s.tutor.Ask(r.Context(), persona, id, req.Request)
	if err != nil {
		switch {
		case errors.Is(err, students.ErrNotFound):
			writeError(w, http.StatusNotFound, "student not found")
		case errors.Is(err, agent.ErrEmptyRequest), errors.Is(err, agent.ErrUnknownPersona):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, engine.ErrNotConfigured):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			slog.Error("tutor ask failed",
				slog.String("persona", string(persona)),
				slog.String("student", id.String()),
				slog.Any("error", err))
			writeError(w, http.StatusBadGateway, "tutor unavailable")
		}
		return
	}
	writeJSON(w, http.StatusOK, reply)
}
