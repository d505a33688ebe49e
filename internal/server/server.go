// Package server exposes the student roster, the tutor personas and the
// discovery pipeline over a plain net/http REST surface.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/edulga/edulga/internal/agent"
	"github.com/edulga/edulga/internal/students"
	"github.com/google/uuid"
)

// Tutor is the persona agent surface the routes call. *agent.Tutor
// implements it.
type Tutor interface {
	Ask(ctx context.Context, persona agent.Persona, studentID uuid.UUID, request string) (*agent.Reply, error)
	Forget(ctx context.Context, s *students.Student) error
	RefreshProfile(ctx context.Context, s *students.Student) error
}

// Server wires the student store and the tutor into the REST routes.
type Server struct {
	store students.Store
	tutor Tutor
}

// New builds the REST server. tutor must be non-nil; build it over a
// nil LLM client when no model is configured.
func New(store students.Store, tutor Tutor) *Server {
	return &Server{store: store, tutor: tutor}
}

// Handler returns the full route table wrapped in CORS and panic
// recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/students", s.handleStudents)
	mux.HandleFunc("/students/", s.handleStudentSubtree)
	mux.HandleFunc("/agent/", s.handleAgent)
	mux.HandleFunc("/search/", s.handleSearch)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return withCORS(withRecovery(mux))
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered",
					slog.Any("panic", rec),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response encode failed", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
