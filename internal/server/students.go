package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/edulga/edulga/internal/students"
	"github.com/google/uuid"
)

type enrollRequest struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	students.Enrollment
}

func (s *Server) handleStudents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listStudents(w, r)
	case http.MethodPost:
		s.enrollStudent(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleStudentSubtree serves /students/ids, /students/gpa and
// /students/{id}.
func (s *Server) handleStudentSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/students/")
	switch rest {
	case "ids":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.listStudentIDs(w, r)
	case "gpa":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.listStudentsByGPA(w, r)
	default:
		id, err := uuid.Parse(rest)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid student id")
			return
		}
		switch r.Method {
		case http.MethodGet:
			s.getStudent(w, r, id)
		case http.MethodPut:
			s.upgradeStudent(w, r, id)
		case http.MethodDelete:
			s.deleteStudent(w, r, id)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

func (s *Server) listStudents(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		slog.Error("list students failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) listStudentIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.ListIDs(r.Context())
	if err != nil {
		slog.Error("list student ids failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) listStudentsByGPA(w http.ResponseWriter, r *http.Request) {
	min, max := students.MinGrade, students.MaxGrade
	if v := r.URL.Query().Get("min"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "min must be a number")
			return
		}
		min = f
	}
	if v := r.URL.Query().Get("max"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "max must be a number")
			return
		}
		max = f
	}
	list, err := s.store.ListByGPA(r.Context(), min, max)
	if err != nil {
		slog.Error("list students by gpa failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) enrollStudent(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Age <= 0 {
		writeError(w, http.StatusBadRequest, "age must be positive")
		return
	}
	st, err := students.New(req.Name, req.Age, req.Phone, req.Email, req.Enrollment)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.Create(r.Context(), st); err != nil {
		slog.Error("create student failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	slog.Info("student enrolled", slog.String("id", st.ID.String()), slog.String("name", st.Name))
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) getStudent(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	st, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, students.ErrNotFound) {
			writeError(w, http.StatusNotFound, "student not found")
			return
		}
		slog.Error("get student failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) upgradeStudent(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var e students.Enrollment
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	st, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, students.ErrNotFound) {
			writeError(w, http.StatusNotFound, "student not found")
			return
		}
		slog.Error("get student failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	if err := st.Upgrade(e); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.Update(r.Context(), st); err != nil {
		slog.Error("update student failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	// The tutor already holds the pre-upgrade profile in the chat
	// history; refresh it so the next answer sees the new grades.
	if err := s.tutor.RefreshProfile(r.Context(), st); err != nil {
		slog.Warn("profile refresh failed", slog.String("id", id.String()), slog.Any("error", err))
	}
	slog.Info("student upgraded", slog.String("id", st.ID.String()), slog.Int("finished", st.Finished))
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) deleteStudent(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	st, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, students.ErrNotFound) {
			writeError(w, http.StatusNotFound, "student not found")
			return
		}
		slog.Error("get student failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	// Drop the conversation first while the transcript name can still
	// be derived from the record.
	if err := s.tutor.Forget(r.Context(), st); err != nil {
		slog.Warn("forget conversation failed", slog.String("id", id.String()), slog.Any("error", err))
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		slog.Error("delete student failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	slog.Info("student deleted", slog.String("id", id.String()), slog.String("name", st.Name))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id.String()})
}
