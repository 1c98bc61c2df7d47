package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"essayons/internal/contact"
)

// POST /api/contact
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var in contact.Input
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	res, err := s.contact.Submit(r.Context(), in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

// GET /api/admin/contact
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.contact.List(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, emptyIfNil(msgs))
}

// PATCH /api/admin/contact/{id}
func (s *Server) handleUpdateMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_id", "invalid message id")
		return
	}
	var req struct {
		Status contact.Status `json:"status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	m, err := s.contact.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// GET /api/quizzes
func (s *Server) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.quizzes.Names())
}

// GET /api/quizzes/{name}
func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	b, err := s.quizzes.Get(chi.URLParam(r, "name"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

// POST /api/quizzes/{name}/score
func (s *Server) handleScoreQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answers map[string]int `json:"answers"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	res, err := s.quizzes.Score(chi.URLParam(r, "name"), req.Answers)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"time":        time.Now().UTC().Format(time.RFC3339),
		"uptime":      time.Since(s.started).Round(time.Second).String(),
		"open_tables": s.tables.Len(),
	})
}

// GET /health is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// GET /app sends visitors to the separately hosted app, or to the game
// when none is configured.
func (s *Server) handleApp(w http.ResponseWriter, r *http.Request) {
	target := s.cfg.AppURL
	if target == "" {
		target = "/toolbox"
	}
	http.Redirect(w, r, target, http.StatusFound)
}
