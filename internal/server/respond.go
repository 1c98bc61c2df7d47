package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"essayons/internal/apperr"
	"essayons/internal/auth"
	"essayons/internal/contact"
	"essayons/internal/content"
	"essayons/internal/engine"
	"essayons/internal/lobby"
	"essayons/internal/quiz"
	"essayons/internal/table"
)

const maxBodyBytes = 1 << 20

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  []apperr.FieldError `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondAPIError(w, status, &apiError{Code: code, Message: message})
}

func respondAPIError(w http.ResponseWriter, status int, e *apiError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiResponse{Success: false, Error: e}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondServiceError maps domain errors to HTTP statuses. Anything
// unrecognised is logged and reported as a 500 without details.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		respondAPIError(w, http.StatusBadRequest, &apiError{
			Code:    "validation_error",
			Message: err.Error(),
			Fields:  apperr.Fields(err),
		})
	case errors.Is(err, lobby.ErrInvalidSetup), errors.Is(err, engine.ErrInvalidConfig):
		respondError(w, http.StatusBadRequest, "invalid_setup", err.Error())
	case errors.Is(err, content.ErrNotFound),
		errors.Is(err, contact.ErrNotFound),
		errors.Is(err, lobby.ErrNotFound),
		errors.Is(err, quiz.ErrUnknownQuiz):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, content.ErrSlugTaken):
		respondError(w, http.StatusConflict, "slug_taken", err.Error())
	case errors.Is(err, table.ErrNotStarted):
		respondError(w, http.StatusConflict, "not_started", err.Error())
	case errors.Is(err, lobby.ErrFull):
		respondError(w, http.StatusServiceUnavailable, "tables_full", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, auth.ErrSessionNotFound):
		respondError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	default:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
