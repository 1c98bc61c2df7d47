package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"essayons/internal/auth"
)

func (s *Server) sessionToken(r *http.Request) string {
	c, err := r.Cookie(s.session.CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	ttl := s.auth.TTL()
	http.SetCookie(w, &http.Cookie{
		Name:     s.session.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   s.session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.session.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireAuth rejects requests without a valid admin session and puts the
// admin into the request context.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := s.auth.Authenticate(r.Context(), s.sessionToken(r))
		if err != nil {
			if !errors.Is(err, auth.ErrSessionNotFound) {
				slog.Error("session lookup failed", "error", err)
				respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				return
			}
			respondError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), u)))
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	u, token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			slog.Warn("failed admin login", "username", req.Username, "remote_addr", r.RemoteAddr)
		}
		respondServiceError(w, r, err)
		return
	}
	s.setSessionCookie(w, token)
	respondJSON(w, http.StatusOK, map[string]any{"user": u})
}

// POST /api/auth/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), s.sessionToken(r)); err != nil {
		respondServiceError(w, r, err)
		return
	}
	s.clearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]any{"logged_out": true})
}

// GET /api/auth/me
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": u})
}
