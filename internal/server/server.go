package server

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"essayons/internal/auth"
	"essayons/internal/config"
	"essayons/internal/contact"
	"essayons/internal/content"
	"essayons/internal/quiz"
)

// Deps are the services the HTTP layer serves.
type Deps struct {
	Tables  *Tables
	Content *content.Service
	Auth    *auth.Service
	Contact *contact.Service
	Quizzes *quiz.Registry
	// Ready answers /ready; nil reports ready unconditionally.
	Ready http.Handler
	// Static holds the site front-end; nil disables file serving.
	Static fs.FS
}

// Server ties together the REST API, WebSocket tables and the static site.
type Server struct {
	cfg     config.ServerConfig
	session config.SessionConfig
	router  *chi.Mux
	started time.Time

	tables  *Tables
	content *content.Service
	auth    *auth.Service
	contact *contact.Service
	quizzes *quiz.Registry
	ready   http.Handler
	static  fs.FS
}

func New(cfg config.ServerConfig, session config.SessionConfig, deps Deps) *Server {
	s := &Server{
		cfg:     cfg,
		session: session,
		started: time.Now(),
		tables:  deps.Tables,
		content: deps.Content,
		auth:    deps.Auth,
		contact: deps.Contact,
		quizzes: deps.Quizzes,
		ready:   deps.Ready,
		static:  deps.Static,
	}
	if s.ready == nil {
		s.ready = http.HandlerFunc(s.handleHealth)
	}
	s.setupRouter()
	return s
}

// Router returns the configured router.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/ready", s.ready)
	r.Get("/app", s.handleApp)

	// The socket outlives any request timeout.
	r.Get("/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		if s.cfg.Timeout > 0 {
			r.Use(middleware.Timeout(s.cfg.Timeout))
		}
		r.Get("/status", s.handleStatus)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.With(s.RequireAuth).Get("/me", s.handleMe)
		})

		r.Get("/content", s.handleListPublished)
		r.Get("/content/{slug}", s.handleGetPublished)
		r.Post("/contact", s.handleContact)

		r.Route("/quizzes", func(r chi.Router) {
			r.Get("/", s.handleListQuizzes)
			r.Get("/{name}", s.handleGetQuiz)
			r.Post("/{name}/score", s.handleScoreQuiz)
		})

		r.Route("/tables", func(r chi.Router) {
			r.Get("/", s.handleListTables)
			r.Post("/", s.handleCreateTable)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetTable)
				r.Post("/start", s.handleStartTable)
				r.Post("/roll", s.handleRoll)
				r.Post("/acknowledge", s.handleAcknowledge)
				r.Post("/reset", s.handleResetTable)
				r.Get("/qr", s.handleQR)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.RequireAuth)

			r.Route("/content", func(r chi.Router) {
				r.Get("/", s.handleAdminListContent)
				r.Post("/", s.handleCreateContent)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleAdminGetContent)
					r.Patch("/", s.handleUpdateContent)
					r.Put("/", s.handleUpdateContent)
					r.Delete("/", s.handleDeleteContent)
					r.Post("/attachments", s.handleCreateAttachment)
				})
			})
			r.Delete("/attachments/{id}", s.handleDeleteAttachment)

			r.Get("/contact", s.handleListMessages)
			r.Patch("/contact/{id}", s.handleUpdateMessage)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusNotFound, "not_found", "no such endpoint")
		})
	})

	if s.static != nil {
		r.NotFound(s.spaHandler())
	}

	s.router = r
}

// spaHandler serves files from the static tree and falls back to
// index.html so client-side routes load the app.
func (s *Server) spaHandler() http.HandlerFunc {
	files := http.FileServer(http.FS(s.static))
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.NotFound(w, r)
			return
		}
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name == "" {
			name = "index.html"
		}
		if _, err := fs.Stat(s.static, name); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				slog.Error("static lookup failed", "path", name, "error", err)
			}
			// Requests for assets should 404 rather than receive the app.
			if path.Ext(name) != "" && !strings.HasSuffix(name, ".html") {
				http.NotFound(w, r)
				return
			}
			r2 := r.Clone(r.Context())
			r2.URL.Path = "/"
			files.ServeHTTP(w, r2)
			return
		}
		files.ServeHTTP(w, r)
	}
}

// loggingMiddleware logs HTTP requests using slog.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
