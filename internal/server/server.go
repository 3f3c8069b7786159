package server

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jwtly10/go-reqbench/internal/config"
	"github.com/jwtly10/go-reqbench/internal/server/middleware"
	"github.com/jwtly10/go-reqbench/internal/workbench"
)

// Server exposes a workbench's request and response state over REST and websockets
type Server struct {
	workbench *workbench.Workbench
	router    chi.Router
	logger    *slog.Logger

	cfg *config.ServerConfig

	// writeTimeout bounds every websocket frame write
	writeTimeout time.Duration
}

const defaultWriteTimeout = 10 * time.Second

func NewServer(wb *workbench.Workbench, logger *slog.Logger, cfg *config.ServerConfig) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}

	s := &Server{
		workbench:    wb,
		router:       chi.NewRouter(),
		logger:       logger,
		cfg:          cfg,
		writeTimeout: defaultWriteTimeout,
	}
	s.routes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := s.router

	r.Use(func(next http.Handler) http.Handler {
		return middleware.WithLogging(next, s.logger)
	})
	r.Use(s.corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// CORS preflight
	r.Options("/api/request/{field}", s.optionsHandler("PUT"))
	r.Options("/api/response/{field}", s.optionsHandler("PUT"))
	r.Options("/api/history", s.optionsHandler("GET, POST"))
	r.Options("/api/history/{id}", s.optionsHandler("GET, DELETE"))
	r.Options("/api/history/{id}/restore", s.optionsHandler("POST"))

	// State
	r.Get("/api/request", s.handleGetRequest)
	r.Put("/api/request/{field}", s.handleSetRequestField)
	r.Get("/api/response", s.handleGetResponse)
	r.Put("/api/response/{field}", s.handleSetResponseField)

	// History
	r.Get("/api/history", s.handleListHistory)
	r.Post("/api/history", s.handleSaveHistory)
	r.Get("/api/history/{id}", s.handleGetHistory)
	r.Delete("/api/history/{id}", s.handleDeleteHistory)
	r.Post("/api/history/{id}/restore", s.handleRestoreHistory)

	// Subscriptions
	r.Get("/ws/{store}", s.handleWS)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin())
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods+", OPTIONS")
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) allowedOrigin() string {
	if s.cfg == nil || s.cfg.CORSOrigin == "" {
		return "*"
	}
	return s.cfg.CORSOrigin
}
