// Package server implements the campaignlens HTTP API server.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dwsmith1983/campaignlens/internal/server/handlers"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// Server timeout defaults.
const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 60 * time.Second
	idleTimeout         = 120 * time.Second
)

// Server is the campaignlens HTTP API server.
type Server struct {
	router       chi.Router
	handlers     *handlers.Handlers
	addr         string
	apiKey       string
	readTimeout  time.Duration
	writeTimeout time.Duration
	logger       *slog.Logger
	srv          *http.Server
}

// New creates a new HTTP server.
func New(cfg types.ServerConfig, deps handlers.Deps) *Server {
	s := &Server{
		handlers:     handlers.New(deps),
		addr:         cfg.Addr,
		apiKey:       cfg.APIKey,
		readTimeout:  parseTimeout(cfg.ReadTimeout, defaultReadTimeout),
		writeTimeout: parseTimeout(cfg.WriteTimeout, defaultWriteTimeout),
		logger:       deps.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(AccessLogMiddleware(s.logger))
	r.Use(middleware.Recoverer)

	s.router = r
	s.registerRoutes(r, s.handlers)
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	s.logger.Info("campaignlens server listening", "addr", s.addr)
	return s.srv.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}

func parseTimeout(v string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	return def
}
