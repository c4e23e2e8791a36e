package server

import (
	"expvar"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dwsmith1983/campaignlens/internal/server/handlers"
)

func (s *Server) registerRoutes(r chi.Router, h *handlers.Handlers) {
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.SetHeader("Content-Type", "application/json"))
		r.Use(APIKeyMiddleware(s.apiKey))

		// Health
		r.Get("/health", h.Health)
		r.Post("/reload", h.Reload)

		// Reporting
		r.Get("/options", h.Options)
		r.Get("/report", h.Report)
		r.Get("/tables/{table}", h.Table)

		// Exports
		r.Get("/export", h.Export)
		r.Post("/exports", h.PublishExport)
	})

	r.Group(func(r chi.Router) {
		r.Use(APIKeyMiddleware(s.apiKey))
		r.Handle("/debug/vars", expvar.Handler())
	})
}
