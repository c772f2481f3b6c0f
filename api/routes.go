package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) setupRoutes() {
	// Middleware stack
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.SetHeader("Content-Type", "application/json"))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/categories", s.handleListCategories)

		r.Route("/scopes/{scopeID}", func(r chi.Router) {
			r.Get("/", s.handleGetScope)
			r.With(s.limitWrites).Put("/{category}/{mode}", s.handleWriteSetting)
		})

		r.Get("/resolve", s.handleResolve)
		r.With(s.limitWrites).Post("/checkpoint", s.handleCheckpoint)
	})
}
