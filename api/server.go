// Package api provides the admin HTTP API for inspecting and editing
// category settings.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/CreativeUnicorns/cogbot"
)

const (
	// DefaultListenAddress is used when Config.ListenAddress is empty.
	DefaultListenAddress = "127.0.0.1:8080"
	// DefaultWriteRate and DefaultWriteBurst bound the mutating endpoints.
	DefaultWriteRate  = 5
	DefaultWriteBurst = 10
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	manager    *cogbot.Manager
	logger     cogbot.Logger
	router     *chi.Mux
	httpServer *http.Server

	writeLimiter *rate.Limiter
}

// Config holds configuration for the API server.
type Config struct {
	ListenAddress string
	Manager       *cogbot.Manager
	Logger        cogbot.Logger
	// WriteRate is the sustained number of setting writes and checkpoints
	// accepted per second; WriteBurst is the bucket size.
	WriteRate  float64
	WriteBurst int
}

// NewServer creates and configures a new API server instance.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Manager == nil {
		return nil, fmt.Errorf("manager is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = cogbot.NewDefaultLogger()
	}
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	if cfg.WriteRate <= 0 {
		cfg.WriteRate = DefaultWriteRate
	}
	if cfg.WriteBurst <= 0 {
		cfg.WriteBurst = DefaultWriteBurst
	}

	s := &Server{
		manager: cfg.Manager,
		logger:  cfg.Logger,
		router:  chi.NewRouter(),

		writeLimiter: rate.NewLimiter(rate.Limit(cfg.WriteRate), cfg.WriteBurst),
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the routed handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server and blocks until it is shut down.
// A graceful shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("API server stopping")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("API server stopped gracefully")
	return nil
}
