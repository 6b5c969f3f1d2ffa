// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/linguaphoto/internal/library/collection"
	"github.com/taibuivan/linguaphoto/internal/library/image"
	"github.com/taibuivan/linguaphoto/internal/platform/config"
	"github.com/taibuivan/linguaphoto/internal/platform/constants"
	"github.com/taibuivan/linguaphoto/internal/platform/middleware"
	"github.com/taibuivan/linguaphoto/internal/users/auth"
	"github.com/taibuivan/linguaphoto/internal/users/subscription"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler; it returns 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler; it returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles signup, signin and API keys.
	Auth *auth.Handler

	// Subscription handles billing.
	Subscription *subscription.Handler

	// Collection handles albums.
	Collection *collection.Handler

	// Image handles uploads and translation requests.
	Image *image.Handler

	// Notify upgrades /ws connections.
	Notify http.Handler

	// Objects serves stored objects when the in-memory object store is used.
	Objects     http.Handler
	ObjectsPath string
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.RateLimit(context, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health checks for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Long-lived and raw endpoints
	// Kept outside the request timeout: sockets stay open, objects stream.
	r.Handle("/ws", h.Notify)
	if h.Objects != nil {
		r.Mount(h.ObjectsPath, http.StripPrefix(h.ObjectsPath, h.Objects))
	}

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Use(chimw.Timeout(constants.GlobalRequestTimeout))
		api.Use(middleware.Authenticate(verifier))

		api.Mount("/auth", h.Auth.Routes())
		api.Mount("/subscriptions", h.Subscription.Routes())
		api.Mount("/collections", h.Collection.Routes())
		api.Mount("/images", h.Image.Routes())
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
