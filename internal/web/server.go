// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskward Contributors

// Package web exposes the HTTP API: account registration, session login,
// and per-user task management.
package web

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/samber/oops"

	"github.com/taskward/taskward/internal/auth"
	"github.com/taskward/taskward/internal/observability"
	"github.com/taskward/taskward/internal/task"
)

const requestTimeout = 60 * time.Second

// Options configures the HTTP server.
type Options struct {
	Addr string

	Auth   *auth.Service
	Tasks  *task.Service
	Issuer *auth.TokenIssuer

	// Metrics is optional; when nil no metrics are recorded.
	Metrics *observability.Metrics
	// Logger defaults to slog.Default.
	Logger *slog.Logger
	// CSRFProtect enables double-submit cookie checks on mutating routes.
	CSRFProtect bool
}

// Server serves the Taskward HTTP API.
type Server struct {
	addr       string
	handler    http.Handler
	listener   net.Listener
	httpServer *http.Server
	logger     *slog.Logger
	running    atomic.Bool
}

// NewServer creates the HTTP server and its routes.
func NewServer(opts Options) (*Server, error) {
	if opts.Auth == nil {
		return nil, oops.Errorf("auth service is required")
	}
	if opts.Tasks == nil {
		return nil, oops.Errorf("task service is required")
	}
	if opts.Issuer == nil {
		return nil, oops.Errorf("token issuer is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := &handlers{
		auth:        opts.Auth,
		tasks:       opts.Tasks,
		issuer:      opts.Issuer,
		metrics:     opts.Metrics,
		logger:      logger,
		csrfProtect: opts.CSRFProtect,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", csrfHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(h.countRequests)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(h.requireSession)
		if opts.CSRFProtect {
			r.Use(h.requireCSRF)
		}
		r.Get("/", h.handleListTasks)
		r.Post("/", h.handleCreateTask)
		r.Get("/{id}", h.handleGetTask)
		r.Patch("/{id}", h.handleUpdateTask)
		r.Delete("/{id}", h.handleDeleteTask)
	})

	return &Server{
		addr:    opts.Addr,
		handler: r,
		logger:  logger,
	}, nil
}

// Handler returns the root HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins serving HTTP. It returns an error channel that receives any
// error from the listener after startup; the channel is closed on graceful
// shutdown.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("web server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("web server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("web server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_web_server").Wrap(err)
		}
	}

	s.logger.Info("web server stopped")
	return nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
