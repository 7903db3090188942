// Package server exposes MistQL as an HTTP query service: a JSON request/
// response endpoint, a WebSocket streaming endpoint for issuing many
// queries over one connection, bearer-token auth, a Redis-backed hit
// cache, and a Postgres/SQLite audit trail of every evaluation.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mistql-lang/mistql-go/internal/config"
	"github.com/mistql-lang/mistql-go/internal/logging"
	"github.com/mistql-lang/mistql-go/pkg/mistql"
)

// Server is the query service's HTTP listener plus its dependencies.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	instance *mistql.Instance
	auth     *AuthService
	cache    *QueryCache
	audit    *AuditLog
}

// New builds a Server from cfg, wiring auth, cache, and audit log. cache and
// audit may be nil (wired separately by the caller, e.g. in tests), in
// which case the corresponding feature is skipped.
func New(cfg *config.Config, instance *mistql.Instance, cache *QueryCache, audit *AuditLog) *Server {
	s := &Server{
		instance: instance,
		auth:     NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.APIKeyHash, 24*time.Hour),
		cache:    cache,
		audit:    audit,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(zapRequestLogger)

	router.Get("/healthz", s.handleHealth)
	router.Post("/auth/token", s.handleTokenExchange)

	router.Route(cfg.Server.APIPrefix, func(r chi.Router) {
		r.Use(RequireAuth(s.auth, cfg.Auth.Disabled))
		if cache != nil {
			if limiter, err := NewRateLimiter(cache.Client(), 100, time.Minute); err == nil {
				r.Use(limiter.Middleware)
			} else {
				logging.Get().Warnw("rate limiting disabled", "error", err)
			}
		}
		r.Post("/query", s.handleQuery)
		r.Get("/stream", s.handleStream)
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func zapRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		logging.Get().Debugw("handled request",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(started))
	})
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// ListenAndServe starts the HTTP server and blocks until it stops.
func (s *Server) ListenAndServe() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener
	return s.httpServer.Serve(listener)
}

// Shutdown gracefully stops the HTTP server and closes its dependencies.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.cache != nil {
		s.cache.Close()
	}
	if s.audit != nil {
		s.audit.Close()
	}
	return err
}

// Run starts the server and blocks until a termination signal arrives, then
// shuts it down gracefully within timeout.
func Run(s *Server, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Get().Infow("starting query server", "addr", s.Addr())
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server failed: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logging.Get().Infow("shutdown signal received")
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return s.Shutdown(ctx)
	case err := <-errCh:
		return err
	}
}
