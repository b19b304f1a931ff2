package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"mercator-hq/webstore/pkg/admission"
	"mercator-hq/webstore/pkg/auth"
	"mercator-hq/webstore/pkg/cart"
	"mercator-hq/webstore/pkg/catalog"
	"mercator-hq/webstore/pkg/config"
	"mercator-hq/webstore/pkg/server/handlers"
	"mercator-hq/webstore/pkg/server/middleware"
	"mercator-hq/webstore/pkg/telemetry/metrics"
)

// Dependencies carries the wired components the server serves.
type Dependencies struct {
	// Cart is the cart pipeline service. Required.
	Cart *cart.Service

	// Catalog is the product catalog store. Required.
	Catalog catalog.Store

	// Sessions validates bearer tokens. Required.
	Sessions *auth.SessionValidator

	// Bucket is the shared admission token bucket. Required.
	Bucket *admission.TokenBucket

	// Metrics records request telemetry and serves /metrics.
	// Optional; nil disables the metrics endpoint.
	Metrics *metrics.Collector
}

// Server is the storefront HTTP server.
type Server struct {
	config       *config.ServerConfig
	deps         Dependencies
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a new storefront server.
func NewServer(cfg *config.ServerConfig, deps Dependencies) *Server {
	return &Server{
		config:       cfg,
		deps:         deps,
		shutdownChan: make(chan struct{}),
		isRunning:    false,
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting storefront server", "address", s.config.ListenAddress)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("storefront server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	storefront := http.NewServeMux()

	authed := s.deps.Sessions.Middleware
	adminOnly := auth.RequireRole("admin")
	catalogWriter := auth.RequireRole("admin", "seller")

	// Cart and order routes require an authenticated identity.
	s.route(storefront, "POST /cart/items",
		authed(handlers.NewAddItemHandler(s.deps.Cart)))
	s.route(storefront, "POST /cart/checkout",
		authed(handlers.NewCheckoutHandler(s.deps.Cart)))
	s.route(storefront, "GET /cart",
		authed(handlers.NewCartViewHandler(s.deps.Cart, s.deps.Catalog)))
	s.route(storefront, "GET /orders",
		authed(handlers.NewListOrdersHandler(s.deps.Cart)))
	s.route(storefront, "DELETE /orders/{id}",
		authed(adminOnly(handlers.NewDeleteOrderHandler(s.deps.Cart))))

	// Catalog reads are anonymous; mutations are role-gated.
	s.route(storefront, "GET /products",
		handlers.NewListProductsHandler(s.deps.Catalog))
	s.route(storefront, "GET /products/{id}",
		handlers.NewGetProductHandler(s.deps.Catalog))
	s.route(storefront, "POST /products",
		authed(catalogWriter(handlers.NewSaveProductHandler(s.deps.Catalog))))
	s.route(storefront, "DELETE /products/{id}",
		authed(catalogWriter(handlers.NewDeleteProductHandler(s.deps.Catalog))))

	// The admission gate wraps every storefront route; operational
	// endpoints stay outside so probes and scrapes keep working while
	// the storefront is throttled.
	gated := admission.Gate(s.deps.Bucket, s.deps.Metrics)(storefront)

	mux := http.NewServeMux()
	mux.Handle("/", gated)
	mux.Handle("GET /health", handlers.NewHealthHandler())
	mux.Handle("GET /ready", handlers.NewReadyHandler())
	if s.deps.Metrics != nil {
		mux.Handle("GET /metrics", s.deps.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.TimeoutMiddleware(s.config.WriteTimeout)(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// route registers a handler with a per-route metrics wrapper. The
// registered pattern doubles as the metric route label.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.Handler) {
	mux.Handle(pattern, middleware.MetricsMiddleware(s.deps.Metrics, pattern)(h))
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}
