// Package api mcapidx REST API
//
// @title           mcapidx REST API
// @version         1.0.0
// @description     Scans MCAP files and serves the stored record catalog.
// @BasePath        /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in              header
// @name            X-API-Key
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ssargent/mcapidx/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

// Server holds the API server state
type Server struct {
	catalog Catalog
	scanner Scanner
	config  ServerConfig
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewServer creates a new API server
func NewServer(catalog Catalog, scanner Scanner, config ServerConfig, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		catalog: catalog,
		scanner: scanner,
		config:  config,
		metrics: m,
		logger:  logger,
	}
}

// Router returns the HTTP handler with all routes configured. gatherer
// backs the /metrics endpoint and may be nil.
func (s *Server) Router(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyMiddleware(s.config.APIKey))

		r.Get("/health", s.metrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		r.Get("/scans", s.metrics.InstrumentHandler("GET", "/api/v1/scans", s.handleListScans))
		r.Post("/scans", s.metrics.InstrumentHandler("POST", "/api/v1/scans", s.handleCreateScan))
		r.Get("/scans/{id}", s.metrics.InstrumentHandler("GET", "/api/v1/scans/{id}", s.handleGetScan))
		r.Get("/scans/{id}/records", s.metrics.InstrumentHandler("GET", "/api/v1/scans/{id}/records", s.handleGetRecords))
		r.Delete("/scans/{id}", s.metrics.InstrumentHandler("DELETE", "/api/v1/scans/{id}", s.handleDeleteScan))
	})

	return r
}

// ListenAndServe serves the API until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, gatherer prometheus.Gatherer) error {
	addr := net.JoinHostPort(s.config.Bind, strconv.Itoa(s.config.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(gatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
