// Package api provides factory implementations for dependency injection
package api

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ssargent/mcapidx/pkg/metrics"
)

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct{}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(
	ctx context.Context,
	catalog Catalog,
	scanner Scanner,
	config ServerConfig,
	logger *zap.Logger,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
) error {
	server := NewServer(catalog, scanner, config, m, logger)
	return server.ListenAndServe(ctx, gatherer)
}
