// Package api provides interfaces for dependency injection
package api

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ssargent/mcapidx/pkg/metrics"
)

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer runs the API server until ctx is done
	StartServer(ctx context.Context,
		catalog Catalog,
		scanner Scanner,
		config ServerConfig,
		logger *zap.Logger,
		m *metrics.Metrics,
		gatherer prometheus.Gatherer,
	) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
