// Package di provides dependency injection container
package di

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ssargent/mcapidx/pkg/api" //nolint:depguard
	"github.com/ssargent/mcapidx/pkg/metrics"
)

// Container holds all the dependencies for the application
type Container struct {
	serverFactory api.ServerFactory
	registry      *prometheus.Registry
	metrics       *metrics.Metrics
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	registry := prometheus.NewRegistry()
	return &Container{
		serverFactory: api.NewServerFactory(),
		registry:      registry,
		metrics:       metrics.NewMetrics(registry),
	}
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// GetRegistry returns the Prometheus registry shared by all collectors
func (c *Container) GetRegistry() *prometheus.Registry {
	return c.registry
}

// GetMetrics returns the walk and HTTP metrics registered with the registry
func (c *Container) GetMetrics() *metrics.Metrics {
	return c.metrics
}
