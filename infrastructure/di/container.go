// Package di assembles the application with Google Wire. The generated
// injector lives in wire_gen.go; the provider functions in providers.go.
package di

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"kgexplorer/application/session"
	"kgexplorer/infrastructure/config"
	"kgexplorer/infrastructure/persistence"
	"kgexplorer/infrastructure/upstream"
	"kgexplorer/pkg/observability"
)

// Container holds the assembled application.
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Registry   *prometheus.Registry
	Metrics    *observability.Metrics
	StateStore *persistence.StateStore
	Upstream   *upstream.Client
	Sessions   *session.Manager
	Handler    http.Handler

	tracing *observability.TracerProvider
}

// Start launches the container's background work.
func (c *Container) Start(ctx context.Context) error {
	if c.Config.Tracing.Enabled {
		tp, err := observability.InitTracing(ctx, "kgexplorer", string(c.Config.Environment), c.Config.Tracing.Endpoint)
		if err != nil {
			return err
		}
		c.tracing = tp
	}
	c.Sessions.StartSweeper(c.Config.Session.SweepInterval)
	return nil
}

// Shutdown stops background work and flushes buffers.
func (c *Container) Shutdown(ctx context.Context) {
	c.Sessions.Stop()
	if c.tracing != nil {
		if err := c.tracing.Shutdown(ctx); err != nil {
			c.Logger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}
	if c.StateStore != nil {
		if err := c.StateStore.Close(); err != nil {
			c.Logger.Warn("state store close failed", zap.Error(err))
		}
	}
	_ = c.Logger.Sync()
}
