//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"
)

// InitializeContainer assembles the full application.
func InitializeContainer() (*Container, error) {
	wire.Build(
		provideConfig,
		provideLogger,
		provideRegistry,
		provideMetrics,
		provideStateStore,
		provideCacheBackend,
		provideDetailCache,
		provideUpstreamClient,
		provideAPI,
		providePersisterFactory,
		provideSessionManager,
		provideHandler,
		wire.Struct(new(Container), "Config", "Logger", "Registry", "Metrics", "StateStore", "Upstream", "Sessions", "Handler"),
	)
	return nil, nil
}
