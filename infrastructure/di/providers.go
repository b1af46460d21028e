package di

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"kgexplorer/application/loaders"
	"kgexplorer/application/session"
	"kgexplorer/application/store"
	"kgexplorer/infrastructure/cache"
	"kgexplorer/infrastructure/config"
	"kgexplorer/infrastructure/persistence"
	"kgexplorer/infrastructure/upstream"
	"kgexplorer/interfaces/http/rest"
	"kgexplorer/pkg/observability"
)

func provideConfig() (*config.Config, error) {
	return config.Load()
}

func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == config.Production {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func provideRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

func provideMetrics(registry *prometheus.Registry) *observability.Metrics {
	return observability.NewMetrics(registry)
}

func provideStateStore(cfg *config.Config, logger *zap.Logger) (*persistence.StateStore, error) {
	return persistence.Open(cfg.State.Path, logger)
}

func provideCacheBackend(cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return cache.NewRedisCache(cfg.Cache.RedisURL, cfg.Cache.DetailTTL)
	case "memory":
		return cache.NewMemoryCache(cfg.Cache.MaxItems, cfg.Cache.DetailTTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

func provideDetailCache(backend cache.Cache, cfg *config.Config, logger *zap.Logger) *cache.DetailCache {
	return cache.NewDetailCache(backend, cfg.Cache.DetailTTL, logger)
}

func provideUpstreamClient(cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) *upstream.Client {
	return upstream.NewClient(cfg.Upstream.BaseURL, logger,
		upstream.WithHTTPClient(&http.Client{Timeout: cfg.Upstream.Timeout}),
		upstream.WithRateLimit(cfg.Upstream.RateLimit),
		upstream.WithUserID(cfg.Upstream.UserID),
		upstream.WithMetrics(metrics),
	)
}

func provideAPI(client *upstream.Client) loaders.API {
	return client
}

func providePersisterFactory(stateStore *persistence.StateStore) session.PersisterFactory {
	return func(sessionID string) store.Persister {
		return stateStore.ForSession(sessionID)
	}
}

func provideSessionManager(api loaders.API, detailCache *cache.DetailCache, persisters session.PersisterFactory, cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) *session.Manager {
	return session.NewManager(api, detailCache, persisters, cfg.Session.IdleTTL, metrics, logger)
}

func provideHandler(sessions *session.Manager, registry *prometheus.Registry, cfg *config.Config, logger *zap.Logger) http.Handler {
	return rest.NewRouter(sessions, registry, cfg.Server.AllowedOrigins, logger).Setup()
}
