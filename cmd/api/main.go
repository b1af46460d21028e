package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"kgexplorer/infrastructure/config"
	"kgexplorer/infrastructure/di"
)

func main() {
	// A missing .env file is fine; environment variables still apply.
	_ = godotenv.Load()

	container, err := di.InitializeContainer()
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.Start(ctx); err != nil {
		container.Logger.Fatal("failed to start application", zap.Error(err))
	}

	var watcher *config.Watcher
	if path := os.Getenv("KGEXPLORER_CONFIG"); path != "" && container.Config.Environment == config.Development {
		watcher, err = config.NewWatcher(path, container.Logger)
		if err != nil {
			container.Logger.Warn("config hot reload unavailable", zap.Error(err))
		} else {
			watcher.OnReload(func(cfg *config.Config) {
				container.Sessions.SetIdleTTL(cfg.Session.IdleTTL)
				container.Upstream.SetRateLimit(cfg.Upstream.RateLimit)
				container.Logger.Info("runtime configuration updated",
					zap.Duration("session_idle_ttl", cfg.Session.IdleTTL),
					zap.Float64("upstream_rate_limit", cfg.Upstream.RateLimit))
			})
		}
	}

	addr := fmt.Sprintf("%s:%d", container.Config.Server.Host, container.Config.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      container.Handler,
		ReadTimeout:  container.Config.Server.ReadTimeout,
		WriteTimeout: container.Config.Server.WriteTimeout,
		IdleTimeout:  container.Config.Server.IdleTimeout,
	}

	go func() {
		container.Logger.Info("server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			container.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	container.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		container.Logger.Warn("server shutdown failed", zap.Error(err))
	}
	if watcher != nil {
		watcher.Stop()
	}
	container.Shutdown(shutdownCtx)
}
