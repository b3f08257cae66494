// Package app runs a subgraph process: the GraphQL HTTP server, the gRPC
// health server and the metrics server, with graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/streamcat/lolomo/internal/config"
	grpcserver "github.com/streamcat/lolomo/internal/grpc"
	"github.com/streamcat/lolomo/internal/metrics"
	"github.com/streamcat/lolomo/internal/persisted"
	"github.com/streamcat/lolomo/internal/server"
)

// ServiceName returns the configured service name, or def when unset.
func ServiceName(cfg *config.Config, def string) string {
	if cfg.ServiceName != "" {
		return cfg.ServiceName
	}
	return def
}

// InitSentry configures error reporting when a DSN is set. The returned
// function flushes buffered events and must run before exit.
func InitSentry(cfg *config.Config, service string) func() {
	if cfg.Sentry.DSN == "" {
		return func() {}
	}

	logger := config.GetLogger()
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		ServerName:       service,
		AttachStacktrace: true,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize Sentry, continuing without it")
		return func() {}
	}
	logger.Info().Str("environment", cfg.Sentry.Environment).Msg("Sentry initialized")
	return func() { sentry.Flush(2 * time.Second) }
}

// NewPersistedStore builds the persisted query store from config, or returns
// nil when persisted queries are disabled.
func NewPersistedStore(cfg *config.Config, service string) (persisted.Store, error) {
	pq := cfg.PersistedQueries
	if !pq.Enabled {
		return nil, nil
	}
	backend, err := persisted.ParseBackend(pq.Provider)
	if err != nil {
		return nil, err
	}
	store, err := persisted.New(backend, persisted.StoreConfig{
		Size:          pq.Size,
		TTL:           config.ParseDuration("persisted_queries.ttl", pq.TTL, 24*time.Hour),
		RedisAddress:  pq.RedisAddress,
		RedisPassword: pq.RedisPassword,
		RedisDB:       pq.RedisDB,
		KeyPrefix:     service + ":apq:",
		Name:          service,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s persisted query store: %w", backend, err)
	}
	return store, nil
}

// Run serves handler until ctx is cancelled, then shuts every server down
// within server.shutdown_timeout. Readiness flips to SERVING once all
// listeners are bound.
func Run(ctx context.Context, cfg *config.Config, service string, handler http.Handler) error {
	logger := config.GetLogger()

	httpServer := server.NewHTTPServer(cfg, handler)
	httpListener, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", httpServer.Addr, err)
	}
	if cfg.Server.MaxConnections > 0 {
		httpListener = netutil.LimitListener(httpListener, cfg.Server.MaxConnections)
	}

	health := grpcserver.NewHealthServer(service)
	var grpcListener net.Listener
	if cfg.GRPC.Enabled {
		address := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.GRPC.Port)
		grpcListener, err = net.Listen("tcp", address)
		if err != nil {
			_ = httpListener.Close()
			return fmt.Errorf("failed to listen on %s: %w", address, err)
		}
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewHTTPServer(cfg)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("address", httpListener.Addr().String()).Str("service", service).Msg("Starting GraphQL HTTP server")
		if err := httpServer.Serve(httpListener); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("graphql server: %w", err)
		}
		return nil
	})

	if grpcListener != nil {
		g.Go(func() error {
			logger.Info().Str("address", grpcListener.Addr().String()).Msg("Starting gRPC health server")
			if err := health.Serve(grpcListener); err != nil {
				return fmt.Errorf("grpc health server: %w", err)
			}
			return nil
		})
	}

	if metricsServer != nil {
		g.Go(func() error {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	health.SetReady(true)

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down")
		health.Shutdown()

		timeout := config.ParseDuration("server.shutdown_timeout", cfg.Server.ShutdownTimeout, 15*time.Second)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var errs []error
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("graphql server shutdown: %w", err))
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("Server stopped gracefully")
	return nil
}
