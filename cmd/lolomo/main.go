package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/streamcat/lolomo/internal/app"
	"github.com/streamcat/lolomo/internal/artwork"
	"github.com/streamcat/lolomo/internal/catalog"
	"github.com/streamcat/lolomo/internal/config"
	"github.com/streamcat/lolomo/internal/graph"
	"github.com/streamcat/lolomo/internal/graph/lolomo"
	"github.com/streamcat/lolomo/internal/loader"
	"github.com/streamcat/lolomo/internal/server"
)

func main() {
	cfg := config.GetConfig()
	logger := config.GetLogger()
	service := app.ServiceName(cfg, "lolomo")

	logger.Info().
		Str("service", service).
		Str("catalog_path", cfg.Catalog.Path).
		Int("server_port", cfg.Server.Port).
		Str("server_address", cfg.Server.Address).
		Bool("persisted_queries", cfg.PersistedQueries.Enabled).
		Msg("Application started with configuration")

	flush := app.InitSentry(cfg, service)
	defer flush()

	shows, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load catalog")
	}

	gen := artwork.NewGenerator()
	schema, err := lolomo.NewSchema(shows, gen, graph.SchemaOptions(cfg)...)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build schema")
	}

	store, err := app.NewPersistedStore(cfg, service)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create persisted query store")
	}
	if store != nil {
		defer store.Close()
	}

	mux := server.NewMux(server.Options{
		Service:    service,
		GraphQL:    server.NewHandler(service, schema, store),
		Middleware: []func(http.Handler) http.Handler{loader.Middleware(gen, loader.OptionsFromConfig(cfg))},
		GraphiQL:   cfg.GraphQL.GraphiQL,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, service, mux); err != nil {
		logger.Error().Err(err).Msg("Server stopped with error")
		flush()
		os.Exit(1)
	}
}
