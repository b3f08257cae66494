package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/streamcat/lolomo/internal/app"
	"github.com/streamcat/lolomo/internal/config"
	"github.com/streamcat/lolomo/internal/graph"
	"github.com/streamcat/lolomo/internal/graph/reviews"
	"github.com/streamcat/lolomo/internal/server"
)

func main() {
	cfg := config.GetConfig()
	logger := config.GetLogger()
	service := app.ServiceName(cfg, "reviews")

	logger.Info().
		Str("service", service).
		Int("server_port", cfg.Server.Port).
		Str("server_address", cfg.Server.Address).
		Bool("persisted_queries", cfg.PersistedQueries.Enabled).
		Msg("Application started with configuration")

	flush := app.InitSentry(cfg, service)
	defer flush()

	schema, err := reviews.NewSchema(graph.SchemaOptions(cfg)...)
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
		Service:  service,
		GraphQL:  server.NewHandler(service, schema, store),
		GraphiQL: cfg.GraphQL.GraphiQL,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, service, mux); err != nil {
		logger.Error().Err(err).Msg("Server stopped with error")
		flush()
		os.Exit(1)
	}
}
