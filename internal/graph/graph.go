// Package graph holds what the lolomo and reviews subgraphs share when
// building their executable schemas.
package graph

import (
	"context"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/rs/zerolog"

	"github.com/streamcat/lolomo/internal/config"
)

// PanicLogger reports resolver panics to the log and to Sentry. The executor
// turns the panic into a GraphQL error; the process keeps serving.
type PanicLogger struct {
	logger zerolog.Logger
}

// NewPanicLogger creates a PanicLogger using the shared logger.
func NewPanicLogger() *PanicLogger {
	return &PanicLogger{logger: config.GetLogger()}
}

// LogPanic implements the graphql-go log.Logger interface.
func (l *PanicLogger) LogPanic(ctx context.Context, value interface{}) {
	l.logger.Error().
		Interface("panic", value).
		Bytes("stack", debug.Stack()).
		Msg("GraphQL resolver panicked")

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.Recover(value)
}

// SchemaOptions returns the executor options shared by both subgraphs.
func SchemaOptions(cfg *config.Config) []graphql.SchemaOpt {
	opts := []graphql.SchemaOpt{
		graphql.UseFieldResolvers(),
		graphql.Logger(NewPanicLogger()),
	}
	if cfg == nil {
		return opts
	}
	if cfg.GraphQL.MaxParallelism > 0 {
		opts = append(opts, graphql.MaxParallelism(cfg.GraphQL.MaxParallelism))
	}
	if cfg.GraphQL.MaxDepth > 0 {
		opts = append(opts, graphql.MaxDepth(cfg.GraphQL.MaxDepth))
	}
	return opts
}
