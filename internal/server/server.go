// Package server exposes a subgraph schema over HTTP.
package server

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/streamcat/lolomo/internal/config"
)

const (
	GraphQLPath  = "/graphql"
	GraphiQLPath = "/graphiql"
)

// Options describes the routes of one subgraph.
type Options struct {
	// Service names the subgraph in metrics, logs and the GraphiQL title.
	Service string
	GraphQL *Handler
	// Middleware wraps the GraphQL handler only, innermost first.
	Middleware []func(http.Handler) http.Handler
	GraphiQL   bool
}

// NewMux routes /graphql and, when enabled, /graphiql.
func NewMux(opts Options) *http.ServeMux {
	var h http.Handler = opts.GraphQL
	for _, mw := range opts.Middleware {
		h = mw(h)
	}

	mux := http.NewServeMux()
	mux.Handle(GraphQLPath, Compress(Recover(h)))
	if opts.GraphiQL {
		mux.Handle(GraphiQLPath, GraphiQL(opts.Service, GraphQLPath))
	}
	return mux
}

// NewHTTPServer creates the GraphQL HTTP server from the server config section.
func NewHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	readTimeout := config.ParseDuration("server.read_timeout", cfg.Server.ReadTimeout, 10*time.Second)
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
	}
}

// Recover turns a panic in next into a 500 and reports it to Sentry. Each
// request gets its own Sentry hub so that resolver panics reported deeper in
// the stack carry the request.
func Recover(next http.Handler) http.Handler {
	logger := config.GetLogger()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(r)
		ctx := sentry.SetHubOnContext(r.Context(), hub)

		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			logger.Error().
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Str("path", r.URL.Path).
				Msg("HTTP handler panicked")
			hub.RecoverWithContext(ctx, v)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
