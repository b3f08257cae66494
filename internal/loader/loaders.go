package loader

import (
	"context"
	"net/http"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/streamcat/lolomo/internal/artwork"
	"github.com/streamcat/lolomo/internal/config"
)

type contextKey struct{}

// Options tunes the batch window of every loader.
type Options struct {
	// Wait is how long a loader collects keys before dispatching a batch.
	Wait time.Duration
	// BatchCapacity caps the keys per batch. Zero means unbounded.
	BatchCapacity int
}

// DefaultOptions matches the defaults of the artwork config section.
var DefaultOptions = Options{Wait: 2 * time.Millisecond, BatchCapacity: 100}

// OptionsFromConfig reads the artwork batching settings.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions
	if cfg == nil {
		return opts
	}
	opts.Wait = config.ParseDuration("artwork.batch_wait", cfg.Artwork.BatchWait, DefaultOptions.Wait)
	if cfg.Artwork.BatchCapacity > 0 {
		opts.BatchCapacity = cfg.Artwork.BatchCapacity
	}
	return opts
}

// Loaders holds the request-scoped loaders. A fresh value must be created for
// every request so that cached values never leak between requests.
type Loaders struct {
	Artwork *dataloader.Loader[string, string]
}

// New creates the loaders for one request.
func New(gen *artwork.Generator, opts Options) *Loaders {
	return &Loaders{
		Artwork: newLoader(artworkBatch(gen), opts),
	}
}

func newLoader[K comparable, V any](fn MappedBatchFunc[K, V], opts Options) *dataloader.Loader[K, V] {
	loaderOpts := []dataloader.Option[K, V]{
		dataloader.WithWait[K, V](opts.Wait),
	}
	if opts.BatchCapacity > 0 {
		loaderOpts = append(loaderOpts, dataloader.WithBatchCapacity[K, V](opts.BatchCapacity))
	}
	return dataloader.NewBatchedLoader(toBatchFunc(fn), loaderOpts...)
}

func artworkBatch(gen *artwork.Generator) MappedBatchFunc[string, string] {
	return func(_ context.Context, titles []string) (map[string]string, error) {
		return gen.BatchGenerate(titles), nil
	}
}

// WithLoaders attaches loaders to ctx.
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the loaders attached to ctx, or nil.
func FromContext(ctx context.Context) *Loaders {
	l, _ := ctx.Value(contextKey{}).(*Loaders)
	return l
}

// Middleware attaches a fresh set of loaders to every request.
func Middleware(gen *artwork.Generator, opts Options) func(http.Handler) http.Handler {
	logger := config.GetLogger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debug().Str("path", r.URL.Path).Msg("Attaching request loaders")
			ctx := WithLoaders(r.Context(), New(gen, opts))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
