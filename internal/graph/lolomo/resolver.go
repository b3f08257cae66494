package lolomo

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/streamcat/lolomo/internal/artwork"
	"github.com/streamcat/lolomo/internal/catalog"
	"github.com/streamcat/lolomo/internal/config"
	"github.com/streamcat/lolomo/internal/graph/federation"
	"github.com/streamcat/lolomo/internal/loader"
	"github.com/streamcat/lolomo/internal/models"
)

// rows are the lolomo rows, in display order.
var rows = []string{models.CategoryTop10, models.CategoryContinueWatching}

// Resolver is the root query resolver.
type Resolver struct {
	catalog *catalog.Catalog
	artwork *artwork.Generator
	logger  zerolog.Logger
}

// NewResolver creates the root resolver. gen is only used for requests that
// carry no loaders.
func NewResolver(c *catalog.Catalog, gen *artwork.Generator) *Resolver {
	return &Resolver{
		catalog: c,
		artwork: gen,
		logger:  config.GetLogger(),
	}
}

func (r *Resolver) Lolomo() []*ShowCategoryResolver {
	result := make([]*ShowCategoryResolver, len(rows))
	for i, name := range rows {
		result[i] = &ShowCategoryResolver{
			id:    int32(i + 1),
			name:  name,
			shows: r.shows(r.catalog.ByCategory(name)),
		}
	}
	return result
}

func (r *Resolver) Search(args struct{ Filter struct{ Title string } }) []*ShowResolver {
	found := r.catalog.Search(args.Filter.Title)
	r.logger.Debug().Str("prefix", args.Filter.Title).Int("results", len(found)).Msg("Search")
	return r.shows(found)
}

func (r *Resolver) Show(args struct{ ShowID int32 }) (*ShowResolver, error) {
	show, err := r.catalog.ByID(int(args.ShowID))
	if err != nil {
		return nil, err
	}
	return r.show(show), nil
}

// Entities resolves Show references sent by the gateway. Unknown ids resolve
// to null entries.
func (r *Resolver) Entities(args struct{ Representations []federation.Representation }) ([]*EntityResolver, error) {
	result := make([]*EntityResolver, len(args.Representations))
	for i, rep := range args.Representations {
		if err := federation.CheckTypename(rep, "Show"); err != nil {
			return nil, err
		}
		id, err := federation.IntKey(rep, "Show", "showId")
		if err != nil {
			return nil, err
		}
		show, err := r.catalog.ByID(id)
		if err != nil {
			r.logger.Debug().Int("show_id", id).Msg("Entity reference to unknown show")
			continue
		}
		result[i] = &EntityResolver{show: r.show(show)}
	}
	return result, nil
}

func (r *Resolver) show(s models.Show) *ShowResolver {
	return &ShowResolver{show: s, fallback: r.artwork}
}

func (r *Resolver) shows(shows []models.Show) []*ShowResolver {
	result := make([]*ShowResolver, len(shows))
	for i, s := range shows {
		result[i] = r.show(s)
	}
	return result
}

type ShowCategoryResolver struct {
	id    int32
	name  string
	shows []*ShowResolver
}

func (c *ShowCategoryResolver) ID() int32              { return c.id }
func (c *ShowCategoryResolver) Name() string           { return c.name }
func (c *ShowCategoryResolver) Shows() []*ShowResolver { return c.shows }

type ShowResolver struct {
	show     models.Show
	fallback *artwork.Generator
}

func (s *ShowResolver) ShowID() int32 { return int32(s.show.ShowID) }
func (s *ShowResolver) Title() string { return s.show.Title }

func (s *ShowResolver) Categories() []string {
	if s.show.Categories == nil {
		return []string{}
	}
	return s.show.Categories
}

// ArtworkURL goes through the request's artwork loader so that every show in
// a response shares one batch.
func (s *ShowResolver) ArtworkURL(ctx context.Context) (*string, error) {
	loaders := loader.FromContext(ctx)
	if loaders == nil {
		url := s.fallback.Generate(s.show.Title)
		return &url, nil
	}

	url, err := loaders.Artwork.Load(ctx, s.show.Title)()
	if err != nil {
		return nil, err
	}
	return &url, nil
}

// EntityResolver resolves the _Entity union.
type EntityResolver struct {
	show *ShowResolver
}

func (e *EntityResolver) ToShow() (*ShowResolver, bool) {
	return e.show, e.show != nil
}
