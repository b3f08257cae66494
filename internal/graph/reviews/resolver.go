package reviews

import (
	"github.com/rs/zerolog"

	"github.com/streamcat/lolomo/internal/config"
	"github.com/streamcat/lolomo/internal/graph/federation"
	"github.com/streamcat/lolomo/internal/models"
	"github.com/streamcat/lolomo/internal/reviews"
)

type Resolver struct {
	logger zerolog.Logger
}

func NewResolver() *Resolver {
	return &Resolver{logger: config.GetLogger()}
}

func (r *Resolver) RecentReviews() []*ReviewResolver {
	return reviewResolvers(reviews.Recent(), r.logger)
}

// Entities resolves Show stubs. Only the key is known here; the gateway
// fetches every other Show field from the lolomo subgraph.
func (r *Resolver) Entities(args struct{ Representations []federation.Representation }) ([]*EntityResolver, error) {
	result := make([]*EntityResolver, len(args.Representations))
	for i, rep := range args.Representations {
		if err := federation.CheckTypename(rep, "Show"); err != nil {
			return nil, err
		}
		ref, err := reviews.ResolveShowEntity(rep)
		if err != nil {
			r.logger.Debug().Err(err).Msg("Rejected Show representation")
			return nil, err
		}
		result[i] = &EntityResolver{show: &ShowResolver{ref: ref, logger: r.logger}}
	}
	return result, nil
}

type ShowResolver struct {
	ref    models.ShowRef
	logger zerolog.Logger
}

func (s *ShowResolver) ShowID() int32 {
	return int32(s.ref.ShowID)
}

func (s *ShowResolver) Reviews() []*ReviewResolver {
	s.logger.Info().Int("show_id", s.ref.ShowID).Msg("Get reviews for show")
	return reviewResolvers(reviews.ForShow(s.ref.ShowID), s.logger)
}

type ReviewResolver struct {
	review models.Review
	logger zerolog.Logger
}

func (r *ReviewResolver) Score() int32 { return int32(r.review.Score) }
func (r *ReviewResolver) Text() string { return r.review.Text }

// Show is null for reviews that carry no show reference.
func (r *ReviewResolver) Show() *ShowResolver {
	if r.review.ShowID == nil {
		return nil
	}
	return &ShowResolver{ref: models.ShowRef{ShowID: *r.review.ShowID}, logger: r.logger}
}

type EntityResolver struct {
	show *ShowResolver
}

func (e *EntityResolver) ToShow() (*ShowResolver, bool) {
	return e.show, e.show != nil
}

func reviewResolvers(list []models.Review, logger zerolog.Logger) []*ReviewResolver {
	result := make([]*ReviewResolver, len(list))
	for i, review := range list {
		result[i] = &ReviewResolver{review: review, logger: logger}
	}
	return result
}
