package catalog

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/streamcat/lolomo/internal/apperrors"
	"github.com/streamcat/lolomo/internal/models"
)

// top10Size is the number of leading catalog entries shown in the "Top 10" row.
const top10Size = 10

// Catalog is the ordered, immutable set of shows served by the lolomo service.
// It is built once before serving starts and only read afterwards, so it is
// safe for concurrent use without locking.
type Catalog struct {
	shows  []models.Show
	folded []string    // case-folded titles, index-aligned with shows
	index  map[int]int // show ID -> position in shows
	resume ResumeStrategy
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithResumeStrategy replaces the strategy behind the "Continue Watching" row.
func WithResumeStrategy(s ResumeStrategy) Option {
	return func(c *Catalog) {
		if s != nil {
			c.resume = s
		}
	}
}

// New builds a catalog from shows, preserving their order. Show IDs must be unique.
func New(shows []models.Show, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		shows:  make([]models.Show, len(shows)),
		folded: make([]string, len(shows)),
		index:  make(map[int]int, len(shows)),
		resume: DefaultResumeStrategy,
	}

	fold := cases.Fold()
	for i, show := range shows {
		if prev, dup := c.index[show.ShowID]; dup {
			return nil, fmt.Errorf("duplicate showId %d at positions %d and %d", show.ShowID, prev, i)
		}
		c.shows[i] = cloneShow(show)
		c.folded[i] = fold.String(show.Title)
		c.index[show.ShowID] = i
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Len returns the number of shows in the catalog.
func (c *Catalog) Len() int {
	return len(c.shows)
}

// AllShows returns every show in load order. The returned shows are copies.
func (c *Catalog) AllShows() []models.Show {
	return cloneShows(c.shows)
}

// ByCategory returns the shows of a lolomo row.
//
// "Top 10" is the first ten shows in load order and "Continue Watching" is
// delegated to the resume strategy. Any other name filters by category
// membership, preserving catalog order. Unknown names yield an empty slice.
func (c *Catalog) ByCategory(name string) []models.Show {
	switch name {
	case models.CategoryTop10:
		return cloneShows(c.shows[:min(top10Size, len(c.shows))])
	case models.CategoryContinueWatching:
		return cloneShows(c.resume.ContinueWatching(c.shows))
	}

	result := make([]models.Show, 0)
	for _, show := range c.shows {
		if show.InCategory(name) {
			result = append(result, cloneShow(show))
		}
	}
	return result
}

// ByID returns the show with the given ID, or *apperrors.ErrNotFound.
func (c *Catalog) ByID(id int) (models.Show, error) {
	i, ok := c.index[id]
	if !ok {
		return models.Show{}, apperrors.NewShowNotFoundError(id)
	}
	return cloneShow(c.shows[i]), nil
}

// Search returns the shows whose title starts with titlePrefix, ignoring case,
// in catalog order.
func (c *Catalog) Search(titlePrefix string) []models.Show {
	needle := cases.Fold().String(titlePrefix)

	result := make([]models.Show, 0)
	for i, title := range c.folded {
		if strings.HasPrefix(title, needle) {
			result = append(result, cloneShow(c.shows[i]))
		}
	}
	return result
}

// cloneShow copies show so callers never share a Categories array with the
// catalog.
func cloneShow(show models.Show) models.Show {
	show.Categories = slices.Clone(show.Categories)
	return show
}

func cloneShows(shows []models.Show) []models.Show {
	result := make([]models.Show, len(shows))
	for i, show := range shows {
		result[i] = cloneShow(show)
	}
	return result
}
