package artwork

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/streamcat/lolomo/internal/config"
	"github.com/streamcat/lolomo/internal/metrics"
)

const extension = ".jpg"

// Generator produces artwork URLs for show titles.
//
// URLs have the form "<uuid>-<slug>.jpg" where slug is the lower-cased title
// with spaces replaced by hyphens. A fresh token is drawn for every
// generation, so the same title never yields the same URL twice.
type Generator struct {
	newToken func() string
	logger   zerolog.Logger
}

// NewGenerator creates a generator backed by random UUIDs.
func NewGenerator() *Generator {
	return &Generator{
		newToken: func() string { return uuid.NewString() },
		logger:   config.GetLogger(),
	}
}

// Generate returns a new artwork URL for a single title.
func (g *Generator) Generate(title string) string {
	g.logger.Debug().Str("title", title).Msg("Generating artwork")
	metrics.ArtworkGeneratedTotal.Inc()
	return g.newToken() + "-" + Slug(title) + extension
}

// BatchGenerate returns one artwork URL per distinct title.
func (g *Generator) BatchGenerate(titles []string) map[string]string {
	g.logger.Info().Strs("titles", titles).Msg("Generating artworks")
	metrics.ArtworkBatchesTotal.Inc()
	metrics.ArtworkBatchSize.Observe(float64(len(titles)))

	result := make(map[string]string, len(titles))
	for _, title := range titles {
		if _, seen := result[title]; seen {
			continue
		}
		result[title] = g.Generate(title)
	}
	return result
}

// Slug lower-cases title and replaces spaces with hyphens.
func Slug(title string) string {
	return strings.ReplaceAll(cases.Lower(language.Und).String(title), " ", "-")
}
