package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/streamcat/lolomo/internal/apperrors"
	"github.com/streamcat/lolomo/internal/config"
	"github.com/streamcat/lolomo/internal/metrics"
	"github.com/streamcat/lolomo/internal/models"
)

//go:embed shows.json
var bundledShows []byte

const bundledSource = "embedded shows.json"

// Format is the encoding of a catalog document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFromPath infers the catalog format from a file extension. Anything
// that is not .yaml/.yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load builds the catalog from path, or from the bundled shows.json when path
// is empty. Every failure is returned as *apperrors.ErrCatalogLoad and must
// stop the service from starting.
func Load(path string, opts ...Option) (*Catalog, error) {
	logger := config.GetLogger()

	source := bundledSource
	data := bundledShows
	format := FormatJSON
	if path != "" {
		source = path
		format = FormatFromPath(path)
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, &apperrors.ErrCatalogLoad{Source: source, Err: err}
		}
	}

	shows, err := Decode(data, format)
	if err != nil {
		return nil, &apperrors.ErrCatalogLoad{Source: source, Err: err}
	}

	c, err := New(shows, opts...)
	if err != nil {
		return nil, &apperrors.ErrCatalogLoad{Source: source, Err: err}
	}

	metrics.CatalogShows.Set(float64(c.Len()))
	logger.Info().Str("source", source).Int("shows", c.Len()).Msg("Catalog loaded")
	return c, nil
}

// Decode parses a catalog document. An empty catalog is an error: serving
// "Top 10" from nothing is a misconfiguration, not a valid state.
func Decode(data []byte, format Format) ([]models.Show, error) {
	var shows []models.Show
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &shows); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &shows); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	}

	if len(shows) == 0 {
		return nil, errors.New("catalog contains no shows")
	}
	for i, show := range shows {
		if show.Title == "" {
			return nil, fmt.Errorf("show at position %d (showId %d) has no title", i, show.ShowID)
		}
		// GraphQL Int is a signed 32-bit integer.
		if show.ShowID > math.MaxInt32 || show.ShowID < math.MinInt32 {
			return nil, fmt.Errorf("show at position %d has showId %d outside the GraphQL Int range", i, show.ShowID)
		}
	}
	return shows, nil
}
