package catalog

import "github.com/streamcat/lolomo/internal/models"

// ResumeStrategy decides which shows appear in the "Continue Watching" row.
// Implementations receive the full catalog in load order and must not modify it.
type ResumeStrategy interface {
	ContinueWatching(shows []models.Show) []models.Show
}

// FixedPositions is a ResumeStrategy that picks catalog entries by load
// position, in the listed order. Positions past the end of the catalog are
// skipped.
type FixedPositions []int

// DefaultResumeStrategy stands in for per-viewer progress until real resume data exists.
var DefaultResumeStrategy ResumeStrategy = FixedPositions{9, 7, 0}

// ContinueWatching implements ResumeStrategy.
func (p FixedPositions) ContinueWatching(shows []models.Show) []models.Show {
	result := make([]models.Show, 0, len(p))
	for _, pos := range p {
		if pos < 0 || pos >= len(shows) {
			continue
		}
		result = append(result, shows[pos])
	}
	return result
}
