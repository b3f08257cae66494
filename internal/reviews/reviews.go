// Package reviews fabricates the reviews served by the reviews subgraph.
// Nothing is persisted: every call builds fresh values.
package reviews

import (
	"fmt"

	"github.com/streamcat/lolomo/internal/graph/federation"
	"github.com/streamcat/lolomo/internal/models"
)

// ForShow returns the reviews of a single show.
func ForShow(showID int) []models.Review {
	id := showID
	return []models.Review{
		{Score: 5, Text: fmt.Sprintf("Great show %d", showID), ShowID: &id},
	}
}

// Recent returns the fixed set of recent reviews, spanning several shows.
func Recent() []models.Review {
	return []models.Review{
		{Score: 5, Text: "Great show", ShowID: intPtr(1)},
		{Score: 1, Text: "Not enough commercials", ShowID: intPtr(2)},
		{Score: 3, Text: "Too scary", ShowID: intPtr(3)},
	}
}

// ResolveShowEntity turns a federated Show representation into a local
// reference. Only the showId key is read; other fields are left for the
// owning service.
func ResolveShowEntity(representation map[string]any) (models.ShowRef, error) {
	id, err := federation.IntKey(representation, "Show", "showId")
	if err != nil {
		return models.ShowRef{}, err
	}
	return models.ShowRef{ShowID: id}, nil
}

func intPtr(i int) *int {
	return &i
}
