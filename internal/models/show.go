package models

// Category names that are computed from catalog position rather than membership.
const (
	CategoryTop10            = "Top 10"
	CategoryContinueWatching = "Continue Watching"
)

// Show represents a title in the catalog. Shows are immutable once loaded.
type Show struct {
	ShowID     int      `json:"showId" yaml:"showId"`
	Title      string   `json:"title" yaml:"title"`
	Categories []string `json:"categories" yaml:"categories"`
}

// InCategory reports whether the show is tagged with the given category.
func (s Show) InCategory(name string) bool {
	for _, c := range s.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// ShowCategory is one row of the lolomo (list of lists of movies)
type ShowCategory struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Shows []Show `json:"shows"`
}
