package models

// Review is a user review of a show. ShowID is nil when the review carries
// no show reference.
type Review struct {
	Score  int    `json:"score"`
	Text   string `json:"text"`
	ShowID *int   `json:"showId,omitempty"`
}

// ShowRef is the reviews service view of a Show entity owned by the lolomo
// service: only the key is known locally.
type ShowRef struct {
	ShowID int `json:"showId"`
}
