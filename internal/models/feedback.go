package models

import "time"

// Feedback is one user-submitted rating+comment entry. Records are
// immutable once created; there is no update or delete path.
type Feedback struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Message   string    `json:"message" db:"message"`
	Rating    int       `json:"rating" db:"rating"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// StatsSnapshot is the aggregate summary derived from all current
// records. It is recomputed per request and never persisted.
type StatsSnapshot struct {
	Total         int     `json:"total"`
	AverageRating float64 `json:"averageRating"`
	Positive      int     `json:"positive"`
	Negative      int     `json:"negative"`
}

// SubmissionInput carries a candidate feedback submission prior to
// validation. Rating 0 means "not yet selected", distinct from an
// out-of-range numeric rating.
type SubmissionInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Rating  int    `json:"rating"`
}
