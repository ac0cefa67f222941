// Package stats derives the aggregate summary from the full record set.
package stats

import (
	"math"

	"github.com/feedbackhq/feedback-api/internal/models"
)

// Aggregate computes the summary snapshot in a single pass: total count,
// mean rating rounded half-up to one decimal, and the threshold counters
// (rating >= 4 positive, rating < 3 negative; a rating of exactly 3
// counts toward neither). An empty input yields the all-zero snapshot.
//
// Callers must feed the authoritative record set on every call; the
// snapshot carries no incremental state and is never cached.
func Aggregate(records []models.Feedback) models.StatsSnapshot {
	if len(records) == 0 {
		return models.StatsSnapshot{}
	}

	snapshot := models.StatsSnapshot{Total: len(records)}
	sum := 0
	for _, rec := range records {
		sum += rec.Rating
		if rec.Rating >= 4 {
			snapshot.Positive++
		}
		if rec.Rating < 3 {
			snapshot.Negative++
		}
	}

	snapshot.AverageRating = roundToTenth(float64(sum) / float64(snapshot.Total))
	return snapshot
}

// roundToTenth rounds half-up to one decimal place.
func roundToTenth(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
