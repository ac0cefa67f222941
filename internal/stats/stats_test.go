package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feedbackhq/feedback-api/internal/models"
)

func withRatings(ratings ...int) []models.Feedback {
	records := make([]models.Feedback, 0, len(ratings))
	for _, r := range ratings {
		records = append(records, models.Feedback{Rating: r})
	}
	return records
}

func TestAggregateEmpty(t *testing.T) {
	snapshot := Aggregate(nil)
	assert.Equal(t, models.StatsSnapshot{}, snapshot)

	snapshot = Aggregate([]models.Feedback{})
	assert.Equal(t, 0, snapshot.Total)
	assert.Equal(t, 0.0, snapshot.AverageRating)
	assert.Equal(t, 0, snapshot.Positive)
	assert.Equal(t, 0, snapshot.Negative)
}

func TestAggregateTotalMatchesInput(t *testing.T) {
	for _, ratings := range [][]int{
		{1},
		{1, 2, 3},
		{5, 5, 5, 5, 5},
		{1, 2, 3, 4, 5, 1, 2, 3, 4, 5},
	} {
		snapshot := Aggregate(withRatings(ratings...))
		assert.Equal(t, len(ratings), snapshot.Total)
	}
}

func TestAggregateBuckets(t *testing.T) {
	snapshot := Aggregate(withRatings(1, 2, 3, 4, 5))

	assert.Equal(t, 5, snapshot.Total)
	assert.Equal(t, 2, snapshot.Positive)
	assert.Equal(t, 2, snapshot.Negative)
	assert.Equal(t, 3.0, snapshot.AverageRating)
}

func TestAggregateRatingThreeInNeitherBucket(t *testing.T) {
	snapshot := Aggregate(withRatings(3, 3, 3))

	assert.Equal(t, 3, snapshot.Total)
	assert.Equal(t, 0, snapshot.Positive)
	assert.Equal(t, 0, snapshot.Negative)
	assert.Equal(t, 3.0, snapshot.AverageRating)
}

func TestAggregateBucketBounds(t *testing.T) {
	for _, ratings := range [][]int{
		{4, 4, 4},
		{1, 1, 5},
		{2, 3, 4},
		{3},
	} {
		snapshot := Aggregate(withRatings(ratings...))
		assert.GreaterOrEqual(t, snapshot.Positive, 0)
		assert.GreaterOrEqual(t, snapshot.Negative, 0)
		assert.LessOrEqual(t, snapshot.Positive, snapshot.Total)
		assert.LessOrEqual(t, snapshot.Negative, snapshot.Total)
		assert.LessOrEqual(t, snapshot.Positive+snapshot.Negative, snapshot.Total)
	}
}

func TestAggregateAverageRounding(t *testing.T) {
	cases := []struct {
		ratings []int
		want    float64
	}{
		{[]int{4, 5}, 4.5},
		{[]int{1, 1, 2}, 1.3},   // 1.333... rounds down
		{[]int{2, 3, 3}, 2.7},   // 2.666... rounds up
		{[]int{2, 2, 2, 3}, 2.3}, // 2.25 rounds half up
		{[]int{5}, 5.0},
	}

	for _, tc := range cases {
		snapshot := Aggregate(withRatings(tc.ratings...))
		assert.InDelta(t, tc.want, snapshot.AverageRating, 1e-9, "ratings %v", tc.ratings)
	}
}
