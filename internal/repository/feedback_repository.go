package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/feedbackhq/feedback-api/internal/models"
)

// FeedbackRepository manages persistence for feedback records. Records
// are append-only; there is no update or delete statement.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs a FeedbackRepository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create inserts a new feedback record, assigning its id and creation
// timestamp. Both are immutable afterwards.
func (r *FeedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO feedback (id, name, email, message, rating, created_at)
		VALUES (:id, :name, :email, :message, :rating, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, fb); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

// ListNewestFirst returns every feedback record ordered by creation time
// descending. The aggregator and the view engine both derive from this
// full set.
func (r *FeedbackRepository) ListNewestFirst(ctx context.Context) ([]models.Feedback, error) {
	const query = `SELECT id, name, email, message, rating, created_at FROM feedback ORDER BY created_at DESC`
	records := []models.Feedback{}
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return records, nil
}

// Count returns the number of stored records.
func (r *FeedbackRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM feedback`); err != nil {
		return 0, fmt.Errorf("count feedback: %w", err)
	}
	return total, nil
}
