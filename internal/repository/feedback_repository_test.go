package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedbackhq/feedback-api/internal/models"
)

func newFeedbackRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestFeedbackRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newFeedbackRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectExec("INSERT INTO feedback").
		WithArgs(sqlmock.AnyArg(), "Jane Doe", "jane@example.com", "Great service, thank you", 5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.Feedback{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Message: "Great service, thank you",
		Rating:  5,
	}
	require.NoError(t, repo.Create(context.Background(), record))

	assert.NotEmpty(t, record.ID)
	assert.False(t, record.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryCreateKeepsAssignedFields(t *testing.T) {
	db, mock, cleanup := newFeedbackRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO feedback").
		WithArgs("fixed-id", "Jane Doe", "jane@example.com", "Great service, thank you", 5, created).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.Feedback{
		ID:        "fixed-id",
		Name:      "Jane Doe",
		Email:     "jane@example.com",
		Message:   "Great service, thank you",
		Rating:    5,
		CreatedAt: created,
	}
	require.NoError(t, repo.Create(context.Background(), record))
	assert.Equal(t, "fixed-id", record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryListNewestFirst(t *testing.T) {
	db, mock, cleanup := newFeedbackRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "email", "message", "rating", "created_at"}).
		AddRow("f2", "Bob", "bob@example.com", "Could be better overall", 2, now).
		AddRow("f1", "Alice", "alice@example.com", "Really enjoyed using this", 5, now.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, message, rating, created_at FROM feedback ORDER BY created_at DESC")).
		WillReturnRows(rows)

	records, err := repo.ListNewestFirst(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "f2", records[0].ID)
	assert.Equal(t, "f1", records[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryListEmpty(t *testing.T) {
	db, mock, cleanup := newFeedbackRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectQuery("SELECT id, name, email, message, rating, created_at FROM feedback").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "message", "rating", "created_at"}))

	records, err := repo.ListNewestFirst(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryCount(t *testing.T) {
	db, mock, cleanup := newFeedbackRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM feedback")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
