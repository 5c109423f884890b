package database

import (
	"context"
	"time"

	"github.com/example/vocab/pkg/models"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// QuizResultRepository handles database operations for finished session summaries
type QuizResultRepository struct {
	db *sqlx.DB
}

// NewQuizResultRepository creates a new repository instance
func NewQuizResultRepository(db *sqlx.DB) *QuizResultRepository {
	return &QuizResultRepository{db: db}
}

// Create inserts a new quiz result
func (r *QuizResultRepository) Create(ctx context.Context, result *models.QuizResult) error {
	if result.FinishedAt.IsZero() {
		result.FinishedAt = time.Now()
	}
	if result.StartedAt.IsZero() {
		result.StartedAt = result.FinishedAt
	}

	query := r.db.Rebind(`
		INSERT INTO quiz_results (session_id, mode, total, correct, wrong, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		result.SessionID,
		result.Mode,
		result.Total,
		result.Correct,
		result.Wrong,
		result.StartedAt.UTC(),
		result.FinishedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Wrapf(ErrDuplicate, "session %s", result.SessionID)
		}
		return errors.Wrap(err, "failed to create quiz result")
	}

	return r.db.GetContext(ctx, &result.ID,
		r.db.Rebind("SELECT id FROM quiz_results WHERE session_id = ?"), result.SessionID)
}

// Recent returns the latest results, newest first
func (r *QuizResultRepository) Recent(ctx context.Context, limit int) ([]models.QuizResult, error) {
	results := []models.QuizResult{}
	query := r.db.Rebind(`
		SELECT id, session_id, mode, total, correct, wrong, started_at, finished_at
		FROM quiz_results
		ORDER BY finished_at DESC, id DESC
		LIMIT ?
	`)
	if err := r.db.SelectContext(ctx, &results, query, limit); err != nil {
		return nil, errors.Wrap(err, "failed to get quiz results")
	}
	return results, nil
}

// ModeStats aggregates the results of one session mode
type ModeStats struct {
	Mode     models.SessionMode `db:"mode"`
	Sessions int                `db:"sessions"`
	Total    int                `db:"total"`
	Correct  int                `db:"correct"`
}

// StatsByMode returns session counts and answer totals per mode since the given time
func (r *QuizResultRepository) StatsByMode(ctx context.Context, since time.Time) ([]ModeStats, error) {
	stats := []ModeStats{}
	query := r.db.Rebind(`
		SELECT mode, COUNT(*) AS sessions, COALESCE(SUM(total), 0) AS total, COALESCE(SUM(correct), 0) AS correct
		FROM quiz_results
		WHERE finished_at >= ?
		GROUP BY mode
		ORDER BY mode
	`)
	if err := r.db.SelectContext(ctx, &stats, query, since.UTC()); err != nil {
		return nil, errors.Wrap(err, "failed to get quiz statistics")
	}
	return stats, nil
}
