package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerRepository handles database operations for point credits
type LedgerRepository struct {
	db *pgxpool.Pool
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Credit records a point award keyed by submission id. The submission id is
// the idempotency key: a second credit for the same submission is a no-op
// and the cached user total is only bumped on first insert. The submission
// row's points column is stamped in the same transaction, so it never
// disagrees with the ledger. Returns whether this call actually credited.
func (r *LedgerRepository) Credit(ctx context.Context, userID, submissionID string, amount int) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin credit transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		INSERT INTO point_credits (submission_id, user_id, amount, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (submission_id) DO NOTHING
	`, submissionID, userID, amount, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to insert point credit: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Already credited for this submission.
		return false, nil
	}

	_, err = tx.Exec(ctx, `UPDATE users SET eco_points = eco_points + $1 WHERE id = $2`, amount, userID)
	if err != nil {
		return false, fmt.Errorf("failed to update user points: %w", err)
	}

	_, err = tx.Exec(ctx, `UPDATE submissions SET points = $1 WHERE id = $2`, amount, submissionID)
	if err != nil {
		return false, fmt.Errorf("failed to stamp submission points: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit credit transaction: %w", err)
	}
	return true, nil
}

// TotalFor sums the credited points for a user
func (r *LedgerRepository) TotalFor(ctx context.Context, userID string) (int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM point_credits WHERE user_id = $1`, userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to total points: %w", err)
	}
	return total, nil
}
