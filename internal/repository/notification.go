package repository

import (
	"context"
	"fmt"

	"ewaste-recycle-backend/internal/models"
	"ewaste-recycle-backend/internal/workflow"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification. The UNIQUE (submission_id, status)
// constraint makes regeneration from transition history idempotent: a
// duplicate insert is a no-op. Returns whether a row was written.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) (bool, error) {
	query := `
		INSERT INTO notifications (id, submission_id, user_id, status, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (submission_id, status) DO NOTHING
	`
	result, err := r.db.Exec(ctx, query,
		n.ID, n.SubmissionID, n.UserID, string(n.Status), n.Message, n.Read, n.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create notification: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ListUnread retrieves a user's unread notifications, newest first
func (r *NotificationRepository) ListUnread(ctx context.Context, userID string) ([]*models.Notification, error) {
	query := `
		SELECT id, submission_id, user_id, status, message, read, created_at
		FROM notifications
		WHERE user_id = $1 AND read = false
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifs []*models.Notification
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(&n.ID, &n.SubmissionID, &n.UserID, &n.Status, &n.Message, &n.Read, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifs = append(notifs, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return notifs, nil
}

// MarkRead marks every notification for a submission as read
func (r *NotificationRepository) MarkRead(ctx context.Context, submissionID string) error {
	query := `UPDATE notifications SET read = true WHERE submission_id = $1`
	result, err := r.db.Exec(ctx, query, submissionID)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return workflow.ErrNotFound
	}
	return nil
}
