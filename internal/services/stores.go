package services

import (
	"context"

	"ewaste-recycle-backend/internal/models"
)

// SubmissionStore is the persistence contract for submissions. Implemented
// by repository.SubmissionRepository; tests use in-memory fakes.
type SubmissionStore interface {
	Create(ctx context.Context, sub *models.Submission) error
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Submission, error)
	ListByStatus(ctx context.Context, statuses []models.Status) ([]*models.Submission, error)
	UpdateStatus(ctx context.Context, id string, expected, target models.Status, pickup *models.Pickup) (*models.Submission, error)
	MarkNotificationRead(ctx context.Context, id string) error
}

// LedgerStore is the persistence contract for point credits.
type LedgerStore interface {
	Credit(ctx context.Context, userID, submissionID string, amount int) (bool, error)
	TotalFor(ctx context.Context, userID string) (int, error)
}

// NotificationStore is the persistence contract for notifications.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) (bool, error)
	ListUnread(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkRead(ctx context.Context, submissionID string) error
}

// UserStore is the persistence contract for users.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}
