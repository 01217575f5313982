package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ewaste-recycle-backend/internal/models"
	"ewaste-recycle-backend/internal/workflow"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TransitionEvent is emitted by the workflow engine after every successful
// status change.
type TransitionEvent struct {
	Submission *models.Submission
	From       models.Status
	To         models.Status
}

// NotificationService derives owner-facing notices from transition events.
// Notifications are derived data: regeneration is keyed by
// (submission id, target status), so replaying history is safe.
type NotificationService struct {
	store    NotificationStore
	subStore SubmissionStore
	users    UserStore
	push     *PushService
}

// NewNotificationService creates a new notification service
func NewNotificationService(store NotificationStore, subStore SubmissionStore, users UserStore, push *PushService) *NotificationService {
	return &NotificationService{
		store:    store,
		subStore: subStore,
		users:    users,
		push:     push,
	}
}

// HandleTransition records a notification for edges that notify the owner.
// Duplicate events for the same (submission, status) are dropped by the
// store, so an identical reschedule does not notify twice.
func (s *NotificationService) HandleTransition(ctx context.Context, event TransitionEvent) {
	if !workflow.Notifies(event.To) {
		return
	}

	sub := event.Submission
	notification := &models.Notification{
		ID:           uuid.New().String(),
		SubmissionID: sub.ID,
		UserID:       sub.OwnerID,
		Status:       sub.Status,
		Message:      messageFor(sub),
		Read:         false,
		CreatedAt:    time.Now(),
	}

	created, err := s.store.Create(ctx, notification)
	if err != nil {
		log.Error().Err(err).Str("submission_id", sub.ID).Msg("Failed to create notification")
		return
	}
	if !created {
		log.Debug().
			Str("submission_id", sub.ID).
			Str("status", string(sub.Status)).
			Msg("Notification already exists, skipping")
		return
	}

	log.Info().
		Str("submission_id", sub.ID).
		Str("user_id", sub.OwnerID).
		Str("status", string(sub.Status)).
		Msg("Notification created")

	s.pushToOwner(ctx, sub.OwnerID, notification.Message)
}

// ListUnread returns a user's unread notifications
func (s *NotificationService) ListUnread(ctx context.Context, userID string) ([]*models.Notification, error) {
	return s.store.ListUnread(ctx, userID)
}

// MarkRead marks a submission's notifications as read and flips the
// acknowledged flag on the submission itself. Only the owner may acknowledge.
func (s *NotificationService) MarkRead(ctx context.Context, userID, submissionID string) error {
	sub, err := s.subStore.GetByID(ctx, submissionID)
	if err != nil {
		return err
	}
	if sub.OwnerID != userID {
		return workflow.ErrInvalidActor
	}

	if err := s.store.MarkRead(ctx, submissionID); err != nil && !errors.Is(err, workflow.ErrNotFound) {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return s.subStore.MarkNotificationRead(ctx, submissionID)
}

func (s *NotificationService) pushToOwner(ctx context.Context, ownerID, message string) {
	if s.push == nil || s.users == nil {
		return
	}
	user, err := s.users.GetByID(ctx, ownerID)
	if err != nil || user.PushToken == nil {
		return
	}
	s.push.Send(ctx, *user.PushToken, message)
}

// messageFor renders the user-facing notice for a submission's status
func messageFor(sub *models.Submission) string {
	item := sub.ItemName
	if item == "" {
		item = "an item"
	}

	switch sub.Status {
	case models.StatusAccepted:
		return fmt.Sprintf("Your request for '%s' has been accepted!", item)
	case models.StatusPickupScheduled:
		return fmt.Sprintf("Your request for pickup of '%s' is scheduled!", item)
	case models.StatusDone:
		return fmt.Sprintf("Pickup completed for '%s'. Thank you for recycling!", item)
	}
	return ""
}
