package handlers

import (
	"net/http"

	"ewaste-recycle-backend/internal/middleware"
	"ewaste-recycle-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// ListUnread handles GET /api/v1/notifications
func (h *NotificationHandler) ListUnread(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	notifs, err := h.notificationService.ListUnread(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list notifications")
		respondWorkflowError(w, err)
		return
	}

	respondJSON(w, map[string]interface{}{
		"notifications": notifs,
		"total":         len(notifs),
	}, http.StatusOK)
}

// MarkRead handles POST /api/v1/notifications/{submission_id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	submissionID := chi.URLParam(r, "submission_id")

	if err := h.notificationService.MarkRead(ctx, userID, submissionID); err != nil {
		log.Error().Err(err).Str("submission_id", submissionID).Msg("Failed to mark notification read")
		respondWorkflowError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
