package handlers

import (
	"net/http"

	"ewaste-recycle-backend/internal/middleware"
	"ewaste-recycle-backend/internal/models"
	"ewaste-recycle-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for MVP
	},
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub               *services.WSHub
	userService       *services.UserService
	submissionService *services.SubmissionService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *services.WSHub,
	userService *services.UserService,
	submissionService *services.SubmissionService,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:               hub,
		userService:       userService,
		submissionService: submissionService,
	}
}

// HandleWebSocket handles WebSocket connections. Organization clients get a
// snapshot of open submissions on connect and live transition events after
// that; user clients only receive events about their own submissions.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Get token from query parameter
	token := r.URL.Query().Get("token")
	userID, role, err := middleware.ValidateWebSocketToken(token, h.userService)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	// Upgrade connection
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.hub.Register(userID, role, conn)
	defer h.hub.Unregister(userID, conn)

	// Organizations start from the current triage queue.
	if role == models.RoleOrganization {
		subs, err := h.submissionService.ListOpen(r.Context())
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to load open submissions")
		} else {
			snapshot := services.WSMessage{
				Type: "snapshot",
				Data: subs,
			}
			if err := h.hub.SendToUser(userID, snapshot); err != nil {
				log.Error().Err(err).Str("user_id", userID).Msg("Failed to send snapshot")
			}
		}
	}

	log.Info().Str("user_id", userID).Str("role", string(role)).Msg("WebSocket connection established")

	// The feed is one-way: the read loop only keeps the connection alive
	// and detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}
	}
}
