package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"ewaste-recycle-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type         string        `json:"type"`
	SubmissionID string        `json:"submission_id,omitempty"`
	Status       models.Status `json:"status,omitempty"`
	Message      string        `json:"message,omitempty"`
	Data         interface{}   `json:"data,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	role models.Role
}

// WSHub manages WebSocket connections. Organization dashboards subscribe to
// a live feed of status transitions instead of polling the store.
type WSHub struct {
	mu      sync.RWMutex
	clients map[string]*wsClient
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		clients: make(map[string]*wsClient),
	}
}

// Register registers a new WebSocket connection for a principal
func (h *WSHub) Register(userID string, role models.Role, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Close existing connection if any
	if existing, exists := h.clients[userID]; exists {
		existing.conn.Close()
	}

	h.clients[userID] = &wsClient{conn: conn, role: role}

	log.Info().Str("user_id", userID).Str("role", string(role)).Msg("WebSocket connection registered")
}

// Unregister removes a WebSocket connection for a principal. The connection
// identity is checked so a handler tearing down after a reconnect does not
// remove the replacement connection.
func (h *WSHub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, exists := h.clients[userID]
	if !exists || client.conn != conn {
		return
	}
	client.conn.Close()
	delete(h.clients, userID)
	log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
}

// SendToUser sends a message to a specific principal
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	client, exists := h.clients[userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.Unregister(userID, client.conn)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// IsOnline checks if a principal has a live connection
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.clients[userID]
	return exists
}

// BroadcastTransition fans a status change out to every connected
// organization client and pings the submission owner if online. Delivery is
// best effort; a dropped connection just gets unregistered.
func (h *WSHub) BroadcastTransition(sub *models.Submission) {
	message := WSMessage{
		Type:         "submission_transition",
		SubmissionID: sub.ID,
		Status:       sub.Status,
		Data:         sub,
	}

	h.mu.RLock()
	orgIDs := make([]string, 0, len(h.clients))
	for id, client := range h.clients {
		if client.role == models.RoleOrganization {
			orgIDs = append(orgIDs, id)
		}
	}
	_, ownerOnline := h.clients[sub.OwnerID]
	h.mu.RUnlock()

	for _, id := range orgIDs {
		if err := h.SendToUser(id, message); err != nil {
			log.Warn().Err(err).Str("user_id", id).Msg("Failed to broadcast transition")
		}
	}

	if ownerOnline && sub.OwnerID != "" {
		if err := h.SendToUser(sub.OwnerID, message); err != nil {
			log.Warn().Err(err).Str("user_id", sub.OwnerID).Msg("Failed to notify owner")
		}
	}
}
