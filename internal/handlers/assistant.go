package handlers

import (
	"encoding/json"
	"net/http"

	"ewaste-recycle-backend/internal/middleware"
	"ewaste-recycle-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AssistantHandler handles chat assistant HTTP requests
type AssistantHandler struct {
	assistantService *services.AssistantService
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(assistantService *services.AssistantService) *AssistantHandler {
	return &AssistantHandler{
		assistantService: assistantService,
	}
}

// AskRequest is the assistant question body
type AskRequest struct {
	Question string `json:"question"`
}

// Ask handles POST /api/v1/assistant
func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		respondError(w, "question is required", http.StatusBadRequest)
		return
	}

	answer, err := h.assistantService.Ask(ctx, req.Question)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Assistant request failed")
		respondWorkflowError(w, err)
		return
	}

	respondJSON(w, map[string]string{"answer": answer}, http.StatusOK)
}
