package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"ewaste-recycle-backend/internal/middleware"
	"ewaste-recycle-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// 10 MB cap on uploaded images, matching the hosted model's inline limit.
const maxImageBytes = 10 << 20

// SubmissionHandler handles user-side submission HTTP requests
type SubmissionHandler struct {
	submissionService *services.SubmissionService
	ledgerService     *services.LedgerService
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissionService *services.SubmissionService, ledgerService *services.LedgerService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		ledgerService:     ledgerService,
	}
}

// Analyze handles POST /api/v1/submissions/analyze
func (h *SubmissionHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, "image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		respondError(w, "Failed to read image", http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	draft, err := h.submissionService.Analyze(ctx, userID, data, contentType)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to analyze image")
		respondWorkflowError(w, err)
		return
	}

	respondJSON(w, draft, http.StatusOK)
}

// Decide handles POST /api/v1/submissions
func (h *SubmissionHandler) Decide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sub, err := h.submissionService.Decide(ctx, userID, req)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to record decision")
		respondWorkflowError(w, err)
		return
	}

	respondJSON(w, sub, http.StatusCreated)
}

// List handles GET /api/v1/submissions
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	subs, err := h.submissionService.ListByOwner(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list submissions")
		respondWorkflowError(w, err)
		return
	}

	respondJSON(w, map[string]interface{}{
		"submissions": subs,
		"total":       len(subs),
	}, http.StatusOK)
}

// Points handles GET /api/v1/points
func (h *SubmissionHandler) Points(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	total, err := h.ledgerService.TotalFor(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get point total")
		respondWorkflowError(w, err)
		return
	}

	respondJSON(w, map[string]int{"eco_points": total}, http.StatusOK)
}
