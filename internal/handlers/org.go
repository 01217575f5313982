package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"ewaste-recycle-backend/internal/middleware"
	"ewaste-recycle-backend/internal/models"
	"ewaste-recycle-backend/internal/services"
	"ewaste-recycle-backend/internal/workflow"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// OrgHandler handles organization-side triage HTTP requests
type OrgHandler struct {
	submissionService *services.SubmissionService
}

// NewOrgHandler creates a new organization handler
func NewOrgHandler(submissionService *services.SubmissionService) *OrgHandler {
	return &OrgHandler{
		submissionService: submissionService,
	}
}

// PickupRequest is the schedule/reschedule body
type PickupRequest struct {
	When     time.Time `json:"when"`
	Location string    `json:"location"`
}

// List handles GET /api/v1/org/submissions
func (h *OrgHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subs, err := h.submissionService.ListOpen(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list open submissions")
		respondWorkflowError(w, err)
		return
	}

	respondJSON(w, map[string]interface{}{
		"submissions": subs,
		"total":       len(subs),
	}, http.StatusOK)
}

// Accept handles POST /api/v1/org/submissions/{id}/accept
func (h *OrgHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.StatusAccepted, workflow.Payload{})
}

// Reject handles POST /api/v1/org/submissions/{id}/reject
func (h *OrgHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.StatusRejected, workflow.Payload{})
}

// Done handles POST /api/v1/org/submissions/{id}/done
func (h *OrgHandler) Done(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.StatusDone, workflow.Payload{})
}

// SchedulePickup handles POST /api/v1/org/submissions/{id}/pickup.
// Scheduling and rescheduling share this endpoint.
func (h *OrgHandler) SchedulePickup(w http.ResponseWriter, r *http.Request) {
	var req PickupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.transition(w, r, models.StatusPickupScheduled, workflow.Payload{
		Pickup: &models.Pickup{When: req.When, Location: req.Location},
	})
}

func (h *OrgHandler) transition(w http.ResponseWriter, r *http.Request, target models.Status, payload workflow.Payload) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	role := middleware.GetRole(ctx)
	submissionID := chi.URLParam(r, "id")

	sub, err := h.submissionService.Transition(ctx, actorID, role, submissionID, target, payload)
	if err != nil {
		log.Error().
			Err(err).
			Str("submission_id", submissionID).
			Str("actor_id", actorID).
			Str("target", string(target)).
			Msg("Transition failed")
		respondWorkflowError(w, err)
		return
	}

	respondJSON(w, sub, http.StatusOK)
}
