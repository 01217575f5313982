package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"ewaste-recycle-backend/internal/workflow"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, payload interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// respondWorkflowError maps a workflow error to its HTTP status
func respondWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		respondError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, workflow.ErrInvalidActor):
		respondError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, workflow.ErrInvalidTransition):
		respondError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, workflow.ErrMissingPayload):
		respondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, workflow.ErrConflict):
		respondError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, workflow.ErrUnavailable):
		respondError(w, err.Error(), http.StatusBadGateway)
	default:
		respondError(w, "Internal server error", http.StatusInternalServerError)
	}
}
