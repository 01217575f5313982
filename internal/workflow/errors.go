package workflow

import "errors"

// Domain errors returned by transition validation and the submission service.
// Callers match them with errors.Is; handlers translate them to HTTP codes.
var (
	// ErrNotFound means no submission exists with the given id.
	ErrNotFound = errors.New("submission not found")

	// ErrInvalidActor means the acting role is not authorized for the
	// requested edge.
	ErrInvalidActor = errors.New("actor not authorized for transition")

	// ErrInvalidTransition means the edge (current -> target) is not in the
	// allowed status graph.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrMissingPayload means a pickup transition lacks a usable slot
	// (non-empty location and a present-or-future timestamp).
	ErrMissingPayload = errors.New("missing or invalid transition payload")

	// ErrConflict means the stored status no longer matches the expected
	// prior status at write time.
	ErrConflict = errors.New("submission state changed concurrently")

	// ErrUnavailable means an external collaborator failed or timed out.
	ErrUnavailable = errors.New("collaborator unavailable")
)
