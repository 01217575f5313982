package services

import (
	"context"
	"fmt"
	"time"

	"ewaste-recycle-backend/internal/models"
	"ewaste-recycle-backend/internal/workflow"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Uploader stores raw image bytes and returns a public reference.
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// Analyzer produces hazard/recognition text for an uploaded image.
type Analyzer interface {
	AnalyzeImage(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Draft is the analyze result handed back to the owner before any decision
// is made. Nothing is persisted at this stage.
type Draft struct {
	ImageURL     string `json:"image_url"`
	AnalysisText string `json:"analysis_text"`
}

// DecideRequest is the owner's recycle decision for an analyzed item.
type DecideRequest struct {
	ImageURL     string          `json:"image_url"`
	AnalysisText string          `json:"analysis_text"`
	Decision     string          `json:"decision"` // "recycle" or "skip"
	ItemName     string          `json:"item_name"`
	Contact      *models.Contact `json:"contact"`
}

// SubmissionService is the status workflow engine: it validates transitions
// against the pure rules in internal/workflow, writes them with a
// stale-state guard, and emits the side effects (point credit, notification,
// live broadcast).
type SubmissionService struct {
	store    SubmissionStore
	ledger   *LedgerService
	notifier *NotificationService
	hub      *WSHub
	uploader Uploader
	analyzer Analyzer
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(
	store SubmissionStore,
	ledger *LedgerService,
	notifier *NotificationService,
	hub *WSHub,
	uploader Uploader,
	analyzer Analyzer,
) *SubmissionService {
	return &SubmissionService{
		store:    store,
		ledger:   ledger,
		notifier: notifier,
		hub:      hub,
		uploader: uploader,
		analyzer: analyzer,
	}
}

// Analyze uploads the image and runs hazard recognition. Both collaborators
// must succeed; a partial failure aborts the whole call so no half-created
// submission ever exists.
func (s *SubmissionService) Analyze(ctx context.Context, ownerID string, imageData []byte, mimeType string) (*Draft, error) {
	imageURL, err := s.uploader.Upload(ctx, imageData, mimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: image upload: %v", workflow.ErrUnavailable, err)
	}

	analysisText, err := s.analyzer.AnalyzeImage(ctx, imageData, mimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: analysis: %v", workflow.ErrUnavailable, err)
	}

	log.Info().
		Str("owner_id", ownerID).
		Str("image_url", imageURL).
		Msg("Image analyzed")

	return &Draft{ImageURL: imageURL, AnalysisText: analysisText}, nil
}

// Decide persists the owner's recycle decision. This is the only way a
// submission comes into existence: "undecided" never reaches the store.
// A recycle decision requires contact details and credits the fixed point
// amount exactly once, keyed by the new submission's id.
func (s *SubmissionService) Decide(ctx context.Context, ownerID string, req DecideRequest) (*models.Submission, error) {
	var target models.Status
	switch req.Decision {
	case "recycle":
		target = models.StatusInterested
	case "skip":
		target = models.StatusNotInterested
	default:
		return nil, workflow.ErrInvalidTransition
	}

	if err := workflow.Validate(models.StatusUndecided, target, models.RoleUser, workflow.Payload{Contact: req.Contact}); err != nil {
		return nil, err
	}
	if req.ImageURL == "" || req.AnalysisText == "" {
		return nil, workflow.ErrMissingPayload
	}
	if target == models.StatusInterested {
		if req.Contact == nil || req.Contact.Name == "" || req.Contact.Email == "" {
			return nil, workflow.ErrMissingPayload
		}
	}

	now := time.Now()
	sub := &models.Submission{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Status:       target,
		ImageURL:     req.ImageURL,
		AnalysisText: req.AnalysisText,
		ItemName:     req.ItemName,
		Contact:      req.Contact,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, sub); err != nil {
		return nil, err
	}

	if target == models.StatusInterested {
		// Points are stamped onto the row inside the credit transaction, so
		// a failed credit leaves the stored points at zero and surfaces
		// here instead of reporting a credited decision.
		if _, err := s.ledger.Credit(ctx, ownerID, sub.ID); err != nil {
			return nil, err
		}
		sub.Points = s.ledger.Amount()
		if s.hub != nil {
			s.hub.BroadcastTransition(sub)
		}
	}

	log.Info().
		Str("submission_id", sub.ID).
		Str("owner_id", ownerID).
		Str("status", string(target)).
		Msg("Submission created")

	return sub, nil
}

// Transition applies an organization-side status change. The stored status
// is re-checked at write time: if another actor moved the submission in the
// meantime the call fails with ErrConflict and nothing changes.
func (s *SubmissionService) Transition(ctx context.Context, actorID string, role models.Role, submissionID string, target models.Status, payload workflow.Payload) (*models.Submission, error) {
	sub, err := s.store.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	if role == models.RoleUser && sub.OwnerID != actorID {
		return nil, workflow.ErrInvalidActor
	}

	// Identical reschedule is a no-op: same stored state, no new event.
	// Checked before validation so a resent slot stays idempotent even
	// after its time has passed.
	if role == models.RoleOrganization &&
		sub.Status == models.StatusPickupScheduled && target == models.StatusPickupScheduled &&
		sub.Pickup != nil && payload.Pickup != nil &&
		sub.Pickup.When.Equal(payload.Pickup.When) && sub.Pickup.Location == payload.Pickup.Location {
		return sub, nil
	}

	if err := workflow.Validate(sub.Status, target, role, payload); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateStatus(ctx, submissionID, sub.Status, target, payload.Pickup)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("submission_id", submissionID).
		Str("actor_id", actorID).
		Str("from", string(sub.Status)).
		Str("to", string(target)).
		Msg("Submission transitioned")

	event := TransitionEvent{Submission: updated, From: sub.Status, To: target}
	if s.notifier != nil {
		s.notifier.HandleTransition(ctx, event)
	}
	if s.hub != nil {
		s.hub.BroadcastTransition(updated)
	}

	return updated, nil
}

// GetByID returns a submission, restricted to its owner for user roles
func (s *SubmissionService) GetByID(ctx context.Context, actorID string, role models.Role, submissionID string) (*models.Submission, error) {
	sub, err := s.store.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if role == models.RoleUser && sub.OwnerID != actorID {
		return nil, workflow.ErrInvalidActor
	}
	return sub, nil
}

// ListByOwner returns a user's own submissions
func (s *SubmissionService) ListByOwner(ctx context.Context, ownerID string) ([]*models.Submission, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

// ListOpen returns the submissions an organization may act on
func (s *SubmissionService) ListOpen(ctx context.Context) ([]*models.Submission, error) {
	return s.store.ListByStatus(ctx, []models.Status{
		models.StatusInterested,
		models.StatusAccepted,
		models.StatusPickupScheduled,
	})
}
