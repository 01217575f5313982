package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ewaste-recycle-backend/internal/models"
	"ewaste-recycle-backend/internal/workflow"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const submissionColumns = `
	id, owner_id, status, image_url, analysis_text, item_name, points,
	pickup_at, pickup_location,
	contact_name, contact_email, contact_phone, contact_location, contact_description,
	notification_read, created_at, updated_at
`

// SubmissionRepository handles database operations for submissions
type SubmissionRepository struct {
	db *pgxpool.Pool
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create persists a submission after the owner's recycle decision
func (r *SubmissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	query := `
		INSERT INTO submissions (
			id, owner_id, status, image_url, analysis_text, item_name, points,
			contact_name, contact_email, contact_phone, contact_location, contact_description,
			notification_read, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	var name, email, phone, location, description *string
	if sub.Contact != nil {
		name, email, phone = &sub.Contact.Name, &sub.Contact.Email, &sub.Contact.Phone
		location, description = &sub.Contact.Location, &sub.Contact.Description
	}
	_, err := r.db.Exec(ctx, query,
		sub.ID, sub.OwnerID, string(sub.Status), sub.ImageURL, sub.AnalysisText, sub.ItemName, sub.Points,
		name, email, phone, location, description,
		sub.NotificationRead, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// GetByID retrieves a submission by ID
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	sub, err := scanSubmission(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, workflow.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return sub, nil
}

// ListByOwner retrieves a user's submissions, newest first
func (r *SubmissionRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM submissions
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()
	return collectSubmissions(rows)
}

// ListByStatus retrieves submissions whose status is in the given set,
// oldest first so organizations triage in arrival order
func (r *SubmissionRepository) ListByStatus(ctx context.Context, statuses []models.Status) ([]*models.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM submissions
		WHERE status = ANY($1)
		ORDER BY created_at ASC
	`
	set := make([]string, len(statuses))
	for i, s := range statuses {
		set[i] = string(s)
	}
	rows, err := r.db.Query(ctx, query, set)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions by status: %w", err)
	}
	defer rows.Close()
	return collectSubmissions(rows)
}

// UpdateStatus writes the new status (and pickup slot, if any) only if the
// stored status still equals expected. Zero rows affected on an existing
// submission surfaces as workflow.ErrConflict.
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id string, expected, target models.Status, pickup *models.Pickup) (*models.Submission, error) {
	query := `
		UPDATE submissions
		SET status = $1,
		    pickup_at = COALESCE($2, pickup_at),
		    pickup_location = COALESCE($3, pickup_location),
		    notification_read = CASE WHEN status <> $1 THEN false ELSE notification_read END,
		    updated_at = $4
		WHERE id = $5 AND status = $6
		RETURNING ` + submissionColumns

	var when *time.Time
	var location *string
	if pickup != nil {
		when, location = &pickup.When, &pickup.Location
	}

	sub, err := scanSubmission(r.db.QueryRow(ctx, query, string(target), when, location, time.Now(), id, string(expected)))
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to update submission status: %w", err)
	}

	// No row matched: either the submission is gone or its status moved
	// under us. Re-read to tell the two apart.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, workflow.ErrConflict
}

// MarkNotificationRead flips the owner-facing acknowledged flag
func (r *SubmissionRepository) MarkNotificationRead(ctx context.Context, id string) error {
	query := `UPDATE submissions SET notification_read = true, updated_at = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return workflow.ErrNotFound
	}
	return nil
}

func scanSubmission(row pgx.Row) (*models.Submission, error) {
	var sub models.Submission
	var itemName *string
	var pickupAt *time.Time
	var pickupLocation *string
	var name, email, phone, location, description *string

	err := row.Scan(
		&sub.ID, &sub.OwnerID, &sub.Status, &sub.ImageURL, &sub.AnalysisText, &itemName, &sub.Points,
		&pickupAt, &pickupLocation,
		&name, &email, &phone, &location, &description,
		&sub.NotificationRead, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if itemName != nil {
		sub.ItemName = *itemName
	}
	if pickupAt != nil && pickupLocation != nil {
		sub.Pickup = &models.Pickup{When: *pickupAt, Location: *pickupLocation}
	}
	if name != nil || email != nil || phone != nil || location != nil || description != nil {
		sub.Contact = &models.Contact{
			Name:        deref(name),
			Email:       deref(email),
			Phone:       deref(phone),
			Location:    deref(location),
			Description: deref(description),
		}
	}
	return &sub, nil
}

func collectSubmissions(rows pgx.Rows) ([]*models.Submission, error) {
	var subs []*models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}
	return subs, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
