package models

import "time"

// Status is the lifecycle state of a submission.
type Status string

const (
	// StatusUndecided is the ephemeral pre-persistence state: a submission
	// is only written once the owner makes a recycle decision.
	StatusUndecided       Status = "undecided"
	StatusInterested      Status = "interested"
	StatusNotInterested   Status = "not_interested"
	StatusAccepted        Status = "accepted"
	StatusRejected        Status = "rejected"
	StatusPickupScheduled Status = "pickup_scheduled"
	StatusDone            Status = "done"
)

// Role is the class of principal performing an action.
type Role string

const (
	RoleUser         Role = "user"
	RoleOrganization Role = "organization"
)

// Pickup holds the scheduled pickup slot for an accepted submission.
type Pickup struct {
	When     time.Time `json:"when"`
	Location string    `json:"location"`
}

// Contact holds the details a user provides when declaring recycle interest.
type Contact struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// Submission represents one e-waste item reported by a user.
type Submission struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"owner_id"`
	Status           Status    `json:"status"`
	ImageURL         string    `json:"image_url"`
	AnalysisText     string    `json:"analysis_text"`
	ItemName         string    `json:"item_name,omitempty"`
	Points           int       `json:"points"`
	Pickup           *Pickup   `json:"pickup,omitempty"`
	Contact          *Contact  `json:"contact,omitempty"`
	NotificationRead bool      `json:"notification_read"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// User represents a registered principal.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Token     string    `json:"token,omitempty"`
	PushToken *string   `json:"push_token,omitempty"`
	EcoPoints int       `json:"eco_points"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification is a user-facing notice derived from a status transition.
type Notification struct {
	ID           string    `json:"id"`
	SubmissionID string    `json:"submission_id"`
	UserID       string    `json:"user_id"`
	Status       Status    `json:"status"`
	Message      string    `json:"message"`
	Read         bool      `json:"read"`
	CreatedAt    time.Time `json:"created_at"`
}
