package workflow

import (
	"time"

	"ewaste-recycle-backend/internal/models"
)

// Payload carries the optional data attached to a transition request.
type Payload struct {
	// Pickup is required when the target status is pickup_scheduled.
	Pickup *models.Pickup
	// Contact accompanies the owner's interested decision.
	Contact *models.Contact
}

// edge identifies one arrow in the status graph.
type edge struct {
	from models.Status
	to   models.Status
}

// graph maps each allowed edge to the role permitted to take it.
// The pickup_scheduled self-edge is the reschedule case.
var graph = map[edge]models.Role{
	{models.StatusUndecided, models.StatusInterested}:            models.RoleUser,
	{models.StatusUndecided, models.StatusNotInterested}:         models.RoleUser,
	{models.StatusInterested, models.StatusAccepted}:             models.RoleOrganization,
	{models.StatusInterested, models.StatusRejected}:             models.RoleOrganization,
	{models.StatusAccepted, models.StatusPickupScheduled}:        models.RoleOrganization,
	{models.StatusPickupScheduled, models.StatusPickupScheduled}: models.RoleOrganization,
	{models.StatusPickupScheduled, models.StatusDone}:            models.RoleOrganization,
}

// Validate checks a requested transition against the status graph, the
// acting role and the payload rules. It is pure: persistence, point credits
// and notifications are the caller's concern. A nil error means the edge is
// allowed for that role with that payload.
func Validate(current, target models.Status, role models.Role, payload Payload) error {
	requiredRole, ok := graph[edge{current, target}]
	if !ok {
		return ErrInvalidTransition
	}

	if role != requiredRole {
		return ErrInvalidActor
	}

	if target == models.StatusPickupScheduled {
		if payload.Pickup == nil || payload.Pickup.Location == "" {
			return ErrMissingPayload
		}
		if payload.Pickup.When.Before(truncateToMinute(time.Now())) {
			return ErrMissingPayload
		}
	}

	return nil
}

// truncateToMinute drops sub-minute precision so a "now" slot picked from a
// datetime widget is not rejected for being milliseconds in the past.
func truncateToMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}

// Terminal reports whether no edge leaves the given status.
func Terminal(s models.Status) bool {
	for e := range graph {
		if e.from == s {
			return false
		}
	}
	return true
}

// CreditsPoints reports whether entering target from current awards the
// fixed recycle credit. Only the owner's initial recycle choice does.
func CreditsPoints(current, target models.Status) bool {
	return current == models.StatusUndecided && target == models.StatusInterested
}

// Notifies reports whether entering target produces a user notification.
func Notifies(target models.Status) bool {
	switch target {
	case models.StatusAccepted, models.StatusPickupScheduled, models.StatusDone:
		return true
	}
	return false
}
