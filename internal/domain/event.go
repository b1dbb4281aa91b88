package domain

import "time"

// EventStatus is the review lifecycle of a business event.
type EventStatus string

const (
	EventStatusPending  EventStatus = "pending"
	EventStatusApproved EventStatus = "approved"
	EventStatusRejected EventStatus = "rejected"
)

// BusinessEvent is an event submitted by a business owner and reviewed by
// officials of the same town. Only approved events accept registrations.
type BusinessEvent struct {
	ID          string
	OwnerID     string
	TownID      string
	Title       string
	Description string
	Venue       string
	StartsAt    time.Time
	EndsAt      time.Time
	Status      EventStatus
	ReviewedBy  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EventRegistration is one principal's attendance record; unique per
// event/principal pair at the storage layer.
type EventRegistration struct {
	ID          string
	EventID     string
	PrincipalID string
	CreatedAt   time.Time
}
