package events

import (
	"time"

	"github.com/townhall/civic-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountRegistered   EventType = "account_registered"
	EventAccountApproved     EventType = "account_approved"
	EventAccountRejected     EventType = "account_rejected"
	EventAccountDeactivated  EventType = "account_deactivated"
	EventTownChangeRequested EventType = "town_change_requested"
	EventTownChangeAdvanced  EventType = "town_change_advanced"
	EventTownChangeRejected  EventType = "town_change_rejected"
	EventComplaintFiled      EventType = "complaint_filed"
	EventComplaintUpdated    EventType = "complaint_updated"
	EventLicenseReviewed     EventType = "license_reviewed"
	EventEventReviewed       EventType = "event_reviewed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AccountDecisionPayload carries approval lifecycle details. Rejected
// accounts are deleted, so the payload keeps the email for messaging.
type AccountDecisionPayload struct {
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	TownID *string     `json:"town_id,omitempty"`
	Reason string      `json:"reason,omitempty"`
}

// TownChangePayload payload.
type TownChangePayload struct {
	RequestID       string                  `json:"request_id"`
	PrincipalID     string                  `json:"principal_id"`
	CurrentTownID   string                  `json:"current_town_id"`
	RequestedTownID string                  `json:"requested_town_id"`
	Status          domain.TownChangeStatus `json:"status"`
	Reason          string                  `json:"reason,omitempty"`
}

// ComplaintPayload payload.
type ComplaintPayload struct {
	ComplaintID string                 `json:"complaint_id"`
	OwnerID     string                 `json:"owner_id"`
	TownID      string                 `json:"town_id"`
	Status      domain.ComplaintStatus `json:"status"`
	Comment     string                 `json:"comment,omitempty"`
}

// ReviewPayload covers license and business-event review outcomes.
type ReviewPayload struct {
	ResourceID string `json:"resource_id"`
	OwnerID    string `json:"owner_id"`
	Outcome    string `json:"outcome"`
	Note       string `json:"note,omitempty"`
}
