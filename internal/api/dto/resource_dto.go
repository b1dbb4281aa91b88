package dto

import (
	"time"

	"github.com/townhall/civic-service/internal/domain"
)

// TownRequest carries town create/update fields.
type TownRequest struct {
	Name               string `json:"name" validate:"required"`
	State              string `json:"state" validate:"required"`
	IsActive           bool   `json:"is_active"`
	EmergencyPolice    string `json:"emergency_police"`
	EmergencyFire      string `json:"emergency_fire"`
	EmergencyMedical   string `json:"emergency_medical"`
	EmergencyNonUrgent string `json:"emergency_non_urgent"`
	EmergencyDispatch  string `json:"emergency_dispatch"`
}

// TownChangeRequestBody opens a relocation request.
type TownChangeRequestBody struct {
	RequestedTownID string                `json:"requested_town_id" validate:"required,uuid"`
	BillingAddress  BillingAddressRequest `json:"billing_address" validate:"required"`
}

// TownChangeResponse is the public view of a relocation request.
type TownChangeResponse struct {
	ID              string     `json:"id"`
	PrincipalID     string     `json:"principal_id"`
	CurrentTownID   string     `json:"current_town_id"`
	RequestedTownID string     `json:"requested_town_id"`
	Status          string     `json:"status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	RequestedAt     time.Time  `json:"requested_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// NewTownChangeResponse maps a domain relocation request.
func NewTownChangeResponse(r *domain.TownChangeRequest) TownChangeResponse {
	return TownChangeResponse{
		ID:              r.ID,
		PrincipalID:     r.PrincipalID,
		CurrentTownID:   r.CurrentTownID,
		RequestedTownID: r.RequestedTownID,
		Status:          string(r.Status),
		RejectionReason: r.RejectionReason,
		RequestedAt:     r.RequestedAt,
		CompletedAt:     r.CompletedAt,
	}
}

// ComplaintCreateRequest files a complaint.
type ComplaintCreateRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Location    string `json:"location"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

// ComplaintUpdateRequest is the official triage patch.
type ComplaintUpdateRequest struct {
	Status     *string `json:"status" validate:"omitempty,oneof=pending in_progress resolved closed"`
	Priority   *string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	AssignedTo *string `json:"assigned_to"`
}

// CommentRequest adds a comment; Notify flags owner notification.
type CommentRequest struct {
	Body   string `json:"body" validate:"required"`
	Notify bool   `json:"notify"`
}

// LicenseApplyRequest files a license application.
type LicenseApplyRequest struct {
	LicenseType   string `json:"license_type" validate:"required"`
	LicenseNumber string `json:"license_number" validate:"required"`
	Description   string `json:"description"`
}

// LicenseReviewRequest decides a license application.
type LicenseReviewRequest struct {
	Approve    bool       `json:"approve"`
	ReviewNote string     `json:"review_note"`
	IssueDate  *time.Time `json:"issue_date"`
	ExpiryDate *time.Time `json:"expiry_date"`
}

// AnnouncementRequest authors or edits an announcement.
type AnnouncementRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Content  string `json:"content" validate:"required"`
	Priority string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Publish  bool   `json:"publish"`
}

// BillRequest authors or edits a bill proposal.
type BillRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Summary  string `json:"summary" validate:"required"`
	Priority string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

// BillDecisionRequest settles a proposal.
type BillDecisionRequest struct {
	Passed bool `json:"passed"`
}

// VoteRequest records a position on a bill.
type VoteRequest struct {
	Support bool `json:"support"`
}

// EventRequest submits a business event.
type EventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"required"`
	Venue       string    `json:"venue" validate:"required"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required"`
}

// EventReviewRequest decides a submitted event.
type EventReviewRequest struct {
	Approve bool `json:"approve"`
}
