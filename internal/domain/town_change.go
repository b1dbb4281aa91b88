package domain

import "time"

// TownChangeStatus tracks the two-phase relocation handshake.
type TownChangeStatus string

const (
	TownChangeStatusPending         TownChangeStatus = "pending"
	TownChangeStatusApprovedCurrent TownChangeStatus = "approved_current"
	TownChangeStatusCompleted       TownChangeStatus = "completed"
	TownChangeStatusRejected        TownChangeStatus = "rejected"
)

// Active reports whether the request still blocks a new submission.
func (s TownChangeStatus) Active() bool {
	return s == TownChangeStatusPending || s == TownChangeStatusApprovedCurrent
}

// TownChangeRequest relocates a principal's tenancy. It requires two
// independent approvals: first from the current town, then from the
// requested town, which also reassigns the principal's town.
type TownChangeRequest struct {
	ID                string
	PrincipalID       string
	CurrentTownID     string
	RequestedTownID   string
	BillingAddress    BillingAddress
	Status            TownChangeStatus
	RejectionReason   string
	ApprovedByCurrent *string
	ApprovedByNew     *string
	RequestedAt       time.Time
	CompletedAt       *time.Time
}
