package domain

import "time"

// BillStatus is the lifecycle of a bill proposal.
type BillStatus string

const (
	BillStatusProposed BillStatus = "proposed"
	BillStatusPassed   BillStatus = "passed"
	BillStatusRejected BillStatus = "rejected"
)

// BillProposal is a town-scoped legislative proposal. Edit and delete are
// restricted to the creating official.
type BillProposal struct {
	ID        string
	TownID    string
	CreatedBy string
	Title     string
	Summary   string
	Priority  Priority
	Status    BillStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BillVote is one principal's position on a bill. One vote per principal,
// enforced at the storage layer; re-voting replaces the position.
type BillVote struct {
	ID          string
	BillID      string
	PrincipalID string
	Support     bool
	CreatedAt   time.Time
}

// BillVoteCount aggregates votes for a bill.
type BillVoteCount struct {
	Support int
	Oppose  int
}

// BillComment is public discussion on a bill from town members.
type BillComment struct {
	ID          string
	BillID      string
	PrincipalID string
	Body        string
	CreatedAt   time.Time
}
