package domain

import "time"

// ComplaintStatus is the complaint lifecycle driven by officials.
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "pending"
	ComplaintStatusInProgress ComplaintStatus = "in_progress"
	ComplaintStatusResolved   ComplaintStatus = "resolved"
	ComplaintStatusClosed     ComplaintStatus = "closed"
)

// Priority is shared by complaints and announcements.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Complaint is an issue reported by a citizen or business owner, scoped to
// the reporter's town.
type Complaint struct {
	ID          string
	OwnerID     string
	TownID      string
	Title       string
	Description string
	Category    string
	Location    string
	Priority    Priority
	Status      ComplaintStatus
	AssignedTo  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ComplaintComment is an official's update on a complaint. Notify marks
// comments that should produce a notification for the owner.
type ComplaintComment struct {
	ID          string
	ComplaintID string
	OfficialID  *string
	Body        string
	Notify      bool
	CreatedAt   time.Time
}

// ComplaintAttachment records validated upload metadata; the bytes live in
// the object store under StorageKey.
type ComplaintAttachment struct {
	ID          string
	ComplaintID string
	StorageKey  string
	FileName    string
	ContentType string
	SizeBytes   int64
	UploadedAt  time.Time
}
