package domain

import "time"

// LicenseStatus is the business-license review lifecycle.
type LicenseStatus string

const (
	LicenseStatusPending  LicenseStatus = "pending"
	LicenseStatusApproved LicenseStatus = "approved"
	LicenseStatusRejected LicenseStatus = "rejected"
	LicenseStatusExpired  LicenseStatus = "expired"
)

// License is a business license application owned by a business-owner
// principal. LicenseNumber is unique at the storage layer. TownID is the
// owner's town at application time and drives tenancy filtering.
type License struct {
	ID            string
	OwnerID       string
	TownID        string
	LicenseType   string
	LicenseNumber string
	Status        LicenseStatus
	Description   string
	IssueDate     *time.Time
	ExpiryDate    *time.Time
	ReviewedBy    *string
	ReviewNote    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
