package domain

import "time"

// Role is the closed set of account roles. Superuser is a capability bit on
// the Principal, not a role.
type Role string

const (
	RoleCitizen    Role = "citizen"
	RoleBusiness   Role = "business"
	RoleGovernment Role = "government"
)

// ValidRole reports whether r is one of the registrable roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleCitizen, RoleBusiness, RoleGovernment:
		return true
	}
	return false
}

// Principal is an authenticated account. Role is immutable after creation.
// ApprovedBy and ApprovedAt are set together on approval and cleared
// together on deactivation.
type Principal struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	Role         Role
	IsSuperuser  bool
	IsApproved   bool
	ApprovedBy   *string
	ApprovedAt   *time.Time
	TownID       *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name for display.
func (p *Principal) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
