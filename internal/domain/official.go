package domain

import "time"

// GovernmentOfficial holds official-specific attributes plus the
// fine-grained permission flags granted by a superuser. EmployeeID is unique
// at the storage layer.
type GovernmentOfficial struct {
	ID              string
	PrincipalID     string
	EmployeeID      string
	Department      string
	Position        string
	OfficeAddress   string
	CanViewUsers    bool
	CanApproveUsers bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
