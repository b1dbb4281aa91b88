package domain

import "time"

// CitizenProfile holds citizen-specific attributes, linked 1:1 to a
// Principal and removed with it.
type CitizenProfile struct {
	ID             string
	PrincipalID    string
	CitizenID      string
	Address        string
	BillingAddress BillingAddress
	DateOfBirth    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
