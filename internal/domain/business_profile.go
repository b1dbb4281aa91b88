package domain

import "time"

// BusinessOwnerProfile holds business-owner attributes, linked 1:1 to a
// Principal. RegistrationNumber is unique at the storage layer.
type BusinessOwnerProfile struct {
	ID                 string
	PrincipalID        string
	BusinessName       string
	RegistrationNumber string
	BusinessType       string
	BusinessAddress    string
	BillingAddress     BillingAddress
	Website            string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
