package domain

import "time"

// APICredential is the long-lived opaque credential issued when an account
// is approved. One per principal; issuance is get-or-create.
type APICredential struct {
	ID          string
	PrincipalID string
	Key         string
	CreatedAt   time.Time
}
