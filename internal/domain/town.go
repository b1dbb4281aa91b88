package domain

import "time"

// Town is the tenancy boundary partitioning visibility of most resources.
// Deactivating a town removes it from the registration picker; existing
// memberships stay valid.
type Town struct {
	ID                 string
	Name               string
	State              string
	IsActive           bool
	EmergencyPolice    string
	EmergencyFire      string
	EmergencyMedical   string
	EmergencyNonUrgent string
	EmergencyDispatch  string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
