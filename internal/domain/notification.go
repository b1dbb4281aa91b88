package domain

import "time"

// NotificationKind categorizes notifications for filtering on the client.
type NotificationKind string

const (
	NotificationAccount    NotificationKind = "account"
	NotificationTownChange NotificationKind = "town_change"
	NotificationComplaint  NotificationKind = "complaint"
	NotificationLicense    NotificationKind = "license"
	NotificationEvent      NotificationKind = "event"
	NotificationGeneral    NotificationKind = "general"
)

// Notification is a fire-and-forget record written by the event worker.
// It is never part of the transaction that produced the event.
type Notification struct {
	ID          string
	PrincipalID string
	Kind        NotificationKind
	Title       string
	Message     string
	ResourceID  *string
	IsRead      bool
	CreatedAt   time.Time
}
