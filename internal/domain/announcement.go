package domain

import "time"

// Announcement is a town-scoped notice authored by a government official.
// Unpublished announcements are visible to officials of the town only.
type Announcement struct {
	ID          string
	TownID      string
	CreatedBy   string
	Title       string
	Content     string
	Priority    Priority
	IsPublished bool
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
