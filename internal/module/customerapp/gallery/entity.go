package gallery

import "time"

const (
	GalleryStatusDraft     string = "DRAFT"
	GalleryStatusPublished string = "PUBLISHED"
	GalleryStatusArchived  string = "ARCHIVED"
)

// Gallery is one event shoot published for sale. The photographer link on the
// gallery is what ties every order to its revenue-share recipient.
type Gallery struct {
	ID             string
	Title          string
	PhotographerID int64
	EventDate      time.Time
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Photo struct {
	ID        string
	GalleryID string
	FileKey   string
	Thumbnail string
	CreatedAt time.Time
}
