package photographer

import "time"

// Photographer is the revenue-share recipient. SharePercentage is the split
// applied to future payments only; confirmed transactions keep the snapshot
// taken at payment time.
type Photographer struct {
	ID              int64
	Name            string
	Email           string
	Phone           string
	SharePercentage float64
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
