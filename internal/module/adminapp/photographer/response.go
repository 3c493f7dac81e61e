package photographer

import "time"

type GetManyPhotographerResponse []GetPhotographerResponse

type GetPhotographerResponse struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	SharePercentage float64   `json:"share_percentage"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (r *GetPhotographerResponse) PopulateFromEntity(p Photographer) {
	r.ID = p.ID
	r.Name = p.Name
	r.Email = p.Email
	r.Phone = p.Phone
	r.SharePercentage = p.SharePercentage
	r.Active = p.Active
	r.CreatedAt = p.CreatedAt
	r.UpdatedAt = p.UpdatedAt
}
