package gallery

import (
	"time"

	"github.com/snapfield/sf-order/internal/module/customerapp/pricing"
)

type GetManyGalleryResponse []GetGalleryResponse

type GetGalleryResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	PhotographerID int64     `json:"photographer_id"`
	EventDate      time.Time `json:"event_date"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (r *GetGalleryResponse) PopulateFromEntity(g Gallery) {
	r.ID = g.ID
	r.Title = g.Title
	r.PhotographerID = g.PhotographerID
	r.EventDate = g.EventDate
	r.Status = g.Status
	r.CreatedAt = g.CreatedAt
	r.UpdatedAt = g.UpdatedAt
}

type GetManyPhotoResponse []PhotoResponse

type PhotoResponse struct {
	ID        string    `json:"id"`
	GalleryID string    `json:"gallery_id"`
	Thumbnail string    `json:"thumbnail"`
	CreatedAt time.Time `json:"created_at"`
}

type NextTierResponse struct {
	TierName           string  `json:"tier_name"`
	Threshold          int64   `json:"threshold"`
	DiscountPercentage float64 `json:"discount_percentage"`
	UnitsToGo          int64   `json:"units_to_go"`
}

type QuotePriceResponse struct {
	Quantity           int64             `json:"quantity"`
	BaseUnitPrice      int64             `json:"base_unit_price"`
	EffectiveUnitPrice int64             `json:"effective_unit_price"`
	TierName           string            `json:"tier_name"`
	DiscountPercentage float64           `json:"discount_percentage"`
	DiscountAmount     int64             `json:"discount_amount"`
	BaseTotalPrice     int64             `json:"base_total_price"`
	TotalPrice         int64             `json:"total_price"`
	NextTier           *NextTierResponse `json:"next_tier"`
}

func (r *QuotePriceResponse) PopulateFromQuote(q pricing.Quote) {
	r.Quantity = q.Quantity
	r.BaseUnitPrice = q.BaseUnitPrice
	r.EffectiveUnitPrice = q.EffectiveUnitPrice
	r.TierName = q.TierName
	r.DiscountPercentage = q.DiscountPercentage
	r.DiscountAmount = q.DiscountAmount
	r.BaseTotalPrice = q.BaseTotalPrice
	r.TotalPrice = q.TotalPrice
}
