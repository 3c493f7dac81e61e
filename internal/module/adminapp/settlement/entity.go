package settlement

import "time"

const (
	RecipientTypePhotographer string = "PHOTOGRAPHER"
	RecipientTypePlatform     string = "PLATFORM"
)

// Earning is one confirmed, not-yet-settled order joined with its
// transaction detail. HasDetail is false for the degraded case where payment
// was confirmed but the split snapshot is missing; such rows are reported as
// integrity defects and never summed.
type Earning struct {
	OrderID                string
	PhotographerID         int64
	Status                 string
	SettlementStatus       string
	Quantity               int64
	OrderCreatedAt         time.Time
	HasDetail              bool
	GrossAmount            int64
	GatewayFee             int64
	NetAmount              int64
	PhotographerShare      int64
	PlatformShare          int64
	PhotographerPercentage float64
}

// Settlement is one batch payout. Covered orders are locked to SETTLED when
// the settlement is created; an order belongs to at most one settlement.
type Settlement struct {
	ID             string    `json:"id"`
	RecipientType  string    `json:"recipient_type"`
	PhotographerID *int64    `json:"photographer_id,omitempty"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`
	TotalAmount    int64     `json:"total_amount"`
	OrderCount     int64     `json:"order_count"`
	ItemCount      int64     `json:"item_count"`
	OrderIDs       []string  `json:"order_ids"`
	CreatedAt      time.Time `json:"created_at"`
}
