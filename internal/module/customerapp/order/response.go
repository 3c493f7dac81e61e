package order

import "time"

type GetManyOrderResponse []PlaceOrderResponse

type GetOrderResponse = PlaceOrderResponse

type PlaceOrderResponse struct {
	ID                 string         `json:"id"`
	PaymentMethod      string         `json:"payment_method"`
	TransactionID      *string        `json:"transaction_id"`
	VirtualAccount     *string        `json:"virtual_account"`
	Status             string         `json:"status"`
	SettlementStatus   string         `json:"settlement_status"`
	CustomerID         int64          `json:"customer_id"`
	CustomerName       string         `json:"customer_name"`
	CustomerEmail      string         `json:"customer_email"`
	GalleryID          string         `json:"gallery_id"`
	PhotographerID     int64          `json:"photographer_id"`
	Quantity           int64          `json:"quantity"`
	BaseUnitPrice      int64          `json:"base_unit_price"`
	EffectiveUnitPrice int64          `json:"effective_unit_price"`
	TierName           string         `json:"tier_name"`
	DiscountPercentage float64        `json:"discount_percentage"`
	DiscountAmount     int64          `json:"discount_amount"`
	TotalAmount        int64          `json:"total_amount"`
	Items              []ItemResponse `json:"items"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func (r *PlaceOrderResponse) PopulateFromEntity(o Order) {
	r.ID = o.ID
	r.PaymentMethod = o.PaymentMethod
	r.TransactionID = o.TransactionID
	r.VirtualAccount = o.VirtualAccount
	r.Status = o.Status
	r.SettlementStatus = o.SettlementStatus
	r.CustomerID = o.CustomerID
	r.CustomerName = o.CustomerName
	r.CustomerEmail = o.CustomerEmail
	r.GalleryID = o.GalleryID
	r.PhotographerID = o.PhotographerID
	r.Quantity = o.Quantity
	r.BaseUnitPrice = o.BaseUnitPrice
	r.EffectiveUnitPrice = o.EffectiveUnitPrice
	r.TierName = o.TierName
	r.DiscountPercentage = o.DiscountPercentage
	r.DiscountAmount = o.DiscountAmount
	r.TotalAmount = o.TotalAmount
	r.CreatedAt = o.CreatedAt
	r.UpdatedAt = o.UpdatedAt

	itemsResponse := make([]ItemResponse, len(o.Items))
	for k, v := range o.Items {
		itemsResponse[k] = ItemResponse{
			OrderID:   v.OrderID,
			PhotoID:   v.PhotoID,
			GalleryID: v.GalleryID,
			UnitPrice: v.UnitPrice,
		}
	}
	r.Items = itemsResponse
}

type ItemResponse struct {
	OrderID   string `json:"order_id"`
	PhotoID   string `json:"photo_id"`
	GalleryID string `json:"gallery_id"`
	UnitPrice int64  `json:"unit_price"`
}

type DownloadFileResponse struct {
	PhotoID string `json:"photo_id"`
	FileKey string `json:"file_key"`
}

type DownloadResponse struct {
	OrderID string                 `json:"order_id"`
	Status  string                 `json:"status"`
	Files   []DownloadFileResponse `json:"files"`
}

type AbandonSweepResponse struct {
	Abandoned int64     `json:"abandoned"`
	Cutoff    time.Time `json:"cutoff"`
}
