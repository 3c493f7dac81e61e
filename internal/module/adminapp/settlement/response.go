package settlement

import "time"

type PendingEarningItem struct {
	OrderID        string    `json:"order_id"`
	PhotographerID int64     `json:"photographer_id"`
	Status         string    `json:"status"`
	Quantity       int64     `json:"quantity"`
	GrossAmount    int64     `json:"gross_amount"`
	NetAmount      int64     `json:"net_amount"`
	Amount         int64     `json:"amount"`
	OrderCreatedAt time.Time `json:"order_created_at"`
}

type GetPendingEarningsResponse struct {
	RecipientType  string               `json:"recipient_type"`
	PhotographerID *int64               `json:"photographer_id,omitempty"`
	PeriodStart    time.Time            `json:"period_start"`
	PeriodEnd      time.Time            `json:"period_end"`
	TotalAmount    int64                `json:"total_amount"`
	OrderCount     int64                `json:"order_count"`
	ItemCount      int64                `json:"item_count"`
	Earnings       []PendingEarningItem `json:"earnings"`
	MissingDetails []string             `json:"missing_details"`
}

type PreviewSettlementResponse struct {
	RecipientType  string    `json:"recipient_type"`
	PhotographerID *int64    `json:"photographer_id,omitempty"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`
	TotalAmount    int64     `json:"total_amount"`
	OrderCount     int64     `json:"order_count"`
	ItemCount      int64     `json:"item_count"`
	OrderIDs       []string  `json:"order_ids"`
	MissingDetails []string  `json:"missing_details"`
}

type CommitSettlementResponse struct {
	Settlement     Settlement `json:"settlement"`
	Conflicts      []string   `json:"conflicts"`
	MissingDetails []string   `json:"missing_details"`
}
