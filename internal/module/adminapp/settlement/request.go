package settlement

type GetPendingEarningsRequest struct {
	RecipientType  string `validate:"required,oneof=PHOTOGRAPHER PLATFORM"`
	PhotographerID *int64 `validate:"omitempty,min=1"`
	PeriodStart    string `validate:"required"`
	PeriodEnd      string `validate:"required"`
}

type PreviewSettlementRequest struct {
	RecipientType  string `json:"recipient_type" validate:"required,oneof=PHOTOGRAPHER PLATFORM"`
	PhotographerID *int64 `json:"photographer_id" validate:"omitempty,min=1"`
	PeriodStart    string `json:"period_start" validate:"required"`
	PeriodEnd      string `json:"period_end" validate:"required"`
}

type CommitSettlementRequest struct {
	RecipientType  string   `json:"recipient_type" validate:"required,oneof=PHOTOGRAPHER PLATFORM"`
	PhotographerID *int64   `json:"photographer_id" validate:"omitempty,min=1"`
	PeriodStart    string   `json:"period_start" validate:"required"`
	PeriodEnd      string   `json:"period_end" validate:"required"`
	OrderIDs       []string `json:"order_ids" validate:"omitempty,dive,required"`
}

type GetManySettlementRequest struct {
	Page int64 `validate:"required,min=1"`
	Size int64 `validate:"required,min=1,max=100"`
}
