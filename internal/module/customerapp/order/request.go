package order

type PlaceOrderRequest struct {
	PaymentMethod string   `json:"payment_method" validate:"oneof=bca bri bni"`
	GalleryID     string   `json:"gallery_id" validate:"required"`
	PhotoIDs      []string `json:"photo_ids" validate:"required,min=1,dive,required"`
}

type GetManyOrderRequest struct {
	Page int64 `validate:"required,min=1"`
	Size int64 `validate:"required,min=1,max=100"`
}

type DownloadRequest struct {
	OrderID   string `validate:"required"`
	Expires   int64  `validate:"required"`
	Signature string `validate:"required"`
}
