package gallery

type GetManyGalleryRequest struct {
	Page int64 `validate:"required,min=1"`
	Size int64 `validate:"required,min=1,max=100"`
}

type QuotePriceRequest struct {
	Quantity int64 `validate:"required,min=1"`
}
