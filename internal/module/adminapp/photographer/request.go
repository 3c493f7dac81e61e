package photographer

type GetManyPhotographerRequest struct {
	Page int64 `validate:"required,min=1"`
	Size int64 `validate:"required,min=1,max=100"`
}

type UpdateSharePercentageRequest struct {
	PhotographerID  int64   `json:"-" validate:"required"`
	SharePercentage float64 `json:"share_percentage" validate:"min=0,max=100"`
}
