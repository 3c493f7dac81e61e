package photographer

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/snapfield/sf-order/pkg/errors"
	"github.com/snapfield/sf-order/pkg/status"
)

type PhotographerUseCase interface {
	GetManyPhotographer(ctx context.Context, req GetManyPhotographerRequest) (GetManyPhotographerResponse, error)
	GetPhotographer(ctx context.Context, ID int64) (GetPhotographerResponse, error)
	UpdateSharePercentage(ctx context.Context, req UpdateSharePercentageRequest) error
}

type photographerUseCase struct {
	logger                 *logrus.Logger
	timeout                time.Duration
	photographerRepository PhotographerRepository
}

type PhotographerUseCaseProperty struct {
	Logger                 *logrus.Logger
	Timeout                time.Duration
	PhotographerRepository PhotographerRepository
}

func NewPhotographerUseCase(props PhotographerUseCaseProperty) PhotographerUseCase {
	return &photographerUseCase{
		logger:                 props.Logger,
		timeout:                props.Timeout,
		photographerRepository: props.PhotographerRepository,
	}
}

// GetManyPhotographer implements PhotographerUseCase.
func (u *photographerUseCase) GetManyPhotographer(ctx context.Context, req GetManyPhotographerRequest) (GetManyPhotographerResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	offset := (req.Page - 1) * req.Size

	photographers, err := u.photographerRepository.FindManyActive(ctx, offset, req.Size, nil)
	if err != nil {
		return GetManyPhotographerResponse{}, err
	}

	resp := make(GetManyPhotographerResponse, len(photographers))
	for k, p := range photographers {
		resp[k].PopulateFromEntity(p)
	}

	return resp, nil
}

// GetPhotographer implements PhotographerUseCase.
func (u *photographerUseCase) GetPhotographer(ctx context.Context, ID int64) (GetPhotographerResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	p, err := u.photographerRepository.FindByID(ctx, ID, nil)
	if err != nil {
		return GetPhotographerResponse{}, err
	}

	resp := GetPhotographerResponse{}
	resp.PopulateFromEntity(p)

	return resp, nil
}

// UpdateSharePercentage implements PhotographerUseCase. Only future
// transaction splits are affected; persisted transaction details are
// immutable.
func (u *photographerUseCase) UpdateSharePercentage(ctx context.Context, req UpdateSharePercentageRequest) error {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	if req.SharePercentage < 0 || req.SharePercentage > 100 {
		return errors.New(http.StatusBadRequest, status.BAD_REQUEST, "share percentage must be between 0 and 100")
	}

	if _, err := u.photographerRepository.FindByID(ctx, req.PhotographerID, nil); err != nil {
		return err
	}

	return u.photographerRepository.UpdateSharePercentage(ctx, req.PhotographerID, req.SharePercentage, nil)
}
