package gallery

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/snapfield/sf-order/internal/module/customerapp/pricing"
)

type GalleryUseCase interface {
	GetManyGallery(ctx context.Context, req GetManyGalleryRequest) (GetManyGalleryResponse, error)
	GetGallery(ctx context.Context, ID string) (GetGalleryResponse, error)
	GetManyPhoto(ctx context.Context, galleryID string) (GetManyPhotoResponse, error)
	QuotePrice(ctx context.Context, req QuotePriceRequest) (QuotePriceResponse, error)
}

type galleryUseCase struct {
	logger            *logrus.Logger
	timeout           time.Duration
	basePhotoPrice    int64
	pricingTable      pricing.Table
	galleryRepository GalleryRepository
	photoRepository   PhotoRepository
}

type GalleryUseCaseProperty struct {
	Logger            *logrus.Logger
	Timeout           time.Duration
	BasePhotoPrice    int64
	PricingTable      pricing.Table
	GalleryRepository GalleryRepository
	PhotoRepository   PhotoRepository
}

func NewGalleryUseCase(props GalleryUseCaseProperty) GalleryUseCase {
	return &galleryUseCase{
		logger:            props.Logger,
		timeout:           props.Timeout,
		basePhotoPrice:    props.BasePhotoPrice,
		pricingTable:      props.PricingTable,
		galleryRepository: props.GalleryRepository,
		photoRepository:   props.PhotoRepository,
	}
}

// GetManyGallery implements GalleryUseCase.
func (u *galleryUseCase) GetManyGallery(ctx context.Context, req GetManyGalleryRequest) (GetManyGalleryResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	offset := (req.Page - 1) * req.Size

	galleries, err := u.galleryRepository.FindManyPublished(ctx, offset, req.Size, nil)
	if err != nil {
		return GetManyGalleryResponse{}, err
	}

	resp := make(GetManyGalleryResponse, len(galleries))
	for k, g := range galleries {
		resp[k].PopulateFromEntity(g)
	}

	return resp, nil
}

// GetGallery implements GalleryUseCase.
func (u *galleryUseCase) GetGallery(ctx context.Context, ID string) (GetGalleryResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	g, err := u.galleryRepository.FindByID(ctx, ID, nil)
	if err != nil {
		return GetGalleryResponse{}, err
	}

	resp := GetGalleryResponse{}
	resp.PopulateFromEntity(g)

	return resp, nil
}

// GetManyPhoto implements GalleryUseCase.
func (u *galleryUseCase) GetManyPhoto(ctx context.Context, galleryID string) (GetManyPhotoResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.galleryRepository.FindByID(ctx, galleryID, nil); err != nil {
		return GetManyPhotoResponse{}, err
	}

	photos, err := u.photoRepository.FindManyByGalleryID(ctx, galleryID, nil)
	if err != nil {
		return GetManyPhotoResponse{}, err
	}

	resp := make(GetManyPhotoResponse, len(photos))
	for k, p := range photos {
		resp[k] = PhotoResponse{
			ID:        p.ID,
			GalleryID: p.GalleryID,
			Thumbnail: p.Thumbnail,
			CreatedAt: p.CreatedAt,
		}
	}

	return resp, nil
}

// QuotePrice implements GalleryUseCase.
func (u *galleryUseCase) QuotePrice(ctx context.Context, req QuotePriceRequest) (QuotePriceResponse, error) {
	_, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	quote, err := pricing.Calculate(u.pricingTable, u.basePhotoPrice, req.Quantity)
	if err != nil {
		return QuotePriceResponse{}, err
	}

	resp := QuotePriceResponse{}
	resp.PopulateFromQuote(quote)

	if next, ok := pricing.NextTierFor(u.pricingTable, req.Quantity); ok {
		resp.NextTier = &NextTierResponse{
			TierName:           next.TierName,
			Threshold:          next.Threshold,
			DiscountPercentage: next.DiscountPercentage,
			UnitsToGo:          next.UnitsToGo,
		}
	}

	return resp, nil
}
