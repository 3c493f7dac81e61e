package order

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
	"github.com/sirupsen/logrus"

	"github.com/snapfield/sf-order/internal/module/adminapp/photographer"
	"github.com/snapfield/sf-order/internal/module/customerapp/gallery"
	"github.com/snapfield/sf-order/internal/module/customerapp/midtrans"
	"github.com/snapfield/sf-order/internal/module/customerapp/pricing"
	"github.com/snapfield/sf-order/internal/pkg/session"
	"github.com/snapfield/sf-order/internal/pkg/signedurl"
	"github.com/snapfield/sf-order/internal/pkg/util"
	"github.com/snapfield/sf-order/pkg/errors"
	"github.com/snapfield/sf-order/pkg/gctasks"
	"github.com/snapfield/sf-order/pkg/mailer"
	"github.com/snapfield/sf-order/pkg/pubsub"
	"github.com/snapfield/sf-order/pkg/status"
)

type OrderUseCase interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (PlaceOrderResponse, error)
	GetManyOrder(ctx context.Context, req GetManyOrderRequest) (GetManyOrderResponse, error)
	GetOrder(ctx context.Context, ID string) (GetOrderResponse, error)
	OnPaymentNotification(ctx context.Context, e PaymentNotificationEvent) error
	Download(ctx context.Context, req DownloadRequest) (DownloadResponse, error)
	OnExpireDownload(ctx context.Context, e ExpireDownloadEvent) error
	AbandonStalePending(ctx context.Context) (AbandonSweepResponse, error)
}

type orderUseCase struct {
	logger                      *logrus.Logger
	timeout                     time.Duration
	baseURL                     string
	abandonAfter                time.Duration
	downloadWindow              time.Duration
	basePhotoPrice              int64
	gatewayFlatFee              int64
	pricingTable                pricing.Table
	galleryRepository           gallery.GalleryRepository
	photoRepository             gallery.PhotoRepository
	photographerRepository      photographer.PhotographerRepository
	orderRepository             OrderRepository
	itemRepository              ItemRepository
	transactionDetailRepository TransactionDetailRepository
	midtransRepository          midtrans.MidtransRepository
	publisher                   pubsub.Publisher
	cloudTask                   gctasks.Client
	mail                        mailer.Mailer
	downloadSigner              *signedurl.Signer
}

type OrderUseCaseProperty struct {
	Logger                      *logrus.Logger
	Timeout                     time.Duration
	BaseURL                     string
	AbandonAfter                time.Duration
	DownloadWindow              time.Duration
	BasePhotoPrice              int64
	GatewayFlatFee              int64
	PricingTable                pricing.Table
	GalleryRepository           gallery.GalleryRepository
	PhotoRepository             gallery.PhotoRepository
	PhotographerRepository      photographer.PhotographerRepository
	OrderRepository             OrderRepository
	ItemRepository              ItemRepository
	TransactionDetailRepository TransactionDetailRepository
	MidtransRepository          midtrans.MidtransRepository
	Publisher                   pubsub.Publisher
	CloudTask                   gctasks.Client
	Mailer                      mailer.Mailer
	DownloadSigner              *signedurl.Signer
}

func NewOrderUseCase(props OrderUseCaseProperty) OrderUseCase {
	return &orderUseCase{
		logger:                      props.Logger,
		timeout:                     props.Timeout,
		baseURL:                     props.BaseURL,
		abandonAfter:                props.AbandonAfter,
		downloadWindow:              props.DownloadWindow,
		basePhotoPrice:              props.BasePhotoPrice,
		gatewayFlatFee:              props.GatewayFlatFee,
		pricingTable:                props.PricingTable,
		galleryRepository:           props.GalleryRepository,
		photoRepository:             props.PhotoRepository,
		photographerRepository:      props.PhotographerRepository,
		orderRepository:             props.OrderRepository,
		itemRepository:              props.ItemRepository,
		transactionDetailRepository: props.TransactionDetailRepository,
		midtransRepository:          props.MidtransRepository,
		publisher:                   props.Publisher,
		cloudTask:                   props.CloudTask,
		mail:                        props.Mailer,
		downloadSigner:              props.DownloadSigner,
	}
}

// PlaceOrder implements OrderUseCase.
func (u *orderUseCase) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (PlaceOrderResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	acc, err := session.GetAccountFromCtx(ctx)
	if err != nil {
		return PlaceOrderResponse{}, err
	}

	g, err := u.galleryRepository.FindByID(ctx, req.GalleryID, nil)
	if err != nil {
		return PlaceOrderResponse{}, err
	}

	if g.Status != gallery.GalleryStatusPublished {
		return PlaceOrderResponse{}, errors.New(http.StatusBadRequest, status.BAD_REQUEST, "gallery is not open for orders")
	}

	photos, err := u.photoRepository.FindManyByIDs(ctx, req.PhotoIDs, nil)
	if err != nil {
		return PlaceOrderResponse{}, err
	}

	photosByID := make(map[string]gallery.Photo, len(photos))
	for _, p := range photos {
		if p.GalleryID != g.ID {
			return PlaceOrderResponse{}, errors.New(http.StatusBadRequest, status.BAD_REQUEST, fmt.Sprintf("photo '%s' does not belong to gallery '%s'", p.ID, g.ID))
		}
		photosByID[p.ID] = p
	}

	for _, photoID := range req.PhotoIDs {
		if _, ok := photosByID[photoID]; !ok {
			return PlaceOrderResponse{}, errors.New(http.StatusBadRequest, status.BAD_REQUEST, fmt.Sprintf("photo '%s' is not found", photoID))
		}
	}

	quantity := int64(len(req.PhotoIDs))

	quote, err := pricing.Calculate(u.pricingTable, u.basePhotoPrice, quantity)
	if err != nil {
		return PlaceOrderResponse{}, err
	}

	now := time.Now()
	o := Order{
		ID:                 util.GenerateTimestampWithPrefix("PO"),
		PaymentMethod:      req.PaymentMethod,
		Status:             StatusPending,
		SettlementStatus:   SettlementStatusUnsettled,
		CustomerID:         acc.ID,
		CustomerName:       acc.Name,
		CustomerEmail:      acc.Email,
		GalleryID:          g.ID,
		PhotographerID:     g.PhotographerID,
		Quantity:           quantity,
		BaseUnitPrice:      quote.BaseUnitPrice,
		EffectiveUnitPrice: quote.EffectiveUnitPrice,
		TierName:           quote.TierName,
		DiscountPercentage: quote.DiscountPercentage,
		DiscountAmount:     quote.DiscountAmount,
		TotalAmount:        quote.TotalPrice,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	items := make([]Item, quantity)
	for k, photoID := range req.PhotoIDs {
		p := photosByID[photoID]
		items[k] = Item{
			OrderID:   o.ID,
			PhotoID:   p.ID,
			GalleryID: p.GalleryID,
			FileKey:   p.FileKey,
			UnitPrice: quote.EffectiveUnitPrice,
		}
	}
	o.Items = items

	chargeResponse, err := u.midtransRepository.Charge(ctx, midtrans.ChargeRequest{
		PaymentType: midtrans.BankTransferType,
		BankTransfer: midtrans.BankTransfer{
			Bank: req.PaymentMethod,
		},
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:     o.ID,
			GrossAmount: o.TotalAmount,
		},
	})
	if err != nil {
		return PlaceOrderResponse{}, err
	}

	o.TransactionID = &chargeResponse.TransactionID
	if len(chargeResponse.VaNumbers) > 0 {
		o.VirtualAccount = &chargeResponse.VaNumbers[0].VaNumber
	}

	tx, err := u.orderRepository.BeginTx(ctx)
	if err != nil {
		return PlaceOrderResponse{}, err
	}

	if err := u.orderRepository.Save(ctx, o, tx); err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return PlaceOrderResponse{}, err
	}

	for _, item := range o.Items {
		if err := u.itemRepository.Save(ctx, item, tx); err != nil {
			u.orderRepository.Rollback(ctx, tx)
			return PlaceOrderResponse{}, err
		}
	}

	if err := u.orderRepository.CommitTx(ctx, tx); err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return PlaceOrderResponse{}, err
	}

	resp := PlaceOrderResponse{}
	resp.PopulateFromEntity(o)

	return resp, nil
}

// GetManyOrder implements OrderUseCase.
func (u *orderUseCase) GetManyOrder(ctx context.Context, req GetManyOrderRequest) (GetManyOrderResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	acc, err := session.GetAccountFromCtx(ctx)
	if err != nil {
		return GetManyOrderResponse{}, err
	}

	offset := (req.Page - 1) * req.Size

	orders, err := u.orderRepository.FindManyByCustomerID(ctx, acc.ID, offset, req.Size, nil)
	if err != nil {
		return GetManyOrderResponse{}, err
	}

	resp := make(GetManyOrderResponse, len(orders))
	for k, o := range orders {
		resp[k].PopulateFromEntity(o)
	}

	return resp, nil
}

// GetOrder implements OrderUseCase.
func (u *orderUseCase) GetOrder(ctx context.Context, ID string) (GetOrderResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	acc, err := session.GetAccountFromCtx(ctx)
	if err != nil {
		return GetOrderResponse{}, err
	}

	o, err := u.orderRepository.FindByID(ctx, ID, nil)
	if err != nil {
		return GetOrderResponse{}, err
	}

	if o.CustomerID != acc.ID {
		return GetOrderResponse{}, errors.New(http.StatusForbidden, status.FORBIDDEN, "order belongs to another customer")
	}

	items, err := u.itemRepository.FindManyByOrderID(ctx, ID, nil)
	if err != nil {
		return GetOrderResponse{}, err
	}
	o.Items = items

	resp := GetOrderResponse{}
	resp.PopulateFromEntity(o)

	return resp, nil
}

// OnPaymentNotification implements OrderUseCase. The money split is computed
// exactly once here and persisted as the immutable transaction detail; later
// changes to the photographer's percentage never touch it.
func (u *orderUseCase) OnPaymentNotification(ctx context.Context, e PaymentNotificationEvent) error {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	if e.TransactionStatus != midtrans.TransactionStatusSettlement {
		return nil
	}

	// Never trust the webhook body alone; confirm against the gateway.
	gatewayStatus, err := u.midtransRepository.GetTransactionStatus(ctx, e.OrderID)
	if err != nil {
		return err
	}
	if gatewayStatus.TransactionStatus != midtrans.TransactionStatusSettlement {
		u.logger.WithContext(ctx).WithFields(logrus.Fields{
			"order_id":        e.OrderID,
			"notified_status": e.TransactionStatus,
			"gateway_status":  gatewayStatus.TransactionStatus,
		}).Warn("payment notification does not match gateway status")
		return nil
	}

	tx, err := u.orderRepository.BeginTx(ctx)
	if err != nil {
		return err
	}

	o, err := u.orderRepository.FindByIDForUpdate(ctx, e.OrderID, tx)
	if err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return err
	}

	if o.Status != StatusPending {
		u.orderRepository.Rollback(ctx, tx)
		return nil
	}

	p, err := u.photographerRepository.FindByID(ctx, o.PhotographerID, tx)
	if err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return err
	}

	grossAmount := o.TotalAmount
	gatewayFee := u.gatewayFlatFee
	if gatewayFee > grossAmount {
		gatewayFee = grossAmount
	}
	netAmount := grossAmount - gatewayFee

	split, err := pricing.SplitNet(netAmount, p.SharePercentage)
	if err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return err
	}

	now := time.Now()
	detail := TransactionDetail{
		OrderID:                o.ID,
		GrossAmount:            grossAmount,
		GatewayFee:             gatewayFee,
		NetAmount:              netAmount,
		PhotographerShare:      split.PhotographerShare,
		PlatformShare:          split.PlatformShare,
		PhotographerPercentage: p.SharePercentage,
		CreatedAt:              now,
	}

	if err := u.transactionDetailRepository.Save(ctx, detail, tx); err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return err
	}

	o.Status = StatusPaid
	o.UpdatedAt = now

	if err := u.orderRepository.Update(ctx, o.ID, o, tx); err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return err
	}

	if err := u.orderRepository.CommitTx(ctx, tx); err != nil {
		return err
	}

	// Side effects past this point are retryable; the committed state above
	// stays consistent even when they fail.
	items, err := u.itemRepository.FindManyByOrderID(ctx, o.ID, nil)
	if err == nil {
		o.Items = items
	}

	u.deliverDownloadLinks(ctx, o)

	orderBuff, _ := json.Marshal(o)
	if o.TransactionID != nil {
		u.publisher.Publish(ctx, "order-paid", *o.TransactionID, nil, orderBuff)
	}

	expiryEvent, _ := json.Marshal(ExpireDownloadEvent{ID: o.ID})
	tasksRequest := gctasks.Request{
		URL:    fmt.Sprintf("%s/sf-order/v1/customerapp/orders/on-expire-download", u.baseURL),
		Method: cloudtaskspb.HttpMethod_POST,
		Body:   expiryEvent,
	}
	if err := u.cloudTask.DeferCreateTaskInDuration("expire-download", tasksRequest, u.downloadWindow); err != nil {
		u.logger.WithContext(ctx).WithError(err).WithField("order_id", o.ID).Error("failed to schedule download expiry")
	}

	return nil
}

func (u *orderUseCase) deliverDownloadLinks(ctx context.Context, o Order) {
	downloadPath := fmt.Sprintf("/sf-order/v1/customerapp/orders/%s/download", o.ID)
	signedPath := u.downloadSigner.Sign(downloadPath, time.Now().Add(u.downloadWindow))
	downloadURL := u.baseURL + signedPath

	email := mailer.Email{
		To:      []mailer.Recipient{{Name: o.CustomerName, Email: o.CustomerEmail}},
		Subject: fmt.Sprintf("Your photos are ready: order %s", o.ID),
		HTMLContent: fmt.Sprintf(
			"<p>Hi %s,</p><p>Thank you for your purchase. Your %d photo(s) are ready for download:</p><p><a href=%q>Download your photos</a></p><p>The link stays valid for %.0f hours.</p>",
			o.CustomerName, o.Quantity, downloadURL, u.downloadWindow.Hours(),
		),
	}

	if err := u.mail.Send(ctx, email); err != nil {
		u.logger.WithContext(ctx).WithError(err).WithField("order_id", o.ID).Error("failed to send download email")
	}
}

// Download implements OrderUseCase. The first successful download moves the
// order to DELIVERED.
func (u *orderUseCase) Download(ctx context.Context, req DownloadRequest) (DownloadResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	downloadPath := fmt.Sprintf("/sf-order/v1/customerapp/orders/%s/download", req.OrderID)
	if err := u.downloadSigner.Verify(downloadPath, req.Expires, req.Signature, time.Now()); err != nil {
		return DownloadResponse{}, err
	}

	tx, err := u.orderRepository.BeginTx(ctx)
	if err != nil {
		return DownloadResponse{}, err
	}

	o, err := u.orderRepository.FindByIDForUpdate(ctx, req.OrderID, tx)
	if err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return DownloadResponse{}, err
	}

	switch o.Status {
	case StatusPaid:
		o.Status = StatusDelivered
		o.UpdatedAt = time.Now()
		if err := u.orderRepository.Update(ctx, o.ID, o, tx); err != nil {
			u.orderRepository.Rollback(ctx, tx)
			return DownloadResponse{}, err
		}
	case StatusDelivered:
		// repeat download within the window is fine
	case StatusExpired:
		u.orderRepository.Rollback(ctx, tx)
		return DownloadResponse{}, errors.New(http.StatusForbidden, status.FORBIDDEN, "download window for this order has expired")
	default:
		u.orderRepository.Rollback(ctx, tx)
		return DownloadResponse{}, errors.New(http.StatusConflict, status.CONFLICT, "order is not paid")
	}

	items, err := u.itemRepository.FindManyByOrderID(ctx, o.ID, tx)
	if err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return DownloadResponse{}, err
	}

	if err := u.orderRepository.CommitTx(ctx, tx); err != nil {
		return DownloadResponse{}, err
	}

	resp := DownloadResponse{OrderID: o.ID, Status: o.Status}
	resp.Files = make([]DownloadFileResponse, len(items))
	for k, item := range items {
		resp.Files[k] = DownloadFileResponse{
			PhotoID: item.PhotoID,
			FileKey: item.FileKey,
		}
	}

	return resp, nil
}

// OnExpireDownload implements OrderUseCase.
func (u *orderUseCase) OnExpireDownload(ctx context.Context, e ExpireDownloadEvent) error {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	tx, err := u.orderRepository.BeginTx(ctx)
	if err != nil {
		return err
	}

	o, err := u.orderRepository.FindByIDForUpdate(ctx, e.ID, tx)
	if err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return err
	}

	if o.Status != StatusPaid {
		u.orderRepository.Rollback(ctx, tx)
		return nil
	}

	o.Status = StatusExpired
	o.UpdatedAt = time.Now()

	if err := u.orderRepository.Update(ctx, o.ID, o, tx); err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return err
	}

	return u.orderRepository.CommitTx(ctx, tx)
}

// AbandonStalePending implements OrderUseCase. Triggered by an external cron
// invoker, never self-scheduling.
func (u *orderUseCase) AbandonStalePending(ctx context.Context) (AbandonSweepResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	cutoff := time.Now().Add(-u.abandonAfter)

	abandoned, err := u.orderRepository.AbandonManyPendingBefore(ctx, cutoff, nil)
	if err != nil {
		return AbandonSweepResponse{}, err
	}

	if abandoned > 0 {
		u.logger.WithContext(ctx).WithField("abandoned", abandoned).Info("stale pending orders have been abandoned")
	}

	return AbandonSweepResponse{Abandoned: abandoned, Cutoff: cutoff}, nil
}
