package order

import (
	"context"
	"database/sql"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/snapfield/sf-order/internal/module/adminapp/photographer"
	"github.com/snapfield/sf-order/internal/module/customerapp/gallery"
	"github.com/snapfield/sf-order/internal/module/customerapp/midtrans"
	"github.com/snapfield/sf-order/internal/module/customerapp/pricing"
	"github.com/snapfield/sf-order/internal/pkg/session"
	"github.com/snapfield/sf-order/internal/pkg/signedurl"
	"github.com/snapfield/sf-order/pkg/applogger"
	"github.com/snapfield/sf-order/pkg/gctasks"
	"github.com/snapfield/sf-order/pkg/mailer"
)

type fakeGalleryRepository struct {
	galleries map[string]gallery.Gallery
}

func (f *fakeGalleryRepository) FindByID(ctx context.Context, ID string, tx *sql.Tx) (gallery.Gallery, error) {
	g, ok := f.galleries[ID]
	if !ok {
		return gallery.Gallery{}, sql.ErrNoRows
	}

	return g, nil
}

func (f *fakeGalleryRepository) FindManyPublished(ctx context.Context, offset, limit int64, tx *sql.Tx) ([]gallery.Gallery, error) {
	return nil, nil
}

type fakePhotoRepository struct {
	photos map[string]gallery.Photo
}

func (f *fakePhotoRepository) FindManyByGalleryID(ctx context.Context, galleryID string, tx *sql.Tx) ([]gallery.Photo, error) {
	return nil, nil
}

func (f *fakePhotoRepository) FindManyByIDs(ctx context.Context, IDs []string, tx *sql.Tx) ([]gallery.Photo, error) {
	seen := make(map[string]bool)
	data := make([]gallery.Photo, 0)
	for _, id := range IDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		if p, ok := f.photos[id]; ok {
			data = append(data, p)
		}
	}

	return data, nil
}

type fakePhotographerRepository struct {
	photographers map[int64]photographer.Photographer
}

func (f *fakePhotographerRepository) FindByID(ctx context.Context, ID int64, tx *sql.Tx) (photographer.Photographer, error) {
	p, ok := f.photographers[ID]
	if !ok {
		return photographer.Photographer{}, sql.ErrNoRows
	}

	return p, nil
}

func (f *fakePhotographerRepository) FindManyActive(ctx context.Context, offset, limit int64, tx *sql.Tx) ([]photographer.Photographer, error) {
	return nil, nil
}

func (f *fakePhotographerRepository) UpdateSharePercentage(ctx context.Context, ID int64, sharePercentage float64, tx *sql.Tx) error {
	return nil
}

type fakeOrderRepository struct {
	orders    map[string]Order
	committed bool
	abandoned int64
	cutoff    time.Time
}

func (f *fakeOrderRepository) BeginTx(ctx context.Context) (*sql.Tx, error) { return nil, nil }

func (f *fakeOrderRepository) CommitTx(ctx context.Context, tx *sql.Tx) error {
	f.committed = true
	return nil
}

func (f *fakeOrderRepository) Rollback(ctx context.Context, tx *sql.Tx) error { return nil }

func (f *fakeOrderRepository) Save(ctx context.Context, o Order, tx *sql.Tx) error {
	f.orders[o.ID] = o
	return nil
}

func (f *fakeOrderRepository) FindByID(ctx context.Context, ID string, tx *sql.Tx) (Order, error) {
	o, ok := f.orders[ID]
	if !ok {
		return Order{}, sql.ErrNoRows
	}

	return o, nil
}

func (f *fakeOrderRepository) FindByIDForUpdate(ctx context.Context, ID string, tx *sql.Tx) (Order, error) {
	return f.FindByID(ctx, ID, tx)
}

func (f *fakeOrderRepository) FindManyByCustomerID(ctx context.Context, customerID int64, offset, limit int64, tx *sql.Tx) ([]Order, error) {
	data := make([]Order, 0)
	for _, o := range f.orders {
		if o.CustomerID == customerID {
			data = append(data, o)
		}
	}

	return data, nil
}

func (f *fakeOrderRepository) Count(ctx context.Context, customerID int64, tx *sql.Tx) (int64, error) {
	return int64(len(f.orders)), nil
}

func (f *fakeOrderRepository) Update(ctx context.Context, ID string, o Order, tx *sql.Tx) error {
	f.orders[ID] = o
	return nil
}

func (f *fakeOrderRepository) AbandonManyPendingBefore(ctx context.Context, cutoff time.Time, tx *sql.Tx) (int64, error) {
	f.cutoff = cutoff

	var n int64
	for id, o := range f.orders {
		if o.Status == StatusPending && o.CreatedAt.Before(cutoff) {
			o.Status = StatusAbandoned
			f.orders[id] = o
			n++
		}
	}
	f.abandoned = n

	return n, nil
}

type fakeItemRepository struct {
	items []Item
}

func (f *fakeItemRepository) FindManyByOrderID(ctx context.Context, orderID string, tx *sql.Tx) ([]Item, error) {
	data := make([]Item, 0)
	for _, i := range f.items {
		if i.OrderID == orderID {
			data = append(data, i)
		}
	}

	return data, nil
}

func (f *fakeItemRepository) Save(ctx context.Context, i Item, tx *sql.Tx) error {
	f.items = append(f.items, i)
	return nil
}

type fakeTransactionDetailRepository struct {
	details map[string]TransactionDetail
}

func (f *fakeTransactionDetailRepository) Save(ctx context.Context, d TransactionDetail, tx *sql.Tx) error {
	f.details[d.OrderID] = d
	return nil
}

func (f *fakeTransactionDetailRepository) FindByOrderID(ctx context.Context, orderID string, tx *sql.Tx) (TransactionDetail, error) {
	d, ok := f.details[orderID]
	if !ok {
		return TransactionDetail{}, sql.ErrNoRows
	}

	return d, nil
}

type fakeMidtransRepository struct {
	chargeRequests []midtrans.ChargeRequest
	gatewayStatus  string
}

func (f *fakeMidtransRepository) Charge(ctx context.Context, req midtrans.ChargeRequest) (midtrans.ChargeResponse, error) {
	f.chargeRequests = append(f.chargeRequests, req)
	return midtrans.ChargeResponse{
		TransactionID: "trx-1",
		OrderID:       req.TransactionDetails.OrderID,
		VaNumbers:     []midtrans.VANumber{{Bank: req.BankTransfer.Bank, VaNumber: "8880001234"}},
	}, nil
}

func (f *fakeMidtransRepository) GetTransactionStatus(ctx context.Context, orderID string) (midtrans.TransactionStatusResponse, error) {
	return midtrans.TransactionStatusResponse{
		OrderID:           orderID,
		TransactionStatus: f.gatewayStatus,
	}, nil
}

type fakeOrderPublisher struct {
	topics []string
}

func (f *fakeOrderPublisher) Publish(ctx context.Context, topic, key string, headers map[string]string, message []byte) error {
	f.topics = append(f.topics, topic)
	return nil
}

func (f *fakeOrderPublisher) Close() {}

type fakeCloudTask struct {
	queueIDs []string
}

func (f *fakeCloudTask) CreateQueue(id string) error { return nil }

func (f *fakeCloudTask) CreateTask(queueID string, request gctasks.Request) error {
	f.queueIDs = append(f.queueIDs, queueID)
	return nil
}

func (f *fakeCloudTask) DeferCreateTaskInDuration(queueID string, request gctasks.Request, duration time.Duration) error {
	f.queueIDs = append(f.queueIDs, queueID)
	return nil
}

func (f *fakeCloudTask) DeferCreateTaskInTime(queueID string, request gctasks.Request, schedule time.Time) error {
	f.queueIDs = append(f.queueIDs, queueID)
	return nil
}

func (f *fakeCloudTask) Close() error { return nil }

type fakeMailer struct {
	sent []mailer.Email
}

func (f *fakeMailer) Send(ctx context.Context, email mailer.Email) error {
	f.sent = append(f.sent, email)
	return nil
}

type orderTestEnv struct {
	useCase       OrderUseCase
	galleryRepo   *fakeGalleryRepository
	photoRepo     *fakePhotoRepository
	orderRepo     *fakeOrderRepository
	itemRepo      *fakeItemRepository
	detailRepo    *fakeTransactionDetailRepository
	midtransRepo  *fakeMidtransRepository
	publisher     *fakeOrderPublisher
	cloudTask     *fakeCloudTask
	mail          *fakeMailer
	signer        *signedurl.Signer
	photographers *fakePhotographerRepository
}

func newOrderTestEnv(t *testing.T) *orderTestEnv {
	t.Helper()

	table, err := pricing.NewTable([]pricing.Tier{
		{Threshold: 1, DiscountPercentage: 0, TierName: "base"},
		{Threshold: 5, DiscountPercentage: 10, TierName: "bronze"},
		{Threshold: 10, DiscountPercentage: 20, TierName: "silver"},
		{Threshold: 20, DiscountPercentage: 30, TierName: "gold"},
	})
	require.NoError(t, err)

	env := &orderTestEnv{
		galleryRepo: &fakeGalleryRepository{galleries: map[string]gallery.Gallery{
			"G-1": {ID: "G-1", Title: "Jakarta Marathon", PhotographerID: 11, Status: gallery.GalleryStatusPublished},
			"G-2": {ID: "G-2", Title: "Unreleased", PhotographerID: 11, Status: gallery.GalleryStatusDraft},
		}},
		photoRepo: &fakePhotoRepository{photos: map[string]gallery.Photo{
			"P-1": {ID: "P-1", GalleryID: "G-1", FileKey: "g1/p1.jpg"},
			"P-2": {ID: "P-2", GalleryID: "G-1", FileKey: "g1/p2.jpg"},
			"P-3": {ID: "P-3", GalleryID: "G-1", FileKey: "g1/p3.jpg"},
		}},
		photographers: &fakePhotographerRepository{photographers: map[int64]photographer.Photographer{
			11: {ID: 11, Name: "Raka", SharePercentage: 70, Active: true},
		}},
		orderRepo:    &fakeOrderRepository{orders: make(map[string]Order)},
		itemRepo:     &fakeItemRepository{},
		detailRepo:   &fakeTransactionDetailRepository{details: make(map[string]TransactionDetail)},
		midtransRepo: &fakeMidtransRepository{gatewayStatus: midtrans.TransactionStatusSettlement},
		publisher:    &fakeOrderPublisher{},
		cloudTask:    &fakeCloudTask{},
		mail:         &fakeMailer{},
		signer:       signedurl.NewSigner("test-secret"),
	}

	env.useCase = NewOrderUseCase(OrderUseCaseProperty{
		Logger:                      applogger.GetLogrus(),
		Timeout:                     5 * time.Second,
		BaseURL:                     "https://api.snapfield.test",
		AbandonAfter:                48 * time.Hour,
		DownloadWindow:              72 * time.Hour,
		BasePhotoPrice:              2000,
		GatewayFlatFee:              4000,
		PricingTable:                table,
		GalleryRepository:           env.galleryRepo,
		PhotoRepository:             env.photoRepo,
		PhotographerRepository:      env.photographers,
		OrderRepository:             env.orderRepo,
		ItemRepository:              env.itemRepo,
		TransactionDetailRepository: env.detailRepo,
		MidtransRepository:          env.midtransRepo,
		Publisher:                   env.publisher,
		CloudTask:                   env.cloudTask,
		Mailer:                      env.mail,
		DownloadSigner:              env.signer,
	})

	return env
}

func parseSignedQuery(t *testing.T, signedPath string) (int64, string) {
	t.Helper()

	u, err := url.Parse(signedPath)
	require.NoError(t, err)

	expires, err := strconv.ParseInt(u.Query().Get("expires"), 10, 64)
	require.NoError(t, err)

	return expires, u.Query().Get("signature")
}

func customerContext() context.Context {
	return session.ContextWithAccount(context.Background(), session.Account{
		ID:    7,
		Name:  "Dewi",
		Email: "dewi@example.com",
		Role:  session.RoleCustomer,
	})
}

func TestPlaceOrderAppliesTierDiscount(t *testing.T) {
	env := newOrderTestEnv(t)

	resp, err := env.useCase.PlaceOrder(customerContext(), PlaceOrderRequest{
		PaymentMethod: "bca",
		GalleryID:     "G-1",
		PhotoIDs:      []string{"P-1", "P-2", "P-3", "P-1", "P-2", "P-3", "P-1"},
	})
	require.NoError(t, err)

	require.Equal(t, int64(7), resp.Quantity)
	require.Equal(t, "bronze", resp.TierName)
	require.Equal(t, int64(1800), resp.EffectiveUnitPrice)
	require.Equal(t, int64(12600), resp.TotalAmount)
	require.Equal(t, int64(1400), resp.DiscountAmount)
	require.Equal(t, StatusPending, resp.Status)
	require.Equal(t, SettlementStatusUnsettled, resp.SettlementStatus)
	require.NotNil(t, resp.VirtualAccount)

	require.Len(t, env.itemRepo.items, 7)
	require.True(t, env.orderRepo.committed)
	require.Len(t, env.midtransRepo.chargeRequests, 1)
	require.Equal(t, int64(12600), env.midtransRepo.chargeRequests[0].TransactionDetails.GrossAmount)
}

func TestPlaceOrderRejectsUnpublishedGallery(t *testing.T) {
	env := newOrderTestEnv(t)

	_, err := env.useCase.PlaceOrder(customerContext(), PlaceOrderRequest{
		PaymentMethod: "bca",
		GalleryID:     "G-2",
		PhotoIDs:      []string{"P-1"},
	})
	require.Error(t, err)
}

func TestPlaceOrderRejectsForeignPhoto(t *testing.T) {
	env := newOrderTestEnv(t)
	env.photoRepo.photos["P-X"] = gallery.Photo{ID: "P-X", GalleryID: "G-9", FileKey: "g9/px.jpg"}

	_, err := env.useCase.PlaceOrder(customerContext(), PlaceOrderRequest{
		PaymentMethod: "bca",
		GalleryID:     "G-1",
		PhotoIDs:      []string{"P-1", "P-X"},
	})
	require.Error(t, err)
}

func placePaidOrder(t *testing.T, env *orderTestEnv) Order {
	t.Helper()

	resp, err := env.useCase.PlaceOrder(customerContext(), PlaceOrderRequest{
		PaymentMethod: "bca",
		GalleryID:     "G-1",
		PhotoIDs:      []string{"P-1", "P-2", "P-3", "P-1", "P-2", "P-3", "P-1"},
	})
	require.NoError(t, err)

	err = env.useCase.OnPaymentNotification(context.Background(), PaymentNotificationEvent{
		OrderID:           resp.ID,
		TransactionStatus: midtrans.TransactionStatusSettlement,
	})
	require.NoError(t, err)

	return env.orderRepo.orders[resp.ID]
}

func TestOnPaymentNotificationPersistsExactSplit(t *testing.T) {
	env := newOrderTestEnv(t)

	o := placePaidOrder(t, env)
	require.Equal(t, StatusPaid, o.Status)

	detail, ok := env.detailRepo.details[o.ID]
	require.True(t, ok)

	require.Equal(t, int64(12600), detail.GrossAmount)
	require.Equal(t, int64(4000), detail.GatewayFee)
	require.Equal(t, int64(8600), detail.NetAmount)
	require.Equal(t, int64(6020), detail.PhotographerShare)
	require.Equal(t, int64(2580), detail.PlatformShare)
	require.Equal(t, float64(70), detail.PhotographerPercentage)

	require.Equal(t, detail.NetAmount, detail.PhotographerShare+detail.PlatformShare)
	require.Equal(t, detail.GrossAmount, detail.NetAmount+detail.GatewayFee)

	require.Equal(t, []string{"order-paid"}, env.publisher.topics)
	require.Equal(t, []string{"expire-download"}, env.cloudTask.queueIDs)
	require.Len(t, env.mail.sent, 1)
}

func TestOnPaymentNotificationIsIdempotent(t *testing.T) {
	env := newOrderTestEnv(t)

	o := placePaidOrder(t, env)

	err := env.useCase.OnPaymentNotification(context.Background(), PaymentNotificationEvent{
		OrderID:           o.ID,
		TransactionStatus: midtrans.TransactionStatusSettlement,
	})
	require.NoError(t, err)

	require.Len(t, env.mail.sent, 1)
	require.Len(t, env.publisher.topics, 1)
}

func TestOnPaymentNotificationIgnoresNonSettlementStatus(t *testing.T) {
	env := newOrderTestEnv(t)

	resp, err := env.useCase.PlaceOrder(customerContext(), PlaceOrderRequest{
		PaymentMethod: "bca",
		GalleryID:     "G-1",
		PhotoIDs:      []string{"P-1"},
	})
	require.NoError(t, err)

	err = env.useCase.OnPaymentNotification(context.Background(), PaymentNotificationEvent{
		OrderID:           resp.ID,
		TransactionStatus: midtrans.TransactionStatusPending,
	})
	require.NoError(t, err)

	require.Equal(t, StatusPending, env.orderRepo.orders[resp.ID].Status)
	require.Empty(t, env.detailRepo.details)
}

func TestOnPaymentNotificationVerifiesAgainstGateway(t *testing.T) {
	env := newOrderTestEnv(t)
	env.midtransRepo.gatewayStatus = midtrans.TransactionStatusPending

	resp, err := env.useCase.PlaceOrder(customerContext(), PlaceOrderRequest{
		PaymentMethod: "bca",
		GalleryID:     "G-1",
		PhotoIDs:      []string{"P-1"},
	})
	require.NoError(t, err)

	err = env.useCase.OnPaymentNotification(context.Background(), PaymentNotificationEvent{
		OrderID:           resp.ID,
		TransactionStatus: midtrans.TransactionStatusSettlement,
	})
	require.NoError(t, err)

	require.Equal(t, StatusPending, env.orderRepo.orders[resp.ID].Status)
	require.Empty(t, env.detailRepo.details)
}

func TestDownloadMovesPaidOrderToDelivered(t *testing.T) {
	env := newOrderTestEnv(t)

	o := placePaidOrder(t, env)

	expiresAt := time.Now().Add(time.Hour)
	signedPath := env.signer.Sign("/sf-order/v1/customerapp/orders/"+o.ID+"/download", expiresAt)
	expires, signature := parseSignedQuery(t, signedPath)

	resp, err := env.useCase.Download(context.Background(), DownloadRequest{
		OrderID:   o.ID,
		Expires:   expires,
		Signature: signature,
	})
	require.NoError(t, err)

	require.Equal(t, StatusDelivered, resp.Status)
	require.Len(t, resp.Files, 7)
	require.Equal(t, StatusDelivered, env.orderRepo.orders[o.ID].Status)

	// a repeat download within the window stays DELIVERED
	resp, err = env.useCase.Download(context.Background(), DownloadRequest{
		OrderID:   o.ID,
		Expires:   expires,
		Signature: signature,
	})
	require.NoError(t, err)
	require.Equal(t, StatusDelivered, resp.Status)
}

func TestDownloadForbiddenAfterExpiry(t *testing.T) {
	env := newOrderTestEnv(t)

	o := placePaidOrder(t, env)

	err := env.useCase.OnExpireDownload(context.Background(), ExpireDownloadEvent{ID: o.ID})
	require.NoError(t, err)
	require.Equal(t, StatusExpired, env.orderRepo.orders[o.ID].Status)

	expiresAt := time.Now().Add(time.Hour)
	signedPath := env.signer.Sign("/sf-order/v1/customerapp/orders/"+o.ID+"/download", expiresAt)
	expires, signature := parseSignedQuery(t, signedPath)

	_, err = env.useCase.Download(context.Background(), DownloadRequest{
		OrderID:   o.ID,
		Expires:   expires,
		Signature: signature,
	})
	require.Error(t, err)
}

func TestOnExpireDownloadSkipsDeliveredOrder(t *testing.T) {
	env := newOrderTestEnv(t)

	o := placePaidOrder(t, env)

	expiresAt := time.Now().Add(time.Hour)
	signedPath := env.signer.Sign("/sf-order/v1/customerapp/orders/"+o.ID+"/download", expiresAt)
	expires, signature := parseSignedQuery(t, signedPath)

	_, err := env.useCase.Download(context.Background(), DownloadRequest{
		OrderID:   o.ID,
		Expires:   expires,
		Signature: signature,
	})
	require.NoError(t, err)

	err = env.useCase.OnExpireDownload(context.Background(), ExpireDownloadEvent{ID: o.ID})
	require.NoError(t, err)

	require.Equal(t, StatusDelivered, env.orderRepo.orders[o.ID].Status)
}

func TestAbandonStalePendingSweepsOldOrdersOnly(t *testing.T) {
	env := newOrderTestEnv(t)

	env.orderRepo.orders["PO-old"] = Order{
		ID:        "PO-old",
		Status:    StatusPending,
		CreatedAt: time.Now().Add(-72 * time.Hour),
	}
	env.orderRepo.orders["PO-fresh"] = Order{
		ID:        "PO-fresh",
		Status:    StatusPending,
		CreatedAt: time.Now().Add(-time.Hour),
	}
	env.orderRepo.orders["PO-paid"] = Order{
		ID:        "PO-paid",
		Status:    StatusPaid,
		CreatedAt: time.Now().Add(-72 * time.Hour),
	}

	resp, err := env.useCase.AbandonStalePending(context.Background())
	require.NoError(t, err)

	require.Equal(t, int64(1), resp.Abandoned)
	require.Equal(t, StatusAbandoned, env.orderRepo.orders["PO-old"].Status)
	require.Equal(t, StatusPending, env.orderRepo.orders["PO-fresh"].Status)
	require.Equal(t, StatusPaid, env.orderRepo.orders["PO-paid"].Status)
}
