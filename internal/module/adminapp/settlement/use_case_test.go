package settlement

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/snapfield/sf-order/internal/module/customerapp/order"
	"github.com/snapfield/sf-order/pkg/applogger"
)

type fakeEarningsRepository struct {
	earnings      []Earning
	capturedStart time.Time
	capturedEnd   time.Time
}

func (f *fakeEarningsRepository) FindManyUnsettled(ctx context.Context, photographerID *int64, start, end time.Time, tx *sql.Tx) ([]Earning, error) {
	f.capturedStart = start
	f.capturedEnd = end

	data := make([]Earning, 0)
	for _, e := range f.earnings {
		if e.OrderCreatedAt.Before(start) || e.OrderCreatedAt.After(end) {
			continue
		}
		if photographerID != nil && e.PhotographerID != *photographerID {
			continue
		}

		data = append(data, e)
	}

	return data, nil
}

func (f *fakeEarningsRepository) FindManyByOrderIDs(ctx context.Context, orderIDs []string, tx *sql.Tx) ([]Earning, error) {
	data := make([]Earning, 0)
	for _, e := range f.earnings {
		for _, id := range orderIDs {
			if e.OrderID == id {
				data = append(data, e)
			}
		}
	}

	return data, nil
}

type fakeSettlementRepository struct {
	lockedStatuses map[string]string
	saved          []Settlement
	marked         []string
	markErr        error
	committed      bool
	rolledBack     bool
}

func (f *fakeSettlementRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return nil, nil
}

func (f *fakeSettlementRepository) CommitTx(ctx context.Context, tx *sql.Tx) error {
	f.committed = true
	return nil
}

func (f *fakeSettlementRepository) Rollback(ctx context.Context, tx *sql.Tx) {
	if !f.committed {
		f.rolledBack = true
	}
}

func (f *fakeSettlementRepository) Save(ctx context.Context, s Settlement, tx *sql.Tx) error {
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeSettlementRepository) FindByID(ctx context.Context, ID string, tx *sql.Tx) (Settlement, error) {
	for _, s := range f.saved {
		if s.ID == ID {
			return s, nil
		}
	}

	return Settlement{}, sql.ErrNoRows
}

func (f *fakeSettlementRepository) FindMany(ctx context.Context, offset, limit int) ([]Settlement, error) {
	return f.saved, nil
}

func (f *fakeSettlementRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(f.saved)), nil
}

func (f *fakeSettlementRepository) FindManyOrderSettlementStatusForUpdate(ctx context.Context, orderIDs []string, tx *sql.Tx) (map[string]string, error) {
	statuses := make(map[string]string)
	for _, id := range orderIDs {
		s, ok := f.lockedStatuses[id]
		if !ok {
			s = order.SettlementStatusUnsettled
		}

		statuses[id] = s
	}

	return statuses, nil
}

func (f *fakeSettlementRepository) MarkManyOrderSettled(ctx context.Context, orderIDs []string, updatedAt time.Time, tx *sql.Tx) error {
	if f.markErr != nil {
		return f.markErr
	}

	f.marked = append(f.marked, orderIDs...)
	return nil
}

type fakePublisher struct {
	topics   []string
	messages [][]byte
}

func (f *fakePublisher) Publish(ctx context.Context, topic, key string, headers map[string]string, message []byte) error {
	f.topics = append(f.topics, topic)
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakePublisher) Close() {}

var testLocation = time.FixedZone("WIB", 7*3600)

func newTestUseCase(earningsRepo *fakeEarningsRepository, settlementRepo *fakeSettlementRepository, publisher *fakePublisher) SettlementUseCase {
	return NewSettlementUseCase(SettlementUseCaseProperty{
		Logger:               applogger.GetLogrus(),
		Timeout:              5 * time.Second,
		Location:             testLocation,
		EarningsRepository:   earningsRepo,
		SettlementRepository: settlementRepo,
		Publisher:            publisher,
	})
}

func unsettledEarning(orderID string, photographerID int64, createdAt time.Time, photographerShare, platformShare int64) Earning {
	return Earning{
		OrderID:           orderID,
		PhotographerID:    photographerID,
		Status:            order.StatusPaid,
		SettlementStatus:  order.SettlementStatusUnsettled,
		Quantity:          2,
		OrderCreatedAt:    createdAt,
		HasDetail:         true,
		GrossAmount:       photographerShare + platformShare + 4000,
		GatewayFee:        4000,
		NetAmount:         photographerShare + platformShare,
		PhotographerShare: photographerShare,
		PlatformShare:     platformShare,
	}
}

func TestGetPendingEarningsWidensBareEndDateToEndOfDay(t *testing.T) {
	lateOnLastDay := time.Date(2026, 1, 19, 23, 0, 0, 0, testLocation)

	earningsRepo := &fakeEarningsRepository{
		earnings: []Earning{
			unsettledEarning("PO-1", 11, lateOnLastDay, 8820, 3780),
		},
	}
	settlementRepo := &fakeSettlementRepository{}

	uc := newTestUseCase(earningsRepo, settlementRepo, &fakePublisher{})

	resp, err := uc.GetPendingEarnings(context.Background(), GetPendingEarningsRequest{
		RecipientType: RecipientTypePhotographer,
		PeriodStart:   "2026-01-15",
		PeriodEnd:     "2026-01-19",
	})
	require.NoError(t, err)

	wantEnd := time.Date(2026, 1, 19, 23, 59, 59, int(999*time.Millisecond), testLocation)
	require.True(t, earningsRepo.capturedEnd.Equal(wantEnd))
	require.True(t, earningsRepo.capturedStart.Equal(time.Date(2026, 1, 15, 0, 0, 0, 0, testLocation)))

	require.Equal(t, int64(1), resp.OrderCount)
	require.Equal(t, int64(8820), resp.TotalAmount)
}

func TestGetPendingEarningsRejectsInvertedRange(t *testing.T) {
	uc := newTestUseCase(&fakeEarningsRepository{}, &fakeSettlementRepository{}, &fakePublisher{})

	_, err := uc.GetPendingEarnings(context.Background(), GetPendingEarningsRequest{
		RecipientType: RecipientTypePhotographer,
		PeriodStart:   "2026-01-19",
		PeriodEnd:     "2026-01-15",
	})
	require.Error(t, err)
}

func TestGetPendingEarningsReportsMissingDetailSeparately(t *testing.T) {
	createdAt := time.Date(2026, 1, 16, 10, 0, 0, 0, testLocation)

	degraded := unsettledEarning("PO-2", 11, createdAt, 0, 0)
	degraded.HasDetail = false

	earningsRepo := &fakeEarningsRepository{
		earnings: []Earning{
			unsettledEarning("PO-1", 11, createdAt, 7000, 3000),
			degraded,
		},
	}

	uc := newTestUseCase(earningsRepo, &fakeSettlementRepository{}, &fakePublisher{})

	resp, err := uc.GetPendingEarnings(context.Background(), GetPendingEarningsRequest{
		RecipientType: RecipientTypePhotographer,
		PeriodStart:   "2026-01-15",
		PeriodEnd:     "2026-01-19",
	})
	require.NoError(t, err)

	require.Equal(t, int64(1), resp.OrderCount)
	require.Equal(t, int64(7000), resp.TotalAmount)
	require.Equal(t, []string{"PO-2"}, resp.MissingDetails)
}

func TestPreviewSettlementSumsPlatformShares(t *testing.T) {
	createdAt := time.Date(2026, 1, 16, 10, 0, 0, 0, testLocation)

	earningsRepo := &fakeEarningsRepository{
		earnings: []Earning{
			unsettledEarning("PO-1", 11, createdAt, 8820, 3780),
			unsettledEarning("PO-2", 12, createdAt, 7000, 3000),
		},
	}

	uc := newTestUseCase(earningsRepo, &fakeSettlementRepository{}, &fakePublisher{})

	resp, err := uc.PreviewSettlement(context.Background(), PreviewSettlementRequest{
		RecipientType: RecipientTypePlatform,
		PeriodStart:   "2026-01-15",
		PeriodEnd:     "2026-01-19",
	})
	require.NoError(t, err)

	require.Equal(t, int64(6780), resp.TotalAmount)
	require.Equal(t, int64(2), resp.OrderCount)
	require.Equal(t, int64(4), resp.ItemCount)
	require.ElementsMatch(t, []string{"PO-1", "PO-2"}, resp.OrderIDs)
}

func TestCommitSettlementExcludesConcurrentlySettledOrder(t *testing.T) {
	createdAt := time.Date(2026, 1, 16, 10, 0, 0, 0, testLocation)

	earningsRepo := &fakeEarningsRepository{
		earnings: []Earning{
			unsettledEarning("PO-1", 11, createdAt, 5000, 2000),
			unsettledEarning("PO-2", 11, createdAt, 6000, 2500),
			unsettledEarning("PO-3", 11, createdAt, 7000, 3000),
		},
	}
	settlementRepo := &fakeSettlementRepository{
		lockedStatuses: map[string]string{
			"PO-2": order.SettlementStatusSettled,
		},
	}
	publisher := &fakePublisher{}

	uc := newTestUseCase(earningsRepo, settlementRepo, publisher)

	photographerID := int64(11)
	resp, err := uc.CommitSettlement(context.Background(), CommitSettlementRequest{
		RecipientType:  RecipientTypePhotographer,
		PhotographerID: &photographerID,
		PeriodStart:    "2026-01-15",
		PeriodEnd:      "2026-01-19",
	})
	require.NoError(t, err)

	require.Equal(t, []string{"PO-2"}, resp.Conflicts)
	require.ElementsMatch(t, []string{"PO-1", "PO-3"}, resp.Settlement.OrderIDs)
	require.Equal(t, int64(12000), resp.Settlement.TotalAmount)
	require.Equal(t, int64(2), resp.Settlement.OrderCount)
	require.NotEmpty(t, resp.Settlement.ID)

	require.ElementsMatch(t, []string{"PO-1", "PO-3"}, settlementRepo.marked)
	require.True(t, settlementRepo.committed)
	require.Len(t, settlementRepo.saved, 1)

	require.Equal(t, []string{"settlement-created"}, publisher.topics)
}

func TestCommitSettlementByExplicitOrderIDs(t *testing.T) {
	createdAt := time.Date(2026, 1, 16, 10, 0, 0, 0, testLocation)

	earningsRepo := &fakeEarningsRepository{
		earnings: []Earning{
			unsettledEarning("PO-1", 11, createdAt, 5000, 2000),
			unsettledEarning("PO-2", 11, createdAt, 6000, 2500),
		},
	}
	settlementRepo := &fakeSettlementRepository{}

	uc := newTestUseCase(earningsRepo, settlementRepo, &fakePublisher{})

	resp, err := uc.CommitSettlement(context.Background(), CommitSettlementRequest{
		RecipientType: RecipientTypePhotographer,
		PeriodStart:   "2026-01-15",
		PeriodEnd:     "2026-01-19",
		OrderIDs:      []string{"PO-2"},
	})
	require.NoError(t, err)

	require.Equal(t, []string{"PO-2"}, resp.Settlement.OrderIDs)
	require.Equal(t, int64(6000), resp.Settlement.TotalAmount)
	require.Empty(t, resp.Conflicts)
}

func TestCommitSettlementRejectsForeignPhotographerOrder(t *testing.T) {
	createdAt := time.Date(2026, 1, 16, 10, 0, 0, 0, testLocation)

	earningsRepo := &fakeEarningsRepository{
		earnings: []Earning{
			unsettledEarning("PO-own", 11, createdAt, 5000, 2000),
			unsettledEarning("PO-foreign", 12, createdAt, 9999, 1),
		},
	}
	settlementRepo := &fakeSettlementRepository{}

	uc := newTestUseCase(earningsRepo, settlementRepo, &fakePublisher{})

	photographerID := int64(11)
	resp, err := uc.CommitSettlement(context.Background(), CommitSettlementRequest{
		RecipientType:  RecipientTypePhotographer,
		PhotographerID: &photographerID,
		PeriodStart:    "2026-01-15",
		PeriodEnd:      "2026-01-19",
		OrderIDs:       []string{"PO-own", "PO-foreign"},
	})
	require.NoError(t, err)

	require.Equal(t, []string{"PO-foreign"}, resp.Conflicts)
	require.Equal(t, []string{"PO-own"}, resp.Settlement.OrderIDs)
	require.Equal(t, int64(5000), resp.Settlement.TotalAmount)
	require.Equal(t, []string{"PO-own"}, settlementRepo.marked)
}

func TestCommitSettlementRejectsOrderOutsidePeriod(t *testing.T) {
	earningsRepo := &fakeEarningsRepository{
		earnings: []Earning{
			unsettledEarning("PO-in", 11, time.Date(2026, 1, 16, 10, 0, 0, 0, testLocation), 5000, 2000),
			unsettledEarning("PO-out", 11, time.Date(2026, 2, 2, 10, 0, 0, 0, testLocation), 6000, 2500),
		},
	}
	settlementRepo := &fakeSettlementRepository{}

	uc := newTestUseCase(earningsRepo, settlementRepo, &fakePublisher{})

	photographerID := int64(11)
	resp, err := uc.CommitSettlement(context.Background(), CommitSettlementRequest{
		RecipientType:  RecipientTypePhotographer,
		PhotographerID: &photographerID,
		PeriodStart:    "2026-01-15",
		PeriodEnd:      "2026-01-19",
		OrderIDs:       []string{"PO-in", "PO-out"},
	})
	require.NoError(t, err)

	require.Equal(t, []string{"PO-out"}, resp.Conflicts)
	require.Equal(t, []string{"PO-in"}, resp.Settlement.OrderIDs)
}

func TestCommitSettlementRollsBackWhenMarkingFails(t *testing.T) {
	createdAt := time.Date(2026, 1, 16, 10, 0, 0, 0, testLocation)

	earningsRepo := &fakeEarningsRepository{
		earnings: []Earning{
			unsettledEarning("PO-1", 11, createdAt, 5000, 2000),
			unsettledEarning("PO-2", 11, createdAt, 6000, 2500),
		},
	}
	settlementRepo := &fakeSettlementRepository{
		markErr: sql.ErrTxDone,
	}
	publisher := &fakePublisher{}

	uc := newTestUseCase(earningsRepo, settlementRepo, publisher)

	_, err := uc.CommitSettlement(context.Background(), CommitSettlementRequest{
		RecipientType: RecipientTypePhotographer,
		PeriodStart:   "2026-01-15",
		PeriodEnd:     "2026-01-19",
	})
	require.Error(t, err)

	require.False(t, settlementRepo.committed)
	require.True(t, settlementRepo.rolledBack)
	require.Empty(t, settlementRepo.marked)
	require.Empty(t, publisher.topics)
}

func TestCommitSettlementFailsWhenNothingEligible(t *testing.T) {
	createdAt := time.Date(2026, 1, 16, 10, 0, 0, 0, testLocation)

	earningsRepo := &fakeEarningsRepository{
		earnings: []Earning{
			unsettledEarning("PO-1", 11, createdAt, 5000, 2000),
		},
	}
	settlementRepo := &fakeSettlementRepository{
		lockedStatuses: map[string]string{
			"PO-1": order.SettlementStatusSettled,
		},
	}

	uc := newTestUseCase(earningsRepo, settlementRepo, &fakePublisher{})

	_, err := uc.CommitSettlement(context.Background(), CommitSettlementRequest{
		RecipientType: RecipientTypePhotographer,
		PeriodStart:   "2026-01-15",
		PeriodEnd:     "2026-01-19",
	})
	require.Error(t, err)

	require.Empty(t, settlementRepo.saved)
	require.Empty(t, settlementRepo.marked)
	require.True(t, settlementRepo.rolledBack)
}
