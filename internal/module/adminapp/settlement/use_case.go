package settlement

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/snapfield/sf-order/internal/module/customerapp/order"
	"github.com/snapfield/sf-order/pkg/errors"
	"github.com/snapfield/sf-order/pkg/pubsub"
	"github.com/snapfield/sf-order/pkg/status"
)

type SettlementUseCase interface {
	GetPendingEarnings(ctx context.Context, req GetPendingEarningsRequest) (GetPendingEarningsResponse, error)
	PreviewSettlement(ctx context.Context, req PreviewSettlementRequest) (PreviewSettlementResponse, error)
	CommitSettlement(ctx context.Context, req CommitSettlementRequest) (CommitSettlementResponse, error)
	GetManySettlement(ctx context.Context, req GetManySettlementRequest) ([]Settlement, int64, error)
	GetSettlement(ctx context.Context, ID string) (Settlement, error)
}

type settlementUseCase struct {
	logger               *logrus.Logger
	timeout              time.Duration
	location             *time.Location
	earningsRepository   EarningsRepository
	settlementRepository SettlementRepository
	publisher            pubsub.Publisher
}

type SettlementUseCaseProperty struct {
	Logger               *logrus.Logger
	Timeout              time.Duration
	Location             *time.Location
	EarningsRepository   EarningsRepository
	SettlementRepository SettlementRepository
	Publisher            pubsub.Publisher
}

func NewSettlementUseCase(props SettlementUseCaseProperty) SettlementUseCase {
	return &settlementUseCase{
		logger:               props.Logger,
		timeout:              props.Timeout,
		location:             props.Location,
		earningsRepository:   props.EarningsRepository,
		settlementRepository: props.SettlementRepository,
		publisher:            props.Publisher,
	}
}

// resolveRange parses the requested period. A bare calendar date on the end
// boundary means the whole of that day in the working timezone, so the end is
// widened to 23:59:59.999 instead of midnight.
func (u *settlementUseCase) resolveRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, _, err := u.parseBoundary(startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New(http.StatusBadRequest, status.BAD_REQUEST, fmt.Sprintf("invalid period start '%s'", startRaw))
	}

	end, bareDate, err := u.parseBoundary(endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New(http.StatusBadRequest, status.BAD_REQUEST, fmt.Sprintf("invalid period end '%s'", endRaw))
	}

	if bareDate {
		end = end.AddDate(0, 0, 1).Add(-time.Millisecond)
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New(http.StatusBadRequest, status.BAD_REQUEST, "period end must not be before period start")
	}

	return start, end, nil
}

func (u *settlementUseCase) parseBoundary(raw string) (time.Time, bool, error) {
	if t, err := time.ParseInLocation("2006-01-02", raw, u.location); err == nil {
		return t, true, nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, err
	}

	return t, false, nil
}

func amountFor(e Earning, recipientType string) int64 {
	if recipientType == RecipientTypePlatform {
		return e.PlatformShare
	}

	return e.PhotographerShare
}

// partitionEarnings separates rows carrying a transaction detail from the
// degraded ones where payment was confirmed but no split was ever written.
// The degraded rows are a data integrity defect and never counted as zero.
func partitionEarnings(earnings []Earning) (valid []Earning, defects []string) {
	valid = make([]Earning, 0, len(earnings))
	defects = make([]string, 0)

	for _, e := range earnings {
		if !e.HasDetail {
			defects = append(defects, e.OrderID)
			continue
		}

		valid = append(valid, e)
	}

	return valid, defects
}

// GetPendingEarnings implements SettlementUseCase.
func (u *settlementUseCase) GetPendingEarnings(ctx context.Context, req GetPendingEarningsRequest) (GetPendingEarningsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	start, end, err := u.resolveRange(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return GetPendingEarningsResponse{}, err
	}

	earnings, err := u.earningsRepository.FindManyUnsettled(ctx, req.PhotographerID, start, end, nil)
	if err != nil {
		return GetPendingEarningsResponse{}, err
	}

	valid, defects := partitionEarnings(earnings)

	var totalAmount, totalItems int64
	items := make([]PendingEarningItem, 0, len(valid))
	for _, e := range valid {
		amount := amountFor(e, req.RecipientType)
		totalAmount += amount
		totalItems += e.Quantity
		items = append(items, PendingEarningItem{
			OrderID:        e.OrderID,
			PhotographerID: e.PhotographerID,
			Status:         e.Status,
			Quantity:       e.Quantity,
			GrossAmount:    e.GrossAmount,
			NetAmount:      e.NetAmount,
			Amount:         amount,
			OrderCreatedAt: e.OrderCreatedAt,
		})
	}

	return GetPendingEarningsResponse{
		RecipientType:  req.RecipientType,
		PhotographerID: req.PhotographerID,
		PeriodStart:    start,
		PeriodEnd:      end,
		TotalAmount:    totalAmount,
		OrderCount:     int64(len(valid)),
		ItemCount:      totalItems,
		Earnings:       items,
		MissingDetails: defects,
	}, nil
}

// PreviewSettlement implements SettlementUseCase.
func (u *settlementUseCase) PreviewSettlement(ctx context.Context, req PreviewSettlementRequest) (PreviewSettlementResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	start, end, err := u.resolveRange(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return PreviewSettlementResponse{}, err
	}

	earnings, err := u.earningsRepository.FindManyUnsettled(ctx, req.PhotographerID, start, end, nil)
	if err != nil {
		return PreviewSettlementResponse{}, err
	}

	valid, defects := partitionEarnings(earnings)

	var totalAmount, totalItems int64
	orderIDs := make([]string, 0, len(valid))
	for _, e := range valid {
		totalAmount += amountFor(e, req.RecipientType)
		totalItems += e.Quantity
		orderIDs = append(orderIDs, e.OrderID)
	}

	return PreviewSettlementResponse{
		RecipientType:  req.RecipientType,
		PhotographerID: req.PhotographerID,
		PeriodStart:    start,
		PeriodEnd:      end,
		TotalAmount:    totalAmount,
		OrderCount:     int64(len(valid)),
		ItemCount:      totalItems,
		OrderIDs:       orderIDs,
		MissingDetails: defects,
	}, nil
}

// CommitSettlement implements SettlementUseCase. The covered orders are locked
// and re-checked inside one transaction so a concurrently settled order is
// excluded and reported as a conflict instead of settling twice or failing the
// whole batch.
func (u *settlementUseCase) CommitSettlement(ctx context.Context, req CommitSettlementRequest) (CommitSettlementResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	start, end, err := u.resolveRange(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return CommitSettlementResponse{}, err
	}

	tx, err := u.settlementRepository.BeginTx(ctx)
	if err != nil {
		return CommitSettlementResponse{}, err
	}
	defer u.settlementRepository.Rollback(ctx, tx)

	var earnings []Earning
	if len(req.OrderIDs) > 0 {
		earnings, err = u.earningsRepository.FindManyByOrderIDs(ctx, req.OrderIDs, tx)
	} else {
		earnings, err = u.earningsRepository.FindManyUnsettled(ctx, req.PhotographerID, start, end, tx)
	}
	if err != nil {
		return CommitSettlementResponse{}, err
	}

	valid, defects := partitionEarnings(earnings)

	// An explicit order id list from a prior preview gets the same scrutiny as
	// a range query: wrong photographer or outside the period is a conflict,
	// not a silent inclusion on someone else's settlement.
	candidates := make([]Earning, 0, len(valid))
	conflicts := make([]string, 0)
	for _, e := range valid {
		if !isMonetizable(e.Status) || e.SettlementStatus != order.SettlementStatusUnsettled {
			conflicts = append(conflicts, e.OrderID)
			continue
		}

		if req.PhotographerID != nil && e.PhotographerID != *req.PhotographerID {
			conflicts = append(conflicts, e.OrderID)
			continue
		}

		if e.OrderCreatedAt.Before(start) || e.OrderCreatedAt.After(end) {
			conflicts = append(conflicts, e.OrderID)
			continue
		}

		candidates = append(candidates, e)
	}

	candidateIDs := make([]string, 0, len(candidates))
	for _, e := range candidates {
		candidateIDs = append(candidateIDs, e.OrderID)
	}

	statuses, err := u.settlementRepository.FindManyOrderSettlementStatusForUpdate(ctx, candidateIDs, tx)
	if err != nil {
		return CommitSettlementResponse{}, err
	}

	var totalAmount, totalItems int64
	included := make([]Earning, 0, len(candidates))
	for _, e := range candidates {
		if statuses[e.OrderID] != order.SettlementStatusUnsettled {
			conflicts = append(conflicts, e.OrderID)
			continue
		}

		totalAmount += amountFor(e, req.RecipientType)
		totalItems += e.Quantity
		included = append(included, e)
	}

	if len(included) == 0 {
		return CommitSettlementResponse{}, errors.New(http.StatusUnprocessableEntity, status.UNPROCESSABLE_ENTITY, "no unsettled order is eligible for this settlement")
	}

	now := time.Now()
	orderIDs := make([]string, 0, len(included))
	for _, e := range included {
		orderIDs = append(orderIDs, e.OrderID)
	}

	s := Settlement{
		ID:             uuid.NewString(),
		RecipientType:  req.RecipientType,
		PhotographerID: req.PhotographerID,
		PeriodStart:    start,
		PeriodEnd:      end,
		TotalAmount:    totalAmount,
		OrderCount:     int64(len(included)),
		ItemCount:      totalItems,
		OrderIDs:       orderIDs,
		CreatedAt:      now,
	}

	if err := u.settlementRepository.Save(ctx, s, tx); err != nil {
		return CommitSettlementResponse{}, err
	}

	if err := u.settlementRepository.MarkManyOrderSettled(ctx, orderIDs, now, tx); err != nil {
		return CommitSettlementResponse{}, err
	}

	if err := u.settlementRepository.CommitTx(ctx, tx); err != nil {
		return CommitSettlementResponse{}, err
	}

	u.logger.WithContext(ctx).WithFields(logrus.Fields{
		"settlement_id": s.ID,
		"total_amount":  s.TotalAmount,
		"order_count":   s.OrderCount,
		"conflicts":     len(conflicts),
	}).Info("settlement has been created")

	if u.publisher != nil {
		settlementBuff, _ := json.Marshal(s)
		u.publisher.Publish(ctx, "settlement-created", s.ID, nil, settlementBuff)
	}

	return CommitSettlementResponse{
		Settlement:     s,
		Conflicts:      conflicts,
		MissingDetails: defects,
	}, nil
}

func isMonetizable(orderStatus string) bool {
	switch orderStatus {
	case order.StatusPaid, order.StatusDelivered, order.StatusExpired:
		return true
	}

	return false
}

// GetManySettlement implements SettlementUseCase.
func (u *settlementUseCase) GetManySettlement(ctx context.Context, req GetManySettlementRequest) ([]Settlement, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	offset := (req.Page - 1) * req.Size

	settlements, err := u.settlementRepository.FindMany(ctx, int(offset), int(req.Size))
	if err != nil {
		return nil, 0, err
	}

	count, err := u.settlementRepository.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return settlements, count, nil
}

// GetSettlement implements SettlementUseCase.
func (u *settlementUseCase) GetSettlement(ctx context.Context, ID string) (Settlement, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	return u.settlementRepository.FindByID(ctx, ID, nil)
}
