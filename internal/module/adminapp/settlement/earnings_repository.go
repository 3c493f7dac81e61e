package settlement

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/snapfield/sf-order/pkg/errors"
	"github.com/snapfield/sf-order/pkg/status"
)

// EarningsRepository reads unsettled, monetizable orders joined with their
// transaction details. The monetizable statuses are PAID, DELIVERED and
// EXPIRED: payment was confirmed regardless of the delivery outcome.
type EarningsRepository interface {
	FindManyUnsettled(ctx context.Context, photographerID *int64, start, end time.Time, tx *sql.Tx) ([]Earning, error)
	FindManyByOrderIDs(ctx context.Context, orderIDs []string, tx *sql.Tx) ([]Earning, error)
}

type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type earningsRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewEarningsRepository(logger *logrus.Logger, db *sql.DB) EarningsRepository {
	return &earningsRepository{
		logger: logger,
		db:     db,
	}
}

const earningColumns = `
	o.id, o.photographer_id, o.status, o.settlement_status, o.quantity, o.created_at,
	d.order_id, d.gross_amount, d.gateway_fee, d.net_amount,
	d.photographer_share, d.platform_share, d.photographer_percentage
`

func scanEarning(rows *sql.Rows) (Earning, error) {
	var e Earning
	var detailOrderID sql.NullString
	var grossAmount, gatewayFee, netAmount sql.NullInt64
	var photographerShare, platformShare sql.NullInt64
	var photographerPercentage sql.NullFloat64

	err := rows.Scan(
		&e.OrderID, &e.PhotographerID, &e.Status, &e.SettlementStatus, &e.Quantity, &e.OrderCreatedAt,
		&detailOrderID, &grossAmount, &gatewayFee, &netAmount,
		&photographerShare, &platformShare, &photographerPercentage,
	)
	if err != nil {
		return Earning{}, err
	}

	if detailOrderID.Valid {
		e.HasDetail = true
		e.GrossAmount = grossAmount.Int64
		e.GatewayFee = gatewayFee.Int64
		e.NetAmount = netAmount.Int64
		e.PhotographerShare = photographerShare.Int64
		e.PlatformShare = platformShare.Int64
		e.PhotographerPercentage = photographerPercentage.Float64
	}

	return e, nil
}

// FindManyUnsettled implements EarningsRepository.
func (r *earningsRepository) FindManyUnsettled(ctx context.Context, photographerID *int64, start, end time.Time, tx *sql.Tx) ([]Earning, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM photo_order o
		LEFT JOIN transaction_detail d ON d.order_id = o.id
		WHERE
			o.settlement_status = $1
		AND
			o.status IN ($2, $3, $4)
		AND
			o.created_at >= $5
		AND
			o.created_at <= $6
	`, earningColumns)

	args := []interface{}{"UNSETTLED", "PAID", "DELIVERED", "EXPIRED", start, end}

	if photographerID != nil {
		query += " AND o.photographer_id = $7"
		args = append(args, *photographerID)
	}

	query += " ORDER BY o.created_at DESC"

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of earning's properties")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of earning's properties")
	}

	defer rows.Close()

	return r.scanMany(ctx, rows)
}

// FindManyByOrderIDs implements EarningsRepository.
func (r *earningsRepository) FindManyByOrderIDs(ctx context.Context, orderIDs []string, tx *sql.Tx) ([]Earning, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	if len(orderIDs) == 0 {
		return []Earning{}, nil
	}

	placeholders := make([]string, len(orderIDs))
	args := make([]interface{}, len(orderIDs))
	for i, id := range orderIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM photo_order o
		LEFT JOIN transaction_detail d ON d.order_id = o.id
		WHERE
			o.id IN (%s)
		ORDER BY o.created_at DESC
	`, earningColumns, strings.Join(placeholders, ", "))

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of earning's properties")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of earning's properties")
	}

	defer rows.Close()

	return r.scanMany(ctx, rows)
}

func (r *earningsRepository) scanMany(ctx context.Context, rows *sql.Rows) ([]Earning, error) {
	var data = make([]Earning, 0)

	for rows.Next() {
		e, err := scanEarning(rows)
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of earning's properties")
		}

		data = append(data, e)
	}

	return data, nil
}
