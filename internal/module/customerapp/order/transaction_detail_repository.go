package order

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/snapfield/sf-order/pkg/errors"
	"github.com/snapfield/sf-order/pkg/status"
)

// TransactionDetailRepository persists the write-once money-split snapshot.
// There is no update method on purpose: the table is an append-only audit
// record.
type TransactionDetailRepository interface {
	Save(ctx context.Context, d TransactionDetail, tx *sql.Tx) error
	FindByOrderID(ctx context.Context, orderID string, tx *sql.Tx) (TransactionDetail, error)
}

type transactionDetailRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewTransactionDetailRepository(logger *logrus.Logger, db *sql.DB) TransactionDetailRepository {
	return &transactionDetailRepository{
		logger: logger,
		db:     db,
	}
}

// Save implements TransactionDetailRepository.
func (r *transactionDetailRepository) Save(ctx context.Context, d TransactionDetail, tx *sql.Tx) error {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		INSERT INTO transaction_detail
		(
			order_id, gross_amount, gateway_fee, net_amount,
			photographer_share, platform_share, photographer_percentage, created_at
		)
		VALUES
		(
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving transaction detail's properties")
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		d.OrderID, d.GrossAmount, d.GatewayFee, d.NetAmount,
		d.PhotographerShare, d.PlatformShare, d.PhotographerPercentage, d.CreatedAt,
	)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving transaction detail's properties")
	}

	return nil
}

// FindByOrderID implements TransactionDetailRepository.
func (r *transactionDetailRepository) FindByOrderID(ctx context.Context, orderID string, tx *sql.Tx) (TransactionDetail, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT
			order_id, gross_amount, gateway_fee, net_amount,
			photographer_share, platform_share, photographer_percentage, created_at
		FROM transaction_detail
		WHERE
			order_id = $1
		LIMIT 1
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return TransactionDetail{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting transaction detail's properties")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, orderID)

	var data TransactionDetail
	err = row.Scan(
		&data.OrderID, &data.GrossAmount, &data.GatewayFee, &data.NetAmount,
		&data.PhotographerShare, &data.PlatformShare, &data.PhotographerPercentage, &data.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return TransactionDetail{}, errors.New(http.StatusNotFound, status.NOT_FOUND, fmt.Sprintf("transaction detail for order '%s' is not found", orderID))
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return TransactionDetail{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting transaction detail's properties")
	}

	return data, nil
}
