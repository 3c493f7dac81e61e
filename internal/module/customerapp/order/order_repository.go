package order

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/snapfield/sf-order/pkg/errors"
	"github.com/snapfield/sf-order/pkg/status"
)

type OrderRepository interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)
	CommitTx(ctx context.Context, tx *sql.Tx) error
	Rollback(ctx context.Context, tx *sql.Tx) error

	Save(ctx context.Context, o Order, tx *sql.Tx) error
	FindByID(ctx context.Context, ID string, tx *sql.Tx) (Order, error)
	FindByIDForUpdate(ctx context.Context, ID string, tx *sql.Tx) (Order, error)
	FindManyByCustomerID(ctx context.Context, customerID int64, offset, limit int64, tx *sql.Tx) ([]Order, error)
	Count(ctx context.Context, customerID int64, tx *sql.Tx) (int64, error)
	Update(ctx context.Context, ID string, o Order, tx *sql.Tx) error
	AbandonManyPendingBefore(ctx context.Context, cutoff time.Time, tx *sql.Tx) (int64, error)
}

type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type orderRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewOrderRepository(logger *logrus.Logger, db *sql.DB) OrderRepository {
	return &orderRepository{
		logger: logger,
		db:     db,
	}
}

// BeginTx implements OrderRepository.
func (r *orderRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred trying to begin transaction")
	}

	return tx, nil
}

// CommitTx implements OrderRepository.
func (r *orderRepository) CommitTx(ctx context.Context, tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred trying to commit transaction")
	}

	return nil
}

// Rollback implements OrderRepository.
func (r *orderRepository) Rollback(ctx context.Context, tx *sql.Tx) error {
	if tx == nil {
		return nil
	}

	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred trying to rollback transaction")
	}

	return nil
}

const orderColumns = `
	id, payment_method, transaction_id, virtual_account, status, settlement_status,
	customer_id, customer_name, customer_email, gallery_id, photographer_id,
	quantity, base_unit_price, effective_unit_price, tier_name, discount_percentage,
	discount_amount, total_amount, created_at, updated_at
`

func scanOrder(row interface{ Scan(...interface{}) error }) (Order, error) {
	var data Order
	var transactionID sql.NullString
	var virtualAccount sql.NullString

	err := row.Scan(
		&data.ID, &data.PaymentMethod, &transactionID, &virtualAccount, &data.Status, &data.SettlementStatus,
		&data.CustomerID, &data.CustomerName, &data.CustomerEmail, &data.GalleryID, &data.PhotographerID,
		&data.Quantity, &data.BaseUnitPrice, &data.EffectiveUnitPrice, &data.TierName, &data.DiscountPercentage,
		&data.DiscountAmount, &data.TotalAmount, &data.CreatedAt, &data.UpdatedAt,
	)
	if err != nil {
		return Order{}, err
	}

	if transactionID.Valid {
		data.TransactionID = &transactionID.String
	}
	if virtualAccount.Valid {
		data.VirtualAccount = &virtualAccount.String
	}

	return data, nil
}

// FindByID implements OrderRepository.
func (r *orderRepository) FindByID(ctx context.Context, ID string, tx *sql.Tx) (Order, error) {
	return r.findByID(ctx, ID, tx, false)
}

// FindByIDForUpdate implements OrderRepository.
func (r *orderRepository) FindByIDForUpdate(ctx context.Context, ID string, tx *sql.Tx) (Order, error) {
	return r.findByID(ctx, ID, tx, true)
}

func (r *orderRepository) findByID(ctx context.Context, ID string, tx *sql.Tx, forUpdate bool) (Order, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM photo_order
		WHERE
			id = $1
	`, orderColumns)

	if forUpdate {
		query += " FOR UPDATE"
	} else {
		query += " LIMIT 1"
	}

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Order{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting order's properties")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, ID)

	data, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return Order{}, errors.New(http.StatusNotFound, status.NOT_FOUND, fmt.Sprintf("order with id '%s' is not found", ID))
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return Order{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting order's properties")
	}

	return data, nil
}

// FindManyByCustomerID implements OrderRepository.
func (r *orderRepository) FindManyByCustomerID(ctx context.Context, customerID int64, offset, limit int64, tx *sql.Tx) ([]Order, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM photo_order
		WHERE
			customer_id = $1
		ORDER BY created_at DESC
		OFFSET $2
		LIMIT $3
	`, orderColumns)

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of order's properties")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, customerID, offset, limit)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of order's properties")
	}

	defer rows.Close()

	var data = make([]Order, 0)

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of order's properties")
		}

		data = append(data, o)
	}

	return data, nil
}

// Count implements OrderRepository.
func (r *orderRepository) Count(ctx context.Context, customerID int64, tx *sql.Tx) (int64, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT count(id)
		FROM photo_order
		WHERE
			customer_id = $1
		LIMIT 1
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while counting order's properties")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, customerID)

	var count int64
	if err := row.Scan(&count); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while counting order's properties")
	}

	return count, nil
}

// Save implements OrderRepository.
func (r *orderRepository) Save(ctx context.Context, o Order, tx *sql.Tx) error {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		INSERT INTO photo_order
		(
			id, payment_method, transaction_id, virtual_account, status, settlement_status,
			customer_id, customer_name, customer_email, gallery_id, photographer_id,
			quantity, base_unit_price, effective_unit_price, tier_name, discount_percentage,
			discount_amount, total_amount, created_at, updated_at
		)
		VALUES
		(
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving order's properties")
	}
	defer stmt.Close()

	var transactionID sql.NullString
	var virtualAccount sql.NullString

	if o.TransactionID != nil {
		transactionID.String = *o.TransactionID
		transactionID.Valid = true
	}
	if o.VirtualAccount != nil {
		virtualAccount.String = *o.VirtualAccount
		virtualAccount.Valid = true
	}

	_, err = stmt.ExecContext(ctx,
		o.ID, o.PaymentMethod, transactionID, virtualAccount, o.Status, o.SettlementStatus,
		o.CustomerID, o.CustomerName, o.CustomerEmail, o.GalleryID, o.PhotographerID,
		o.Quantity, o.BaseUnitPrice, o.EffectiveUnitPrice, o.TierName, o.DiscountPercentage,
		o.DiscountAmount, o.TotalAmount, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving order's properties")
	}

	return nil
}

// Update implements OrderRepository.
func (r *orderRepository) Update(ctx context.Context, ID string, o Order, tx *sql.Tx) error {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		UPDATE photo_order
		SET
			status = $1,
			settlement_status = $2,
			transaction_id = $3,
			virtual_account = $4,
			updated_at = $5
		WHERE id = $6
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating order's properties")
	}
	defer stmt.Close()

	var transactionID sql.NullString
	var virtualAccount sql.NullString

	if o.TransactionID != nil {
		transactionID.String = *o.TransactionID
		transactionID.Valid = true
	}
	if o.VirtualAccount != nil {
		virtualAccount.String = *o.VirtualAccount
		virtualAccount.Valid = true
	}

	_, err = stmt.ExecContext(ctx, o.Status, o.SettlementStatus, transactionID, virtualAccount, o.UpdatedAt, ID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating order's properties")
	}

	return nil
}

// AbandonManyPendingBefore implements OrderRepository. Marks every order that
// stayed PENDING past the cutoff as ABANDONED and returns how many changed.
func (r *orderRepository) AbandonManyPendingBefore(ctx context.Context, cutoff time.Time, tx *sql.Tx) (int64, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		UPDATE photo_order
		SET
			status = $1,
			updated_at = $2
		WHERE
			status = $3
		AND
			created_at < $4
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while abandoning stale orders")
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, StatusAbandoned, time.Now(), StatusPending, cutoff)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while abandoning stale orders")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while abandoning stale orders")
	}

	return affected, nil
}
