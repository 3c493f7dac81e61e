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

type SettlementRepository interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)
	CommitTx(ctx context.Context, tx *sql.Tx) error
	Rollback(ctx context.Context, tx *sql.Tx)
	Save(ctx context.Context, s Settlement, tx *sql.Tx) error
	FindByID(ctx context.Context, ID string, tx *sql.Tx) (Settlement, error)
	FindMany(ctx context.Context, offset, limit int) ([]Settlement, error)
	Count(ctx context.Context) (int64, error)
	FindManyOrderSettlementStatusForUpdate(ctx context.Context, orderIDs []string, tx *sql.Tx) (map[string]string, error)
	MarkManyOrderSettled(ctx context.Context, orderIDs []string, updatedAt time.Time, tx *sql.Tx) error
}

type settlementRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewSettlementRepository(logger *logrus.Logger, db *sql.DB) SettlementRepository {
	return &settlementRepository{
		logger: logger,
		db:     db,
	}
}

// BeginTx implements SettlementRepository.
func (r *settlementRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while starting the transaction")
	}

	return tx, nil
}

// CommitTx implements SettlementRepository.
func (r *settlementRepository) CommitTx(ctx context.Context, tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while committing the transaction")
	}

	return nil
}

// Rollback implements SettlementRepository.
func (r *settlementRepository) Rollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		r.logger.WithContext(ctx).WithError(err).Error()
	}
}

// Save implements SettlementRepository.
func (r *settlementRepository) Save(ctx context.Context, s Settlement, tx *sql.Tx) error {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		INSERT INTO settlement (
			id, recipient_type, photographer_id, period_start, period_end,
			total_amount, order_count, item_count, created_at
		)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var photographerID sql.NullInt64
	if s.PhotographerID != nil {
		photographerID = sql.NullInt64{Int64: *s.PhotographerID, Valid: true}
	}

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving settlement")
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		s.ID, s.RecipientType, photographerID, s.PeriodStart, s.PeriodEnd,
		s.TotalAmount, s.OrderCount, s.ItemCount, s.CreatedAt,
	)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving settlement")
	}

	if len(s.OrderIDs) == 0 {
		return nil
	}

	placeholders := make([]string, len(s.OrderIDs))
	args := make([]interface{}, 0, len(s.OrderIDs)*2)
	for i, orderID := range s.OrderIDs {
		placeholders[i] = fmt.Sprintf("($%d, $%d)", i*2+1, i*2+2)
		args = append(args, s.ID, orderID)
	}

	coverageQuery := fmt.Sprintf(`
		INSERT INTO settlement_order (settlement_id, order_id)
		VALUES %s
	`, strings.Join(placeholders, ", "))

	coverageStmt, err := cmd.PrepareContext(ctx, coverageQuery)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving settlement")
	}
	defer coverageStmt.Close()

	if _, err := coverageStmt.ExecContext(ctx, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving settlement")
	}

	return nil
}

const settlementColumns = `
	id, recipient_type, photographer_id, period_start, period_end,
	total_amount, order_count, item_count, created_at
`

func (r *settlementRepository) scanSettlement(row interface{ Scan(dest ...interface{}) error }) (Settlement, error) {
	var s Settlement
	var photographerID sql.NullInt64

	err := row.Scan(
		&s.ID, &s.RecipientType, &photographerID, &s.PeriodStart, &s.PeriodEnd,
		&s.TotalAmount, &s.OrderCount, &s.ItemCount, &s.CreatedAt,
	)
	if err != nil {
		return Settlement{}, err
	}

	if photographerID.Valid {
		s.PhotographerID = &photographerID.Int64
	}

	return s, nil
}

// FindByID implements SettlementRepository.
func (r *settlementRepository) FindByID(ctx context.Context, ID string, tx *sql.Tx) (Settlement, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM settlement
		WHERE id = $1
	`, settlementColumns)

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Settlement{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting settlement's property")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, ID)

	s, err := r.scanSettlement(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return Settlement{}, errors.New(http.StatusNotFound, status.NOT_FOUND, fmt.Sprintf("settlement with id '%s' is not found", ID))
		}

		r.logger.WithContext(ctx).WithError(err).Error()
		return Settlement{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting settlement's property")
	}

	orderIDs, err := r.findOrderIDs(ctx, cmd, ID)
	if err != nil {
		return Settlement{}, err
	}
	s.OrderIDs = orderIDs

	return s, nil
}

func (r *settlementRepository) findOrderIDs(ctx context.Context, cmd sqlCommand, settlementID string) ([]string, error) {
	query := `
		SELECT order_id
		FROM settlement_order
		WHERE settlement_id = $1
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting settlement's property")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, settlementID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting settlement's property")
	}

	defer rows.Close()

	orderIDs := make([]string, 0)
	for rows.Next() {
		var orderID string
		if err := rows.Scan(&orderID); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting settlement's property")
		}

		orderIDs = append(orderIDs, orderID)
	}

	return orderIDs, nil
}

// FindMany implements SettlementRepository.
func (r *settlementRepository) FindMany(ctx context.Context, offset, limit int) ([]Settlement, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM settlement
		ORDER BY created_at DESC
		OFFSET $1
		LIMIT $2
	`, settlementColumns)

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of settlement's properties")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, offset, limit)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of settlement's properties")
	}

	defer rows.Close()

	data := make([]Settlement, 0)
	for rows.Next() {
		s, err := r.scanSettlement(rows)
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of settlement's properties")
		}

		data = append(data, s)
	}

	return data, nil
}

// Count implements SettlementRepository.
func (r *settlementRepository) Count(ctx context.Context) (int64, error) {
	query := `
		SELECT COUNT(id)
		FROM settlement
	`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while counting settlements")
	}
	defer stmt.Close()

	var count int64
	if err := stmt.QueryRowContext(ctx).Scan(&count); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while counting settlements")
	}

	return count, nil
}

// FindManyOrderSettlementStatusForUpdate implements SettlementRepository. It
// locks the covered order rows so concurrent commits cannot settle the same
// order twice.
func (r *settlementRepository) FindManyOrderSettlementStatusForUpdate(ctx context.Context, orderIDs []string, tx *sql.Tx) (map[string]string, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	if len(orderIDs) == 0 {
		return map[string]string{}, nil
	}

	placeholders := make([]string, len(orderIDs))
	args := make([]interface{}, len(orderIDs))
	for i, id := range orderIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT id, settlement_status
		FROM photo_order
		WHERE id IN (%s)
		FOR UPDATE
	`, strings.Join(placeholders, ", "))

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while locking settlement's orders")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while locking settlement's orders")
	}

	defer rows.Close()

	statuses := make(map[string]string)
	for rows.Next() {
		var id, settlementStatus string
		if err := rows.Scan(&id, &settlementStatus); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while locking settlement's orders")
		}

		statuses[id] = settlementStatus
	}

	return statuses, nil
}

// MarkManyOrderSettled implements SettlementRepository.
func (r *settlementRepository) MarkManyOrderSettled(ctx context.Context, orderIDs []string, updatedAt time.Time, tx *sql.Tx) error {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	if len(orderIDs) == 0 {
		return nil
	}

	placeholders := make([]string, len(orderIDs))
	args := []interface{}{"SETTLED", updatedAt}
	for i, id := range orderIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+3)
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		UPDATE photo_order
		SET settlement_status = $1, updated_at = $2
		WHERE id IN (%s)
	`, strings.Join(placeholders, ", "))

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while marking orders settled")
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while marking orders settled")
	}

	return nil
}
