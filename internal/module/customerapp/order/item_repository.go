package order

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/snapfield/sf-order/pkg/errors"
	"github.com/snapfield/sf-order/pkg/status"
)

type ItemRepository interface {
	FindManyByOrderID(ctx context.Context, orderID string, tx *sql.Tx) ([]Item, error)
	Save(ctx context.Context, i Item, tx *sql.Tx) error
}

type itemRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewItemRepository(logger *logrus.Logger, db *sql.DB) ItemRepository {
	return &itemRepository{
		logger: logger,
		db:     db,
	}
}

// FindManyByOrderID implements ItemRepository.
func (r *itemRepository) FindManyByOrderID(ctx context.Context, orderID string, tx *sql.Tx) ([]Item, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT
			id, order_id, photo_id, gallery_id, file_key, unit_price
		FROM photo_order_item
		WHERE
			order_id = $1
		ORDER BY id ASC
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of order item's properties")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, orderID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of order item's properties")
	}

	defer rows.Close()

	var data = make([]Item, 0)

	for rows.Next() {
		var i Item

		if err := rows.Scan(&i.ID, &i.OrderID, &i.PhotoID, &i.GalleryID, &i.FileKey, &i.UnitPrice); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of order item's properties")
		}

		data = append(data, i)
	}

	return data, nil
}

// Save implements ItemRepository.
func (r *itemRepository) Save(ctx context.Context, i Item, tx *sql.Tx) error {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		INSERT INTO photo_order_item
		(
			order_id, photo_id, gallery_id, file_key, unit_price
		)
		VALUES
		(
			$1, $2, $3, $4, $5
		)
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving order item's properties")
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, i.OrderID, i.PhotoID, i.GalleryID, i.FileKey, i.UnitPrice)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving order item's properties")
	}

	return nil
}
