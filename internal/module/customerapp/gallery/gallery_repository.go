package gallery

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/snapfield/sf-order/pkg/errors"
	"github.com/snapfield/sf-order/pkg/status"
)

type GalleryRepository interface {
	FindByID(ctx context.Context, ID string, tx *sql.Tx) (Gallery, error)
	FindManyPublished(ctx context.Context, offset, limit int64, tx *sql.Tx) ([]Gallery, error)
}

type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type galleryRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewGalleryRepository(logger *logrus.Logger, db *sql.DB) GalleryRepository {
	return &galleryRepository{
		logger: logger,
		db:     db,
	}
}

// FindByID implements GalleryRepository.
func (r *galleryRepository) FindByID(ctx context.Context, ID string, tx *sql.Tx) (Gallery, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT
			id, title, photographer_id, event_date, status, created_at, updated_at
		FROM gallery
		WHERE
			id = $1
		LIMIT 1
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Gallery{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting gallery's properties")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, ID)

	var data Gallery
	err = row.Scan(
		&data.ID, &data.Title, &data.PhotographerID, &data.EventDate, &data.Status, &data.CreatedAt, &data.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return Gallery{}, errors.New(http.StatusNotFound, status.NOT_FOUND, fmt.Sprintf("gallery with id '%s' is not found", ID))
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return Gallery{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting gallery's properties")
	}

	return data, nil
}

// FindManyPublished implements GalleryRepository.
func (r *galleryRepository) FindManyPublished(ctx context.Context, offset, limit int64, tx *sql.Tx) ([]Gallery, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT
			id, title, photographer_id, event_date, status, created_at, updated_at
		FROM gallery
		WHERE
			status = $1
		ORDER BY event_date DESC
		OFFSET $2
		LIMIT $3
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of gallery's properties")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, GalleryStatusPublished, offset, limit)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of gallery's properties")
	}

	defer rows.Close()

	var data = make([]Gallery, 0)

	for rows.Next() {
		var g Gallery

		if err := rows.Scan(
			&g.ID, &g.Title, &g.PhotographerID, &g.EventDate, &g.Status, &g.CreatedAt, &g.UpdatedAt,
		); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of gallery's properties")
		}

		data = append(data, g)
	}

	return data, nil
}
