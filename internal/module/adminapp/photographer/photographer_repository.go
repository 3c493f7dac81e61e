package photographer

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

type PhotographerRepository interface {
	FindByID(ctx context.Context, ID int64, tx *sql.Tx) (Photographer, error)
	FindManyActive(ctx context.Context, offset, limit int64, tx *sql.Tx) ([]Photographer, error)
	UpdateSharePercentage(ctx context.Context, ID int64, sharePercentage float64, tx *sql.Tx) error
}

type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type photographerRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewPhotographerRepository(logger *logrus.Logger, db *sql.DB) PhotographerRepository {
	return &photographerRepository{
		logger: logger,
		db:     db,
	}
}

// FindByID implements PhotographerRepository.
func (r *photographerRepository) FindByID(ctx context.Context, ID int64, tx *sql.Tx) (Photographer, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT
			id, name, email, phone, share_percentage, active, created_at, updated_at
		FROM photographer
		WHERE
			id = $1
		LIMIT 1
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Photographer{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting photographer's properties")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, ID)

	var data Photographer
	err = row.Scan(
		&data.ID, &data.Name, &data.Email, &data.Phone, &data.SharePercentage, &data.Active, &data.CreatedAt, &data.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return Photographer{}, errors.New(http.StatusNotFound, status.NOT_FOUND, fmt.Sprintf("photographer with id '%d' is not found", ID))
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return Photographer{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting photographer's properties")
	}

	return data, nil
}

// FindManyActive implements PhotographerRepository.
func (r *photographerRepository) FindManyActive(ctx context.Context, offset, limit int64, tx *sql.Tx) ([]Photographer, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT
			id, name, email, phone, share_percentage, active, created_at, updated_at
		FROM photographer
		WHERE
			active = TRUE
		ORDER BY name ASC
		OFFSET $1
		LIMIT $2
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of photographer's properties")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, offset, limit)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of photographer's properties")
	}

	defer rows.Close()

	var data = make([]Photographer, 0)

	for rows.Next() {
		var p Photographer

		if err := rows.Scan(
			&p.ID, &p.Name, &p.Email, &p.Phone, &p.SharePercentage, &p.Active, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of photographer's properties")
		}

		data = append(data, p)
	}

	return data, nil
}

// UpdateSharePercentage implements PhotographerRepository.
func (r *photographerRepository) UpdateSharePercentage(ctx context.Context, ID int64, sharePercentage float64, tx *sql.Tx) error {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		UPDATE photographer
		SET
			share_percentage = $1,
			updated_at = $2
		WHERE id = $3
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating photographer's properties")
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, sharePercentage, time.Now(), ID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating photographer's properties")
	}

	return nil
}
