package gallery

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/snapfield/sf-order/pkg/errors"
	"github.com/snapfield/sf-order/pkg/status"
)

type PhotoRepository interface {
	FindManyByGalleryID(ctx context.Context, galleryID string, tx *sql.Tx) ([]Photo, error)
	FindManyByIDs(ctx context.Context, IDs []string, tx *sql.Tx) ([]Photo, error)
}

type photoRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewPhotoRepository(logger *logrus.Logger, db *sql.DB) PhotoRepository {
	return &photoRepository{
		logger: logger,
		db:     db,
	}
}

// FindManyByGalleryID implements PhotoRepository.
func (r *photoRepository) FindManyByGalleryID(ctx context.Context, galleryID string, tx *sql.Tx) ([]Photo, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT
			id, gallery_id, file_key, thumbnail, created_at
		FROM photo
		WHERE
			gallery_id = $1
		ORDER BY created_at ASC
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of photo's properties")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, galleryID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of photo's properties")
	}

	defer rows.Close()

	return r.scanMany(ctx, rows)
}

// FindManyByIDs implements PhotoRepository.
func (r *photoRepository) FindManyByIDs(ctx context.Context, IDs []string, tx *sql.Tx) ([]Photo, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	if len(IDs) == 0 {
		return []Photo{}, nil
	}

	placeholders := make([]string, len(IDs))
	args := make([]interface{}, len(IDs))
	for i, id := range IDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT
			id, gallery_id, file_key, thumbnail, created_at
		FROM photo
		WHERE
			id IN (%s)
	`, strings.Join(placeholders, ", "))

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of photo's properties")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of photo's properties")
	}

	defer rows.Close()

	return r.scanMany(ctx, rows)
}

func (r *photoRepository) scanMany(ctx context.Context, rows *sql.Rows) ([]Photo, error) {
	var data = make([]Photo, 0)

	for rows.Next() {
		var p Photo

		if err := rows.Scan(&p.ID, &p.GalleryID, &p.FileKey, &p.Thumbnail, &p.CreatedAt); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of photo's properties")
		}

		data = append(data, p)
	}

	return data, nil
}
