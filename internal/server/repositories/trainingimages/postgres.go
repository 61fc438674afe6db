package trainingimages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/accordai/gateway/internal/common"
	"github.com/accordai/gateway/internal/dbx"
	"github.com/accordai/gateway/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, img *models.TrainingImage) (*models.TrainingImage, error) {

	query :=
		`INSERT INTO training_images (filename, storage_key, prompt, expected_output, size_bytes, format, uploaded_by)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		img.Filename, img.StorageKey, img.Prompt, img.ExpectedOutput,
		img.SizeBytes, img.Format, img.UploadedBy).
		Scan(&img.ID, &img.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return img, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.TrainingImage, error) {
	query :=
		`SELECT id, filename, storage_key, prompt, expected_output, size_bytes, format, uploaded_by, created_at
		 FROM training_images
		 WHERE id = $1
		 `

	img := &models.TrainingImage{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&img.ID, &img.Filename, &img.StorageKey, &img.Prompt, &img.ExpectedOutput,
			&img.SizeBytes, &img.Format, &img.UploadedBy, &img.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return img, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM training_images`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
