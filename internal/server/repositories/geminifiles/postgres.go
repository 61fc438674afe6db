package geminifiles

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

const fileColumns = `id, gemini_file_name, gemini_uri, original_filename, mime_type, size_bytes,
	 sha256_hash, state, source, expiration_time, uploaded_by, updated_by, uploaded_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, file *models.GeminiFile) (*models.GeminiFile, error) {

	query :=
		`INSERT INTO gemini_files (gemini_file_name, gemini_uri, original_filename, mime_type, size_bytes, sha256_hash, state, source, expiration_time, uploaded_by, updated_by)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, uploaded_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		file.GeminiName, file.GeminiURI, file.OriginalFilename, file.MimeType,
		file.SizeBytes, file.SHA256Hash, file.State, file.Source,
		file.ExpirationTime, file.UploadedBy, file.UpdatedBy).
		Scan(&file.ID, &file.UploadedAt, &file.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return file, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.GeminiFile, error) {
	query := `SELECT ` + fileColumns + ` FROM gemini_files WHERE id = $1`

	file := &models.GeminiFile{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&file.ID, &file.GeminiName, &file.GeminiURI, &file.OriginalFilename,
		&file.MimeType, &file.SizeBytes, &file.SHA256Hash, &file.State,
		&file.Source, &file.ExpirationTime, &file.UploadedBy, &file.UpdatedBy,
		&file.UploadedAt, &file.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return file, nil
}

// List returns files newest first.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*models.GeminiFile, error) {

	query := `SELECT ` + fileColumns + ` FROM gemini_files
		 ORDER BY uploaded_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.GeminiFile
	for rows.Next() {
		file := &models.GeminiFile{}
		err := rows.Scan(
			&file.ID, &file.GeminiName, &file.GeminiURI, &file.OriginalFilename,
			&file.MimeType, &file.SizeBytes, &file.SHA256Hash, &file.State,
			&file.Source, &file.ExpirationTime, &file.UploadedBy, &file.UpdatedBy,
			&file.UploadedAt, &file.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM gemini_files`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM gemini_files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
