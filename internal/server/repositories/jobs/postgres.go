package jobs

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

const jobColumns = `id, model_name, base_model, status, progress, epochs, learning_rate,
	 training_images_count, created_by, created_at, started_at, completed_at, error`

func (r *PostgresRepository) Create(ctx context.Context, job *models.FineTuneJob) (*models.FineTuneJob, error) {

	query :=
		`INSERT INTO finetune_jobs (model_name, base_model, status, epochs, learning_rate, training_images_count, created_by)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, progress, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		job.ModelName, job.BaseModel, job.Status, job.Epochs,
		job.LearningRate, job.TrainingImagesCount, job.CreatedBy).
		Scan(&job.ID, &job.Progress, &job.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return job, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.FineTuneJob, error) {
	query := `SELECT ` + jobColumns + ` FROM finetune_jobs WHERE id = $1`

	job := &models.FineTuneJob{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID, &job.ModelName, &job.BaseModel, &job.Status, &job.Progress,
		&job.Epochs, &job.LearningRate, &job.TrainingImagesCount, &job.CreatedBy,
		&job.CreatedAt, &job.StartedAt, &job.CompletedAt, &job.Error)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return job, nil
}

// List returns jobs ordered newest first, optionally filtered by status.
func (r *PostgresRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.FineTuneJob, error) {

	query := `SELECT ` + jobColumns + ` FROM finetune_jobs`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.FineTuneJob
	for rows.Next() {
		job := &models.FineTuneJob{}
		err := rows.Scan(
			&job.ID, &job.ModelName, &job.BaseModel, &job.Status, &job.Progress,
			&job.Epochs, &job.LearningRate, &job.TrainingImagesCount, &job.CreatedBy,
			&job.CreatedAt, &job.StartedAt, &job.CompletedAt, &job.Error)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// UpdateStatus advances a job's status. Terminal states are final: the WHERE
// clause only matches jobs still pending or running, so a concurrent
// completion cannot be overwritten. Zero matched rows surface as
// common.ErrorNotFound.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string, progress int, jobErr *string) error {

	query :=
		`UPDATE finetune_jobs
		 SET status = $2,
		     progress = $3,
		     error = $4,
		     started_at = CASE WHEN $2 = 'running' AND started_at IS NULL THEN now() ELSE started_at END,
		     completed_at = CASE WHEN $2 IN ('completed', 'failed', 'cancelled') THEN now() ELSE completed_at END
		 WHERE id = $1 AND status IN ('pending', 'running')
		 `

	res, err := r.db.ExecContext(ctx, query, id, status, progress, jobErr)
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
