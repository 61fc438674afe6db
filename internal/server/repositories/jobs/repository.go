package jobs

import (
	"context"

	"github.com/accordai/gateway/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, job *models.FineTuneJob) (*models.FineTuneJob, error)
	GetByID(ctx context.Context, id string) (*models.FineTuneJob, error)
	List(ctx context.Context, status string, limit, offset int) ([]*models.FineTuneJob, error)
	UpdateStatus(ctx context.Context, id, status string, progress int, jobErr *string) error
}
