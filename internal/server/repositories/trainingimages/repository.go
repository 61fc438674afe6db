package trainingimages

import (
	"context"

	"github.com/accordai/gateway/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, img *models.TrainingImage) (*models.TrainingImage, error)
	GetByID(ctx context.Context, id string) (*models.TrainingImage, error)
	Count(ctx context.Context) (int, error)
}
