package geminifiles

import (
	"context"

	"github.com/accordai/gateway/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, file *models.GeminiFile) (*models.GeminiFile, error)
	GetByID(ctx context.Context, id string) (*models.GeminiFile, error)
	List(ctx context.Context, limit, offset int) ([]*models.GeminiFile, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}
