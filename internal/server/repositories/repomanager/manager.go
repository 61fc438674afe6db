package repomanager

import (
	"context"
	"database/sql"

	"github.com/accordai/gateway/internal/dbx"
	"github.com/accordai/gateway/internal/server/repositories/geminifiles"
	"github.com/accordai/gateway/internal/server/repositories/jobs"
	"github.com/accordai/gateway/internal/server/repositories/trainingimages"
	"github.com/accordai/gateway/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	TrainingImages(db dbx.DBTX) trainingimages.Repository
	Jobs(db dbx.DBTX) jobs.Repository
	GeminiFiles(db dbx.DBTX) geminifiles.Repository
}
