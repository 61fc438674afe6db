package services

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/accordai/gateway/internal/common"
	"github.com/accordai/gateway/internal/server/gemini"
	"github.com/accordai/gateway/internal/server/models"
	"github.com/accordai/gateway/internal/server/repositories/repomanager"
)

// geminiFileMaxBytes caps uploads to the Gemini File API. Tighter than the
// training-image cap because the remote API enforces its own limits.
const geminiFileMaxBytes = 20 * 1024 * 1024

// FileUploader pushes a file to the remote file store.
type FileUploader interface {
	UploadFile(ctx context.Context, filename, mimeType string, data []byte) (*gemini.FileInfo, error)
}

// GeminiFilePage is one page of stored file records.
type GeminiFilePage struct {
	Files       []*models.GeminiFile
	Page        int
	PageSize    int
	TotalCount  int
	TotalPages  int
	HasNext     bool
	HasPrevious bool
}

// GeminiFileService uploads images to the Gemini File API and tracks their
// metadata. Deleting a record only forgets the metadata; the remote file
// expires on its own schedule.
type GeminiFileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	uploader    FileUploader
}

func NewGeminiFileService(db *sql.DB, m repomanager.RepositoryManager, uploader FileUploader) *GeminiFileService {
	return &GeminiFileService{db: db, repomanager: m, uploader: uploader}
}

// UploadFile validates the image, pushes it to the Gemini File API and
// records the returned metadata.
func (s *GeminiFileService) UploadFile(ctx context.Context, filename string, data []byte, username, email string) (*models.GeminiFile, error) {

	if len(data) == 0 {
		return nil, common.ErrValidation
	}
	if int64(len(data)) > geminiFileMaxBytes {
		return nil, common.ErrFileTooLarge
	}

	mimeType, err := ImageMIMEType(filename)
	if err != nil {
		return nil, err
	}

	info, err := s.uploader.UploadFile(ctx, filename, mimeType, data)
	if err != nil {
		return nil, err
	}

	size, err := strconv.ParseInt(info.SizeBytes, 10, 64)
	if err != nil {
		size = int64(len(data))
	}

	file := &models.GeminiFile{
		GeminiName:       info.Name,
		GeminiURI:        info.URI,
		OriginalFilename: filename,
		MimeType:         orDefault(info.MimeType, mimeType),
		SizeBytes:        size,
		SHA256Hash:       optional(info.SHA256Hash),
		State:            orDefault(info.State, "ACTIVE"),
		Source:           orDefault(info.Source, "UPLOADED"),
		ExpirationTime:   optional(info.ExpirationTime),
		UploadedBy:       username,
		UpdatedBy:        email,
	}

	repo := s.repomanager.GeminiFiles(s.db)
	file, err = repo.Create(ctx, file)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return file, nil
}

// ListFiles returns one page of records, newest first.
func (s *GeminiFileService) ListFiles(ctx context.Context, page, pageSize int) (*GeminiFilePage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	repo := s.repomanager.GeminiFiles(s.db)

	total, err := repo.Count(ctx)
	if err != nil {
		return nil, common.ErrorInternal
	}

	files, err := repo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, common.ErrorInternal
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	return &GeminiFilePage{
		Files:       files,
		Page:        page,
		PageSize:    pageSize,
		TotalCount:  total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}, nil
}

// GetFile returns one stored record.
func (s *GeminiFileService) GetFile(ctx context.Context, id string) (*models.GeminiFile, error) {
	repo := s.repomanager.GeminiFiles(s.db)
	file, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return file, nil
}

// DeleteFile removes the metadata record only.
func (s *GeminiFileService) DeleteFile(ctx context.Context, id string) error {
	repo := s.repomanager.GeminiFiles(s.db)
	if err := repo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
