package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/accordai/gateway/internal/common"
	"github.com/accordai/gateway/internal/dbx"
	sc "github.com/accordai/gateway/internal/server/config"
	"github.com/accordai/gateway/internal/server/models"
	"github.com/accordai/gateway/internal/server/repositories/repomanager"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// FineTuneService manages the fine-tuning dataset and job metadata. Uploaded
// training images are stored in the S3-compatible backend; their metadata and
// the jobs themselves live in the database.
type FineTuneService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewFineTuneService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config) *FineTuneService {
	return &FineTuneService{
		db:          db,
		repomanager: repomanager,
		config:      config,
	}
}

// TrainingImageStorageKey returns a fresh object key for an uploaded image.
func TrainingImageStorageKey(format string) string {
	d := time.Now()
	return fmt.Sprintf("images/%d/%d/%d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), format)
}

func (s *FineTuneService) getS3Client() (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,     // MINIO_ROOT_USER
			s.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

// UploadTrainingImage validates and stores one training example. The image
// bytes go to object storage, the metadata row to the database. Uploads over
// the configured size cap return common.ErrFileTooLarge.
func (s *FineTuneService) UploadTrainingImage(ctx context.Context, filename string, data []byte, prompt, expectedOutput, uploadedBy string) (*models.TrainingImage, error) {

	if len(data) == 0 || prompt == "" || expectedOutput == "" {
		return nil, common.ErrValidation
	}
	if int64(len(data)) > s.config.MaxUploadBytes {
		return nil, common.ErrFileTooLarge
	}

	mimeType, err := ImageMIMEType(filename)
	if err != nil {
		return nil, err
	}

	client, err := s.getS3Client()
	if err != nil {
		return nil, common.ErrorInternal
	}

	bucket := s.config.S3Bucket
	key := TrainingImageStorageKey(strings.ToLower(filepath.Ext(filename)))

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &mimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("storage error: %w", err)
	}

	img := &models.TrainingImage{
		Filename:       filename,
		StorageKey:     key,
		Prompt:         prompt,
		ExpectedOutput: expectedOutput,
		SizeBytes:      int64(len(data)),
		Format:         mimeType,
		UploadedBy:     uploadedBy,
	}

	repo := s.repomanager.TrainingImages(s.db)
	img, err = repo.Create(ctx, img)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return img, nil
}

// TrainingImageURL returns a time-limited download URL for a stored training
// image.
func (s *FineTuneService) TrainingImageURL(ctx context.Context, id string) (string, error) {

	repo := s.repomanager.TrainingImages(s.db)
	img, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", common.ErrorInternal
	}

	client, err := s.getS3Client()
	if err != nil {
		return "", common.ErrorInternal
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &img.StorageKey,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", common.ErrorInternal
	}

	return req.URL, nil
}

// StartJob records a new fine-tune job. The dataset count is snapshotted into
// the job row inside the same transaction that creates it, so the count and
// the row always agree. An empty dataset is rejected.
func (s *FineTuneService) StartJob(ctx context.Context, modelName, baseModel string, epochs int, learningRate float64, createdBy string) (*models.FineTuneJob, error) {

	if modelName == "" {
		return nil, common.ErrValidation
	}
	if epochs <= 0 {
		epochs = 3
	}
	if learningRate <= 0 {
		learningRate = 0.0001
	}
	if baseModel == "" {
		baseModel = s.config.GeminiModel
	}

	var job *models.FineTuneJob

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {

		count, err := s.repomanager.TrainingImages(tx).Count(ctx)
		if err != nil {
			return err
		}
		if count == 0 {
			return common.ErrValidation
		}

		job, err = s.repomanager.Jobs(tx).Create(ctx, &models.FineTuneJob{
			ModelName:           modelName,
			BaseModel:           baseModel,
			Status:              models.JobStatusPending,
			Epochs:              epochs,
			LearningRate:        learningRate,
			TrainingImagesCount: count,
			CreatedBy:           createdBy,
		})
		return err
	})

	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return nil, common.ErrValidation
		}
		return nil, common.ErrorInternal
	}

	return job, nil
}

// JobStatus returns the current state of one job.
func (s *FineTuneService) JobStatus(ctx context.Context, id string) (*models.FineTuneJob, error) {
	repo := s.repomanager.Jobs(s.db)
	job, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return job, nil
}

// ListJobs returns jobs newest first, optionally filtered by status.
func (s *FineTuneService) ListJobs(ctx context.Context, status string, limit, offset int) ([]*models.FineTuneJob, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	repo := s.repomanager.Jobs(s.db)
	jobs, err := repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return jobs, nil
}

// CancelJob moves a pending or running job to cancelled. Terminal jobs return
// common.ErrJobNotCancellable.
func (s *FineTuneService) CancelJob(ctx context.Context, id string) (*models.FineTuneJob, error) {

	repo := s.repomanager.Jobs(s.db)
	job, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	if !job.Cancellable() {
		return nil, common.ErrJobNotCancellable
	}

	// the update only matches jobs still pending or running; zero rows here
	// means the job reached a terminal state since the read above
	if err := repo.UpdateStatus(ctx, id, models.JobStatusCancelled, job.Progress, nil); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrJobNotCancellable
		}
		return nil, common.ErrorInternal
	}

	return repo.GetByID(ctx, id)
}
