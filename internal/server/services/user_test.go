package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/accordai/gateway/internal/common"
	"github.com/accordai/gateway/internal/dbx"
	"github.com/accordai/gateway/internal/server/auth"
	"github.com/accordai/gateway/internal/server/config"
	"github.com/accordai/gateway/internal/server/models"
	geminifilesrepo "github.com/accordai/gateway/internal/server/repositories/geminifiles"
	jobsrepo "github.com/accordai/gateway/internal/server/repositories/jobs"
	"github.com/accordai/gateway/internal/server/repositories/repomanager"
	imagesrepo "github.com/accordai/gateway/internal/server/repositories/trainingimages"
	usersrepo "github.com/accordai/gateway/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "k"
	cfg.AccessTokenValidityDuration = time.Hour
	return cfg
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getByLoginOut *models.User
	getByLoginErr error

	getByIDOut *models.User
	getByIDErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}
func (f *fakeUsersRepo) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	if f.getByLoginErr != nil {
		return nil, f.getByLoginErr
	}
	return f.getByLoginOut, nil
}
func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	return f.getByIDOut, nil
}

type fakeImagesRepo struct {
	createOut *models.TrainingImage
	createErr error

	getOut *models.TrainingImage
	getErr error

	countOut int
	countErr error
}

func (f *fakeImagesRepo) Create(ctx context.Context, img *models.TrainingImage) (*models.TrainingImage, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}
func (f *fakeImagesRepo) GetByID(ctx context.Context, id string) (*models.TrainingImage, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}
func (f *fakeImagesRepo) Count(ctx context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.countOut, nil
}

type fakeJobsRepo struct {
	createOut *models.FineTuneJob
	createErr error

	getOut *models.FineTuneJob
	getErr error

	listOut []*models.FineTuneJob
	listErr error

	updateErr    error
	updateStatus string
}

func (f *fakeJobsRepo) Create(ctx context.Context, job *models.FineTuneJob) (*models.FineTuneJob, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return job, nil
}
func (f *fakeJobsRepo) GetByID(ctx context.Context, id string) (*models.FineTuneJob, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}
func (f *fakeJobsRepo) List(ctx context.Context, status string, limit, offset int) ([]*models.FineTuneJob, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}
func (f *fakeJobsRepo) UpdateStatus(ctx context.Context, id, status string, progress int, jobErr *string) error {
	f.updateStatus = status
	return f.updateErr
}

type fakeGeminiFilesRepo struct {
	createOut *models.GeminiFile
	createErr error

	getOut *models.GeminiFile
	getErr error

	listOut []*models.GeminiFile
	listErr error

	countOut int
	countErr error

	deleteErr error

	listLimit  int
	listOffset int
}

func (f *fakeGeminiFilesRepo) Create(ctx context.Context, file *models.GeminiFile) (*models.GeminiFile, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return file, nil
}
func (f *fakeGeminiFilesRepo) GetByID(ctx context.Context, id string) (*models.GeminiFile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}
func (f *fakeGeminiFilesRepo) List(ctx context.Context, limit, offset int) ([]*models.GeminiFile, error) {
	f.listLimit, f.listOffset = limit, offset
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}
func (f *fakeGeminiFilesRepo) Count(ctx context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.countOut, nil
}
func (f *fakeGeminiFilesRepo) Delete(ctx context.Context, id string) error {
	return f.deleteErr
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	i *fakeImagesRepo
	j *fakeJobsRepo
	g *fakeGeminiFilesRepo
}

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error             { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository                   { return m.u }
func (m *fakeRepoManager) TrainingImages(db dbx.DBTX) imagesrepo.Repository         { return m.i }
func (m *fakeRepoManager) Jobs(db dbx.DBTX) jobsrepo.Repository                     { return m.j }
func (m *fakeRepoManager) GeminiFiles(db dbx.DBTX) geminifilesrepo.Repository       { return m.g }

// --- UserService ---

func TestUserRegister_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{
		createOut: &models.User{ID: "u1", Username: "alice", Email: "alice@example.com", IsActive: true},
	}}
	cfg := newTestConfig()
	s := NewUserService(db, rm, cfg)

	res, err := s.Register(context.Background(), "alice", "alice@example.com", "+15550100", "passw0rd1")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if res.AccessToken == "" {
		t.Fatal("expected non-empty access token")
	}
	if res.ExpiresIn != 3600 {
		t.Errorf("ExpiresIn = %d, want 3600", res.ExpiresIn)
	}

	claims, err := auth.ParseToken(res.AccessToken, []byte(cfg.SecretKey))
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "alice" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestUserRegister_WeakPassword(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := NewUserService(db, &fakeRepoManager{u: &fakeUsersRepo{}}, newTestConfig())

	_, err := s.Register(context.Background(), "alice", "a@b.c", "+15550100", "short")
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestUserRegister_Duplicate(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{createErr: common.ErrorAlreadyExists}}
	s := NewUserService(db, rm, newTestConfig())

	_, err := s.Register(context.Background(), "alice", "a@b.c", "+15550100", "passw0rd1")
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("expected ErrorAlreadyExists, got %v", err)
	}
}

func TestUserLogin_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	hash, err := auth.HashPassword("passw0rd1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	rm := &fakeRepoManager{u: &fakeUsersRepo{
		getByLoginOut: &models.User{ID: "u1", Username: "alice", PasswordHash: hash, IsActive: true},
	}}
	s := NewUserService(db, rm, newTestConfig())

	res, err := s.Login(context.Background(), "alice", "passw0rd1")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.AccessToken == "" || res.User.ID != "u1" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestUserLogin_UnknownUser(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{getByLoginErr: common.ErrorNotFound}}
	s := NewUserService(db, rm, newTestConfig())

	_, err := s.Login(context.Background(), "nobody", "passw0rd1")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected ErrorUnauthorized, got %v", err)
	}
}

func TestUserLogin_WrongPassword(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	hash, err := auth.HashPassword("correct-pass1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	rm := &fakeRepoManager{u: &fakeUsersRepo{
		getByLoginOut: &models.User{ID: "u1", Username: "alice", PasswordHash: hash, IsActive: true},
	}}
	s := NewUserService(db, rm, newTestConfig())

	_, err = s.Login(context.Background(), "alice", "wrong-pass1")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected ErrorUnauthorized, got %v", err)
	}
}

func TestUserLogin_InactiveUser(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	hash, err := auth.HashPassword("passw0rd1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	rm := &fakeRepoManager{u: &fakeUsersRepo{
		getByLoginOut: &models.User{ID: "u1", Username: "alice", PasswordHash: hash, IsActive: false},
	}}
	s := NewUserService(db, rm, newTestConfig())

	_, err = s.Login(context.Background(), "alice", "passw0rd1")
	if !errors.Is(err, common.ErrUserInactive) {
		t.Fatalf("expected ErrUserInactive, got %v", err)
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{getByIDErr: common.ErrorNotFound}}
	s := NewUserService(db, rm, newTestConfig())

	_, err := s.GetByID(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}
