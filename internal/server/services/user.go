// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login and issuing session JWTs.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/accordai/gateway/internal/common"
	"github.com/accordai/gateway/internal/server/auth"
	"github.com/accordai/gateway/internal/server/config"
	"github.com/accordai/gateway/internal/server/models"
	"github.com/accordai/gateway/internal/server/repositories/repomanager"
)

// AuthResult bundles a freshly minted access token with the authenticated
// user record.
type AuthResult struct {
	AccessToken string
	ExpiresIn   int64
	User        *models.User
}

// UserService provides authentication-related operations:
// - Register: create users and mint a first token
// - Login: verify credentials and mint tokens
// - GetByID: resolve the current user for profile lookups
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates a new active user and returns a token for it. A duplicate
// username, email or phone surfaces as common.ErrorAlreadyExists; the unique
// constraints guarantee no partial write in that case.
func (s *UserService) Register(ctx context.Context, username, email, phone, password string) (*AuthResult, error) {

	if username == "" || email == "" || phone == "" {
		return nil, common.ErrValidation
	}
	if err := auth.ValidatePasswordStrength(password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{Username: username, Email: email, Phone: phone, PasswordHash: hash}
	repo := s.repomanager.Users(s.db)
	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, common.ErrorInternal
	}

	return s.issueToken(user)
}

// Login verifies the password for the user matching login (username or
// email). Unknown users and wrong passwords both return
// common.ErrorUnauthorized; the unknown-user path burns a hash comparison so
// the two failures are indistinguishable by timing as well.
func (s *UserService) Login(ctx context.Context, login, password string) (*AuthResult, error) {

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.BurnPasswordCheck(password)
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrorUnauthorized
	}

	if !user.IsActive {
		return nil, common.ErrUserInactive
	}

	return s.issueToken(user)
}

// GetByID returns the user record for the given id.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

func (s *UserService) issueToken(user *models.User) (*AuthResult, error) {
	token, err := auth.GenerateToken(user.ID, user.Username, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &AuthResult{
		AccessToken: token,
		ExpiresIn:   int64(s.accessTokenValidityDuration.Seconds()),
		User:        user,
	}, nil
}
