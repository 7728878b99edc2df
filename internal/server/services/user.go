// Package services contains the server-side business logic: account
// registration and login, todo management, and attachment presigning.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/duedash/duedash/internal/common"
	"github.com/duedash/duedash/internal/dbx"
	"github.com/duedash/duedash/internal/server/auth"
	"github.com/duedash/duedash/internal/server/config"
	"github.com/duedash/duedash/internal/server/models"
	"github.com/duedash/duedash/internal/server/repositories/repomanager"
)

// UserService handles registration and login. Login mints a stateless access
// token; nothing about the session is stored server-side.
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

// Register creates a new account. The duplicate check and the insert run in
// one transaction; common.ErrUsernameTaken reports a taken username.
func (s *UserService) Register(ctx context.Context, username string, password string) (*models.User, error) {
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	var created *models.User
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		_, err := repo.GetByUsername(ctx, username)
		if err == nil {
			return common.ErrUsernameTaken
		}
		if !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("error checking username: %w", err)
		}

		user := &models.User{Username: username, PasswordHash: passwordHash}
		created, err = repo.Create(ctx, user)
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// Login verifies the credentials and returns a fresh access token. Bad
// username and bad password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username string, password string) (string, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrUnauthorized
		}
		return "", common.ErrInternal
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return "", common.ErrUnauthorized
	}

	token, err := auth.GenerateToken(user.Username, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrInternal
	}
	return token, nil
}
