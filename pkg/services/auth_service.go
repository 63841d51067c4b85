package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/genailabs-inc/usecase-portal/pkg/apperrors"
	"github.com/genailabs-inc/usecase-portal/pkg/auth"
	"github.com/genailabs-inc/usecase-portal/pkg/models"
	"github.com/genailabs-inc/usecase-portal/pkg/repositories"
)

// AuthService verifies credentials and issues login tokens.
type AuthService interface {
	// Login returns the user and a signed token, or ErrUnauthorized for any
	// bad credential. Unknown usernames and wrong passwords are deliberately
	// indistinguishable.
	Login(ctx context.Context, username, password string) (*models.User, string, error)
}

type authService struct {
	users    repositories.UserRepository
	secret   string
	tokenTTL time.Duration
	logger   *zap.Logger
}

// NewAuthService creates an AuthService signing tokens with secret.
func NewAuthService(users repositories.UserRepository, secret string, tokenTTL time.Duration, logger *zap.Logger) AuthService {
	return &authService{
		users:    users,
		secret:   secret,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

var _ AuthService = (*authService)(nil)

func (s *authService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", fmt.Errorf("login failed: %w", apperrors.ErrUnauthorized)
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug("Password mismatch", zap.String("username", username))
		return nil, "", fmt.Errorf("login failed: %w", apperrors.ErrUnauthorized)
	}

	token, err := auth.IssueToken(user, s.secret, s.tokenTTL)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("User logged in",
		zap.Int64("user_id", user.ID),
		zap.String("role", user.Role))
	return user, token, nil
}
