package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AnshRaj112/serenify-journal/internal/models"
	"github.com/AnshRaj112/serenify-journal/pkg/utils"
)

// Sessions issues and checks session tokens.
type Sessions interface {
	Create(ctx context.Context, userID uuid.UUID) (string, error)
	Validate(ctx context.Context, token string) (uuid.UUID, bool, error)
	Invalidate(ctx context.Context, token string) error
}

// AuthService handles email/password accounts.
type AuthService struct {
	users    UserStore
	sessions Sessions
	log      *zap.Logger

	hash   func(password string) (string, error)
	verify func(password, hash string) (bool, error)
}

func NewAuthService(users UserStore, sessions Sessions, log *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		log:      log,
		hash:     utils.HashPassword,
		verify:   utils.VerifyPassword,
	}
}

// SignUp creates an account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, email, password, fullName string) (models.User, string, error) {
	if err := utils.ValidateEmail(email); err != nil {
		return models.User{}, "", err
	}
	if err := utils.ValidatePassword(password); err != nil {
		return models.User{}, "", err
	}
	if err := utils.ValidateFullName(fullName); err != nil {
		return models.User{}, "", err
	}

	hash, err := s.hash(password)
	if err != nil {
		return models.User{}, "", err
	}
	u, err := s.users.Create(ctx, models.User{
		Email:        utils.NormalizeEmail(email),
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
	})
	if err != nil {
		return models.User{}, "", err
	}

	token, err := s.sessions.Create(ctx, u.ID)
	if err != nil {
		return models.User{}, "", err
	}
	s.log.Info("user signed up", zap.String("user_id", u.ID.String()))
	return u, token, nil
}

// SignIn checks credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (models.User, string, error) {
	u, err := s.users.GetByEmail(ctx, utils.NormalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return models.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, "", err
	}

	ok, err := s.verify(password, u.PasswordHash)
	if err != nil {
		s.log.Error("stored password hash is unreadable", zap.String("user_id", u.ID.String()), zap.Error(err))
		return models.User{}, "", ErrInvalidCredentials
	}
	if !ok {
		return models.User{}, "", ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, u.ID)
	if err != nil {
		return models.User{}, "", err
	}
	return u, token, nil
}

func (s *AuthService) SignOut(ctx context.Context, token string) error {
	return s.sessions.Invalidate(ctx, token)
}

// Authenticate resolves a session token to its user id.
func (s *AuthService) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	userID, ok, err := s.sessions.Validate(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}
	if !ok {
		return uuid.Nil, ErrUnauthorized
	}
	return userID, nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.users.GetByID(ctx, userID)
}
