package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/okcommons/community-calendar/internal/auth"
	"github.com/okcommons/community-calendar/internal/model"
	"github.com/okcommons/community-calendar/internal/repository"
)

// ErrInvalidCredentials is returned on login with a wrong email or password.
// The two cases are intentionally indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserStore is the account persistence the service runs against.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// AccountService handles registration and login.
type AccountService struct {
	users  UserStore
	tokens *auth.Tokens
}

// NewAccountService constructs an AccountService.
func NewAccountService(users UserStore, tokens *auth.Tokens) *AccountService {
	return &AccountService{users: users, tokens: tokens}
}

// Register creates an account and returns it with a fresh token. Duplicate
// email/username surface as repository.ErrEmailTaken / ErrUsernameTaken.
func (s *AccountService) Register(ctx context.Context, in model.RegisterInput) (model.AuthResponse, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) || errors.Is(err, repository.ErrUsernameTaken) {
			return model.AuthResponse{}, err
		}
		return model.AuthResponse{}, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}
	return model.AuthResponse{ID: u.ID, Username: u.Username, Email: u.Email, Token: token}, nil
}

// Login verifies credentials, records the login time, and returns a fresh
// token.
func (s *AccountService) Login(ctx context.Context, in model.LoginInput) (model.AuthResponse, error) {
	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, fmt.Errorf("find user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	if err := s.users.TouchLastLogin(ctx, u.ID, time.Now().UTC()); err != nil {
		// Bookkeeping only; a failed bump should not block the login.
		logrus.WithError(err).Warn("failed to record last login")
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}
	return model.AuthResponse{ID: u.ID, Username: u.Username, Email: u.Email, Token: token}, nil
}
