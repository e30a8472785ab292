package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okcommons/community-calendar/internal/model"
)

// UserRepository handles persistence for accounts.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. Unique-index violations are translated to
// ErrEmailTaken / ErrUsernameTaken so the service layer can return 409
// without a racy pre-check.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "users_email_key":
				return ErrEmailTaken
			case "users_username_key":
				return ErrUsernameTaken
			}
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) scanOne(row pgx.Row) (*model.User, error) {
	var u model.User
	var lastLogin *time.Time
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &lastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if lastLogin != nil {
		u.LastLoginAt = *lastLogin
	}
	return &u, nil
}

// GetByID returns a user or ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at, last_login_at
		 FROM users WHERE id = $1`, id,
	))
}

// GetByEmail returns a user or ErrNotFound.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at, last_login_at
		 FROM users WHERE email = $1`, email,
	))
}

// TouchLastLogin records a successful login.
func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}
