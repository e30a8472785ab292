// Package database provides PostgreSQL connection management using pgx.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// NewPool creates and validates a pgxpool connection pool for the given
// database URL. It retries up to 5 times to accommodate containers starting
// up.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	// Sensible pool defaults for a small service.
	poolCfg.MaxConns = 20
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			pingErr := pool.Ping(ctx)
			if pingErr == nil {
				return pool, nil
			}
			pool.Close()
			err = pingErr
		}
		logrus.WithError(err).Warnf("db connect attempt %d/5 failed, retrying in 2s", attempt)
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("connect to postgres: %w", err)
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL,
			email         TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL,
			last_login_at TIMESTAMPTZ,
			CONSTRAINT users_email_key UNIQUE (email),
			CONSTRAINT users_username_key UNIQUE (username)
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id                   TEXT PRIMARY KEY,
			title                TEXT NOT NULL,
			description          TEXT NOT NULL DEFAULT '',
			category             TEXT NOT NULL,
			date                 TEXT NOT NULL,
			time                 TEXT NOT NULL DEFAULT '',
			location             TEXT NOT NULL,
			organizer            TEXT NOT NULL,
			organizer_id         TEXT NOT NULL,
			contact_info         TEXT NOT NULL DEFAULT '',
			image_url            TEXT NOT NULL DEFAULT '',
			max_capacity         INTEGER NOT NULL DEFAULT 0,
			tags                 JSONB NOT NULL DEFAULT '[]',
			rsvps                JSONB NOT NULL DEFAULT '{}',
			favorites            JSONB NOT NULL DEFAULT '[]',
			attendees_going      INTEGER NOT NULL DEFAULT 0,
			attendees_interested INTEGER NOT NULL DEFAULT 0,
			created_at           TIMESTAMPTZ NOT NULL,
			updated_at           TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS events_category_idx ON events (category)`,
		`CREATE INDEX IF NOT EXISTS events_date_idx ON events (date, created_at DESC)`,
	}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
