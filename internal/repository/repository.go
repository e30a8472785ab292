// Package repository implements persistence for the community calendar.
// The postgres implementations use pgx directly (no ORM); an in-memory
// implementation backs tests and local development.
package repository

import "errors"

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned when registering with an email that already has
// an account.
var ErrEmailTaken = errors.New("email already registered")

// ErrUsernameTaken is returned when registering with a username that is
// already in use.
var ErrUsernameTaken = errors.New("username already taken")
