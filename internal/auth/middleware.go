package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okcommons/community-calendar/internal/model"
	"github.com/okcommons/community-calendar/internal/repository"
)

// UserStore is the subset of the user repository the middleware needs to
// resolve a token subject to a live account.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type contextKey struct{}

var identityKey contextKey

// IdentityFrom returns the authenticated identity attached to the request
// context, if any. Anonymous requests yield ok=false.
func IdentityFrom(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(model.Identity)
	return id, ok
}

// Middleware resolves bearer credentials against a token verifier and the
// user store.
type Middleware struct {
	tokens *Tokens
	users  UserStore
}

// NewMiddleware constructs the auth middleware.
func NewMiddleware(tokens *Tokens, users UserStore) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// resolve is a pure function of the request credential, the clock, and the
// current user store snapshot. It never mutates anything.
func (m *Middleware) resolve(ctx context.Context, r *http.Request) (model.Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return model.Identity{}, ErrNoCredential
	}
	token := strings.TrimPrefix(header, "Bearer ")

	userID, err := m.tokens.Verify(token)
	if err != nil {
		return model.Identity{}, err
	}

	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Identity{}, ErrUserNotFound
		}
		return model.Identity{}, err
	}
	return model.Identity{ID: user.ID, Username: user.Username}, nil
}

// Optional resolves the credential when present but never rejects: any
// resolution failure degrades silently to an anonymous request.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, err := m.resolve(r.Context(), r); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), identityKey, identity))
		}
		next.ServeHTTP(w, r)
	})
}

// Require rejects the request with 401 unless a valid credential resolves to
// an existing user.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := m.resolve(r.Context(), r)
		if err != nil {
			status := http.StatusUnauthorized
			var msg string
			switch {
			case errors.Is(err, ErrNoCredential):
				msg = "no token provided"
			case errors.Is(err, ErrExpiredToken):
				msg = "token expired"
			case errors.Is(err, ErrMalformedToken):
				msg = "invalid token"
			case errors.Is(err, ErrUserNotFound):
				msg = "user not found"
			default:
				status = http.StatusInternalServerError
				msg = "authentication error"
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
