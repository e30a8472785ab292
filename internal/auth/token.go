// Package auth implements bearer-token identity: signing and verifying JWTs,
// password hashing, and the HTTP middleware that resolves the Authorization
// header to an authenticated identity.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token failure taxonomy. The middleware maps each case to its own response
// message; optional-auth paths swallow all of them and proceed as anonymous.
var (
	ErrNoCredential   = errors.New("no credential provided")
	ErrMalformedToken = errors.New("malformed token")
	ErrExpiredToken   = errors.New("token expired")
	ErrUserNotFound   = errors.New("token user not found")
)

// Tokens signs and verifies HS256 access tokens. The secret and lifetime are
// injected at construction; nothing is read from ambient process state at
// call time.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens constructs a Tokens with the given shared secret and lifetime.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithNow overrides the clock. Tests use it to mint expired tokens.
func (t *Tokens) WithNow(now func() time.Time) *Tokens {
	t.now = now
	return t
}

// Issue signs a token whose subject is the given user ID.
func (t *Tokens) Issue(userID string) (string, error) {
	now := t.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of a token and returns the embedded
// user ID. Expiry is reported distinctly from every other defect.
func (t *Tokens) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrMalformedToken
	}
	if claims.Subject == "" {
		return "", ErrMalformedToken
	}
	return claims.Subject, nil
}
