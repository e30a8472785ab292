package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okcommons/community-calendar/internal/auth"
	"github.com/okcommons/community-calendar/internal/model"
	"github.com/okcommons/community-calendar/internal/repository"
)

func newAccountService(t *testing.T) (*AccountService, *auth.Tokens, *repository.MemoryUserStore) {
	t.Helper()
	users := repository.NewMemoryUserStore()
	tokens := auth.NewTokens("test-secret", time.Hour)
	return NewAccountService(users, tokens), tokens, users
}

func TestRegisterIssuesUsableToken(t *testing.T) {
	svc, tokens, _ := newAccountService(t)

	resp, err := svc.Register(context.Background(), model.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.ID == "" || resp.Token == "" {
		t.Fatalf("incomplete response: %+v", resp)
	}

	subject, err := tokens.Verify(resp.Token)
	if err != nil || subject != resp.ID {
		t.Errorf("token subject = %q, %v; want %q", subject, err, resp.ID)
	}
}

func TestRegisterConflicts(t *testing.T) {
	svc, _, _ := newAccountService(t)
	ctx := context.Background()

	first := model.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "hunter2hunter2"}
	if _, err := svc.Register(ctx, first); err != nil {
		t.Fatalf("register: %v", err)
	}

	dupEmail := model.RegisterInput{Username: "other", Email: "alice@example.com", Password: "hunter2hunter2"}
	if _, err := svc.Register(ctx, dupEmail); !errors.Is(err, repository.ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}

	dupName := model.RegisterInput{Username: "alice", Email: "alice2@example.com", Password: "hunter2hunter2"}
	if _, err := svc.Register(ctx, dupName); !errors.Is(err, repository.ErrUsernameTaken) {
		t.Errorf("err = %v, want ErrUsernameTaken", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _, users := newAccountService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, model.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := svc.Login(ctx, model.LoginInput{Email: "alice@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.ID != reg.ID || resp.Token == "" {
		t.Errorf("login response = %+v", resp)
	}

	u, err := users.GetByID(ctx, reg.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.LastLoginAt.IsZero() {
		t.Error("last login not recorded")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _, _ := newAccountService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, model.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Wrong password and unknown email must be indistinguishable.
	if _, err := svc.Login(ctx, model.LoginInput{Email: "alice@example.com", Password: "wrong-password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, model.LoginInput{Email: "nobody@example.com", Password: "hunter2hunter2"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
}
