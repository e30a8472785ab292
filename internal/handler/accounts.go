package handler

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/okcommons/community-calendar/internal/model"
	"github.com/okcommons/community-calendar/internal/repository"
	"github.com/okcommons/community-calendar/internal/service"
)

// AccountHandler holds the HTTP handlers for registration and login.
type AccountHandler struct {
	svc *service.AccountService
}

// NewAccountHandler constructs an AccountHandler.
func NewAccountHandler(svc *service.AccountService) *AccountHandler {
	return &AccountHandler{svc: svc}
}

// Register handles POST /api/auth/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in model.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		writeInvalid(w, err)
		return
	}

	resp, err := h.svc.Register(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailTaken):
			writeError(w, http.StatusConflict, "email already registered")
		case errors.Is(err, repository.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "username already taken")
		default:
			logrus.WithError(err).Error("register")
			writeError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in model.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		writeInvalid(w, err)
		return
	}

	resp, err := h.svc.Login(r.Context(), in)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		logrus.WithError(err).Error("login")
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
