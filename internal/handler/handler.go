// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/okcommons/community-calendar/internal/auth"
	"github.com/okcommons/community-calendar/internal/model"
	"github.com/okcommons/community-calendar/internal/repository"
	"github.com/okcommons/community-calendar/internal/service"
)

// EventHandler holds the HTTP handlers for the events API.
type EventHandler struct {
	svc *service.EventService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

// writeInvalid reports a validation failure, listing each bad field when the
// error carries them.
func writeInvalid(w http.ResponseWriter, err error) {
	var fields model.FieldErrors
	if errors.As(err, &fields) {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "invalid input", Fields: fields})
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// viewerID returns the authenticated user's ID, or "" for anonymous reads.
func viewerID(r *http.Request) string {
	identity, _ := auth.IdentityFrom(r.Context())
	return identity.ID
}

// mustIdentity returns the identity placed in the context by the Require
// middleware. Mutating handlers are only reachable through it, so a missing
// identity is a wiring bug and is answered with 401 rather than a panic.
func mustIdentity(w http.ResponseWriter, r *http.Request) (model.Identity, bool) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no token provided")
	}
	return identity, ok
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// ListEvents handles GET /api/events with optional category and search
// filters. Works for anonymous and authenticated viewers alike.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter := model.EventFilter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
	}

	events, err := h.svc.List(r.Context(), filter, viewerID(r))
	if err != nil {
		logrus.WithError(err).Error("list events")
		writeError(w, http.StatusInternalServerError, "failed to fetch events")
		return
	}

	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /api/events/{id}.
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), viewerID(r))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		logrus.WithError(err).Error("get event")
		writeError(w, http.StatusInternalServerError, "failed to fetch event")
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// CreateEvent handles POST /api/events. The creator becomes the organizer.
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := mustIdentity(w, r)
	if !ok {
		return
	}

	var in model.EventInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		writeInvalid(w, err)
		return
	}

	event, err := h.svc.Create(r.Context(), in, identity)
	if err != nil {
		logrus.WithError(err).Error("create event")
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// UpdateEvent handles PUT /api/events/{id}. Organizer only.
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := mustIdentity(w, r)
	if !ok {
		return
	}

	var in model.EventInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		writeInvalid(w, err)
		return
	}

	event, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), in, identity)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "event not found")
		case errors.Is(err, service.ErrForbidden):
			writeError(w, http.StatusForbidden, "you can only edit your own events")
		default:
			logrus.WithError(err).Error("update event")
			writeError(w, http.StatusInternalServerError, "failed to update event")
		}
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /api/events/{id}. Organizer only; terminal.
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := mustIdentity(w, r)
	if !ok {
		return
	}

	err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), identity)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "event not found")
		case errors.Is(err, service.ErrForbidden):
			writeError(w, http.StatusForbidden, "you can only delete your own events")
		default:
			logrus.WithError(err).Error("delete event")
			writeError(w, http.StatusInternalServerError, "failed to delete event")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetRSVP handles POST /api/events/{id}/rsvp. Open to any authenticated
// user, not just the organizer.
func (h *EventHandler) SetRSVP(w http.ResponseWriter, r *http.Request) {
	identity, ok := mustIdentity(w, r)
	if !ok {
		return
	}

	var in model.RSVPInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.svc.SetRSVP(r.Context(), chi.URLParam(r, "id"), identity.ID, in.RSVPStatus)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidRSVPStatus):
			writeError(w, http.StatusBadRequest, "invalid RSVP status")
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "event not found")
		default:
			logrus.WithError(err).Error("set rsvp")
			writeError(w, http.StatusInternalServerError, "failed to update RSVP")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// SetFavorite handles POST /api/events/{id}/favorite.
func (h *EventHandler) SetFavorite(w http.ResponseWriter, r *http.Request) {
	identity, ok := mustIdentity(w, r)
	if !ok {
		return
	}

	var in model.FavoriteInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.svc.SetFavorite(r.Context(), chi.URLParam(r, "id"), identity.ID, in.IsFavorited)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		logrus.WithError(err).Error("set favorite")
		writeError(w, http.StatusInternalServerError, "failed to update favorite")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
