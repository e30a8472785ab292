// Package service implements business logic and orchestration between HTTP
// handlers and the stores: event CRUD with ownership checks, the
// RSVP/favorite engines, and account registration/login.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okcommons/community-calendar/internal/model"
)

// ErrForbidden is returned when an authenticated identity attempts a
// mutation reserved for the event's organizer.
var ErrForbidden = errors.New("forbidden")

// EventStore is the record store the event service runs against. Mutate must
// provide per-record atomicity: fn runs against a fresh read of the record
// and its result is written back without interleaving with concurrent
// mutations of the same record. When fn reports false the record is not
// written at all.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	Get(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context, filter model.EventFilter) ([]model.Event, error)
	Update(ctx context.Context, e *model.Event) error
	Delete(ctx context.Context, id string) error
	Mutate(ctx context.Context, id string, fn func(*model.Event) (bool, error)) (*model.Event, error)
}

// EventService orchestrates event operations.
type EventService struct {
	store EventStore
}

// NewEventService constructs an EventService.
func NewEventService(store EventStore) *EventService {
	return &EventService{store: store}
}

// Create stores a new event owned by the creating identity.
func (s *EventService) Create(ctx context.Context, in model.EventInput, organizer model.Identity) (model.ClientEvent, error) {
	now := time.Now().UTC()
	e := &model.Event{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Date:        in.Date,
		Time:        in.Time,
		Location:    in.Location,
		Organizer:   organizer.Username,
		OrganizerID: organizer.ID,
		ContactInfo: in.ContactInfo,
		ImageURL:    in.ImageURL,
		MaxCapacity: in.MaxCapacity,
		Tags:        in.Tags,
		Rsvps:       map[string]model.RSVPStatus{},
		Favorites:   []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if err := s.store.Create(ctx, e); err != nil {
		return model.ClientEvent{}, fmt.Errorf("create event: %w", err)
	}
	return e.ClientView(organizer.ID), nil
}

// Get returns the event projected for the viewer. An empty viewerID is an
// anonymous read.
func (s *EventService) Get(ctx context.Context, id, viewerID string) (model.ClientEvent, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return model.ClientEvent{}, err
	}
	return e.ClientView(viewerID), nil
}

// List returns all events matching the filter, projected for the viewer.
func (s *EventService) List(ctx context.Context, filter model.EventFilter, viewerID string) ([]model.ClientEvent, error) {
	events, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]model.ClientEvent, 0, len(events))
	for i := range events {
		views = append(views, events[i].ClientView(viewerID))
	}
	return views, nil
}

// Update replaces the organizer-editable fields. Only the organizer may
// update; the check runs here even though handlers already authenticate, so
// no other call path can slip past it.
func (s *EventService) Update(ctx context.Context, id string, in model.EventInput, actor model.Identity) (model.ClientEvent, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return model.ClientEvent{}, err
	}
	if !e.IsOrganizer(actor.ID) {
		return model.ClientEvent{}, ErrForbidden
	}

	e.Title = in.Title
	e.Description = in.Description
	e.Category = in.Category
	e.Date = in.Date
	e.Time = in.Time
	e.Location = in.Location
	e.ContactInfo = in.ContactInfo
	e.ImageURL = in.ImageURL
	e.MaxCapacity = in.MaxCapacity
	e.Tags = in.Tags
	if e.Tags == nil {
		e.Tags = []string{}
	}
	e.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, e); err != nil {
		return model.ClientEvent{}, err
	}
	return e.ClientView(actor.ID), nil
}

// Delete removes an event. Organizer only; deletion is terminal.
func (s *EventService) Delete(ctx context.Context, id string, actor model.Identity) error {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !e.IsOrganizer(actor.ID) {
		return ErrForbidden
	}
	return s.store.Delete(ctx, id)
}

// SetRSVP applies an RSVP transition for the user. Any authenticated
// identity may RSVP to any event; ownership is deliberately not checked
// here. The wire status is echoed back verbatim.
func (s *EventService) SetRSVP(ctx context.Context, eventID, userID, wireStatus string) (model.RSVPResponse, error) {
	status, err := model.ParseRSVPStatus(wireStatus)
	if err != nil {
		return model.RSVPResponse{}, err
	}
	_, err = s.store.Mutate(ctx, eventID, func(e *model.Event) (bool, error) {
		return e.SetRSVP(userID, status)
	})
	if err != nil {
		return model.RSVPResponse{}, err
	}
	return model.RSVPResponse{EventID: eventID, RSVPStatus: wireStatus}, nil
}

// SetFavorite applies a favorite toggle for the user. Idempotent: repeated
// calls with the same desired value change nothing.
func (s *EventService) SetFavorite(ctx context.Context, eventID, userID string, desired bool) (model.FavoriteResponse, error) {
	_, err := s.store.Mutate(ctx, eventID, func(e *model.Event) (bool, error) {
		return e.SetFavorite(userID, desired), nil
	})
	if err != nil {
		return model.FavoriteResponse{}, err
	}
	return model.FavoriteResponse{EventID: eventID, IsFavorited: desired}, nil
}
