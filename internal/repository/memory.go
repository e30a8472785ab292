package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/okcommons/community-calendar/internal/model"
)

// MemoryEventStore is an in-memory event store with the same contract as
// EventRepository, including per-record atomicity for Mutate. It backs the
// test suites and local development without a database.
type MemoryEventStore struct {
	mu     sync.Mutex
	events map[string]*model.Event
}

// NewMemoryEventStore constructs an empty in-memory event store.
func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{events: make(map[string]*model.Event)}
}

func cloneEvent(e *model.Event) *model.Event {
	c := *e
	if e.Tags != nil {
		c.Tags = append([]string(nil), e.Tags...)
	}
	if e.Favorites != nil {
		c.Favorites = append([]string(nil), e.Favorites...)
	}
	if e.Rsvps != nil {
		c.Rsvps = make(map[string]model.RSVPStatus, len(e.Rsvps))
		for k, v := range e.Rsvps {
			c.Rsvps[k] = v
		}
	}
	return &c
}

// Create stores a copy of the event.
func (s *MemoryEventStore) Create(_ context.Context, e *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = cloneEvent(e)
	return nil
}

// Get returns a copy of the event or ErrNotFound.
func (s *MemoryEventStore) Get(_ context.Context, id string) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneEvent(e), nil
}

// List filters and orders events the same way the postgres store does:
// category exact match, case-insensitive substring search over title or
// description, ordered by date ascending then created_at descending.
func (s *MemoryEventStore) List(_ context.Context, filter model.EventFilter) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	search := strings.ToLower(filter.Search)
	var events []model.Event
	for _, e := range s.events {
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Title), search) &&
			!strings.Contains(strings.ToLower(e.Description), search) {
			continue
		}
		events = append(events, *cloneEvent(e))
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events, nil
}

// Update persists organizer-editable fields of an existing event.
func (s *MemoryEventStore) Update(_ context.Context, e *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.events[e.ID]
	if !ok {
		return ErrNotFound
	}
	next := cloneEvent(e)
	// Engagement state is owned by Mutate; carry the stored one forward.
	next.Rsvps = cur.Rsvps
	next.Favorites = cur.Favorites
	next.AttendeesGoing = cur.AttendeesGoing
	next.AttendeesInterested = cur.AttendeesInterested
	s.events[e.ID] = next
	return nil
}

// Delete removes an event permanently.
func (s *MemoryEventStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return ErrNotFound
	}
	delete(s.events, id)
	return nil
}

// Mutate applies fn to the stored event under the store lock, so concurrent
// mutations of the same event serialize exactly as the postgres row lock
// makes them.
func (s *MemoryEventStore) Mutate(_ context.Context, id string, fn func(*model.Event) (bool, error)) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}

	work := cloneEvent(e)
	changed, err := fn(work)
	if err != nil {
		return nil, err
	}
	if changed {
		s.events[id] = work
	}
	return cloneEvent(work), nil
}

// MemoryUserStore is the in-memory counterpart of UserRepository.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

// NewMemoryUserStore constructs an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*model.User)}
}

// Create stores a copy of the user, enforcing the same uniqueness the
// postgres indexes do.
func (s *MemoryUserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
		if existing.Username == u.Username {
			return ErrUsernameTaken
		}
	}
	c := *u
	s.users[u.ID] = &c
	return nil
}

// GetByID returns a user or ErrNotFound.
func (s *MemoryUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *u
	return &c, nil
}

// GetByEmail returns a user or ErrNotFound.
func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

// TouchLastLogin records a successful login.
func (s *MemoryUserStore) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.LastLoginAt = at
	return nil
}
