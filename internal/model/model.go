// Package model defines the core domain types for the community calendar.
package model

import "time"

// RSVPStatus is a user's attendance intent for an event.
//
// "Not going" is represented by the absence of an entry in Event.Rsvps, so
// only going and interested are ever stored. StatusNone is the internal
// value meaning "remove my RSVP".
type RSVPStatus string

const (
	StatusGoing      RSVPStatus = "going"
	StatusInterested RSVPStatus = "interested"
	StatusNone       RSVPStatus = ""
)

// Categories is the fixed set of event categories accepted by the API.
var Categories = []string{
	"general",
	"garage_sale",
	"sports",
	"church",
	"town_meeting",
	"community",
	"fundraiser",
	"workshop",
	"festival",
}

// ValidCategory reports whether c is one of the enumerated categories.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	LastLoginAt  time.Time `json:"last_login_at,omitzero"`
}

// Identity is a resolved, authenticated user reference derived from a
// verified credential.
type Identity struct {
	ID       string
	Username string
}

// Event is the central record: descriptive fields set by the organizer plus
// engagement state (rsvps, favorites, counters) owned by the RSVP/favorite
// engines.
//
// Rsvps and Favorites are never serialized to clients; ClientView produces
// the outward representation.
type Event struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Date        string   `json:"date"` // YYYY-MM-DD
	Time        string   `json:"time"`
	Location    string   `json:"location"`
	Organizer   string   `json:"organizer"`
	OrganizerID string   `json:"organizer_id"`
	ContactInfo string   `json:"contact_info"`
	ImageURL    string   `json:"image_url"`
	MaxCapacity int      `json:"max_capacity"`
	Tags        []string `json:"tags"`

	// Engagement state. Rsvps maps user ID to status; Favorites is a
	// duplicate-free list of user IDs.
	Rsvps     map[string]RSVPStatus `json:"-"`
	Favorites []string              `json:"-"`

	AttendeesGoing      int `json:"attendees_going"`
	AttendeesInterested int `json:"attendees_interested"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOrganizer reports whether userID created this event. Organizer ID is the
// sole authorization axis for update and delete.
func (e *Event) IsOrganizer(userID string) bool {
	return userID != "" && e.OrganizerID == userID
}

// ClientEvent is the viewer-specific projection of an Event: it carries the
// viewer's own RSVP status and favorite flag but strips the raw membership
// collections so other users' identities never leak.
type ClientEvent struct {
	Event
	UserRSVP    string `json:"user_rsvp"`
	IsFavorited bool   `json:"is_favorited"`
}

// ClientView projects the event for the given viewer. An empty viewerID
// (anonymous) yields UserRSVP "" and IsFavorited false.
func (e *Event) ClientView(viewerID string) ClientEvent {
	view := ClientEvent{Event: *e}
	// Detach the membership collections from the copy so they cannot be
	// reached through the projection.
	view.Event.Rsvps = nil
	view.Event.Favorites = nil
	if view.Event.Tags == nil {
		view.Event.Tags = []string{}
	}
	if viewerID == "" {
		return view
	}
	if status, ok := e.Rsvps[viewerID]; ok {
		view.UserRSVP = string(status)
	}
	for _, id := range e.Favorites {
		if id == viewerID {
			view.IsFavorited = true
			break
		}
	}
	return view
}

// EventFilter narrows event listings. Category is an exact match against the
// enumerated set; Search is a case-insensitive substring match over title or
// description. Empty fields match everything.
type EventFilter struct {
	Category string
	Search   string
}

// EventInput is the payload for creating or updating an event.
type EventInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Location    string   `json:"location"`
	ContactInfo string   `json:"contact_info"`
	ImageURL    string   `json:"image_url"`
	MaxCapacity int      `json:"max_capacity"`
	Tags        []string `json:"tags"`
}

// RSVPInput is the payload for POST /api/events/{id}/rsvp. The wire values
// "not_going" and "" both mean "remove my RSVP".
type RSVPInput struct {
	RSVPStatus string `json:"rsvp_status"`
}

// FavoriteInput is the payload for POST /api/events/{id}/favorite.
type FavoriteInput struct {
	IsFavorited bool `json:"is_favorited"`
}

// RSVPResponse echoes the applied RSVP.
type RSVPResponse struct {
	EventID    string `json:"event_id"`
	RSVPStatus string `json:"rsvp_status"`
}

// FavoriteResponse echoes the applied favorite state.
type FavoriteResponse struct {
	EventID     string `json:"event_id"`
	IsFavorited bool   `json:"is_favorited"`
}

// RegisterInput is the payload for POST /api/auth/register.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput is the payload for POST /api/auth/login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

// ErrorResponse is the standard JSON error envelope.
type ErrorResponse struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields,omitempty"`
}
