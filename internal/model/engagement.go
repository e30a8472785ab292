package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRSVPStatus is returned when a status outside the enumerated set
// reaches the RSVP engine. Handlers validate first; this is defense in depth
// so a bad value can never corrupt the counters.
var ErrInvalidRSVPStatus = errors.New("invalid rsvp status")

// ParseRSVPStatus maps a wire-level status to its internal value. Both
// "not_going" and "" mean removal and map to StatusNone.
func ParseRSVPStatus(wire string) (RSVPStatus, error) {
	switch wire {
	case "going":
		return StatusGoing, nil
	case "interested":
		return StatusInterested, nil
	case "not_going", "":
		return StatusNone, nil
	default:
		return StatusNone, fmt.Errorf("%w: %q", ErrInvalidRSVPStatus, wire)
	}
}

// SetRSVP applies an RSVP transition for userID and keeps the attendee
// counters in lockstep with the membership map:
//
//  1. If the user has an existing entry, decrement the counter for its old
//     status and remove the entry.
//  2. If status is not StatusNone, insert (userID, status) and increment the
//     matching counter.
//
// The decrement in step 1 only happens when an entry actually existed, so
// counters can never go negative. Re-applying the user's current status and
// removing a non-existent entry are both no-ops; SetRSVP reports whether the
// event changed so callers can skip the write (and the updated_at bump).
func (e *Event) SetRSVP(userID string, status RSVPStatus) (bool, error) {
	switch status {
	case StatusGoing, StatusInterested, StatusNone:
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidRSVPStatus, status)
	}

	old, had := e.Rsvps[userID]
	if had && old == status {
		return false, nil
	}
	if !had && status == StatusNone {
		return false, nil
	}

	if had {
		switch old {
		case StatusGoing:
			e.AttendeesGoing--
		case StatusInterested:
			e.AttendeesInterested--
		}
		delete(e.Rsvps, userID)
	}

	if status != StatusNone {
		if e.Rsvps == nil {
			e.Rsvps = make(map[string]RSVPStatus)
		}
		e.Rsvps[userID] = status
		switch status {
		case StatusGoing:
			e.AttendeesGoing++
		case StatusInterested:
			e.AttendeesInterested++
		}
	}

	e.UpdatedAt = time.Now().UTC()
	return true, nil
}

// SetFavorite toggles favorite membership for userID. It is idempotent by
// construction: the desired state is applied only when it differs from the
// current one, and a strict no-op leaves UpdatedAt untouched.
func (e *Event) SetFavorite(userID string, desired bool) bool {
	idx := -1
	for i, id := range e.Favorites {
		if id == userID {
			idx = i
			break
		}
	}

	switch {
	case desired && idx == -1:
		e.Favorites = append(e.Favorites, userID)
	case !desired && idx != -1:
		e.Favorites = append(e.Favorites[:idx], e.Favorites[idx+1:]...)
	default:
		return false
	}

	e.UpdatedAt = time.Now().UTC()
	return true
}

// IsFavoritedBy reports favorite membership for userID.
func (e *Event) IsFavoritedBy(userID string) bool {
	for _, id := range e.Favorites {
		if id == userID {
			return true
		}
	}
	return false
}
