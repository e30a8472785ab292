package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okcommons/community-calendar/internal/model"
)

const eventColumns = `id, title, description, category, date, time, location,
	organizer, organizer_id, contact_info, image_url, max_capacity, tags,
	rsvps, favorites, attendees_going, attendees_interested, created_at, updated_at`

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Category, &e.Date, &e.Time,
		&e.Location, &e.Organizer, &e.OrganizerID, &e.ContactInfo, &e.ImageURL,
		&e.MaxCapacity, &e.Tags, &e.Rsvps, &e.Favorites,
		&e.AttendeesGoing, &e.AttendeesInterested, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a fully constructed event.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		e.ID, e.Title, e.Description, e.Category, e.Date, e.Time, e.Location,
		e.Organizer, e.OrganizerID, e.ContactInfo, e.ImageURL, e.MaxCapacity,
		e.Tags, e.Rsvps, e.Favorites, e.AttendeesGoing, e.AttendeesInterested,
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// List returns events matching the filter, ordered by date ascending with
// newest-created first as the tie-break. The order is deterministic so
// clients see a stable sequence.
func (r *EventRepository) List(ctx context.Context, filter model.EventFilter) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE ($1 = '' OR category = $1)
		   AND ($2 = '' OR title ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
		 ORDER BY date ASC, created_at DESC`,
		filter.Category, filter.Search,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Get returns a single event or ErrNotFound.
func (r *EventRepository) Get(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// Update persists the organizer-editable fields. Engagement state is only
// ever written through Mutate.
func (r *EventRepository) Update(ctx context.Context, e *model.Event) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE events
		 SET title = $2, description = $3, category = $4, date = $5, time = $6,
		     location = $7, contact_info = $8, image_url = $9, max_capacity = $10,
		     tags = $11, updated_at = $12
		 WHERE id = $1`,
		e.ID, e.Title, e.Description, e.Category, e.Date, e.Time, e.Location,
		e.ContactInfo, e.ImageURL, e.MaxCapacity, e.Tags, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an event permanently.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Mutate runs fn against the current engagement state of one event and
// persists the result, atomically with respect to concurrent Mutate calls on
// the same event.
//
// A naive read-then-write would let two concurrent RSVPs read the same
// counter snapshot and lose one of the updates. SELECT ... FOR UPDATE takes a
// row-level exclusive lock inside the transaction, so concurrent mutations of
// the same event serialize; different events stay fully independent.
//
// When fn reports no change the write (and the updated_at bump) is skipped.
func (r *EventRepository) Mutate(ctx context.Context, id string, fn func(*model.Event) (bool, error)) (*model.Event, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var e *model.Event
	e, err = scanEvent(tx.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	var changed bool
	changed, err = fn(e)
	if err != nil {
		return nil, err
	}

	if changed {
		_, err = tx.Exec(ctx,
			`UPDATE events
			 SET rsvps = $2, favorites = $3, attendees_going = $4,
			     attendees_interested = $5, updated_at = $6
			 WHERE id = $1`,
			e.ID, e.Rsvps, e.Favorites, e.AttendeesGoing, e.AttendeesInterested, e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("write engagement state: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return e, nil
}
