package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Event is a tournament or league night that matches can be tagged with.
type Event struct {
	ID       uuid.UUID
	Name     string
	HeldAt   time.Time
	Location string
}

// EventRepository reads event metadata. Events are seeded out of band;
// the API only reads them.
type EventRepository struct {
	db Querier
}

// NewEventRepository constructs an event repository.
func NewEventRepository(db Querier) *EventRepository {
	return &EventRepository{db: db}
}

// List returns all events, newest first.
func (r *EventRepository) List(ctx context.Context) ([]Event, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, held_at, location FROM events ORDER BY held_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Name, &e.HeldAt, &e.Location); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Get fetches a single event.
func (r *EventRepository) Get(ctx context.Context, id uuid.UUID) (Event, error) {
	var e Event
	err := r.db.QueryRow(ctx, `SELECT id, name, held_at, location FROM events WHERE id = $1`, id).
		Scan(&e.ID, &e.Name, &e.HeldAt, &e.Location)
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	if err != nil {
		return Event{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}
