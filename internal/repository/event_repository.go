package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"eventdesk/internal/models"
)

var ErrEventNotFound = errors.New("event not found")

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) Create(ctx context.Context, event models.Event) error {
	const query = `
		INSERT INTO events (
			id, title, description, event_date, start_time, location, link, banner_url, attendees, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.Date,
		event.StartTime,
		event.Location,
		event.Link,
		event.BannerURL,
		event.Attendees,
	)
	return err
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (models.Event, error) {
	const query = eventColumns + ` WHERE id = $1`
	return scanEvent(r.pool.QueryRow(ctx, query, id))
}

// List returns the full collection, newest record first. The live
// feed broadcasts exactly this ordering.
func (r *EventRepository) List(ctx context.Context) ([]models.Event, error) {
	const query = eventColumns + ` ORDER BY created_at DESC`
	return queryEvents(ctx, r.pool, query)
}

// ListUpcoming returns events dated on or after the given day,
// soonest first, ties broken by record id.
func (r *EventRepository) ListUpcoming(ctx context.Context, from time.Time) ([]models.Event, error) {
	const query = eventColumns + ` WHERE event_date >= $1 ORDER BY event_date ASC, id ASC`
	return queryEvents(ctx, r.pool, query, from)
}

// IncrementAttendees bumps the attendee count and returns the event.
func (r *EventRepository) IncrementAttendees(ctx context.Context, id string) (models.Event, error) {
	const query = `
		UPDATE events SET attendees = attendees + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING id, title, description, event_date, start_time, location, link, banner_url, attendees, created_at, updated_at
	`
	return scanEvent(r.pool.QueryRow(ctx, query, id))
}

func (r *EventRepository) SetBannerURL(ctx context.Context, id string, url string) error {
	const query = `UPDATE events SET banner_url = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, url)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

const eventColumns = `
	SELECT id, title, description, event_date, start_time, location, link, banner_url, attendees, created_at, updated_at
	FROM events`

func queryEvents(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) ([]models.Event, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func scanEvent(row pgx.Row) (models.Event, error) {
	var event models.Event
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.StartTime,
		&event.Location,
		&event.Link,
		&event.BannerURL,
		&event.Attendees,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Event{}, ErrEventNotFound
		}
		return models.Event{}, err
	}
	return event, nil
}
