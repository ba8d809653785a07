package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hatch-ir/hatch/internal/model"
)

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, title, COALESCE(description, ''), date::text, time::text,
	location_type, COALESCE(location, ''), COALESCE(link, ''), COALESCE(city, ''),
	category, COALESCE(cover_image, ''), tickets, slug, creator_id, created_at, updated_at`

// EventFilter narrows List results. Zero values mean "no filter".
type EventFilter struct {
	City     model.City
	Category model.Category
	Upcoming bool
}

// Create inserts a new event and returns it with a generated UUID.
// ErrSlugTaken is returned when the slug collides; callers regenerate
// and retry.
func (r *EventRepository) Create(ctx context.Context, in model.EventInput, creatorID, slug string) (*model.Event, error) {
	event := &model.Event{
		ID:           uuid.New().String(),
		Title:        in.Title,
		Description:  in.Description,
		Date:         in.Date,
		Time:         in.Time,
		LocationType: in.LocationType,
		Location:     in.Location,
		Link:         in.Link,
		City:         in.City,
		Category:     in.Category,
		CoverImage:   in.CoverImage,
		Tickets:      in.Tickets,
		Slug:         slug,
		CreatorID:    creatorID,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	tickets, err := json.Marshal(event.Tickets)
	if err != nil {
		return nil, fmt.Errorf("marshal tickets: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO events (id, title, description, date, time, location_type,
		   location, link, city, category, cover_image, tickets, slug, creator_id,
		   created_at, updated_at)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''),
		   NULLIF($9, ''), $10, NULLIF($11, ''), $12, $13, $14, $15, $16)`,
		event.ID, event.Title, event.Description, event.Date, event.Time,
		event.LocationType, event.Location, event.Link, string(event.City),
		event.Category, event.CoverImage, tickets, event.Slug, event.CreatorID,
		event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

// Update rewrites all mutable columns of an event. Creator checks happen in
// the service layer; the repository only touches rows by id.
func (r *EventRepository) Update(ctx context.Context, id string, in model.EventInput) (*model.Event, error) {
	tickets, err := json.Marshal(in.Tickets)
	if err != nil {
		return nil, fmt.Errorf("marshal tickets: %w", err)
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE events SET title = $2, description = NULLIF($3, ''), date = $4,
		   time = $5, location_type = $6, location = NULLIF($7, ''),
		   link = NULLIF($8, ''), city = NULLIF($9, ''), category = $10,
		   cover_image = NULLIF($11, ''), tickets = $12, updated_at = now()
		 WHERE id = $1`,
		id, in.Title, in.Description, in.Date, in.Time, in.LocationType,
		in.Location, in.Link, string(in.City), in.Category, in.CoverImage, tickets,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes an event. Registrations go with it via ON DELETE CASCADE.
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

// List returns events matching the filter, newest first.
func (r *EventRepository) List(ctx context.Context, f EventFilter) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE ($1 = '' OR city = $1)
		   AND ($2 = '' OR category = $2)
		   AND (NOT $3 OR date >= CURRENT_DATE)
		 ORDER BY created_at DESC`,
		string(f.City), string(f.Category), f.Upcoming,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListByCreator returns the events a user created, newest first.
func (r *EventRepository) ListByCreator(ctx context.Context, creatorID string) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE creator_id = $1 ORDER BY created_at DESC`,
		creatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("list events by creator: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	return r.getBy(ctx, "id", id)
}

// GetBySlug returns a single event by its friendly-URL slug or ErrNotFound.
func (r *EventRepository) GetBySlug(ctx context.Context, slug string) (*model.Event, error) {
	return r.getBy(ctx, "slug", slug)
}

func (r *EventRepository) getBy(ctx context.Context, column, value string) (*model.Event, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE `+column+` = $1`, value)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var (
		e       model.Event
		city    string
		tickets []byte
	)
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Time,
		&e.LocationType, &e.Location, &e.Link, &city, &e.Category,
		&e.CoverImage, &tickets, &e.Slug, &e.CreatorID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.City = model.City(city)
	if err := json.Unmarshal(tickets, &e.Tickets); err != nil {
		return nil, fmt.Errorf("unmarshal tickets: %w", err)
	}
	if e.Tickets == nil {
		e.Tickets = []model.TicketOption{}
	}
	return &e, nil
}

func scanEvents(rows pgx.Rows) ([]model.Event, error) {
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
