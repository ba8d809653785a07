// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/hatch-ir/hatch/internal/model"
	"github.com/hatch-ir/hatch/internal/repository"
)

// ErrForbidden is returned when a user acts on a resource they do not own.
var ErrForbidden = errors.New("not allowed")

type eventStore interface {
	Create(ctx context.Context, in model.EventInput, creatorID, slug string) (*model.Event, error)
	Update(ctx context.Context, id string, in model.EventInput) (*model.Event, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f repository.EventFilter) ([]model.Event, error)
	ListByCreator(ctx context.Context, creatorID string) ([]model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	GetBySlug(ctx context.Context, slug string) (*model.Event, error)
}

// EventService orchestrates event-related business operations.
type EventService struct {
	events eventStore
}

// NewEventService constructs an EventService.
func NewEventService(events eventStore) *EventService {
	return &EventService{events: events}
}

// CreateEvent validates the input, generates a unique slug from the title
// and inserts the event. Slug collisions get a fresh suffix and a retry.
func (s *EventService) CreateEvent(ctx context.Context, creatorID string, in model.EventInput) (*model.Event, error) {
	if err := normalizeEventInput(&in); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < 5; attempt++ {
		event, err := s.events.Create(ctx, in, creatorID, NewSlug(in.Title))
		if errors.Is(err, repository.ErrSlugTaken) {
			continue
		}
		return event, err
	}
	return nil, fmt.Errorf("could not find a free slug for %q", in.Title)
}

// UpdateEvent validates the input and rewrites the event. Only the creator
// may update.
func (s *EventService) UpdateEvent(ctx context.Context, userID, eventID string, in model.EventInput) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.CreatorID != userID {
		return nil, ErrForbidden
	}
	if err := normalizeEventInput(&in); err != nil {
		return nil, err
	}
	return s.events.Update(ctx, eventID, in)
}

// DeleteEvent removes an event and, through the cascade, its registrations.
// Only the creator may delete.
func (s *EventService) DeleteEvent(ctx context.Context, userID, eventID string) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.CreatorID != userID {
		return ErrForbidden
	}
	return s.events.Delete(ctx, eventID)
}

// ListEvents returns events matching the filter.
func (s *EventService) ListEvents(ctx context.Context, f repository.EventFilter) ([]model.Event, error) {
	if !f.City.Valid() {
		return nil, fmt.Errorf("unknown city %q", f.City)
	}
	if f.Category != "" && !f.Category.Valid() {
		return nil, fmt.Errorf("unknown category %q", f.Category)
	}
	return s.events.List(ctx, f)
}

// ListMyEvents returns the events a user created.
func (s *EventService) ListMyEvents(ctx context.Context, userID string) ([]model.Event, error) {
	return s.events.ListByCreator(ctx, userID)
}

// GetEvent resolves an event by UUID or, failing that, by slug.
func (s *EventService) GetEvent(ctx context.Context, idOrSlug string) (*model.Event, error) {
	if idOrSlug == "" {
		return nil, fmt.Errorf("event id is required")
	}
	if _, err := uuid.Parse(idOrSlug); err == nil {
		return s.events.GetByID(ctx, idOrSlug)
	}
	return s.events.GetBySlug(ctx, idOrSlug)
}

// normalizeEventInput validates the input in place: enum membership, date
// and time formats, location coherence, and the embedded ticket list
// (unique ids, non-negative prices, positive capacities).
func normalizeEventInput(in *model.EventInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return fmt.Errorf("event title is required")
	}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD")
	}
	if _, err := time.Parse("15:04", in.Time); err != nil {
		return fmt.Errorf("time must be HH:MM")
	}
	if !in.LocationType.Valid() {
		return fmt.Errorf("location_type must be online or in_person")
	}
	in.Location = strings.TrimSpace(in.Location)
	in.Link = strings.TrimSpace(in.Link)
	if in.LocationType == model.LocationInPerson && in.Location == "" {
		return fmt.Errorf("an in-person event needs a location")
	}
	if in.LocationType == model.LocationOnline && in.Link == "" {
		return fmt.Errorf("an online event needs a link")
	}
	if !in.City.Valid() {
		return fmt.Errorf("unknown city %q", in.City)
	}
	if in.Category == "" {
		in.Category = model.CategoryOther
	}
	if !in.Category.Valid() {
		return fmt.Errorf("unknown category %q", in.Category)
	}

	seen := make(map[string]bool, len(in.Tickets))
	for i := range in.Tickets {
		t := &in.Tickets[i]
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			return fmt.Errorf("ticket %d: name is required", i+1)
		}
		if t.Price < 0 {
			return fmt.Errorf("ticket %q: price cannot be negative", t.Name)
		}
		if t.Capacity != nil && *t.Capacity <= 0 {
			return fmt.Errorf("ticket %q: capacity must be positive when set", t.Name)
		}
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate ticket id %q", t.ID)
		}
		seen[t.ID] = true
	}
	if in.Tickets == nil {
		in.Tickets = []model.TicketOption{}
	}
	return nil
}

// NewSlug derives a URL slug from a title and appends a short random suffix
// so two events with the same title get distinct friendly URLs.
func NewSlug(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "event"
	}
	return slug + "-" + randomSuffix()
}

func randomSuffix() string {
	buf := make([]byte, 3)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
