package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatch-ir/hatch/internal/model"
	"github.com/hatch-ir/hatch/internal/repository"
)

type memEvents struct {
	byID      map[string]*model.Event
	slugTaken int // Create fails with ErrSlugTaken this many times
	creates   []string
}

func newMemEvents() *memEvents {
	return &memEvents{byID: make(map[string]*model.Event)}
}

func (m *memEvents) Create(_ context.Context, in model.EventInput, creatorID, slug string) (*model.Event, error) {
	m.creates = append(m.creates, slug)
	if m.slugTaken > 0 {
		m.slugTaken--
		return nil, repository.ErrSlugTaken
	}
	e := &model.Event{
		ID:           "evt-" + slug,
		Title:        in.Title,
		Date:         in.Date,
		Time:         in.Time,
		LocationType: in.LocationType,
		City:         in.City,
		Category:     in.Category,
		Tickets:      in.Tickets,
		Slug:         slug,
		CreatorID:    creatorID,
	}
	m.byID[e.ID] = e
	return e, nil
}

func (m *memEvents) Update(_ context.Context, id string, in model.EventInput) (*model.Event, error) {
	e, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e.Title = in.Title
	e.Tickets = in.Tickets
	return e, nil
}

func (m *memEvents) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memEvents) List(_ context.Context, f repository.EventFilter) ([]model.Event, error) {
	var out []model.Event
	for _, e := range m.byID {
		if f.City != model.CityUnset && e.City != f.City {
			continue
		}
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (m *memEvents) ListByCreator(_ context.Context, creatorID string) ([]model.Event, error) {
	var out []model.Event
	for _, e := range m.byID {
		if e.CreatorID == creatorID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *memEvents) GetByID(_ context.Context, id string) (*model.Event, error) {
	if e, ok := m.byID[id]; ok {
		return e, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memEvents) GetBySlug(_ context.Context, slug string) (*model.Event, error) {
	for _, e := range m.byID {
		if e.Slug == slug {
			return e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func validEventInput() model.EventInput {
	return model.EventInput{
		Title:        "Go Meetup Tehran",
		Description:  "ماهانه",
		Date:         "2026-10-05",
		Time:         "18:30",
		LocationType: model.LocationInPerson,
		Location:     "کافه رستا",
		City:         model.City("tehran"),
		Category:     model.Category("tech"),
	}
}

func TestCreateEventGeneratesSlugAndDefaults(t *testing.T) {
	store := newMemEvents()
	svc := NewEventService(store)

	in := validEventInput()
	in.Category = ""
	event, err := svc.CreateEvent(context.Background(), "user-1", in)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(event.Slug, "go-meetup-tehran-"), event.Slug)
	assert.Equal(t, model.CategoryOther, event.Category)
	assert.Equal(t, "user-1", event.CreatorID)
	assert.NotNil(t, event.Tickets)
	assert.Empty(t, event.Tickets)
}

func TestCreateEventRetriesOnSlugCollision(t *testing.T) {
	store := newMemEvents()
	store.slugTaken = 2
	svc := NewEventService(store)

	event, err := svc.CreateEvent(context.Background(), "user-1", validEventInput())
	require.NoError(t, err)
	require.Len(t, store.creates, 3)
	// Each attempt carries a fresh suffix.
	assert.NotEqual(t, store.creates[0], store.creates[1])
	assert.Equal(t, store.creates[2], event.Slug)
}

func TestCreateEventGivesUpAfterRepeatedCollisions(t *testing.T) {
	store := newMemEvents()
	store.slugTaken = 99
	svc := NewEventService(store)

	_, err := svc.CreateEvent(context.Background(), "user-1", validEventInput())
	require.Error(t, err)
	assert.Len(t, store.creates, 5)
}

func TestCreateEventValidation(t *testing.T) {
	capZero := 0
	tests := []struct {
		name   string
		mutate func(*model.EventInput)
	}{
		{"empty title", func(in *model.EventInput) { in.Title = "  " }},
		{"bad date", func(in *model.EventInput) { in.Date = "05-10-2026" }},
		{"bad time", func(in *model.EventInput) { in.Time = "6pm" }},
		{"bad location type", func(in *model.EventInput) { in.LocationType = "hybrid" }},
		{"in-person without location", func(in *model.EventInput) { in.Location = "" }},
		{"online without link", func(in *model.EventInput) {
			in.LocationType = model.LocationOnline
			in.Link = ""
		}},
		{"unknown city", func(in *model.EventInput) { in.City = "گاتهام" }},
		{"unknown category", func(in *model.EventInput) { in.Category = "underwater" }},
		{"ticket without name", func(in *model.EventInput) {
			in.Tickets = []model.TicketOption{{Name: " "}}
		}},
		{"negative ticket price", func(in *model.EventInput) {
			in.Tickets = []model.TicketOption{{Name: "VIP", Price: -1}}
		}},
		{"zero ticket capacity", func(in *model.EventInput) {
			in.Tickets = []model.TicketOption{{Name: "VIP", Capacity: &capZero}}
		}},
		{"duplicate ticket ids", func(in *model.EventInput) {
			in.Tickets = []model.TicketOption{{ID: "t1", Name: "A"}, {ID: "t1", Name: "B"}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemEvents()
			svc := NewEventService(store)
			in := validEventInput()
			tt.mutate(&in)
			_, err := svc.CreateEvent(context.Background(), "user-1", in)
			require.Error(t, err)
			assert.Empty(t, store.creates)
		})
	}
}

func TestCreateEventAssignsTicketIDs(t *testing.T) {
	store := newMemEvents()
	svc := NewEventService(store)

	in := validEventInput()
	in.Tickets = []model.TicketOption{
		{Name: "عادی", Price: 0},
		{Name: "حامی", Price: 250000, RequiresApproval: true},
	}
	event, err := svc.CreateEvent(context.Background(), "user-1", in)
	require.NoError(t, err)
	require.Len(t, event.Tickets, 2)
	assert.NotEmpty(t, event.Tickets[0].ID)
	assert.NotEmpty(t, event.Tickets[1].ID)
	assert.NotEqual(t, event.Tickets[0].ID, event.Tickets[1].ID)
}

func TestUpdateAndDeleteRequireCreator(t *testing.T) {
	store := newMemEvents()
	svc := NewEventService(store)

	event, err := svc.CreateEvent(context.Background(), "owner", validEventInput())
	require.NoError(t, err)

	_, err = svc.UpdateEvent(context.Background(), "intruder", event.ID, validEventInput())
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.DeleteEvent(context.Background(), "intruder", event.ID), ErrForbidden)

	updated, err := svc.UpdateEvent(context.Background(), "owner", event.ID, validEventInput())
	require.NoError(t, err)
	assert.Equal(t, event.ID, updated.ID)
	require.NoError(t, svc.DeleteEvent(context.Background(), "owner", event.ID))

	_, err = svc.GetEvent(context.Background(), event.Slug)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetEventBySlugOrID(t *testing.T) {
	store := newMemEvents()
	svc := NewEventService(store)

	event, err := svc.CreateEvent(context.Background(), "user-1", validEventInput())
	require.NoError(t, err)

	bySlug, err := svc.GetEvent(context.Background(), event.Slug)
	require.NoError(t, err)
	assert.Equal(t, event.ID, bySlug.ID)

	_, err = svc.GetEvent(context.Background(), "")
	assert.Error(t, err)
}

func TestListEventsRejectsUnknownFilters(t *testing.T) {
	svc := NewEventService(newMemEvents())

	_, err := svc.ListEvents(context.Background(), repository.EventFilter{City: "گاتهام"})
	assert.Error(t, err)
	_, err = svc.ListEvents(context.Background(), repository.EventFilter{Category: "underwater"})
	assert.Error(t, err)
}

func TestNewSlug(t *testing.T) {
	slug := NewSlug("  Go Meetup -- Tehran!  ")
	// kebab body plus a 6-hex-char suffix
	require.Regexp(t, `^go-meetup-tehran-[0-9a-f]{6}$`, slug)

	// Persian titles keep their letters.
	slug = NewSlug("میتاپ برنامه‌نویس‌ها")
	assert.False(t, strings.HasPrefix(slug, "event-"), slug)

	// A title with no usable characters still produces a slug.
	slug = NewSlug("!!! ???")
	assert.True(t, strings.HasPrefix(slug, "event-"), slug)
}
