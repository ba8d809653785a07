package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatch-ir/hatch/internal/auth"
	"github.com/hatch-ir/hatch/internal/model"
	"github.com/hatch-ir/hatch/internal/repository"
	"github.com/hatch-ir/hatch/internal/service"
)

type mapEvents struct {
	byID map[string]*model.Event
}

func newMapEvents() *mapEvents {
	return &mapEvents{byID: make(map[string]*model.Event)}
}

func (m *mapEvents) Create(_ context.Context, in model.EventInput, creatorID, slug string) (*model.Event, error) {
	e := &model.Event{
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
		Tickets:      in.Tickets,
		Slug:         slug,
		CreatorID:    creatorID,
	}
	m.byID[e.ID] = e
	return e, nil
}

func (m *mapEvents) Update(_ context.Context, id string, in model.EventInput) (*model.Event, error) {
	e, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e.Title = in.Title
	e.Tickets = in.Tickets
	return e, nil
}

func (m *mapEvents) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *mapEvents) List(_ context.Context, f repository.EventFilter) ([]model.Event, error) {
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

func (m *mapEvents) ListByCreator(_ context.Context, creatorID string) ([]model.Event, error) {
	var out []model.Event
	for _, e := range m.byID {
		if e.CreatorID == creatorID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mapEvents) GetByID(_ context.Context, id string) (*model.Event, error) {
	if e, ok := m.byID[id]; ok {
		return e, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mapEvents) GetBySlug(_ context.Context, slug string) (*model.Event, error) {
	for _, e := range m.byID {
		if e.Slug == slug {
			return e, nil
		}
	}
	return nil, repository.ErrNotFound
}

type eventFixture struct {
	router *chi.Mux
	tokens *auth.Tokens
}

func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()

	tokens := auth.NewTokens([]byte("test-secret"))
	svc := service.NewEventService(newMapEvents())
	eh := NewEventHandler(svc)
	authn := NewAuthenticator(tokens)

	r := chi.NewRouter()
	r.Route("/events", func(r chi.Router) {
		r.Get("/", eh.ListEvents)
		r.With(authn.Require).Post("/", eh.CreateEvent)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", eh.GetEvent)
			r.With(authn.Require).Put("/", eh.UpdateEvent)
			r.With(authn.Require).Delete("/", eh.DeleteEvent)
		})
	})
	r.With(authn.Require).Get("/me/events", eh.ListMyEvents)

	return &eventFixture{router: r, tokens: tokens}
}

func (f *eventFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func sampleEventInput() model.EventInput {
	return model.EventInput{
		Title:        "شب استارتاپی",
		Date:         "2026-11-20",
		Time:         "17:00",
		LocationType: model.LocationInPerson,
		Location:     "هاب نوآوری",
		City:         model.City("shiraz"),
		Category:     model.Category("startup"),
		Tickets:      []model.TicketOption{{Name: "ورود آزاد"}},
	}
}

func TestEventCRUDOverHTTP(t *testing.T) {
	f := newEventFixture(t)
	creator, err := f.tokens.Issue("creator-1", "org@example.com")
	require.NoError(t, err)
	other, err := f.tokens.Issue("someone-else", "x@example.com")
	require.NoError(t, err)

	// Creating needs a session.
	rec := f.do(t, http.MethodPost, "/events", "", sampleEventInput())
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/events", creator, sampleEventInput())
	require.Equal(t, http.StatusCreated, rec.Code)
	var event model.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &event))
	assert.Equal(t, "creator-1", event.CreatorID)
	assert.NotEmpty(t, event.Slug)
	require.Len(t, event.Tickets, 1)
	assert.NotEmpty(t, event.Tickets[0].ID)

	// Anyone can fetch, by id or by slug.
	rec = f.do(t, http.MethodGet, "/events/"+event.Slug, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodGet, "/events/no-such-event", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// The list endpoint honours filters and rejects unknown ones.
	rec = f.do(t, http.MethodGet, "/events?city=shiraz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []model.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)

	rec = f.do(t, http.MethodGet, "/events?city=gotham", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/events?city=tehran", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Empty(t, listed)

	// Only the creator can update or delete.
	rec = f.do(t, http.MethodPut, "/events/"+event.ID, other, sampleEventInput())
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(t, http.MethodDelete, "/events/"+event.ID, other, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	updated := sampleEventInput()
	updated.Title = "شب استارتاپی ۲"
	rec = f.do(t, http.MethodPut, "/events/"+event.ID, creator, updated)
	require.Equal(t, http.StatusOK, rec.Code)

	// The creator dashboard sees it; a stranger's dashboard is empty.
	rec = f.do(t, http.MethodGet, "/me/events", creator, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)

	rec = f.do(t, http.MethodGet, "/me/events", other, nil)
	listed = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Empty(t, listed)

	rec = f.do(t, http.MethodDelete, "/events/"+event.ID, creator, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodGet, "/events/"+event.ID, "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateEventRejectsBadPayload(t *testing.T) {
	f := newEventFixture(t)
	creator, err := f.tokens.Issue("creator-1", "org@example.com")
	require.NoError(t, err)

	in := sampleEventInput()
	in.Date = "tomorrow"
	rec := f.do(t, http.MethodPost, "/events", creator, in)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown JSON fields are rejected outright.
	rec = f.do(t, http.MethodPost, "/events", creator, map[string]any{"title": "x", "bogus": true})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequireRejectsBadTokens(t *testing.T) {
	f := newEventFixture(t)

	for _, header := range []string{"", "Bearer ", "Bearer garbage", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/me/events", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}
