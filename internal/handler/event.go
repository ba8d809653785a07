package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hatch-ir/hatch/internal/auth"
	"github.com/hatch-ir/hatch/internal/model"
	"github.com/hatch-ir/hatch/internal/repository"
	"github.com/hatch-ir/hatch/internal/service"
)

// EventHandler holds the HTTP handlers for event CRUD.
type EventHandler struct {
	svc *service.EventService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFrom(r.Context())

	var in model.EventInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), userID, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /events with optional city and category filters.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter := repository.EventFilter{
		City:     model.City(r.URL.Query().Get("city")),
		Category: model.Category(r.URL.Query().Get("category")),
		Upcoming: r.URL.Query().Get("upcoming") == "true",
	}

	events, err := h.svc.ListEvents(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}, where {id} is a UUID or a slug.
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// UpdateEvent handles PUT /events/{id} (creator only).
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFrom(r.Context())

	var in model.EventInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.UpdateEvent(r.Context(), userID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /events/{id} (creator only). Registrations are
// removed by the database cascade.
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFrom(r.Context())

	if err := h.svc.DeleteEvent(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMyEvents handles GET /me/events, the creator dashboard.
func (h *EventHandler) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFrom(r.Context())

	events, err := h.svc.ListMyEvents(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}
