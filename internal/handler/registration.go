package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hatch-ir/hatch/internal/auth"
	"github.com/hatch-ir/hatch/internal/model"
	"github.com/hatch-ir/hatch/internal/service"
)

// RegistrationHandler holds the moderation and attendee-facing endpoints.
type RegistrationHandler struct {
	svc *service.RegistrationService
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(svc *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

// Attendees handles GET /events/{id}/registrations?status= (creator only).
func (h *RegistrationHandler) Attendees(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFrom(r.Context())
	status := model.RegistrationStatus(r.URL.Query().Get("status"))

	list, err := h.svc.Attendees(r.Context(), userID, chi.URLParam(r, "id"), status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Moderate handles PATCH /events/{id}/registrations/{rid} (creator only).
func (h *RegistrationHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFrom(r.Context())

	var req model.ModerationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	err := h.svc.Moderate(r.Context(), userID, chi.URLParam(r, "id"), chi.URLParam(r, "rid"), req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Remove handles DELETE /events/{id}/registrations/{rid} (creator only).
func (h *RegistrationHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFrom(r.Context())

	err := h.svc.Remove(r.Context(), userID, chi.URLParam(r, "id"), chi.URLParam(r, "rid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetOwn handles GET /events/{id}/registrations/me, the upstream check a
// page does before mounting the wizard.
func (h *RegistrationHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFrom(r.Context())

	reg, err := h.svc.GetOwn(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// CancelOwn handles DELETE /events/{id}/registrations/me for self-service
// cancellation.
func (h *RegistrationHandler) CancelOwn(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFrom(r.Context())

	if err := h.svc.CancelOwn(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMine handles GET /me/registrations
func (h *RegistrationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFrom(r.Context())

	regs, err := h.svc.ListMine(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, regs)
}

// Ticket handles GET /events/{id}/ticket, the confirmation view the wizard
// navigates to after a successful commit.
func (h *RegistrationHandler) Ticket(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFrom(r.Context())

	view, err := h.svc.Ticket(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
