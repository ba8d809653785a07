package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hatch-ir/hatch/internal/auth"
	"github.com/hatch-ir/hatch/internal/model"
	"github.com/hatch-ir/hatch/internal/repository"
	"github.com/hatch-ir/hatch/internal/service"
	"github.com/hatch-ir/hatch/internal/wizard"
)

// WizardHandler drives registration wizard sessions over HTTP. Each open
// dialog maps to one server-held session; closing the dialog (or the DELETE
// endpoint) discards it.
type WizardHandler struct {
	events   *service.EventService
	authn    *service.AuthService
	regs     *service.RegistrationService
	sessions *wizard.Sessions
}

// NewWizardHandler constructs a WizardHandler.
func NewWizardHandler(events *service.EventService, authn *service.AuthService, regs *service.RegistrationService, sessions *wizard.Sessions) *WizardHandler {
	return &WizardHandler{events: events, authn: authn, regs: regs, sessions: sessions}
}

// wizardState is the wizard's externally visible state after each action.
type wizardState struct {
	SessionID    string               `json:"session_id"`
	Step         wizard.Step          `json:"step"`
	Tickets      []model.TicketOption `json:"tickets"`
	Selected     *model.TicketOption  `json:"selected_ticket,omitempty"`
	Form         model.AttendeeInfo   `json:"form"`
	EmailLocked  bool                 `json:"email_locked"`
	Registration *model.Registration  `json:"registration,omitempty"`
	TicketRoute  string               `json:"ticket_route,omitempty"`
	Token        string               `json:"token,omitempty"`
}

func (h *WizardHandler) state(sid string, wiz *wizard.Wizard, token string) wizardState {
	st := wizardState{
		SessionID:   sid,
		Step:        wiz.Step(),
		Tickets:     wiz.Tickets(),
		Selected:    wiz.SelectedTicket(),
		Form:        wiz.Form(),
		EmailLocked: wiz.Authenticated(),
		Token:       token,
	}
	if st.Step == wizard.StepReceipt {
		st.Registration = wiz.Registration()
		st.TicketRoute = wiz.TicketRoute()
	}
	return st
}

// Open handles POST /events/{id}/wizard. The caller is expected to have
// checked (via GET /events/{id}/registrations/me) that the user is not
// already registered; the wizard itself does not guard against being
// mounted twice.
func (h *WizardHandler) Open(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	cfg := wizard.Config{
		Event:     event,
		Identity:  h.authn,
		Registrar: h.regs,
		OnSuccess: func(reg *model.Registration) {
			slog.Info("registration created",
				"event_id", reg.EventID, "user_id", reg.UserID, "status", reg.Status)
		},
	}
	if userID, ok := auth.UserFrom(r.Context()); ok {
		cfg.Authenticated = true
		if profile, err := h.authn.Profile(r.Context(), userID); err == nil {
			cfg.Profile = profile
		}
	}

	wiz := wizard.New(cfg)
	sid := h.sessions.Open(wiz)
	writeJSON(w, http.StatusCreated, h.state(sid, wiz, ""))
}

type ticketRequest struct {
	TicketID string `json:"ticket_id"`
}

// SelectTicket handles POST /wizard/{sid}/ticket: select and confirm.
func (h *WizardHandler) SelectTicket(w http.ResponseWriter, r *http.Request) {
	sid, wiz, ok := h.session(w, r)
	if !ok {
		return
	}

	var req ticketRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.TicketID != "" {
		if err := wiz.SelectTicket(req.TicketID); err != nil {
			writeWizardError(w, err)
			return
		}
	}
	if err := wiz.ConfirmTicket(); err != nil {
		writeWizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.state(sid, wiz, ""))
}

// Back handles POST /wizard/{sid}/back: ticket-step back navigation or
// "change email" from the verification step.
func (h *WizardHandler) Back(w http.ResponseWriter, r *http.Request) {
	sid, wiz, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := wiz.Back(); err != nil {
		writeWizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.state(sid, wiz, ""))
}

// SubmitInfo handles POST /wizard/{sid}/info
func (h *WizardHandler) SubmitInfo(w http.ResponseWriter, r *http.Request) {
	sid, wiz, ok := h.session(w, r)
	if !ok {
		return
	}

	var info model.AttendeeInfo
	if err := decodeJSON(r, &info); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := wiz.SubmitInfo(r.Context(), info); err != nil {
		writeWizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.state(sid, wiz, ""))
}

type verifyRequest struct {
	Code string `json:"code"`
}

// VerifyCode handles POST /wizard/{sid}/verify. On a successful
// verification the response carries a session token even when the commit
// itself fails; the user did just sign in.
func (h *WizardHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	sid, wiz, ok := h.session(w, r)
	if !ok {
		return
	}

	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	err := wiz.VerifyCode(r.Context(), req.Code)
	token := ""
	if userID := wiz.VerifiedUser(); userID != "" {
		if t, _, tokenErr := h.authn.IssueToken(r.Context(), userID); tokenErr == nil {
			token = t
		}
	}
	if err != nil {
		if token != "" {
			// Verified fine, but the commit did not go through (a duplicate
			// registration or a plain failure). The user did just sign in,
			// so the token rides along with the error.
			status, msg := wizardErrorStatus(err)
			writeJSON(w, status, map[string]string{"error": msg, "token": token})
			return
		}
		writeWizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.state(sid, wiz, token))
}

// Close handles DELETE /wizard/{sid}: dialog dismissed, everything reset.
func (h *WizardHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.sessions.Close(chi.URLParam(r, "sid"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *WizardHandler) session(w http.ResponseWriter, r *http.Request) (string, *wizard.Wizard, bool) {
	sid := chi.URLParam(r, "sid")
	wiz, ok := h.sessions.Get(sid)
	if !ok {
		writeError(w, http.StatusNotFound, "wizard session not found")
		return "", nil, false
	}
	return sid, wiz, true
}

// wizardErrorStatus maps the wizard's error taxonomy: the anticipated
// duplicate gets its own wording, step/state misuse maps to 409, bad input
// to 400, and everything else surfaces with the underlying message.
func wizardErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrAlreadyRegistered):
		return http.StatusConflict, "قبلاً ثبت‌نام کردی!"
	case errors.Is(err, wizard.ErrBusy), errors.Is(err, wizard.ErrWrongStep):
		return http.StatusConflict, err.Error()
	case errors.Is(err, wizard.ErrMissingFields):
		return http.StatusBadRequest, "لطفاً همه فیلدها رو پر کن"
	case errors.Is(err, wizard.ErrUnknownTicket),
		errors.Is(err, wizard.ErrNoTicketSelected),
		errors.Is(err, wizard.ErrEmailLocked):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCode), errors.Is(err, service.ErrCodeExpired):
		return http.StatusUnauthorized, "کد اشتباهه"
	case errors.Is(err, wizard.ErrNotAuthenticated):
		return http.StatusUnauthorized, "لطفاً دوباره وارد شو"
	default:
		return http.StatusBadGateway, err.Error()
	}
}

func writeWizardError(w http.ResponseWriter, err error) {
	status, msg := wizardErrorStatus(err)
	writeError(w, status, msg)
}
