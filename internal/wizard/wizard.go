// Package wizard implements the multi-step registration flow: ticket
// selection, attendee info, email verification, and the final commit that
// produces exactly one registration.
package wizard

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/hatch-ir/hatch/internal/auth"
	"github.com/hatch-ir/hatch/internal/model"
)

// Step identifies the wizard's current screen.
type Step string

const (
	StepTicketSelection Step = "ticket_selection"
	StepAttendeeInfo    Step = "attendee_info"
	StepOTPVerification Step = "otp_verification"
	StepReceipt         Step = "receipt"
)

var (
	// ErrBusy means a submission is already in flight. The HTTP layer maps
	// it to 409; a well-behaved client disables the submit button while a
	// request is pending.
	ErrBusy = errors.New("a submission is already in flight")

	// ErrWrongStep means the requested action does not belong to the
	// current step.
	ErrWrongStep = errors.New("action not valid for current step")

	ErrUnknownTicket    = errors.New("no such ticket for this event")
	ErrNoTicketSelected = errors.New("no ticket selected")
	ErrMissingFields    = errors.New("first name, last name, email and phone are all required")
	ErrNotAuthenticated = errors.New("no authenticated user")
	ErrEmailLocked      = errors.New("email cannot be changed for a signed-in user")
)

// IdentityProvider is the passwordless auth collaborator.
type IdentityProvider interface {
	// RequestCode emails a one-time code, creating the account lazily.
	RequestCode(ctx context.Context, email, fullName string) error
	// VerifyCode checks a submitted code and returns the user id.
	VerifyCode(ctx context.Context, email, code string) (string, error)
	// CurrentUser returns the authenticated user id carried by ctx. It is
	// consulted fresh immediately before every commit; the wizard never
	// caches an identity across steps.
	CurrentUser(ctx context.Context) (string, bool)
	// UpsertProfile records the attendee's name against the account.
	UpsertProfile(ctx context.Context, userID, email, fullName string) error
}

// Registrar commits registrations. It must return
// repository.ErrAlreadyRegistered for a duplicate (event, user) pair.
type Registrar interface {
	Register(ctx context.Context, reg *model.Registration) (*model.Registration, error)
}

// Config carries everything a wizard needs at open time.
type Config struct {
	Event         *model.Event
	Authenticated bool
	Email         string         // pre-fill for a known but signed-out email
	Profile       *model.Profile // pre-fill source for signed-in users
	Identity      IdentityProvider
	Registrar     Registrar
	OnSuccess     func(*model.Registration)
}

// Wizard drives one registration dialog. Each open dialog owns its own
// state; closing it discards everything captured so far.
type Wizard struct {
	mu sync.Mutex

	event         *model.Event
	authenticated bool
	prefill       model.AttendeeInfo
	identity      IdentityProvider
	registrar     Registrar
	onSuccess     func(*model.Registration)

	step         Step
	selected     *model.TicketOption
	form         model.AttendeeInfo
	busy         bool
	verifiedUser string
	registration *model.Registration
}

// New opens a wizard for an event. With zero or one tickets the ticket step
// is skipped and the single ticket (or none) is pre-selected; otherwise the
// first ticket is the default selection.
func New(cfg Config) *Wizard {
	w := &Wizard{
		event:         cfg.Event,
		authenticated: cfg.Authenticated,
		identity:      cfg.Identity,
		registrar:     cfg.Registrar,
		onSuccess:     cfg.OnSuccess,
	}
	if cfg.Profile != nil {
		first, last, _ := strings.Cut(strings.TrimSpace(cfg.Profile.FullName), " ")
		w.prefill = model.AttendeeInfo{FirstName: first, LastName: last, Email: cfg.Profile.Email}
	} else if cfg.Email != "" {
		w.prefill = model.AttendeeInfo{Email: cfg.Email}
	}
	w.reset()
	return w
}

// reset restores the initial step and clears all captured input.
// Callers hold w.mu.
func (w *Wizard) reset() {
	if len(w.event.Tickets) > 1 {
		w.step = StepTicketSelection
	} else {
		w.step = StepAttendeeInfo
	}
	if len(w.event.Tickets) >= 1 {
		w.selected = &w.event.Tickets[0]
	} else {
		w.selected = nil
	}
	w.form = w.prefill
	w.verifiedUser = ""
	w.registration = nil
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Authenticated reports whether this session was opened by a signed-in
// user, in which case the email field is locked.
func (w *Wizard) Authenticated() bool {
	return w.authenticated
}

// Tickets returns the event's ticket list in display order.
func (w *Wizard) Tickets() []model.TicketOption {
	return w.event.Tickets
}

// SelectedTicket returns the currently selected ticket, or nil.
func (w *Wizard) SelectedTicket() *model.TicketOption {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selected
}

// Form returns the captured attendee info.
func (w *Wizard) Form() model.AttendeeInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form
}

// Registration returns the committed registration once the wizard has
// reached the receipt step, else nil.
func (w *Wizard) Registration() *model.Registration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.registration
}

// VerifiedUser returns the user id established by a successful code
// verification in this session, or "".
func (w *Wizard) VerifiedUser() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.verifiedUser
}

// TicketRoute is where the caller navigates after a successful commit.
func (w *Wizard) TicketRoute() string {
	return "/events/" + w.event.ID + "/ticket"
}

// SelectTicket changes the selection while on the ticket step.
func (w *Wizard) SelectTicket(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepTicketSelection {
		return ErrWrongStep
	}
	t := w.event.TicketByID(id)
	if t == nil {
		return ErrUnknownTicket
	}
	w.selected = t
	return nil
}

// ConfirmTicket advances from ticket selection to attendee info.
func (w *Wizard) ConfirmTicket() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepTicketSelection {
		return ErrWrongStep
	}
	if w.selected == nil {
		return ErrNoTicketSelected
	}
	w.step = StepAttendeeInfo
	return nil
}

// Back navigates one step backwards: from attendee info to the ticket step
// (only when the event offers more than one ticket), or from the
// verification step to attendee info ("change email"), discarding the code.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return ErrBusy
	}
	switch w.step {
	case StepAttendeeInfo:
		if len(w.event.Tickets) <= 1 {
			return ErrWrongStep
		}
		w.step = StepTicketSelection
		return nil
	case StepOTPVerification:
		w.step = StepAttendeeInfo
		return nil
	default:
		return ErrWrongStep
	}
}

// SubmitInfo captures the attendee form. For an authenticated session it
// goes straight to the commit; otherwise it requests a one-time code and
// advances to the verification step. All four fields must be non-empty
// before any network call is made.
func (w *Wizard) SubmitInfo(ctx context.Context, info model.AttendeeInfo) error {
	w.mu.Lock()
	if w.step != StepAttendeeInfo {
		w.mu.Unlock()
		return ErrWrongStep
	}
	if w.busy {
		w.mu.Unlock()
		return ErrBusy
	}
	info = trimmed(info)
	if info.FirstName == "" || info.LastName == "" || info.Email == "" || info.Phone == "" {
		w.mu.Unlock()
		return ErrMissingFields
	}
	// A signed-in user cannot register under a different email; the form
	// field is disabled in the UI and rejected here.
	if w.authenticated && !strings.EqualFold(info.Email, w.prefill.Email) {
		w.mu.Unlock()
		return ErrEmailLocked
	}
	w.form = info
	w.busy = true
	authenticated := w.authenticated
	w.mu.Unlock()

	defer w.clearBusy()

	if authenticated {
		return w.commit(ctx)
	}

	if err := w.identity.RequestCode(ctx, info.Email, info.FullName()); err != nil {
		// Stay on the info step with the input intact.
		return err
	}
	w.mu.Lock()
	w.step = StepOTPVerification
	w.mu.Unlock()
	return nil
}

// VerifyCode checks the submitted 6-digit code. On success the profile is
// upserted with the supplied name and the commit is attempted under the
// freshly verified identity. On failure the wizard stays on the
// verification step; the caller clears the code input.
func (w *Wizard) VerifyCode(ctx context.Context, code string) error {
	w.mu.Lock()
	if w.step != StepOTPVerification {
		w.mu.Unlock()
		return ErrWrongStep
	}
	if w.busy {
		w.mu.Unlock()
		return ErrBusy
	}
	w.busy = true
	form := w.form
	w.mu.Unlock()

	defer w.clearBusy()

	userID, err := w.identity.VerifyCode(ctx, form.Email, code)
	if err != nil {
		return err
	}
	// The session now exists even if the commit below fails; the HTTP layer
	// reads this to hand the user their token either way.
	w.mu.Lock()
	w.verifiedUser = userID
	w.mu.Unlock()

	if err := w.identity.UpsertProfile(ctx, userID, form.Email, form.FullName()); err != nil {
		return err
	}
	return w.commit(auth.WithUser(ctx, userID))
}

// Close resets the wizard to its initial state, discarding all input.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
}

func (w *Wizard) clearBusy() {
	w.mu.Lock()
	w.busy = false
	w.mu.Unlock()
}

// commit issues the single registration insert. The user id is taken from
// the identity provider at this moment, never from earlier in the flow: a
// verification that just happened may have changed the session. Status is
// pending exactly when the selected ticket requires approval. A duplicate
// (event, user) pair surfaces as repository.ErrAlreadyRegistered and is
// never retried; any other failure leaves the wizard where it is with the
// captured input intact.
func (w *Wizard) commit(ctx context.Context) error {
	userID, ok := w.identity.CurrentUser(ctx)
	if !ok {
		return ErrNotAuthenticated
	}

	w.mu.Lock()
	selected := w.selected
	form := w.form
	w.mu.Unlock()

	status := model.StatusApproved
	var ticketID *string
	if selected != nil {
		id := selected.ID
		ticketID = &id
		if selected.RequiresApproval {
			status = model.StatusPending
		}
	}

	reg, err := w.registrar.Register(ctx, &model.Registration{
		EventID:   w.event.ID,
		UserID:    userID,
		TicketID:  ticketID,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Phone:     form.Phone,
		Status:    status,
	})
	if err != nil {
		// repository.ErrAlreadyRegistered passes through untouched so the
		// caller can word the message differently from a generic failure.
		return err
	}

	w.mu.Lock()
	w.registration = reg
	w.step = StepReceipt
	w.mu.Unlock()

	if w.onSuccess != nil {
		w.onSuccess(reg)
	}
	return nil
}

func trimmed(info model.AttendeeInfo) model.AttendeeInfo {
	info.FirstName = strings.TrimSpace(info.FirstName)
	info.LastName = strings.TrimSpace(info.LastName)
	info.Email = strings.TrimSpace(strings.ToLower(info.Email))
	info.Phone = strings.TrimSpace(info.Phone)
	return info
}
