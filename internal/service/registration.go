package service

import (
	"context"
	"fmt"

	"github.com/hatch-ir/hatch/internal/model"
)

type registrationStore interface {
	Insert(ctx context.Context, reg *model.Registration) (*model.Registration, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*model.Registration, error)
	ListByEvent(ctx context.Context, eventID string, status model.RegistrationStatus) ([]model.Registration, error)
	ListByUser(ctx context.Context, userID string) ([]model.Registration, error)
	CountByStatus(ctx context.Context, eventID string) (model.StatusCounts, error)
	UpdateStatus(ctx context.Context, id string, status model.RegistrationStatus) error
	Delete(ctx context.Context, id string) error
	DeleteByEventAndUser(ctx context.Context, eventID, userID string) error
}

// RegistrationService owns registration commits, the creator's moderation
// operations, and the attendee-facing ticket view.
type RegistrationService struct {
	events        eventStore
	registrations registrationStore
	profiles      profileStore
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(events eventStore, registrations registrationStore, profiles profileStore) *RegistrationService {
	return &RegistrationService{events: events, registrations: registrations, profiles: profiles}
}

// Register inserts one registration row. This is the wizard's commit target;
// repository.ErrAlreadyRegistered comes back unchanged for duplicates.
func (s *RegistrationService) Register(ctx context.Context, reg *model.Registration) (*model.Registration, error) {
	return s.registrations.Insert(ctx, reg)
}

// AttendeeList is what the attendees (moderation) view renders.
type AttendeeList struct {
	Registrations []model.Registration `json:"registrations"`
	Counts        model.StatusCounts   `json:"counts"`
}

// Attendees lists an event's registrations with per-status counts,
// optionally filtered by status. Creator only.
func (s *RegistrationService) Attendees(ctx context.Context, userID, eventID string, status model.RegistrationStatus) (*AttendeeList, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("unknown status %q", status)
	}
	if err := s.requireCreator(ctx, userID, eventID); err != nil {
		return nil, err
	}
	regs, err := s.registrations.ListByEvent(ctx, eventID, status)
	if err != nil {
		return nil, err
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	counts, err := s.registrations.CountByStatus(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &AttendeeList{Registrations: regs, Counts: counts}, nil
}

// Moderate sets a registration's status. Creator only.
func (s *RegistrationService) Moderate(ctx context.Context, userID, eventID, registrationID string, status model.RegistrationStatus) error {
	if !status.Valid() {
		return fmt.Errorf("status must be pending, approved or rejected")
	}
	if err := s.requireCreator(ctx, userID, eventID); err != nil {
		return err
	}
	return s.registrations.UpdateStatus(ctx, registrationID, status)
}

// Remove deletes a registration. Creator only.
func (s *RegistrationService) Remove(ctx context.Context, userID, eventID, registrationID string) error {
	if err := s.requireCreator(ctx, userID, eventID); err != nil {
		return err
	}
	return s.registrations.Delete(ctx, registrationID)
}

// CancelOwn deletes the caller's own registration for an event.
func (s *RegistrationService) CancelOwn(ctx context.Context, userID, eventID string) error {
	return s.registrations.DeleteByEventAndUser(ctx, eventID, userID)
}

// ListMine returns all of a user's registrations.
func (s *RegistrationService) ListMine(ctx context.Context, userID string) ([]model.Registration, error) {
	regs, err := s.registrations.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	return regs, nil
}

// GetOwn returns the caller's registration for an event, if any. Callers of
// the wizard use this to decide whether to mount it at all.
func (s *RegistrationService) GetOwn(ctx context.Context, userID, eventID string) (*model.Registration, error) {
	return s.registrations.GetByEventAndUser(ctx, eventID, userID)
}

// TicketView is the confirmation page the wizard navigates to: the
// registration together with its event, the matching ticket and the
// organiser's profile.
type TicketView struct {
	Event        *model.Event        `json:"event"`
	Registration *model.Registration `json:"registration"`
	Ticket       *model.TicketOption `json:"ticket,omitempty"`
	Organizer    *model.Profile      `json:"organizer,omitempty"`
}

// Ticket assembles the ticket view for the caller's registration.
func (s *RegistrationService) Ticket(ctx context.Context, userID, eventID string) (*TicketView, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	reg, err := s.registrations.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	view := &TicketView{Event: event, Registration: reg}
	if reg.TicketID != nil {
		view.Ticket = event.TicketByID(*reg.TicketID)
	}
	if organizer, err := s.profiles.GetByID(ctx, event.CreatorID); err == nil {
		view.Organizer = organizer
	}
	return view, nil
}

func (s *RegistrationService) requireCreator(ctx context.Context, userID, eventID string) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.CreatorID != userID {
		return ErrForbidden
	}
	return nil
}
