// Package model defines the core domain types for the event platform.
package model

import "time"

// TicketOption is one selectable tier of attendance for an event. Tickets
// are embedded in the event row as an ordered list; insertion order is
// display order.
type TicketOption struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Price            int    `json:"price"`
	Description      string `json:"description"`
	RequiresApproval bool   `json:"requires_approval"`
	// Capacity is advisory only: stored and displayed, never enforced.
	Capacity *int `json:"capacity"`
}

// Event is a happening created by exactly one user (the creator).
type Event struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description,omitempty"`
	Date         string         `json:"date"`
	Time         string         `json:"time"`
	LocationType LocationType   `json:"location_type"`
	Location     string         `json:"location,omitempty"`
	Link         string         `json:"link,omitempty"`
	City         City           `json:"city,omitempty"`
	Category     Category       `json:"category"`
	CoverImage   string         `json:"cover_image,omitempty"`
	Tickets      []TicketOption `json:"tickets"`
	Slug         string         `json:"slug"`
	CreatorID    string         `json:"creator_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// TicketByID returns the embedded ticket with the given id, or nil.
func (e *Event) TicketByID(id string) *TicketOption {
	for i := range e.Tickets {
		if e.Tickets[i].ID == id {
			return &e.Tickets[i]
		}
	}
	return nil
}

// Registration links one event and one authenticated user. At most one
// registration exists per (event, user) pair; the database enforces this
// with a unique constraint.
type Registration struct {
	ID        string             `json:"id"`
	EventID   string             `json:"event_id"`
	UserID    string             `json:"user_id"`
	TicketID  *string            `json:"ticket_id"`
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	Phone     string             `json:"phone"`
	Status    RegistrationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

// Profile is the per-user account record. Email is immutable once set.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusCounts summarises registrations per status for the attendees view.
type StatusCounts struct {
	All      int `json:"all"`
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
	Rejected int `json:"rejected"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
