package model

// EventInput is the payload for creating or updating an event.
type EventInput struct {
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Date         string         `json:"date"`
	Time         string         `json:"time"`
	LocationType LocationType   `json:"location_type"`
	Location     string         `json:"location"`
	Link         string         `json:"link"`
	City         City           `json:"city"`
	Category     Category       `json:"category"`
	CoverImage   string         `json:"cover_image"`
	Tickets      []TicketOption `json:"tickets"`
}

// AttendeeInfo is the info-step payload of the registration wizard.
type AttendeeInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// FullName joins the attendee's first and last name.
func (a AttendeeInfo) FullName() string {
	return a.FirstName + " " + a.LastName
}

// OTPRequest asks for a one-time code to be emailed.
type OTPRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// OTPVerifyRequest submits a received one-time code.
type OTPVerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ModerationRequest changes a registration's status (creator only).
type ModerationRequest struct {
	Status RegistrationStatus `json:"status"`
}

// ProfileInput is the payload for updating one's own profile. Email is
// deliberately absent: it is immutable once set.
type ProfileInput struct {
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}
