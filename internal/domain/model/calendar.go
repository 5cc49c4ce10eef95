package model

import (
	"strings"
	"time"
)

// CalendarEvent schedules a look (or a free-form note) for a time range.
type CalendarEvent struct {
	ID        string    `json:"id"                db:"id"`
	OwnerID   string    `json:"owner_id"          db:"owner_id"`
	Title     string    `json:"title"             db:"title"`
	Notes     string    `json:"notes"             db:"notes"`
	StartsAt  time.Time `json:"starts_at"         db:"starts_at"`
	EndsAt    time.Time `json:"ends_at"           db:"ends_at"`
	LookID    *string   `json:"look_id,omitempty" db:"look_id"`
	CreatedAt time.Time `json:"created_at"        db:"created_at"`
}

// CreateEventRequest represents a request to schedule a calendar event.
type CreateEventRequest struct {
	Title    string    `json:"title"             schema:"title"     validate:"required,max=200"`
	Notes    string    `json:"notes"             schema:"notes"     validate:"max=1000"`
	StartsAt time.Time `json:"starts_at"         schema:"starts_at" validate:"required"`
	EndsAt   time.Time `json:"ends_at"           schema:"ends_at"   validate:"required,gtfield=StartsAt"`
	LookID   string    `json:"look_id,omitempty" schema:"look_id"   validate:"omitempty,uuid"`
}

// Validate validates the CreateEventRequest fields.
func (r *CreateEventRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Notes = strings.TrimSpace(r.Notes)
	r.LookID = strings.TrimSpace(r.LookID)
	verr, err := validateStruct(r)
	if err != nil {
		return err
	}
	return verr.orNil()
}

// EventRange selects the events overlapping [From, To) for an owner.
type EventRange struct {
	OwnerID string
	From    time.Time
	To      time.Time
}

// DefaultEventRange returns the calendar month containing now.
func DefaultEventRange(ownerID string, now time.Time) EventRange {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return EventRange{OwnerID: ownerID, From: start, To: start.AddDate(0, 1, 0)}
}
