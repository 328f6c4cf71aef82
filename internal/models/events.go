package models

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const DefaultMaxAttendees = 20

type Event struct {
	ID           int64      `db:"id" json:"id"`
	Title        string     `db:"title" json:"title"`
	Category     string     `db:"category" json:"category"`
	Description  string     `db:"description" json:"description"`
	Date         string     `db:"date" json:"date"` // free text, e.g. "Saturday, 9:00 AM"
	Location     string     `db:"location" json:"location"`
	City         string     `db:"city" json:"city"`
	Area         string     `db:"area" json:"area"`
	Zipcode      string     `db:"zipcode" json:"zipcode"`
	Icon         string     `db:"icon" json:"icon"`
	Attendees    int        `db:"attendees" json:"attendees"`
	MaxAttendees int        `db:"max_attendees" json:"maxAttendees"`
	CreatedBy    *uuid.UUID `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}

// IsFull reports whether no seat is left.
func (e *Event) IsFull() bool {
	return e.Attendees >= e.MaxAttendees
}

// IsOrganizer reports whether userID created the event.
func (e *Event) IsOrganizer(userID uuid.UUID) bool {
	return e.CreatedBy != nil && *e.CreatedBy == userID
}

// EventInput is the body accepted when creating an event.
type EventInput struct {
	Title        string `json:"title" validate:"required,max=255"`
	Category     string `json:"category" validate:"required,max=100"`
	Description  string `json:"description"`
	Date         string `json:"date" validate:"required,max=100"`
	Location     string `json:"location" validate:"required,max=255"`
	City         string `json:"city" validate:"max=255"`
	Area         string `json:"area" validate:"max=255"`
	Zipcode      string `json:"zipcode" validate:"max=20"`
	Icon         string `json:"icon" validate:"max=10"`
	MaxAttendees *int   `json:"maxAttendees" validate:"omitempty,min=1,max=100000"`
}

// EventUpdate carries a partial update; nil fields are left unchanged.
type EventUpdate struct {
	Title        *string `json:"title" validate:"omitempty,min=1,max=255"`
	Category     *string `json:"category" validate:"omitempty,min=1,max=100"`
	Description  *string `json:"description"`
	Date         *string `json:"date" validate:"omitempty,min=1,max=100"`
	Location     *string `json:"location" validate:"omitempty,min=1,max=255"`
	City         *string `json:"city" validate:"omitempty,max=255"`
	Area         *string `json:"area" validate:"omitempty,max=255"`
	Zipcode      *string `json:"zipcode" validate:"omitempty,max=20"`
	Icon         *string `json:"icon" validate:"omitempty,max=10"`
	MaxAttendees *int    `json:"maxAttendees" validate:"omitempty,min=1,max=100000"`
}

// IsEmpty reports whether the update would change nothing.
func (u *EventUpdate) IsEmpty() bool {
	return u.Title == nil && u.Category == nil && u.Description == nil && u.Date == nil &&
		u.Location == nil && u.City == nil && u.Area == nil && u.Zipcode == nil &&
		u.Icon == nil && u.MaxAttendees == nil
}

// EventFilter narrows SearchEvents. Empty fields match everything.
type EventFilter struct {
	Location string // substring of city, area or zipcode, case-insensitive
	Category string // exact match
}

// FriendsEvent is an event joined by at least one friend of the caller.
type FriendsEvent struct {
	*Event
	FriendsAttending []*User `json:"friendsAttending"`
}

type EventRepo interface {
	ListEvents(ctx context.Context) ([]*Event, error)
	GetEventByID(ctx context.Context, id int64) (*Event, error)
	GetEventsByIDs(ctx context.Context, ids []int64) ([]*Event, error)
	CreateEvent(ctx context.Context, event *Event) (*Event, error)
	UpdateEvent(ctx context.Context, id int64, update *EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	JoinEvent(ctx context.Context, eventID int64, userID uuid.UUID) (*Event, error)
	LeaveEvent(ctx context.Context, eventID int64, userID uuid.UUID) (*Event, error)
	HasJoined(ctx context.Context, eventID int64, userID uuid.UUID) (bool, error)
	SearchEvents(ctx context.Context, filter EventFilter) ([]*Event, error)
	ListEventsByCreator(ctx context.Context, userID uuid.UUID) ([]*Event, error)
	ListJoinedEvents(ctx context.Context, userID uuid.UUID) ([]*Event, error)
	ListFriendsEvents(ctx context.Context, userID uuid.UUID) ([]*FriendsEvent, error)
}
