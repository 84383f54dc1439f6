package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when an event id does not exist.
	ErrNotFound = errors.New("attendance event not found")

	// ErrStorage wraps failures of the underlying store.
	ErrStorage = errors.New("attendance storage unavailable")

	// ErrInvalidType is returned for an event type outside the fixed set.
	ErrInvalidType = errors.New("invalid attendance type")
)

// DateLayout is the calendar-day format stored on every event.
const DateLayout = "2006-01-02"

// EventType is one of the five fixed attendance categories.
type EventType string

const (
	ClockIn   EventType = "clock_in"
	ClockOut  EventType = "clock_out"
	Pickup    EventType = "pickup"
	Dropping  EventType = "dropping"
	Breakdown EventType = "breakdown"
)

// EventTypes lists every type in display order.
var EventTypes = []EventType{ClockIn, ClockOut, Pickup, Dropping, Breakdown}

// ParseEventType validates s. An empty string yields ClockIn.
func ParseEventType(s string) (EventType, error) {
	if s == "" {
		return ClockIn, nil
	}
	t := EventType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}

// Valid reports whether t is one of the known types.
func (t EventType) Valid() bool {
	switch t {
	case ClockIn, ClockOut, Pickup, Dropping, Breakdown:
		return true
	default:
		return false
	}
}

// Label is the human readable name.
func (t EventType) Label() string {
	switch t {
	case ClockIn:
		return "Clock In"
	case ClockOut:
		return "Clock Out"
	case Pickup:
		return "Pickup"
	case Dropping:
		return "Dropping"
	case Breakdown:
		return "Breakdown"
	default:
		return string(t)
	}
}

// Event is a single attendance record. Only Verified may change after creation.
type Event struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Date      string    `json:"date"`
	Timestamp int64     `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Address   string    `json:"address"`
	Photo     string    `json:"photo"`
	Type      EventType `json:"type"`
	Verified  bool      `json:"verified"`
}

// Base returns the event itself; OwnedEvent inherits it through embedding.
func (e Event) Base() Event { return e }

// Time returns the event timestamp as a time.Time.
func (e Event) Time() time.Time { return time.UnixMilli(e.Timestamp) }

// OwnedEvent is an event joined with its owner's directory entry.
type OwnedEvent struct {
	Event
	OwnerName    string `json:"user_name"`
	OwnerEmail   string `json:"user_email,omitempty"`
	OwnerPhone   string `json:"user_phone,omitempty"`
	OwnerContact string `json:"user_contact"`
}

// Payload is what a driver submits.
type Payload struct {
	Latitude  float64
	Longitude float64
	Address   string
	Image     string
	Type      EventType
}

// Owner is the directory view of a user needed by the admin log.
type Owner struct {
	ID    int64
	Name  string
	Email string
	Phone string
}

// Contact prefers the email address and falls back to the phone number.
func (o Owner) Contact() string {
	if o.Email != "" {
		return o.Email
	}
	return o.Phone
}

// Directory resolves event owners.
type Directory interface {
	Owners(ctx context.Context, ids []int64) (map[int64]Owner, error)
}

// PhotoStore persists the submitted image and returns a reference to it.
// Delete removes a previously saved reference.
type PhotoStore interface {
	Save(ctx context.Context, userID int64, image string, at time.Time) (string, error)
	Delete(ctx context.Context, ref string) error
}
