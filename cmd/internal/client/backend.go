package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nailbook/cmd/internal/booking"
	"nailbook/cmd/internal/config"
)

var (
	ErrConflict     = errors.New("time slot was taken")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("session is not authorized")
	ErrServer       = errors.New("server error")
	ErrNetwork      = errors.New("backend unreachable")
)

type Kind int

const (
	KindNone Kind = iota
	KindConflict
	KindInvalidInput
	KindUnauthorized
	KindServer
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindConflict:
		return "conflict"
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthorized:
		return "unauthorized"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Classify maps an error returned by a Backend onto the error taxonomy. Errors that
// carry none of the sentinels are treated as server failures.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	default:
		return KindServer
	}
}

type Attendee struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	RSVP  string `json:"rsvp,omitempty"`
}

type Appointment struct {
	ID              string     `json:"id"`
	ServiceID       string     `json:"service_id,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	StartsAt        time.Time  `json:"starts_at"`
	DurationMinutes int        `json:"duration_minutes"`
	Location        string     `json:"location"`
	Attendees       []Attendee `json:"attendees"`
	Status          string     `json:"status,omitempty"`
}

// Busy is the window the appointment occupies. Rows without a stored duration fall back
// to the description marker, then to def.
func (a Appointment) Busy(def int) booking.Busy {
	return booking.Busy{
		ID:              a.ID,
		Start:           a.StartsAt,
		DurationMinutes: booking.DurationOf(a.DurationMinutes, a.Description, def),
	}
}

type AppointmentInput struct {
	ServiceID       string
	DurationMinutes int
	StartsAt        time.Time
	Title           string
	// Description carries the legacy "Service: ..., Duration: N minutes" markers.
	Description string
	Notes       string
	Location    string
	Attendees   []Attendee
}

// AppointmentPatch reschedules an appointment. An empty ServiceID keeps the current one.
type AppointmentPatch struct {
	StartsAt  time.Time
	ServiceID string
	// DurationMinutes goes with a new ServiceID. The server derives it from the
	// catalogue and ignores this field.
	DurationMinutes int
}

type BlockedDate struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	Reason     string `json:"reason"`
	Recurrence string `json:"recurring_pattern,omitempty"`
}

// Backend is everything the booking session needs from storage.
type Backend interface {
	ListAppointments(ctx context.Context) ([]Appointment, error)
	CreateAppointment(ctx context.Context, in AppointmentInput) (*Appointment, error)
	UpdateAppointment(ctx context.Context, id string, patch AppointmentPatch) (*Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
	ListBlockedInRange(ctx context.Context, start, end booking.Day) ([]BlockedDate, error)
	Block(ctx context.Context, day booking.Day, reason string) error
	Unblock(ctx context.Context, day booking.Day) error
}

// NewBackend builds the backend named by cfg.Backend.
func NewBackend(cfg config.ClientConfig, rules booking.Rules, creds Credentials) (Backend, error) {
	switch cfg.Backend {
	case "remote":
		return NewRemoteBackend(cfg.BaseURL, creds), nil
	case "local":
		return NewLocalBackend(cfg.DataFile, rules)
	default:
		return nil, fmt.Errorf("unknown client backend %q", cfg.Backend)
	}
}
