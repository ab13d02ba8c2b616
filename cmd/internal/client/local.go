package client

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"nailbook/cmd/internal/booking"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type localStore struct {
	Appointments []Appointment `json:"appointments"`
	Blocked      []BlockedDate `json:"blocked_dates"`
}

// LocalBackend keeps appointments and blocked dates in a JSON file. It is meant for
// working without a server and applies the same overlap rule on create.
type LocalBackend struct {
	mu    sync.Mutex
	path  string
	rules booking.Rules
	data  localStore
}

func NewLocalBackend(path string, rules booking.Rules) (*LocalBackend, error) {
	if path == "" {
		return nil, errors.New("offline data file path is empty")
	}

	b := &LocalBackend{path: path, rules: rules}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return b, nil
	case err != nil:
		return nil, fmt.Errorf("read offline data: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &b.data); err != nil {
			return nil, fmt.Errorf("parse offline data %s: %w", path, err)
		}
	}
	return b, nil
}

func (b *LocalBackend) ListAppointments(_ context.Context) ([]Appointment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Appointment, len(b.data.Appointments))
	copy(out, b.data.Appointments)
	return out, nil
}

func (b *LocalBackend) CreateAppointment(_ context.Context, in AppointmentInput) (*Appointment, error) {
	if in.StartsAt.IsZero() {
		return nil, fmt.Errorf("%w: start time is required", ErrInvalidInput)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	appt := Appointment{
		ID:              uuid.NewString(),
		ServiceID:       in.ServiceID,
		Title:           in.Title,
		Description:     in.Description,
		StartsAt:        in.StartsAt,
		DurationMinutes: booking.DurationOf(in.DurationMinutes, in.Description, b.rules.DefaultDurationMinutes),
		Location:        in.Location,
		Attendees:       in.Attendees,
		Status:          "confirmed",
	}
	if err := b.checkFree(appt, ""); err != nil {
		return nil, err
	}

	next := b.data
	next.Appointments = append(append([]Appointment(nil), b.data.Appointments...), appt)
	sort.SliceStable(next.Appointments, func(i, j int) bool {
		return next.Appointments[i].StartsAt.Before(next.Appointments[j].StartsAt)
	})
	if err := b.commit(next); err != nil {
		return nil, err
	}
	return &appt, nil
}

func (b *LocalBackend) UpdateAppointment(_ context.Context, id string, patch AppointmentPatch) (*Appointment, error) {
	if patch.StartsAt.IsZero() {
		return nil, fmt.Errorf("%w: start time is required", ErrInvalidInput)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: appointment %s not found", ErrInvalidInput, id)
	}

	updated := b.data.Appointments[idx]
	updated.StartsAt = patch.StartsAt
	if patch.ServiceID != "" && patch.ServiceID != updated.ServiceID {
		if patch.DurationMinutes <= 0 {
			return nil, fmt.Errorf("%w: duration of service %s is required", ErrInvalidInput, patch.ServiceID)
		}
		updated.ServiceID = patch.ServiceID
	}
	if patch.DurationMinutes > 0 {
		updated.DurationMinutes = patch.DurationMinutes
		updated.Description = booking.SetDurationMarker(updated.Description, patch.DurationMinutes)
	}
	if err := b.checkFree(updated, id); err != nil {
		return nil, err
	}

	next := b.data
	next.Appointments = append([]Appointment(nil), b.data.Appointments...)
	next.Appointments[idx] = updated
	if err := b.commit(next); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (b *LocalBackend) DeleteAppointment(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: appointment %s not found", ErrInvalidInput, id)
	}
	next := b.data
	next.Appointments = append(append([]Appointment(nil), b.data.Appointments[:idx]...), b.data.Appointments[idx+1:]...)
	return b.commit(next)
}

func (b *LocalBackend) ListBlockedInRange(_ context.Context, start, end booking.Day) ([]BlockedDate, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []BlockedDate
	for _, blocked := range b.data.Blocked {
		day, err := booking.ParseDay(blocked.Date)
		if err != nil || day.Before(start) || day.After(end) {
			continue
		}
		out = append(out, blocked)
	}
	return out, nil
}

func (b *LocalBackend) Block(_ context.Context, day booking.Day, reason string) error {
	if day.IsZero() {
		return fmt.Errorf("%w: day is required", ErrInvalidInput)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := day.String()
	for _, blocked := range b.data.Blocked {
		if blocked.Date == key {
			return fmt.Errorf("%w: %s is already blocked", ErrConflict, key)
		}
	}
	if reason == "" {
		reason = "Blocked"
	}
	next := b.data
	next.Blocked = append(append([]BlockedDate(nil), b.data.Blocked...), BlockedDate{ID: uuid.NewString(), Date: key, Reason: reason})
	return b.commit(next)
}

func (b *LocalBackend) Unblock(_ context.Context, day booking.Day) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := day.String()
	for i, blocked := range b.data.Blocked {
		if blocked.Date == key {
			next := b.data
			next.Blocked = append(append([]BlockedDate(nil), b.data.Blocked[:i]...), b.data.Blocked[i+1:]...)
			return b.commit(next)
		}
	}
	return fmt.Errorf("%w: %s is not blocked", ErrInvalidInput, key)
}

// checkFree rejects appt when its day is blocked or its window overlaps another
// appointment. skipID is the appointment being rescheduled.
func (b *LocalBackend) checkFree(appt Appointment, skipID string) error {
	day := booking.DayOf(appt.StartsAt, b.rules.Location)
	for _, blocked := range b.data.Blocked {
		if blocked.Date == day.String() {
			return fmt.Errorf("%w: %s is blocked", ErrConflict, blocked.Date)
		}
	}

	def := b.rules.DefaultDurationMinutes
	mine := appt.Busy(def)
	for _, other := range b.data.Appointments {
		if other.ID == skipID {
			continue
		}
		theirs := other.Busy(def)
		if booking.Overlaps(mine.Start, mine.DurationMinutes, theirs.Start, theirs.DurationMinutes) {
			return fmt.Errorf("%w: overlaps appointment %s", ErrConflict, other.ID)
		}
	}
	return nil
}

func (b *LocalBackend) indexOf(id string) int {
	for i, appt := range b.data.Appointments {
		if appt.ID == id {
			return i
		}
	}
	return -1
}

// commit writes next to a temp file in the same directory, renames it over the data
// file, and only then makes it the in-memory state.
func (b *LocalBackend) commit(next localStore) error {
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode offline data: %v", ErrServer, err)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: %v", ErrServer, err)
	}
	tmp, err := os.CreateTemp(dir, ".nailbook-offline-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServer, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrServer, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrServer, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrServer, err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		return fmt.Errorf("%w: %v", ErrServer, err)
	}
	b.data = next
	return nil
}
