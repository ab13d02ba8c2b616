package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"nailbook/cmd/internal/booking"

	"github.com/labstack/gommon/log"
	"github.com/robfig/cron/v3"
)

const (
	// blocked dates are fetched from yesterday to at least this many days ahead
	blockedLookahead = 35
	defaultRefresh   = 30 * time.Second
	defaultLocation  = "Nail Studio"
)

type resource int

const (
	resAppointments resource = iota
	resBlocked
	resourceCount
)

func (r resource) String() string {
	if r == resAppointments {
		return "appointments"
	}
	return "blocked dates"
}

// BookingSession drives one customer's booking against a Backend. User actions and the
// periodic refresh share it, so every method is safe for concurrent use.
type BookingSession struct {
	backend  Backend
	rules    booking.Rules
	now      func() time.Time
	interval time.Duration
	location string

	mu      sync.Mutex
	flow    *booking.Flow
	appts   []Appointment
	blocked booking.DaySet
	issued  [resourceCount]uint64
	applied [resourceCount]uint64
	failed  [resourceCount]error

	cron   *cron.Cron
	cancel context.CancelFunc
}

type SessionOption func(*BookingSession)

// WithClock pins the session's notion of "now".
func WithClock(now func() time.Time) SessionOption {
	return func(s *BookingSession) { s.now = now }
}

// WithRefresh sets the periodic reload interval used by Start.
func WithRefresh(every time.Duration) SessionOption {
	return func(s *BookingSession) {
		if every > 0 {
			s.interval = every
		}
	}
}

func WithLocation(location string) SessionOption {
	return func(s *BookingSession) { s.location = location }
}

func NewBookingSession(backend Backend, rules booking.Rules, opts ...SessionOption) *BookingSession {
	s := &BookingSession{
		backend:  backend,
		rules:    rules,
		now:      time.Now,
		interval: defaultRefresh,
		location: defaultLocation,
		blocked:  booking.NewDaySet(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.flow = booking.NewFlow(rules, s.snapshot())
	return s
}

// Load fetches appointments and blocked dates and recomputes availability. A failed
// fetch leaves that list empty and shows up in Banner; the day list is still produced.
func (s *BookingSession) Load(ctx context.Context) booking.Invalidation {
	s.loadAppointments(ctx)
	s.loadBlocked(ctx)
	return s.refresh()
}

func (s *BookingSession) loadAppointments(ctx context.Context) {
	seq := s.issue(resAppointments)
	appts, err := s.backend.ListAppointments(ctx)
	s.apply(resAppointments, seq, err, func() { s.appts = appts })
}

func (s *BookingSession) loadBlocked(ctx context.Context) {
	seq := s.issue(resBlocked)
	today := booking.DayOf(s.now(), s.rules.Location)
	// the last offered day is today + 1 + WindowDays at the latest
	ahead := max(blockedLookahead, s.rules.WindowDays+2)
	entries, err := s.backend.ListBlockedInRange(ctx, today.AddDays(-1), today.AddDays(ahead))

	dates := make([]string, len(entries))
	for i, e := range entries {
		dates[i] = e.Date
	}
	s.apply(resBlocked, seq, err, func() { s.blocked = booking.DaySetFromStrings(dates) })
}

func (s *BookingSession) issue(res resource) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued[res]++
	return s.issued[res]
}

// apply stores a fetch result unless a newer fetch of the same resource already landed.
func (s *BookingSession) apply(res resource, seq uint64, err error, set func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.applied[res] {
		log.Debugf("dropping stale %s response #%d (have #%d)", res, seq, s.applied[res])
		return
	}
	s.applied[res] = seq
	s.failed[res] = err

	if err != nil {
		log.Warnf("failed to load %s: %v", res, err)
		switch res {
		case resAppointments:
			s.appts = nil
		case resBlocked:
			s.blocked = booking.NewDaySet()
		}
		return
	}
	set()
}

func (s *BookingSession) refresh() booking.Invalidation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.Refresh(s.snapshot())
}

// snapshot must be called with mu held (or before the session is shared).
func (s *BookingSession) snapshot() booking.Snapshot {
	busy := make([]booking.Busy, 0, len(s.appts))
	for _, a := range s.appts {
		if a.Status == "cancelled" {
			continue
		}
		busy = append(busy, a.Busy(s.rules.DefaultDurationMinutes))
	}
	return booking.Snapshot{Now: s.now(), Blocked: s.blocked, Busy: busy}
}

// Start reloads on the configured interval until ctx ends or Stop is called.
func (s *BookingSession) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)

	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		inv := s.Load(runCtx)
		if inv.Any() {
			log.Infof("availability changed: day cleared=%t time cleared=%t", inv.Day, inv.Time)
		}
	})
	if err != nil {
		cancel()
		return fmt.Errorf("schedule refresh every %s: %w", s.interval, err)
	}

	s.mu.Lock()
	s.cron, s.cancel = c, cancel
	s.mu.Unlock()

	c.Start()
	return nil
}

// Stop ends the periodic refresh and waits for a running reload to return.
func (s *BookingSession) Stop() {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if c != nil {
		<-c.Stop().Done()
	}
}

// Banner is the message to show when a list could not be loaded, or "".
func (s *BookingSession) Banner() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var parts []string
	for res := resource(0); res < resourceCount; res++ {
		if err := s.failed[res]; err != nil {
			parts = append(parts, bannerFor(res, err))
		}
	}
	return strings.Join(parts, " ")
}

func bannerFor(res resource, err error) string {
	switch Classify(err) {
	case KindUnauthorized:
		return "Your session has expired. Please sign in again."
	case KindNetwork:
		return fmt.Sprintf("Could not reach the server to load %s.", res)
	default:
		return fmt.Sprintf("Could not load %s right now.", res)
	}
}

func (s *BookingSession) SelectService(svc booking.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.SelectService(svc)
}

func (s *BookingSession) SelectDay(day booking.Day) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.SelectDay(day)
}

func (s *BookingSession) SelectTime(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.SelectTime(t)
}

func (s *BookingSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flow.Reset()
}

func (s *BookingSession) State() booking.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.State()
}

func (s *BookingSession) Outcome() booking.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.Outcome()
}

// Err is the error of the last failed submission.
func (s *BookingSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.Err()
}

func (s *BookingSession) Selection() (booking.Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.Selection()
}

func (s *BookingSession) Days() []booking.Day {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]booking.Day(nil), s.flow.Days()...)
}

func (s *BookingSession) Slots() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Time(nil), s.flow.Slots()...)
}

func (s *BookingSession) RestrictionMessage() string {
	return booking.RestrictionMessage(s.now(), s.rules)
}

// Submit books the current selection for contact. Invalid contact details fail before
// anything is sent. A conflict keeps the picks, records the error and reloads the
// appointments so the taken slot disappears. An ErrUnauthorized result means the caller
// has to sign in again.
func (s *BookingSession) Submit(ctx context.Context, contact Contact) (*Appointment, error) {
	if err := ValidateContact(&contact); err != nil {
		return nil, err
	}

	s.mu.Lock()
	sel, err := s.flow.BeginSubmit()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	appt, err := s.backend.CreateAppointment(ctx, s.input(sel, contact))
	if err != nil {
		s.mu.Lock()
		_ = s.flow.Fail(err)
		s.mu.Unlock()

		if errors.Is(err, ErrConflict) {
			s.loadAppointments(ctx)
			s.refresh()
		}
		return nil, err
	}

	s.mu.Lock()
	_ = s.flow.Succeed()
	s.appts = append(s.appts, *appt)
	s.flow.Refresh(s.snapshot())
	s.mu.Unlock()
	return appt, nil
}

func (s *BookingSession) input(sel booking.Selection, contact Contact) AppointmentInput {
	notes := contact.Notes
	if notes == "" {
		notes = "No special requests"
	}
	svc := sel.Service
	return AppointmentInput{
		ServiceID:       svc.ID,
		DurationMinutes: svc.DurationMinutes,
		StartsAt:        sel.Time,
		Title:           fmt.Sprintf("%s - %s", svc.Name, contact.Name),
		Description: fmt.Sprintf("Service: %s, Price: €%.2f, Duration: %d minutes\nClient Notes: %s",
			svc.Name, svc.Price, svc.DurationMinutes, notes),
		Notes:    contact.Notes,
		Location: s.location,
		Attendees: []Attendee{{
			Name:  contact.Name,
			Email: contact.Email,
			Phone: contact.Phone,
			RSVP:  "yes",
		}},
	}
}
