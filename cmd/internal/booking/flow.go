package booking

import (
	"errors"
	"time"
)

var (
	ErrNoService        = errors.New("no service selected")
	ErrNoDay            = errors.New("no day selected")
	ErrDayUnavailable   = errors.New("day is not available for booking")
	ErrSlotUnavailable  = errors.New("time slot is no longer available")
	ErrNotReady         = errors.New("service, day and time must be selected before submitting")
	ErrSubmitInProgress = errors.New("a booking is already being submitted")
	ErrNotSubmitting    = errors.New("no booking is being submitted")
)

type State int

const (
	NoServiceSelected State = iota
	ServiceSelected
	DaySelected
	TimeSelected
	Submitting
	Confirmed
	Failed
)

func (s State) String() string {
	switch s {
	case NoServiceSelected:
		return "no_service_selected"
	case ServiceSelected:
		return "service_selected"
	case DaySelected:
		return "day_selected"
	case TimeSelected:
		return "time_selected"
	case Submitting:
		return "submitting"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Service is the catalogue entry a booking is made for.
type Service struct {
	ID              string
	Name            string
	DurationMinutes int
	Price           float64
}

// Selection is what the user has picked so far.
type Selection struct {
	Service Service
	Day     Day
	Time    time.Time
}

// Snapshot is the upstream data the flow computes availability from.
type Snapshot struct {
	Now     time.Time
	Blocked DaySet
	Busy    []Busy
}

// Invalidation reports which picks a refresh cleared.
type Invalidation struct {
	Day  bool
	Time bool
}

func (i Invalidation) Any() bool { return i.Day || i.Time }

// Flow is the booking selection state machine. It is not safe for concurrent use.
type Flow struct {
	rules Rules
	state State

	service *Service
	day     Day
	slot    time.Time

	snap  Snapshot
	days  []Day
	slots []time.Time

	outcome State
	err     error
}

func NewFlow(rules Rules, snap Snapshot) *Flow {
	f := &Flow{rules: rules, state: NoServiceSelected}
	f.snap = snap
	f.days = AvailableDays(snap.Now, snap.Blocked, rules)
	return f
}

func (f *Flow) State() State       { return f.state }
func (f *Flow) Days() []Day        { return f.days }
func (f *Flow) Slots() []time.Time { return f.slots }

// Err is the error of the last failed submission, cleared by the next pick.
func (f *Flow) Err() error { return f.err }

// Outcome is Confirmed or Failed after a submission resolves, otherwise the zero state.
func (f *Flow) Outcome() State { return f.outcome }

func (f *Flow) Selection() (Selection, bool) {
	if f.service == nil {
		return Selection{}, false
	}
	return Selection{Service: *f.service, Day: f.day, Time: f.slot}, true
}

func (f *Flow) SelectService(svc Service) error {
	if f.state == Submitting {
		return ErrSubmitInProgress
	}
	f.service = &svc
	f.clearDay()
	f.err = nil
	f.state = ServiceSelected
	return nil
}

func (f *Flow) SelectDay(day Day) error {
	if f.state == Submitting {
		return ErrSubmitInProgress
	}
	if f.service == nil {
		return ErrNoService
	}
	if !containsDay(f.days, day) {
		return ErrDayUnavailable
	}
	f.day = day
	f.slot = time.Time{}
	f.err = nil
	f.regenerateSlots()
	f.state = DaySelected
	return nil
}

func (f *Flow) SelectTime(t time.Time) error {
	if f.state == Submitting {
		return ErrSubmitInProgress
	}
	if f.service == nil {
		return ErrNoService
	}
	if f.day.IsZero() {
		return ErrNoDay
	}
	if !ContainsSlot(f.slots, t) {
		return ErrSlotUnavailable
	}
	f.slot = t
	f.err = nil
	f.state = TimeSelected
	return nil
}

// BeginSubmit moves to Submitting and returns the picks to send.
func (f *Flow) BeginSubmit() (Selection, error) {
	if f.state == Submitting {
		return Selection{}, ErrSubmitInProgress
	}
	if f.state != TimeSelected {
		return Selection{}, ErrNotReady
	}
	f.state = Submitting
	f.err = nil
	sel, _ := f.Selection()
	return sel, nil
}

// Succeed clears all picks after a confirmed booking.
func (f *Flow) Succeed() error {
	if f.state != Submitting {
		return ErrNotSubmitting
	}
	f.service = nil
	f.clearDay()
	f.outcome = Confirmed
	f.state = NoServiceSelected
	return nil
}

// Fail returns to TimeSelected keeping every pick, so the user can retry.
func (f *Flow) Fail(err error) error {
	if f.state != Submitting {
		return ErrNotSubmitting
	}
	f.outcome = Failed
	f.err = err
	f.state = TimeSelected
	return nil
}

// Reset drops every pick.
func (f *Flow) Reset() {
	f.service = nil
	f.clearDay()
	f.err = nil
	f.state = NoServiceSelected
}

// Refresh recomputes days and slots from snap. A day that is no longer eligible clears
// both day and time; a time that now conflicts clears only the time. Picks are left
// alone while a submission is in flight.
func (f *Flow) Refresh(snap Snapshot) Invalidation {
	f.snap = snap
	f.days = AvailableDays(snap.Now, snap.Blocked, f.rules)

	var inv Invalidation
	if f.state == Submitting || f.day.IsZero() {
		return inv
	}

	if !containsDay(f.days, f.day) {
		inv.Day = true
		inv.Time = !f.slot.IsZero()
		f.clearDay()
		f.state = ServiceSelected
		return inv
	}

	f.regenerateSlots()
	if !f.slot.IsZero() && !ContainsSlot(f.slots, f.slot) {
		inv.Time = true
		f.slot = time.Time{}
		f.state = DaySelected
	}
	return inv
}

func (f *Flow) regenerateSlots() {
	dur := 0
	if f.service != nil {
		dur = f.service.DurationMinutes
	}
	f.slots = AvailableSlots(f.day, dur, f.snap.Now, f.snap.Busy, f.rules)
}

func (f *Flow) clearDay() {
	f.day = Day{}
	f.slot = time.Time{}
	f.slots = nil
}

func containsDay(days []Day, d Day) bool {
	for _, x := range days {
		if x == d {
			return true
		}
	}
	return false
}
