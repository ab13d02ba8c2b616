package booking

import (
	"errors"
	"time"
)

var ErrInvalidRules = errors.New("invalid booking rules")

// Rules holds the salon's booking policy. Minute values are minutes after midnight
// in Location.
type Rules struct {
	Location               *time.Location
	WindowDays             int
	CutoffHour             int
	OpenMinute             int
	CloseMinute            int
	DefaultDurationMinutes int
	// MaxAdvanceMonths bounds how far ahead a single booking may be placed.
	MaxAdvanceMonths int
}

func DefaultRules() Rules {
	return Rules{
		Location:               time.Local,
		WindowDays:             30,
		CutoffHour:             20,
		OpenMinute:             11 * 60,
		CloseMinute:            18 * 60,
		DefaultDurationMinutes: 60,
		MaxAdvanceMonths:       6,
	}
}

func (r Rules) Validate() error {
	switch {
	case r.WindowDays <= 0:
		return errors.Join(ErrInvalidRules, errors.New("window must be at least one day"))
	case r.CutoffHour < 0 || r.CutoffHour > 24:
		return errors.Join(ErrInvalidRules, errors.New("cutoff hour out of range"))
	case r.OpenMinute < 0 || r.CloseMinute > 24*60 || r.OpenMinute > r.CloseMinute:
		return errors.Join(ErrInvalidRules, errors.New("business hours out of range"))
	case r.DefaultDurationMinutes <= 0:
		return errors.Join(ErrInvalidRules, errors.New("default duration must be positive"))
	}
	return nil
}

func (r Rules) location() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}

// pastCutoff reports whether next-day notice is no longer sufficient at now.
func (r Rules) pastCutoff(now time.Time) bool {
	return now.In(r.location()).Hour() >= r.CutoffHour
}

// AvailableDays returns the bookable days in the rolling window, earliest first.
// Today is never included, and neither is tomorrow once the cutoff hour has passed.
func AvailableDays(now time.Time, blocked DaySet, rules Rules) []Day {
	loc := rules.location()
	now = now.In(loc)
	today := DayOf(now, loc)

	startOffset := 1
	if rules.pastCutoff(now) {
		startOffset = 2
	}

	days := make([]Day, 0, rules.WindowDays)
	for i := 0; i < rules.WindowDays; i++ {
		day := today.AddDays(startOffset + i)
		if !eligible(now, today, day, blocked, rules) {
			continue
		}
		days = append(days, day)
	}
	return days
}

// IsBookableDay applies the same exclusions as AvailableDays to a single day, without
// the rolling window bound.
func IsBookableDay(now time.Time, day Day, blocked DaySet, rules Rules) bool {
	loc := rules.location()
	now = now.In(loc)
	return eligible(now, DayOf(now, loc), day, blocked, rules)
}

// WithinAdvance reports whether day is no further ahead than MaxAdvanceMonths.
func WithinAdvance(now time.Time, day Day, rules Rules) bool {
	if rules.MaxAdvanceMonths <= 0 {
		return true
	}
	loc := rules.location()
	limit := DayOf(now.In(loc).AddDate(0, rules.MaxAdvanceMonths, 0), loc)
	return !day.After(limit)
}

func eligible(now time.Time, today, day Day, blocked DaySet, rules Rules) bool {
	if day.Before(today) || day == today {
		return false
	}
	if blocked.Has(day) {
		return false
	}
	if day == today.AddDays(1) && rules.pastCutoff(now) {
		return false
	}
	return true
}

// RestrictionMessage is the user-facing explanation of the notice rules at now.
func RestrictionMessage(now time.Time, rules Rules) string {
	if rules.pastCutoff(now) {
		return "Same-day bookings are not allowed. Next-day bookings are not available after " +
			formatHour(rules.CutoffHour) + "."
	}
	return "Same-day bookings are not allowed."
}

func formatHour(h int) string {
	return time.Date(2000, 1, 1, h, 0, 0, 0, time.UTC).Format("3 PM")
}
