package booking

import (
	"fmt"
	"time"
)

// DayLayout is the wire format of a calendar day ("2006-01-02").
const DayLayout = "2006-01-02"

// Day is a calendar day with no time component.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return DayOf(t, time.UTC), nil
}

// DayOf returns the calendar day t falls on in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return Day{Year: y, Month: m, Day: d}
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Day) IsZero() bool {
	return d == Day{}
}

// Start returns midnight of d in loc.
func (d Day) Start(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// At returns the instant minuteOfDay minutes after midnight of d in loc.
func (d Day) At(minuteOfDay int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, minuteOfDay/60, minuteOfDay%60, 0, 0, loc)
}

func (d Day) AddDays(n int) Day {
	// Normalised in UTC so that DST transitions never shift the date.
	return DayOf(time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC), time.UTC)
}

func (d Day) Compare(o Day) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Day) Before(o Day) bool { return d.Compare(o) < 0 }
func (d Day) After(o Day) bool  { return d.Compare(o) > 0 }
func (d Day) Equal(o Day) bool  { return d == o }

// IsPast reports whether d is strictly before the day of now.
func (d Day) IsPast(now time.Time) bool {
	return d.Before(DayOf(now, now.Location()))
}

func (d Day) IsToday(now time.Time) bool {
	return d == DayOf(now, now.Location())
}

// DaysBetween returns the number of days from a to b (negative when b is before a).
func DaysBetween(a, b Day) int {
	ta := time.Date(a.Year, a.Month, a.Day, 0, 0, 0, 0, time.UTC)
	tb := time.Date(b.Year, b.Month, b.Day, 0, 0, 0, 0, time.UTC)
	return int(tb.Sub(ta).Hours() / 24)
}

// MinuteOfDay returns the minutes since midnight of t in loc.
func MinuteOfDay(t time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	lt := t.In(loc)
	return lt.Hour()*60 + lt.Minute()
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// DaySet is a set of blocked calendar days.
type DaySet map[Day]struct{}

func NewDaySet(days ...Day) DaySet {
	s := make(DaySet, len(days))
	for _, d := range days {
		s.Add(d)
	}
	return s
}

// DaySetFromStrings builds a set from YYYY-MM-DD strings, skipping entries that do not parse.
func DaySetFromStrings(days []string) DaySet {
	s := make(DaySet, len(days))
	for _, raw := range days {
		d, err := ParseDay(raw)
		if err != nil {
			continue
		}
		s.Add(d)
	}
	return s
}

func (s DaySet) Add(d Day) { s[d] = struct{}{} }

func (s DaySet) Has(d Day) bool {
	if s == nil {
		return false
	}
	_, ok := s[d]
	return ok
}
