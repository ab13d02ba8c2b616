package booking

import (
	"regexp"
	"strconv"
	"time"
)

// Busy is the window an existing appointment occupies.
type Busy struct {
	ID              string
	Start           time.Time
	DurationMinutes int
}

func (b Busy) End() time.Time {
	return b.Start.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

var (
	durationMarker        = regexp.MustCompile(`(?i)Duration:\s*(\d+)\s*minutes?`)
	serviceDurationMarker = regexp.MustCompile(`(?i)Service:\s*([^,]+).*Duration:\s*(\d+)`)
)

// ParseDurationMarker recovers "Duration: N minutes" from a free-text description.
// It returns 0 when there is no marker or the number does not parse.
func ParseDurationMarker(description string) int {
	if m := durationMarker.FindStringSubmatch(description); m != nil {
		return atoiPositive(m[1])
	}
	if m := serviceDurationMarker.FindStringSubmatch(description); m != nil {
		return atoiPositive(m[2])
	}
	return 0
}

// SetDurationMarker rewrites the "Duration: N minutes" marker of description to minutes.
// Descriptions without a marker are returned unchanged.
func SetDurationMarker(description string, minutes int) string {
	return durationMarker.ReplaceAllString(description, "Duration: "+strconv.Itoa(minutes)+" minutes")
}

// DurationOf picks an appointment's duration: the structured value when set, else the
// description marker, else def.
func DurationOf(structured int, description string, def int) int {
	if structured > 0 {
		return structured
	}
	if n := ParseDurationMarker(description); n > 0 {
		return n
	}
	return def
}

func atoiPositive(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// FilterConflicts drops every slot whose minute-of-day lies inside
// [start, start+duration) of an appointment on day. A slot starting exactly where an
// appointment ends is kept.
func FilterConflicts(slots []time.Time, day Day, busy []Busy, rules Rules) []time.Time {
	loc := rules.location()

	type window struct{ from, to int }
	var windows []window
	for _, b := range busy {
		if DayOf(b.Start, loc) != day {
			continue
		}
		dur := b.DurationMinutes
		if dur <= 0 {
			dur = rules.DefaultDurationMinutes
		}
		from := MinuteOfDay(b.Start, loc)
		windows = append(windows, window{from: from, to: from + dur})
	}

	out := make([]time.Time, 0, len(slots))
	for _, s := range slots {
		m := MinuteOfDay(s, loc)
		taken := false
		for _, w := range windows {
			if m >= w.from && m < w.to {
				taken = true
				break
			}
		}
		if !taken {
			out = append(out, s)
		}
	}
	return out
}

// Overlaps reports whether [aStart, aStart+aMin) and [bStart, bStart+bMin) intersect.
func Overlaps(aStart time.Time, aMin int, bStart time.Time, bMin int) bool {
	aEnd := aStart.Add(time.Duration(aMin) * time.Minute)
	bEnd := bStart.Add(time.Duration(bMin) * time.Minute)
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
