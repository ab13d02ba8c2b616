package booking

import "time"

// Slots returns the candidate start times on day, durationMinutes apart, from the
// opening minute up to and including the closing minute. A non-positive duration falls
// back to the default. No slots are ever produced for today.
func Slots(day Day, durationMinutes int, now time.Time, rules Rules) []time.Time {
	loc := rules.location()
	if day.IsToday(now.In(loc)) {
		return nil
	}
	if durationMinutes <= 0 {
		durationMinutes = rules.DefaultDurationMinutes
	}
	if durationMinutes <= 0 {
		return nil
	}

	slots := make([]time.Time, 0, (rules.CloseMinute-rules.OpenMinute)/durationMinutes+1)
	for m := rules.OpenMinute; m <= rules.CloseMinute; m += durationMinutes {
		slots = append(slots, day.At(m, loc))
	}
	return slots
}

// AvailableSlots is Slots with every slot that collides with busy removed.
func AvailableSlots(day Day, durationMinutes int, now time.Time, busy []Busy, rules Rules) []time.Time {
	return FilterConflicts(Slots(day, durationMinutes, now, rules), day, busy, rules)
}

// ContainsSlot reports whether t is one of slots.
func ContainsSlot(slots []time.Time, t time.Time) bool {
	for _, s := range slots {
		if s.Equal(t) {
			return true
		}
	}
	return false
}
