package booking

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utcRules() Rules {
	r := DefaultRules()
	r.Location = time.UTC
	return r
}

func mustDay(t *testing.T, s string) Day {
	t.Helper()
	d, err := ParseDay(s)
	require.NoError(t, err)
	return d
}

func TestAvailableDays_BeforeCutoff(t *testing.T) {
	now := time.Date(2024, 6, 10, 19, 0, 0, 0, time.UTC)
	blocked := NewDaySet(mustDay(t, "2024-06-12"))

	days := AvailableDays(now, blocked, utcRules())

	require.NotEmpty(t, days)
	assert.Equal(t, "2024-06-11", days[0].String())
	assert.NotContains(t, days, mustDay(t, "2024-06-12"))
	assert.Len(t, days, 29)
	assert.Equal(t, "2024-07-10", days[len(days)-1].String())
}

func TestAvailableDays_AfterCutoff(t *testing.T) {
	now := time.Date(2024, 6, 10, 21, 0, 0, 0, time.UTC)

	days := AvailableDays(now, nil, utcRules())

	require.NotEmpty(t, days)
	assert.Equal(t, "2024-06-12", days[0].String())
	assert.NotContains(t, days, mustDay(t, "2024-06-11"))
	assert.Len(t, days, 30)
}

func TestAvailableDays_ExactlyAtCutoff(t *testing.T) {
	now := time.Date(2024, 6, 10, 20, 0, 0, 0, time.UTC)

	days := AvailableDays(now, nil, utcRules())

	assert.Equal(t, "2024-06-12", days[0].String())
}

func TestAvailableDays_Properties(t *testing.T) {
	rules := utcRules()
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 200; i++ {
		now := base.Add(time.Duration(rng.Intn(365*24*60)) * time.Minute)
		today := DayOf(now, time.UTC)

		blocked := NewDaySet()
		for j := 0; j < 8; j++ {
			blocked.Add(today.AddDays(rng.Intn(35)))
		}

		days := AvailableDays(now, blocked, rules)
		again := AvailableDays(now, blocked, rules)
		assert.Equal(t, days, again, "generation must be idempotent")

		for k, d := range days {
			assert.NotEqual(t, today, d)
			assert.False(t, blocked.Has(d), "blocked day %s offered", d)
			assert.False(t, d.IsPast(now))
			if now.Hour() >= rules.CutoffHour {
				assert.NotEqual(t, today.AddDays(1), d)
			}
			if k > 0 {
				assert.True(t, days[k-1].Before(d), "days must be increasing")
			}
		}
	}
}

func TestAvailableDays_SpansMonthAndYear(t *testing.T) {
	now := time.Date(2024, 12, 20, 9, 0, 0, 0, time.UTC)

	days := AvailableDays(now, nil, utcRules())

	assert.Equal(t, "2024-12-21", days[0].String())
	assert.Contains(t, days, mustDay(t, "2025-01-01"))
	assert.Equal(t, "2025-01-19", days[len(days)-1].String())
}

func TestAvailableDays_HonoursLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	rules := utcRules()
	rules.Location = loc

	// 18:30 UTC is 21:30 local: past the cutoff.
	now := time.Date(2024, 6, 10, 18, 30, 0, 0, time.UTC)

	days := AvailableDays(now, nil, rules)

	assert.Equal(t, "2024-06-12", days[0].String())
}

func TestIsBookableDay(t *testing.T) {
	now := time.Date(2024, 6, 10, 21, 0, 0, 0, time.UTC)
	blocked := NewDaySet(mustDay(t, "2024-06-20"))
	rules := utcRules()

	assert.False(t, IsBookableDay(now, mustDay(t, "2024-06-09"), blocked, rules))
	assert.False(t, IsBookableDay(now, mustDay(t, "2024-06-10"), blocked, rules))
	assert.False(t, IsBookableDay(now, mustDay(t, "2024-06-11"), blocked, rules))
	assert.False(t, IsBookableDay(now, mustDay(t, "2024-06-20"), blocked, rules))
	assert.True(t, IsBookableDay(now, mustDay(t, "2024-06-12"), blocked, rules))
	assert.True(t, IsBookableDay(now, mustDay(t, "2024-09-01"), blocked, rules))
}

func TestWithinAdvance(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	rules := utcRules()

	assert.True(t, WithinAdvance(now, mustDay(t, "2024-12-10"), rules))
	assert.False(t, WithinAdvance(now, mustDay(t, "2024-12-11"), rules))
}

func TestRestrictionMessage(t *testing.T) {
	rules := utcRules()

	assert.Equal(t, "Same-day bookings are not allowed.",
		RestrictionMessage(time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC), rules))
	assert.Equal(t, "Same-day bookings are not allowed. Next-day bookings are not available after 8 PM.",
		RestrictionMessage(time.Date(2024, 6, 10, 22, 0, 0, 0, time.UTC), rules))
}

func TestRulesValidate(t *testing.T) {
	assert.NoError(t, DefaultRules().Validate())

	bad := DefaultRules()
	bad.OpenMinute = 19 * 60
	assert.ErrorIs(t, bad.Validate(), ErrInvalidRules)

	bad = DefaultRules()
	bad.WindowDays = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidRules)
}

func TestDayHelpers(t *testing.T) {
	d := mustDay(t, "2024-02-28")

	assert.Equal(t, "2024-02-29", d.AddDays(1).String())
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
	assert.Equal(t, "2024-02-27", d.AddDays(-1).String())
	assert.Equal(t, 2, DaysBetween(d, d.AddDays(2)))

	_, err := ParseDay("2024-13-01")
	assert.Error(t, err)

	set := DaySetFromStrings([]string{"2024-06-12", "not-a-day", ""})
	assert.Len(t, set, 1)
	assert.True(t, set.Has(mustDay(t, "2024-06-12")))
}
