package service

import (
	"testing"
	"time"

	"nailbook/cmd/internal/domain/entity"
	"nailbook/cmd/internal/utils/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDays(t *testing.T) {
	f := newFixture(t)
	f.block(t, "2024-06-12", entity.RecurrenceNone)

	resp, apierr := f.availability.GetDays()

	require.Nil(t, apierr)
	assert.Equal(t, "UTC", resp.Timezone)
	assert.Equal(t, "Same-day bookings are not allowed.", resp.Message)
	require.NotEmpty(t, resp.Days)
	assert.Equal(t, "2024-06-11", resp.Days[0])
	assert.NotContains(t, resp.Days, "2024-06-10")
	assert.NotContains(t, resp.Days, "2024-06-12")
	assert.Len(t, resp.Days, 29)
}

func TestGetDays_AfterCutoff(t *testing.T) {
	f := newFixture(t)
	f.now = time.Date(2024, 6, 10, 21, 0, 0, 0, time.UTC)

	resp, apierr := f.availability.GetDays()

	require.Nil(t, apierr)
	assert.Equal(t, "2024-06-12", resp.Days[0])
	assert.Contains(t, resp.Message, "after 8 PM")
}

func TestGetSlots_ForService(t *testing.T) {
	f := newFixture(t)
	f.book(t, "ann-sub", "full-set", at("2024-06-12", 14, 0))

	resp, apierr := f.availability.GetSlots("2024-06-12", "full-set", "")

	require.Nil(t, apierr)
	assert.True(t, resp.Available)
	assert.Equal(t, 90, resp.DurationMinutes)
	assert.Equal(t, []string{"11:00", "12:30", "15:30", "17:00"}, resp.Times)
	assert.Equal(t, "2024-06-12T11:00:00Z", resp.Slots[0])
}

func TestGetSlots_ExplicitAndDefaultDuration(t *testing.T) {
	f := newFixture(t)

	resp, apierr := f.availability.GetSlots("2024-06-12", "", "120")
	require.Nil(t, apierr)
	assert.Equal(t, []string{"11:00", "13:00", "15:00", "17:00"}, resp.Times)

	resp, apierr = f.availability.GetSlots("2024-06-12", "", "")
	require.Nil(t, apierr)
	assert.Equal(t, 60, resp.DurationMinutes)
	assert.Len(t, resp.Times, 8)
}

func TestGetSlots_UnbookableDays(t *testing.T) {
	f := newFixture(t)
	f.block(t, "2024-06-13", entity.RecurrenceNone)

	for _, day := range []string{"2024-06-10", "2024-06-13", "2025-01-01"} {
		resp, apierr := f.availability.GetSlots(day, "refill", "")
		require.Nil(t, apierr, day)
		assert.False(t, resp.Available, day)
		assert.Empty(t, resp.Times, day)
	}
}

func TestGetSlots_BadParams(t *testing.T) {
	f := newFixture(t)

	_, apierr := f.availability.GetSlots("", "", "")
	assert.Equal(t, 400, apierr.Code())

	_, apierr = f.availability.GetSlots("12/06/2024", "", "")
	assert.Equal(t, 400, apierr.Code())

	_, apierr = f.availability.GetSlots("2024-06-12", "", "-5")
	assert.Equal(t, 400, apierr.Code())

	_, apierr = f.availability.GetSlots("2024-06-12", "facial", "")
	assert.Equal(t, apierror.UnknownServiceError, apierr)
}
