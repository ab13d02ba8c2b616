package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fullSet = Service{ID: "full-set", Name: "Full Set", DurationMinutes: 90, Price: 45}

func newTestFlow(t *testing.T) (*Flow, Snapshot) {
	t.Helper()
	snap := Snapshot{Now: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)}
	return NewFlow(utcRules(), snap), snap
}

func TestFlow_HappyPath(t *testing.T) {
	f, _ := newTestFlow(t)
	day := mustDay(t, "2024-06-12")
	slot := day.At(12*60+30, time.UTC)

	assert.Equal(t, NoServiceSelected, f.State())
	require.NoError(t, f.SelectService(fullSet))
	assert.Equal(t, ServiceSelected, f.State())

	require.NoError(t, f.SelectDay(day))
	assert.Equal(t, DaySelected, f.State())
	assert.Len(t, f.Slots(), 5)

	require.NoError(t, f.SelectTime(slot))
	assert.Equal(t, TimeSelected, f.State())

	sel, err := f.BeginSubmit()
	require.NoError(t, err)
	assert.Equal(t, Submitting, f.State())
	assert.Equal(t, day, sel.Day)
	assert.True(t, slot.Equal(sel.Time))
	assert.Equal(t, "full-set", sel.Service.ID)

	require.NoError(t, f.Succeed())
	assert.Equal(t, NoServiceSelected, f.State())
	assert.Equal(t, Confirmed, f.Outcome())
	_, ok := f.Selection()
	assert.False(t, ok)
}

func TestFlow_GuardsOrdering(t *testing.T) {
	f, _ := newTestFlow(t)
	day := mustDay(t, "2024-06-12")

	assert.ErrorIs(t, f.SelectDay(day), ErrNoService)
	assert.ErrorIs(t, f.SelectTime(day.At(11*60, time.UTC)), ErrNoService)
	_, err := f.BeginSubmit()
	assert.ErrorIs(t, err, ErrNotReady)

	require.NoError(t, f.SelectService(fullSet))
	assert.ErrorIs(t, f.SelectTime(day.At(11*60, time.UTC)), ErrNoDay)
	assert.ErrorIs(t, f.SelectDay(mustDay(t, "2024-06-10")), ErrDayUnavailable)

	require.NoError(t, f.SelectDay(day))
	assert.ErrorIs(t, f.SelectTime(day.At(11*60+15, time.UTC)), ErrSlotUnavailable)
	assert.ErrorIs(t, f.Succeed(), ErrNotSubmitting)
}

func TestFlow_FailurePreservesPicks(t *testing.T) {
	f, _ := newTestFlow(t)
	day := mustDay(t, "2024-06-12")
	slot := day.At(11*60, time.UTC)
	require.NoError(t, f.SelectService(fullSet))
	require.NoError(t, f.SelectDay(day))
	require.NoError(t, f.SelectTime(slot))
	_, err := f.BeginSubmit()
	require.NoError(t, err)

	_, err = f.BeginSubmit()
	assert.ErrorIs(t, err, ErrSubmitInProgress)
	assert.ErrorIs(t, f.SelectDay(day), ErrSubmitInProgress)

	boom := errors.New("server error")
	require.NoError(t, f.Fail(boom))

	assert.Equal(t, TimeSelected, f.State())
	assert.Equal(t, Failed, f.Outcome())
	assert.ErrorIs(t, f.Err(), boom)
	sel, ok := f.Selection()
	require.True(t, ok)
	assert.Equal(t, day, sel.Day)
	assert.True(t, slot.Equal(sel.Time))

	_, err = f.BeginSubmit()
	assert.NoError(t, err, "retry must not require re-selection")
}

func TestFlow_RefreshBlockedDayClearsDayAndTime(t *testing.T) {
	f, snap := newTestFlow(t)
	day := mustDay(t, "2024-06-12")
	require.NoError(t, f.SelectService(fullSet))
	require.NoError(t, f.SelectDay(day))
	require.NoError(t, f.SelectTime(day.At(11*60, time.UTC)))

	snap.Blocked = NewDaySet(day)
	inv := f.Refresh(snap)

	assert.True(t, inv.Day)
	assert.True(t, inv.Time)
	assert.Equal(t, ServiceSelected, f.State())
	assert.Empty(t, f.Slots())
	assert.NotContains(t, f.Days(), day)
}

func TestFlow_RefreshConflictClearsOnlyTime(t *testing.T) {
	f, snap := newTestFlow(t)
	day := mustDay(t, "2024-06-12")
	slot := day.At(14*60, time.UTC)
	require.NoError(t, f.SelectService(fullSet))
	require.NoError(t, f.SelectDay(day))
	require.NoError(t, f.SelectTime(slot))

	snap.Busy = []Busy{{Start: day.At(13*60, time.UTC), DurationMinutes: 90}}
	inv := f.Refresh(snap)

	assert.False(t, inv.Day)
	assert.True(t, inv.Time)
	assert.Equal(t, DaySelected, f.State())
	sel, _ := f.Selection()
	assert.Equal(t, day, sel.Day)
	assert.True(t, sel.Time.IsZero())
	assert.False(t, ContainsSlot(f.Slots(), slot))
}

func TestFlow_RefreshCutoffCrossingDropsTomorrow(t *testing.T) {
	f, snap := newTestFlow(t)
	tomorrow := mustDay(t, "2024-06-11")
	require.NoError(t, f.SelectService(fullSet))
	require.NoError(t, f.SelectDay(tomorrow))

	snap.Now = time.Date(2024, 6, 10, 20, 0, 30, 0, time.UTC)
	inv := f.Refresh(snap)

	assert.True(t, inv.Day)
	assert.False(t, inv.Time)
	assert.Equal(t, ServiceSelected, f.State())
}

func TestFlow_RefreshDuringSubmitKeepsPicks(t *testing.T) {
	f, snap := newTestFlow(t)
	day := mustDay(t, "2024-06-12")
	require.NoError(t, f.SelectService(fullSet))
	require.NoError(t, f.SelectDay(day))
	require.NoError(t, f.SelectTime(day.At(11*60, time.UTC)))
	_, err := f.BeginSubmit()
	require.NoError(t, err)

	snap.Blocked = NewDaySet(day)
	inv := f.Refresh(snap)

	assert.False(t, inv.Any())
	assert.Equal(t, Submitting, f.State())
}

func TestFlow_ReselectingServiceClearsDay(t *testing.T) {
	f, _ := newTestFlow(t)
	require.NoError(t, f.SelectService(fullSet))
	require.NoError(t, f.SelectDay(mustDay(t, "2024-06-12")))

	require.NoError(t, f.SelectService(Service{ID: "refill", DurationMinutes: 60}))

	assert.Equal(t, ServiceSelected, f.State())
	sel, _ := f.Selection()
	assert.True(t, sel.Day.IsZero())
}
