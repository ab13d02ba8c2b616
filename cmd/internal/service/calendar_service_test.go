package service

import (
	"strings"
	"testing"

	"nailbook/cmd/internal/domain/entity"
	"nailbook/cmd/internal/utils/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cellFor(t *testing.T, resp *CalendarResponse, date string) *CalendarDay {
	t.Helper()
	for _, d := range resp.Days {
		if d.Date == date {
			return d
		}
	}
	t.Fatalf("no calendar cell for %s", date)
	return nil
}

func TestGetCalendar_Grid(t *testing.T) {
	f := newFixture(t)
	f.block(t, "2024-06-20", entity.RecurrenceNone)

	resp, apierr := f.calendar.GetCalendar("2024-06", "ann-sub")

	require.Nil(t, apierr)
	assert.Equal(t, "2024-06", resp.Month)
	require.Len(t, resp.Days, 42)
	// June 2024 starts on a Saturday
	assert.Equal(t, "2024-05-26", resp.Days[0].Date)
	assert.False(t, resp.Days[0].InMonth)
	assert.Equal(t, "2024-07-06", resp.Days[41].Date)

	today := cellFor(t, resp, "2024-06-10")
	assert.True(t, today.IsToday)
	assert.False(t, today.IsPast)
	assert.True(t, cellFor(t, resp, "2024-06-09").IsPast)

	blocked := cellFor(t, resp, "2024-06-20")
	assert.True(t, blocked.IsBlocked)
	assert.Equal(t, "Closed", blocked.BlockedReason)
}

func TestGetCalendar_HidesDetailsFromCustomers(t *testing.T) {
	f := newFixture(t)
	f.book(t, "bea-sub", "refill", at("2024-06-12", 11, 0))

	resp, apierr := f.calendar.GetCalendar("2024-06", "ann-sub")
	require.Nil(t, apierr)
	cell := cellFor(t, resp, "2024-06-12")
	assert.Empty(t, cell.Appointments)
	require.Len(t, cell.Scheduled, 1)
	assert.Equal(t, "2024-06-12T11:00:00Z", cell.Scheduled[0].BeginsAt)
	assert.Equal(t, "2024-06-12T12:00:00Z", cell.Scheduled[0].EndsAt)

	resp, apierr = f.calendar.GetCalendar("2024-06", "admin-sub")
	require.Nil(t, apierr)
	cell = cellFor(t, resp, "2024-06-12")
	assert.Empty(t, cell.Scheduled)
	require.Len(t, cell.Appointments, 1)
	assert.Equal(t, "bea@example.com", cell.Appointments[0].Attendees[0].Email)

	_, apierr = f.calendar.GetCalendar("June", "admin-sub")
	require.NotNil(t, apierr)
	assert.Equal(t, 400, apierr.Code())
}

func TestExportICS(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, "ann-sub", "full-set", at("2024-06-12", 11, 0))
	cancelled := f.book(t, "bea-sub", "refill", at("2024-06-13", 11, 0))
	require.Nil(t, f.appointmentSvc.DeleteAppointment(cancelled.ID, "bea-sub"))

	_, apierr := f.calendar.ExportICS("ann-sub")
	assert.Equal(t, apierror.ForbiddenError, apierr)

	feed, apierr := f.calendar.ExportICS("admin-sub")
	require.Nil(t, apierr)

	assert.True(t, strings.HasPrefix(feed, "BEGIN:VCALENDAR"))
	assert.Contains(t, feed, "UID:appointment-"+itoa(appt.ID)+"@nailbook")
	assert.Contains(t, feed, "DTSTART:20240612T110000Z")
	assert.Contains(t, feed, "DTEND:20240612T123000Z")
	assert.Contains(t, feed, "SUMMARY:Full Set")
	assert.Contains(t, feed, "ann@example.com")
	assert.Equal(t, 1, strings.Count(feed, "BEGIN:VEVENT"))
}
