package service

import (
	"testing"

	"nailbook/cmd/internal/booking"
	"nailbook/cmd/internal/domain/entity"
	"nailbook/cmd/internal/utils/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dates(resp []*BlockedDateResponse) []string {
	out := make([]string, len(resp))
	for i, r := range resp {
		out[i] = r.Date
	}
	return out
}

func TestCreateBlockedDate(t *testing.T) {
	f := newFixture(t)

	resp, apierr := f.blockedSvc.CreateBlockedDate(&BlockedDateRequest{Date: "2024-06-20"}, "admin-sub")
	require.Nil(t, apierr)
	assert.Equal(t, "2024-06-20", resp.Date)
	assert.Equal(t, "Blocked", resp.Reason)
	assert.Equal(t, f.admin.ID, resp.CreatedBy)
	assert.Equal(t, "2024-06-10T09:00:00Z", resp.CreatedAt)

	_, apierr = f.blockedSvc.CreateBlockedDate(&BlockedDateRequest{Date: "2024-06-20", Reason: "Holiday"}, "admin-sub")
	assert.Equal(t, apierror.DayAlreadyBlockedError, apierr)

	_, apierr = f.blockedSvc.CreateBlockedDate(&BlockedDateRequest{Date: "2024-06-21"}, "ann-sub")
	assert.Equal(t, apierror.ForbiddenError, apierr)

	_, apierr = f.blockedSvc.CreateBlockedDate(&BlockedDateRequest{Date: "2024-06-21", Recurrence: "daily"}, "admin-sub")
	require.NotNil(t, apierr)
	assert.Equal(t, 400, apierr.Code())
}

func TestGetBlockedRange_ExpandsRecurrence(t *testing.T) {
	f := newFixture(t)
	f.block(t, "2024-06-03", entity.RecurrenceWeekly)
	f.block(t, "2024-01-15", entity.RecurrenceMonthly)
	f.block(t, "2023-06-21", entity.RecurrenceYearly)
	f.block(t, "2024-06-18", entity.RecurrenceNone)

	resp, apierr := f.blockedSvc.GetBlockedRange("2024-06-10", "2024-06-30")

	require.Nil(t, apierr)
	assert.Equal(t, []string{"2024-06-10", "2024-06-15", "2024-06-18", "2024-06-21", "2024-06-24"}, dates(resp))
	assert.Equal(t, "2024-06-03", resp[0].AnchorDate)
	assert.Empty(t, resp[2].AnchorDate)
}

func TestGetBlockedRange_Params(t *testing.T) {
	f := newFixture(t)

	_, apierr := f.blockedSvc.GetBlockedRange("", "2024-06-30")
	assert.Equal(t, 400, apierr.Code())

	_, apierr = f.blockedSvc.GetBlockedRange("2024-06-30", "2024-06-01")
	assert.Equal(t, 400, apierr.Code())

	_, apierr = f.blockedSvc.GetBlockedRange("2024-01-01", "2027-01-01")
	assert.Equal(t, 400, apierr.Code())
}

func TestGetBlockedMonth(t *testing.T) {
	f := newFixture(t)
	f.block(t, "2024-01-31", entity.RecurrenceMonthly)
	f.block(t, "2024-02-14", entity.RecurrenceNone)

	resp, apierr := f.blockedSvc.GetBlockedMonth("2024", "2")
	require.Nil(t, apierr)
	// a monthly block on the 31st skips months that are too short
	assert.Equal(t, []string{"2024-02-14"}, dates(resp))

	resp, apierr = f.blockedSvc.GetBlockedMonth("2024", "3")
	require.Nil(t, apierr)
	assert.Equal(t, []string{"2024-03-31"}, dates(resp))

	_, apierr = f.blockedSvc.GetBlockedMonth("2024", "13")
	assert.Equal(t, 400, apierr.Code())
}

func TestCheckDay(t *testing.T) {
	f := newFixture(t)
	row := f.block(t, "2024-06-05", entity.RecurrenceWeekly)
	row.Reason = "Day off"
	require.NoError(t, f.blocked.Save(row))

	resp, apierr := f.blockedSvc.CheckDay("2024-06-19")
	require.Nil(t, apierr)
	assert.True(t, resp.Blocked)
	assert.Equal(t, "Day off", resp.Reason)

	resp, apierr = f.blockedSvc.CheckDay("2024-06-20")
	require.Nil(t, apierr)
	assert.False(t, resp.Blocked)

	_, apierr = f.blockedSvc.CheckDay("tomorrow")
	assert.Equal(t, 400, apierr.Code())
}

func TestUpdateAndDeleteBlockedDate(t *testing.T) {
	f := newFixture(t)
	first := f.block(t, "2024-06-20", entity.RecurrenceNone)
	f.block(t, "2024-06-21", entity.RecurrenceNone)

	_, apierr := f.blockedSvc.UpdateBlockedDate(first.ID, &BlockedDateRequest{Date: "2024-06-21"}, "admin-sub")
	assert.Equal(t, apierror.DayAlreadyBlockedError, apierr)

	resp, apierr := f.blockedSvc.UpdateBlockedDate(first.ID, &BlockedDateRequest{Date: "2024-06-22", Reason: "Training"}, "admin-sub")
	require.Nil(t, apierr)
	assert.Equal(t, "2024-06-22", resp.Date)
	assert.Equal(t, "Training", resp.Reason)

	assert.Nil(t, f.blockedSvc.DeleteBlockedDay("2024-06-21", "admin-sub"))
	assert.Equal(t, apierror.NotFoundError, f.blockedSvc.DeleteBlockedDay("2024-06-21", "admin-sub"))
	assert.Nil(t, f.blockedSvc.DeleteBlockedDate(first.ID, "admin-sub"))
	assert.Equal(t, apierror.NotFoundError, f.blockedSvc.DeleteBlockedDate(first.ID, "admin-sub"))

	all, apierr := f.blockedSvc.GetBlockedDates()
	require.Nil(t, apierr)
	assert.Empty(t, all)
}

func TestBlockedSet(t *testing.T) {
	f := newFixture(t)
	f.block(t, "2024-06-01", entity.RecurrenceWeekly)

	start, _ := booking.ParseDay("2024-06-10")
	end, _ := booking.ParseDay("2024-06-16")
	set, err := f.blockedSvc.BlockedSet(start, end)

	require.NoError(t, err)
	assert.Len(t, set, 1)
	saturday, _ := booking.ParseDay("2024-06-15")
	assert.True(t, set.Has(saturday))
}
