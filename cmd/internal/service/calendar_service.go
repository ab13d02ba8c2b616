package service

import (
	"fmt"
	"time"

	"nailbook/cmd/internal/booking"
	"nailbook/cmd/internal/domain/entity"
	"nailbook/cmd/internal/utils"
	"nailbook/cmd/internal/utils/apierror"

	ics "github.com/arran4/golang-ical"
	"github.com/labstack/gommon/log"
)

const calendarCells = 42

// BlockedCalendar lists blocked days together with the entry that blocks them.
type BlockedCalendar interface {
	BlockedBetween(start, end booking.Day) ([]BlockedOccurrence, error)
}

// ScheduledDay is a busy window, without saying whose.
type ScheduledDay struct {
	BeginsAt string `json:"begins_at"`
	EndsAt   string `json:"ends_at"`
}

type CalendarDay struct {
	Date          string                 `json:"date"`
	InMonth       bool                   `json:"in_month"`
	IsToday       bool                   `json:"is_today"`
	IsPast        bool                   `json:"is_past"`
	IsBlocked     bool                   `json:"is_blocked"`
	BlockedReason string                 `json:"blocked_reason,omitempty"`
	Appointments  []*AppointmentResponse `json:"appointments,omitempty"`
	Scheduled     []*ScheduledDay        `json:"scheduled,omitempty"`
}

type CalendarResponse struct {
	Month string         `json:"month"`
	Days  []*CalendarDay `json:"days"`
}

type DefaultCalendarService struct {
	AppointmentRepo AppointmentRepository
	UserRepo        UserRepository
	Blocked         BlockedCalendar
	Rules           booking.Rules
	Clock           Clock
}

func NewCalendarService(apptRepo AppointmentRepository, userRepo UserRepository, blocked BlockedCalendar, rules booking.Rules, clock Clock) *DefaultCalendarService {
	return &DefaultCalendarService{AppointmentRepo: apptRepo, UserRepo: userRepo, Blocked: blocked, Rules: rules, Clock: clock}
}

// GetCalendar builds the six-week grid around month ("YYYY-MM"), starting on a Sunday.
// Admins get the appointments themselves, everyone else only the busy windows.
func (c *DefaultCalendarService) GetCalendar(month, sub string) (*CalendarResponse, apierror.ErrorResponse) {
	caller, apierr := resolveCaller(c.UserRepo, sub)
	if apierr != nil {
		return nil, apierr
	}

	loc := c.Rules.Location
	first, err := utils.ParseMonth(month, loc)
	if err != nil {
		return nil, apierror.NewSimple(400, "Could not understand month format")
	}

	firstDay := booking.DayOf(first, loc)
	start := firstDay.AddDays(-int(first.Weekday()))
	end := start.AddDays(calendarCells - 1)

	from, _ := dayBounds(start, loc)
	_, to := dayBounds(end, loc)
	appts, err := c.AppointmentRepo.FindActiveBetween(from, to)
	if err != nil {
		log.Errorf("failed to fetch appointments [%s - %s]: %v", start, end, err)
		return nil, apierror.InternalServerError
	}

	blocked, err := c.Blocked.BlockedBetween(start, end)
	if err != nil {
		log.Errorf("failed to fetch blocked dates [%s - %s]: %v", start, end, err)
		return nil, apierror.InternalServerError
	}
	reasons := make(map[booking.Day]string, len(blocked))
	for _, b := range blocked {
		reasons[b.Day] = b.Entry.Reason
	}

	now := c.Clock.now().In(loc)
	cells := make([]*CalendarDay, calendarCells)
	index := make(map[booking.Day]*CalendarDay, calendarCells)
	for i := range cells {
		d := start.AddDays(i)
		reason, isBlocked := reasons[d]
		cells[i] = &CalendarDay{
			Date:          d.String(),
			InMonth:       d.Month == firstDay.Month,
			IsToday:       d.IsToday(now),
			IsPast:        d.IsPast(now),
			IsBlocked:     isBlocked,
			BlockedReason: reason,
		}
		index[d] = cells[i]
	}

	for _, appt := range appts {
		cell, ok := index[booking.DayOf(time.UnixMilli(appt.StartsAt), loc)]
		if !ok {
			continue
		}
		resp := toAppointmentResponse(appt, c.Rules.DefaultDurationMinutes)
		if caller.IsAdmin {
			cell.Appointments = append(cell.Appointments, resp)
		} else {
			cell.Scheduled = append(cell.Scheduled, &ScheduledDay{BeginsAt: resp.StartsAt, EndsAt: resp.EndsAt})
		}
	}

	return &CalendarResponse{Month: first.Format("2006-01"), Days: cells}, nil
}

// ExportICS renders confirmed appointments from a month back onwards as an iCalendar feed.
func (c *DefaultCalendarService) ExportICS(sub string) (string, apierror.ErrorResponse) {
	if _, apierr := resolveAdmin(c.UserRepo, sub); apierr != nil {
		return "", apierr
	}

	now := c.Clock.now()
	appts, err := c.AppointmentRepo.FindActiveBetween(now.AddDate(0, -1, 0).UnixMilli(), now.AddDate(1, 0, 0).UnixMilli())
	if err != nil {
		log.Errorf("failed to fetch appointments for export: %v", err)
		return "", apierror.InternalServerError
	}
	return renderICS(appts, c.Rules.DefaultDurationMinutes, now), nil
}

func renderICS(appts []*entity.Appointment, defaultDuration int, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//nailbook//appointments//EN")
	cal.SetXWRCalName("Nail Studio appointments")

	for _, appt := range appts {
		start := time.UnixMilli(appt.StartsAt).UTC()
		minutes := booking.DurationOf(appt.DurationMinutes, appt.Description, defaultDuration)

		ev := cal.AddEvent(fmt.Sprintf("appointment-%d@nailbook", appt.ID))
		ev.SetDtStampTime(stamp.UTC())
		ev.SetCreatedTime(time.UnixMilli(appt.CreatedAt).UTC())
		ev.SetModifiedAt(time.UnixMilli(appt.UpdatedAt).UTC())
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(time.Duration(minutes) * time.Minute))
		ev.SetSummary(appt.Title)
		ev.SetDescription(appt.Description)
		ev.SetLocation(appt.Location)
		ev.SetStatus(ics.ObjectStatusConfirmed)
		for _, at := range appt.Attendees {
			ev.AddAttendee(at.Email, ics.WithCN(at.Name), rsvpStatus(at.RSVP))
		}
	}
	return cal.Serialize()
}

func rsvpStatus(rsvp string) ics.ParticipationStatus {
	switch rsvp {
	case "no":
		return ics.ParticipationStatusDeclined
	case "maybe":
		return ics.ParticipationStatusTentative
	default:
		return ics.ParticipationStatusAccepted
	}
}
