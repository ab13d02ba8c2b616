package service

import (
	"strconv"
	"time"

	"nailbook/cmd/internal/booking"
	"nailbook/cmd/internal/domain/entity"
	"nailbook/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
)

// BlockedDays answers which calendar days are blocked.
type BlockedDays interface {
	BlockedSet(start, end booking.Day) (booking.DaySet, error)
}

type DaysResponse struct {
	Days     []string `json:"days"`
	Message  string   `json:"message"`
	Timezone string   `json:"timezone"`
}

type SlotsResponse struct {
	Day             string   `json:"day"`
	ServiceID       string   `json:"service_id,omitempty"`
	DurationMinutes int      `json:"duration_minutes"`
	Available       bool     `json:"available"`
	Slots           []string `json:"slots"`
	Times           []string `json:"times"`
}

type DefaultAvailabilityService struct {
	AppointmentRepo AppointmentRepository
	ServiceRepo     ServiceRepository
	Blocked         BlockedDays
	Rules           booking.Rules
	Clock           Clock
}

func NewAvailabilityService(apptRepo AppointmentRepository, serviceRepo ServiceRepository, blocked BlockedDays, rules booking.Rules, clock Clock) *DefaultAvailabilityService {
	return &DefaultAvailabilityService{AppointmentRepo: apptRepo, ServiceRepo: serviceRepo, Blocked: blocked, Rules: rules, Clock: clock}
}

func (a *DefaultAvailabilityService) GetDays() (*DaysResponse, apierror.ErrorResponse) {
	now := a.Clock.now()
	today := booking.DayOf(now, a.Rules.Location)

	// same span the booking page loads: yesterday through a few days past the window
	blocked, err := a.Blocked.BlockedSet(today.AddDays(-1), today.AddDays(a.Rules.WindowDays+5))
	if err != nil {
		log.Errorf("failed to load blocked dates: %v", err)
		return nil, apierror.InternalServerError
	}

	days := booking.AvailableDays(now, blocked, a.Rules)
	resp := &DaysResponse{
		Days:     make([]string, len(days)),
		Message:  booking.RestrictionMessage(now, a.Rules),
		Timezone: a.Rules.Location.String(),
	}
	for i, d := range days {
		resp.Days[i] = d.String()
	}
	return resp, nil
}

// GetSlots lists the free start times of rawDay for a catalogue service, or for an
// explicit duration when no service is given.
func (a *DefaultAvailabilityService) GetSlots(rawDay, serviceID, rawDuration string) (*SlotsResponse, apierror.ErrorResponse) {
	if rawDay == "" {
		return nil, apierror.NewMissingParamError("day")
	}
	day, err := booking.ParseDay(rawDay)
	if err != nil {
		return nil, apierror.NewInvalidParamTypeError("day", "YYYY-MM-DD")
	}

	duration := 0
	switch {
	case serviceID != "":
		svc, apierr := lookupService(a.ServiceRepo, serviceID)
		if apierr != nil {
			return nil, apierr
		}
		duration = svc.DurationMinutes
	case rawDuration != "":
		duration, err = strconv.Atoi(rawDuration)
		if err != nil || duration <= 0 || duration > 24*60 {
			return nil, apierror.NewInvalidParamTypeError("duration", "positive int")
		}
	default:
		duration = a.Rules.DefaultDurationMinutes
	}

	resp := &SlotsResponse{Day: day.String(), ServiceID: serviceID, DurationMinutes: duration, Slots: []string{}, Times: []string{}}

	now := a.Clock.now()
	blocked, err := a.Blocked.BlockedSet(day, day)
	if err != nil {
		log.Errorf("failed to load blocked dates for %s: %v", day, err)
		return nil, apierror.InternalServerError
	}
	if !booking.IsBookableDay(now, day, blocked, a.Rules) || !booking.WithinAdvance(now, day, a.Rules) {
		return resp, nil
	}

	busy, apierr := busyOn(a.AppointmentRepo, day, a.Rules)
	if apierr != nil {
		return nil, apierr
	}

	slots := booking.AvailableSlots(day, duration, now, busy, a.Rules)
	resp.Available = len(slots) > 0
	for _, s := range slots {
		resp.Slots = append(resp.Slots, s.Format(time.RFC3339))
		resp.Times = append(resp.Times, s.Format("15:04"))
	}
	return resp, nil
}

// busyOn loads the confirmed appointments starting on day.
func busyOn(repo AppointmentRepository, day booking.Day, rules booking.Rules) ([]booking.Busy, apierror.ErrorResponse) {
	from, to := dayBounds(day, rules.Location)
	appts, err := repo.FindActiveBetween(from, to)
	if err != nil {
		log.Errorf("failed to fetch appointments for %s: %v", day, err)
		return nil, apierror.InternalServerError
	}
	return toBusy(appts, rules.DefaultDurationMinutes), nil
}

// dayBounds returns [midnight, next midnight) of day in loc, as epoch millis.
func dayBounds(day booking.Day, loc *time.Location) (int64, int64) {
	return day.Start(loc).UnixMilli(), day.AddDays(1).Start(loc).UnixMilli()
}

func toBusy(appts []*entity.Appointment, def int) []booking.Busy {
	busy := make([]booking.Busy, 0, len(appts))
	for _, appt := range appts {
		busy = append(busy, booking.Busy{
			ID:              strconv.Itoa(appt.ID),
			Start:           time.UnixMilli(appt.StartsAt),
			DurationMinutes: booking.DurationOf(appt.DurationMinutes, appt.Description, def),
		})
	}
	return busy
}
