package service

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"nailbook/cmd/internal/booking"
	"nailbook/cmd/internal/domain/entity"
	"nailbook/cmd/internal/utils"
	"nailbook/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"github.com/teambition/rrule-go"
)

// maxRangeDays bounds a single range query so recurring blocks cannot expand forever.
const maxRangeDays = 366 * 2

type BlockedDateRepository interface {
	FindAll() ([]*entity.BlockedDate, error)
	FindByID(id int) (*entity.BlockedDate, error)
	FindByDay(day string) (*entity.BlockedDate, error)
	FindForRange(start, end string) ([]*entity.BlockedDate, error)
	Save(blocked *entity.BlockedDate) error
	Delete(blocked *entity.BlockedDate) error
}

type BlockedDateRequest struct {
	Date       string `json:"date" validate:"required,isoday"`
	Reason     string `json:"reason" validate:"max=200"`
	Recurrence string `json:"recurring_pattern" validate:"recurrence"`
}

type BlockedDateResponse struct {
	ID         int    `json:"id"`
	Date       string `json:"date"`
	Reason     string `json:"reason"`
	Recurrence string `json:"recurring_pattern,omitempty"`
	// AnchorDate is the stored day an expanded recurring occurrence came from.
	AnchorDate string `json:"anchor_date,omitempty"`
	CreatedBy  int    `json:"created_by"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type BlockedCheckResponse struct {
	Date    string `json:"date"`
	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason,omitempty"`
}

// BlockedOccurrence is a single blocked calendar day, after recurrence expansion.
type BlockedOccurrence struct {
	Day   booking.Day
	Entry *entity.BlockedDate
}

type DefaultBlockedDateService struct {
	BlockedRepo BlockedDateRepository
	UserRepo    UserRepository
	Validate    *validator.Validate
	Clock       Clock
}

func NewBlockedDateService(blockedRepo BlockedDateRepository, userRepo UserRepository, validate *validator.Validate, clock Clock) *DefaultBlockedDateService {
	return &DefaultBlockedDateService{BlockedRepo: blockedRepo, UserRepo: userRepo, Validate: validate, Clock: clock}
}

func (b *DefaultBlockedDateService) GetBlockedDates() ([]*BlockedDateResponse, apierror.ErrorResponse) {
	rows, err := b.BlockedRepo.FindAll()
	if err != nil {
		log.Errorf("failed to fetch blocked dates: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*BlockedDateResponse, len(rows))
	for i, row := range rows {
		resp[i] = toBlockedDateResponse(row)
	}
	return resp, nil
}

// GetBlockedRange lists every blocked day in [start, end], recurring blocks expanded.
func (b *DefaultBlockedDateService) GetBlockedRange(rawStart, rawEnd string) ([]*BlockedDateResponse, apierror.ErrorResponse) {
	if rawStart == "" {
		return nil, apierror.NewMissingParamError("start")
	}
	if rawEnd == "" {
		return nil, apierror.NewMissingParamError("end")
	}
	start, err := booking.ParseDay(rawStart)
	if err != nil {
		return nil, apierror.NewInvalidParamTypeError("start", "YYYY-MM-DD")
	}
	end, err := booking.ParseDay(rawEnd)
	if err != nil {
		return nil, apierror.NewInvalidParamTypeError("end", "YYYY-MM-DD")
	}
	return b.occurrenceResponses(start, end)
}

func (b *DefaultBlockedDateService) GetBlockedMonth(rawYear, rawMonth string) ([]*BlockedDateResponse, apierror.ErrorResponse) {
	year, err := strconv.Atoi(rawYear)
	if err != nil || year < 1 {
		return nil, apierror.NewInvalidParamTypeError("year", "int")
	}
	month, err := strconv.Atoi(rawMonth)
	if err != nil || month < 1 || month > 12 {
		return nil, apierror.NewInvalidParamTypeError("month", "1-12")
	}

	first := booking.Day{Year: year, Month: time.Month(month), Day: 1}
	last := booking.DayOf(first.Start(time.UTC).AddDate(0, 1, -1), time.UTC)
	return b.occurrenceResponses(first, last)
}

func (b *DefaultBlockedDateService) CheckDay(rawDay string) (*BlockedCheckResponse, apierror.ErrorResponse) {
	day, err := booking.ParseDay(rawDay)
	if err != nil {
		return nil, apierror.NewInvalidParamTypeError("date", "YYYY-MM-DD")
	}

	occ, err := b.BlockedBetween(day, day)
	if err != nil {
		log.Errorf("failed to check blocked day %s: %v", day, err)
		return nil, apierror.InternalServerError
	}

	resp := &BlockedCheckResponse{Date: day.String()}
	if len(occ) > 0 {
		resp.Blocked = true
		resp.Reason = occ[0].Entry.Reason
	}
	return resp, nil
}

func (b *DefaultBlockedDateService) CreateBlockedDate(req *BlockedDateRequest, sub string) (*BlockedDateResponse, apierror.ErrorResponse) {
	caller, apierr := resolveAdmin(b.UserRepo, sub)
	if apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(req)
	if err := b.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	existing, err := b.BlockedRepo.FindByDay(req.Date)
	if err != nil {
		log.Errorf("failed to look up blocked day %s: %v", req.Date, err)
		return nil, apierror.InternalServerError
	}
	if existing != nil {
		return nil, apierror.DayAlreadyBlockedError
	}

	now := b.Clock.millis()
	row := &entity.BlockedDate{
		Day:        req.Date,
		Reason:     reasonOrDefault(req.Reason),
		Recurrence: req.Recurrence,
		CreatedBy:  caller.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := b.BlockedRepo.Save(row); err != nil {
		log.Errorf("failed to block day %s: %v", req.Date, err)
		return nil, apierror.InternalServerError
	}
	return toBlockedDateResponse(row), nil
}

func (b *DefaultBlockedDateService) UpdateBlockedDate(id int, req *BlockedDateRequest, sub string) (*BlockedDateResponse, apierror.ErrorResponse) {
	if _, apierr := resolveAdmin(b.UserRepo, sub); apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(req)
	if err := b.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	row, err := b.BlockedRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch blocked date %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if row == nil {
		return nil, apierror.NotFoundError
	}

	if req.Date != row.Day {
		clash, err := b.BlockedRepo.FindByDay(req.Date)
		if err != nil {
			log.Errorf("failed to look up blocked day %s: %v", req.Date, err)
			return nil, apierror.InternalServerError
		}
		if clash != nil {
			return nil, apierror.DayAlreadyBlockedError
		}
	}

	row.Day = req.Date
	row.Reason = reasonOrDefault(req.Reason)
	row.Recurrence = req.Recurrence
	row.UpdatedAt = b.Clock.millis()
	if err := b.BlockedRepo.Save(row); err != nil {
		log.Errorf("failed to update blocked date %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	return toBlockedDateResponse(row), nil
}

func (b *DefaultBlockedDateService) DeleteBlockedDate(id int, sub string) apierror.ErrorResponse {
	if _, apierr := resolveAdmin(b.UserRepo, sub); apierr != nil {
		return apierr
	}

	row, err := b.BlockedRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch blocked date %d: %v", id, err)
		return apierror.InternalServerError
	}
	if row == nil {
		return apierror.NotFoundError
	}
	return b.delete(row)
}

// DeleteBlockedDay unblocks the stored entry for rawDay. Occurrences of a recurring block
// are removed by deleting the entry on its anchor day.
func (b *DefaultBlockedDateService) DeleteBlockedDay(rawDay, sub string) apierror.ErrorResponse {
	if _, apierr := resolveAdmin(b.UserRepo, sub); apierr != nil {
		return apierr
	}

	day, err := booking.ParseDay(rawDay)
	if err != nil {
		return apierror.NewInvalidParamTypeError("date", "YYYY-MM-DD")
	}

	row, err := b.BlockedRepo.FindByDay(day.String())
	if err != nil {
		log.Errorf("failed to look up blocked day %s: %v", day, err)
		return apierror.InternalServerError
	}
	if row == nil {
		return apierror.NotFoundError
	}
	return b.delete(row)
}

func (b *DefaultBlockedDateService) delete(row *entity.BlockedDate) apierror.ErrorResponse {
	if err := b.BlockedRepo.Delete(row); err != nil {
		log.Errorf("failed to delete blocked date %d: %v", row.ID, err)
		return apierror.InternalServerError
	}
	return nil
}

// BlockedBetween expands stored blocks into the blocked days of [start, end], earliest first.
func (b *DefaultBlockedDateService) BlockedBetween(start, end booking.Day) ([]BlockedOccurrence, error) {
	if end.Before(start) {
		return nil, nil
	}
	rows, err := b.BlockedRepo.FindForRange(start.String(), end.String())
	if err != nil {
		return nil, err
	}
	return expandBlocked(rows, start, end)
}

// BlockedSet is BlockedBetween as a DaySet.
func (b *DefaultBlockedDateService) BlockedSet(start, end booking.Day) (booking.DaySet, error) {
	occ, err := b.BlockedBetween(start, end)
	if err != nil {
		return nil, err
	}
	set := booking.NewDaySet()
	for _, o := range occ {
		set.Add(o.Day)
	}
	return set, nil
}

func (b *DefaultBlockedDateService) occurrenceResponses(start, end booking.Day) ([]*BlockedDateResponse, apierror.ErrorResponse) {
	if end.Before(start) {
		return nil, apierror.NewSimple(400, "end must not be before start")
	}
	if booking.DaysBetween(start, end) > maxRangeDays {
		return nil, apierror.NewSimple(400, fmt.Sprintf("range must not exceed %d days", maxRangeDays))
	}

	occ, err := b.BlockedBetween(start, end)
	if err != nil {
		log.Errorf("failed to fetch blocked dates [%s - %s]: %v", start, end, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*BlockedDateResponse, len(occ))
	for i, o := range occ {
		r := toBlockedDateResponse(o.Entry)
		r.Date = o.Day.String()
		if o.Entry.Day != r.Date {
			r.AnchorDate = o.Entry.Day
		}
		resp[i] = r
	}
	return resp, nil
}

func expandBlocked(rows []*entity.BlockedDate, start, end booking.Day) ([]BlockedOccurrence, error) {
	seen := booking.NewDaySet()
	var out []BlockedOccurrence
	for _, row := range rows {
		days, err := occurrences(row, start, end)
		if err != nil {
			log.Warnf("skipping blocked date %d: %v", row.ID, err)
			continue
		}
		for _, d := range days {
			if seen.Has(d) {
				continue
			}
			seen.Add(d)
			out = append(out, BlockedOccurrence{Day: d, Entry: row})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func occurrences(row *entity.BlockedDate, start, end booking.Day) ([]booking.Day, error) {
	anchor, err := booking.ParseDay(row.Day)
	if err != nil {
		return nil, err
	}

	var freq rrule.Frequency
	switch row.Recurrence {
	case entity.RecurrenceNone:
		if anchor.Before(start) || anchor.After(end) {
			return nil, nil
		}
		return []booking.Day{anchor}, nil
	case entity.RecurrenceWeekly:
		freq = rrule.WEEKLY
	case entity.RecurrenceMonthly:
		freq = rrule.MONTHLY
	case entity.RecurrenceYearly:
		freq = rrule.YEARLY
	default:
		return nil, fmt.Errorf("unknown recurrence %q", row.Recurrence)
	}

	// Occurrences sit at noon UTC so that every one maps back to its own calendar day.
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    freq,
		Dtstart: anchor.At(12*60, time.UTC),
	})
	if err != nil {
		return nil, err
	}

	times := rule.Between(start.Start(time.UTC), end.AddDays(1).Start(time.UTC), true)
	days := make([]booking.Day, len(times))
	for i, t := range times {
		days[i] = booking.DayOf(t, time.UTC)
	}
	return days, nil
}

func reasonOrDefault(reason string) string {
	if reason == "" {
		return "Blocked"
	}
	return reason
}

func toBlockedDateResponse(row *entity.BlockedDate) *BlockedDateResponse {
	return &BlockedDateResponse{
		ID:         row.ID,
		Date:       row.Day,
		Reason:     row.Reason,
		Recurrence: row.Recurrence,
		CreatedBy:  row.CreatedBy,
		CreatedAt:  utils.FormatEpoch(row.CreatedAt),
		UpdatedAt:  utils.FormatEpoch(row.UpdatedAt),
	}
}
