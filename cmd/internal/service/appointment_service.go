package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"nailbook/cmd/internal/booking"
	"nailbook/cmd/internal/domain/entity"
	"nailbook/cmd/internal/utils"
	"nailbook/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

var errSlotTaken = errors.New("slot taken")

type AppointmentRepository interface {
	SaveChecked(appointment *entity.Appointment, check func(existing []*entity.Appointment) error, from, to int64) error
	FindAll() ([]*entity.Appointment, error)
	FindByUserID(id int) ([]*entity.Appointment, error)
	FindByID(id int) (*entity.Appointment, error)
	FindActiveBetween(from, to int64) ([]*entity.Appointment, error)
	Delete(appointment *entity.Appointment, now int64) error
}

type AttendeeRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=50,personname"`
	Email string `json:"email" validate:"required,email,max=100"`
	Phone string `json:"phone" validate:"omitempty,min=8,max=15,phone"`
	RSVP  string `json:"rsvp" validate:"omitempty,oneof=yes no maybe"`
}

type AppointmentRequest struct {
	ServiceID       string            `json:"service_id" validate:"required_without=DurationMinutes,max=64"`
	DurationMinutes int               `json:"duration_minutes" validate:"omitempty,min=15,max=300"`
	StartsAt        string            `json:"starts_at" validate:"required,iso8601"`
	Title           string            `json:"title" validate:"max=128"`
	Notes           string            `json:"notes" validate:"max=500"`
	Location        string            `json:"location" validate:"max=128"`
	Attendees       []AttendeeRequest `json:"attendees" validate:"max=10,dive"`
}

type RescheduleRequest struct {
	StartsAt  string `json:"starts_at" validate:"required,iso8601"`
	ServiceID string `json:"service_id" validate:"max=64"`
}

type WalkInRequest struct {
	ClientName    string `json:"client_name" validate:"required,min=2,max=50,personname"`
	ClientEmail   string `json:"client_email" validate:"required,email,max=100"`
	ClientPhone   string `json:"client_phone" validate:"required,min=8,max=15,phone"`
	ServiceID     string `json:"service_id" validate:"required,max=64"`
	StartsAt      string `json:"starts_at" validate:"required,iso8601"`
	Notes         string `json:"notes" validate:"max=500"`
	CreateAccount bool   `json:"create_account"`
}

type AttendeeResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	RSVP  string `json:"rsvp"`
}

type AppointmentResponse struct {
	ID              int                `json:"id"`
	UserID          int                `json:"user_id"`
	ClientID        *int               `json:"client_id,omitempty"`
	ServiceID       string             `json:"service_id,omitempty"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	StartsAt        string             `json:"starts_at"`
	EndsAt          string             `json:"ends_at"`
	DurationMinutes int                `json:"duration_minutes"`
	Location        string             `json:"location"`
	Status          string             `json:"status"`
	IsDeleted       bool               `json:"is_deleted"`
	Attendees       []AttendeeResponse `json:"attendees"`
	CreatedAt       string             `json:"created_at"`
	UpdatedAt       string             `json:"updated_at"`
}

type DefaultAppointmentService struct {
	AppointmentRepo AppointmentRepository
	UserRepo        UserRepository
	ServiceRepo     ServiceRepository
	ClientRepo      ClientRepository
	Blocked         BlockedDays
	Validate        *validator.Validate
	Rules           booking.Rules
	Clock           Clock
	Location        string
}

func NewAppointmentService(apptRepo AppointmentRepository, userRepo UserRepository, serviceRepo ServiceRepository, clientRepo ClientRepository, blocked BlockedDays, validate *validator.Validate, rules booking.Rules, clock Clock) *DefaultAppointmentService {
	return &DefaultAppointmentService{
		AppointmentRepo: apptRepo,
		UserRepo:        userRepo,
		ServiceRepo:     serviceRepo,
		ClientRepo:      clientRepo,
		Blocked:         blocked,
		Validate:        validate,
		Rules:           rules,
		Clock:           clock,
		Location:        "Nail Studio",
	}
}

func (a *DefaultAppointmentService) GetAppointments(subId string) ([]*AppointmentResponse, apierror.ErrorResponse) {
	caller, apierr := resolveCaller(a.UserRepo, subId)
	if apierr != nil {
		return nil, apierr
	}

	var appts []*entity.Appointment
	var err error
	if caller.IsAdmin {
		appts, err = a.AppointmentRepo.FindAll()
	} else {
		appts, err = a.AppointmentRepo.FindByUserID(caller.ID)
	}
	if err != nil {
		log.Errorf("failed to find appointments for user %d: %v", caller.ID, err)
		return nil, apierror.InternalServerError
	}
	return a.toResponses(appts), nil
}

// GetUserAppointments lists one user's appointments. rawId may be "@me"; anyone but an
// admin may only look at their own.
func (a *DefaultAppointmentService) GetUserAppointments(rawId, subId string) ([]*AppointmentResponse, apierror.ErrorResponse) {
	caller, apierr := resolveCaller(a.UserRepo, subId)
	if apierr != nil {
		return nil, apierr
	}

	userId := caller.ID
	if rawId != "@me" {
		id, err := strconv.Atoi(rawId)
		if err != nil {
			return nil, apierror.NewInvalidParamTypeError("id", "int32")
		}
		userId = id
	}
	if userId != caller.ID && !caller.IsAdmin {
		return nil, apierror.ForbiddenError
	}

	appts, err := a.AppointmentRepo.FindByUserID(userId)
	if err != nil {
		log.Errorf("failed to find appointments for user %d: %v", userId, err)
		return nil, apierror.InternalServerError
	}
	return a.toResponses(appts), nil
}

func (a *DefaultAppointmentService) CreateAppointment(req *AppointmentRequest, subId string) (*AppointmentResponse, apierror.ErrorResponse) {
	caller, apierr := resolveCaller(a.UserRepo, subId)
	if apierr != nil {
		return nil, apierr
	}
	client, apierr := a.bookingClient(caller.Email)
	if apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(req)
	if valerr := a.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	start, apierr := a.parseStart(req.StartsAt)
	if apierr != nil {
		return nil, apierr
	}

	svc, apierr := a.serviceFor(req.ServiceID, req.DurationMinutes)
	if apierr != nil {
		return nil, apierr
	}

	now := a.Clock.millis()
	appt := &entity.Appointment{
		UserID:          caller.ID,
		ServiceID:       svc.ID,
		Title:           firstNonEmpty(req.Title, svc.Name, "Appointment"),
		Description:     describe(svc, req.Notes),
		StartsAt:        start.UnixMilli(),
		DurationMinutes: svc.DurationMinutes,
		Location:        firstNonEmpty(req.Location, a.Location),
		Status:          entity.AppointmentConfirmed,
		CreatedAt:       now,
		UpdatedAt:       now,
		Attendees:       toAttendees(req.Attendees),
	}
	if len(appt.Attendees) == 0 {
		appt.Attendees = []entity.Attendee{{Name: caller.Username, Email: caller.Email, Phone: caller.Phone, RSVP: "yes"}}
	}
	if client != nil {
		appt.ClientID = &client.ID
	}

	if apierr := a.save(appt, caller.IsAdmin); apierr != nil {
		return nil, apierr
	}
	return a.toResponse(appt), nil
}

// UpdateAppointment moves an appointment to a new start (and optionally a new service).
// The new time is checked against every other appointment.
func (a *DefaultAppointmentService) UpdateAppointment(id int, req *RescheduleRequest, subId string) (*AppointmentResponse, apierror.ErrorResponse) {
	caller, apierr := resolveCaller(a.UserRepo, subId)
	if apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(req)
	if valerr := a.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	appt, apierr := a.ownedAppointment(id, caller)
	if apierr != nil {
		return nil, apierr
	}

	start, apierr := a.parseStart(req.StartsAt)
	if apierr != nil {
		return nil, apierr
	}

	serviceID := firstNonEmpty(req.ServiceID, appt.ServiceID)
	duration := booking.DurationOf(appt.DurationMinutes, appt.Description, a.Rules.DefaultDurationMinutes)
	svc, apierr := a.serviceFor(serviceID, duration)
	if apierr != nil {
		return nil, apierr
	}

	if svc.ID != appt.ServiceID {
		appt.Description = describe(svc, "")
		appt.Title = svc.Name
	}
	appt.ServiceID = svc.ID
	appt.DurationMinutes = svc.DurationMinutes
	appt.StartsAt = start.UnixMilli()
	appt.UpdatedAt = a.Clock.millis()

	if apierr := a.save(appt, caller.IsAdmin); apierr != nil {
		return nil, apierr
	}
	return a.toResponse(appt), nil
}

func (a *DefaultAppointmentService) DeleteAppointment(id int, issuerSub string) apierror.ErrorResponse {
	caller, apierr := resolveCaller(a.UserRepo, issuerSub)
	if apierr != nil {
		return apierr
	}

	appt, apierr := a.ownedAppointment(id, caller)
	if apierr != nil {
		return apierr
	}

	if err := a.AppointmentRepo.Delete(appt, a.Clock.millis()); err != nil {
		log.Errorf("failed to delete appointment by id %d: %v", id, err)
		return apierror.InternalServerError
	}
	return nil
}

// CreateWalkIn books a client at the front desk. Same-day and off-grid times are fine;
// only overlapping an existing appointment is refused.
func (a *DefaultAppointmentService) CreateWalkIn(req *WalkInRequest, subId string) (*AppointmentResponse, apierror.ErrorResponse) {
	caller, apierr := resolveAdmin(a.UserRepo, subId)
	if apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(req)
	if valerr := a.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	start, apierr := a.parseStart(req.StartsAt)
	if apierr != nil {
		return nil, apierr
	}
	svc, apierr := lookupService(a.ServiceRepo, req.ServiceID)
	if apierr != nil {
		return nil, apierr
	}

	client, apierr := a.walkInClient(req, start)
	if apierr != nil {
		return nil, apierr
	}
	if client != nil && client.IsBanned {
		return nil, apierror.UserBannedError
	}

	now := a.Clock.millis()
	details := fmt.Sprintf("Name: %s, Email: %s, Phone: %s", req.ClientName, req.ClientEmail, req.ClientPhone)
	appt := &entity.Appointment{
		UserID:          caller.ID,
		ServiceID:       svc.ID,
		Title:           svc.Name + " - " + req.ClientName,
		Description:     details + ", " + describe(svc, req.Notes),
		StartsAt:        start.UnixMilli(),
		DurationMinutes: svc.DurationMinutes,
		Location:        a.Location,
		Status:          entity.AppointmentConfirmed,
		CreatedAt:       now,
		UpdatedAt:       now,
		Attendees: []entity.Attendee{{
			Name: req.ClientName, Email: req.ClientEmail, Phone: req.ClientPhone, RSVP: "yes",
		}},
	}
	if client != nil {
		appt.ClientID = &client.ID
	}

	if apierr := a.save(appt, true); apierr != nil {
		return nil, apierr
	}
	return a.toResponse(appt), nil
}

// save stores appt after checking it against the other appointments of its day inside a
// transaction. Customers must hit an offered slot; admins only need a free window.
func (a *DefaultAppointmentService) save(appt *entity.Appointment, asAdmin bool) apierror.ErrorResponse {
	loc := a.Rules.Location
	start := time.UnixMilli(appt.StartsAt).In(loc)
	day := booking.DayOf(start, loc)

	if !asAdmin {
		if apierr := a.checkBookableDay(day); apierr != nil {
			return apierr
		}
	}

	now := a.Clock.now()
	check := func(existing []*entity.Appointment) error {
		others := make([]*entity.Appointment, 0, len(existing))
		for _, e := range existing {
			if e.ID != appt.ID {
				others = append(others, e)
			}
		}
		busy := toBusy(others, a.Rules.DefaultDurationMinutes)

		if !asAdmin && !booking.ContainsSlot(booking.AvailableSlots(day, appt.DurationMinutes, now, busy, a.Rules), start) {
			return errSlotTaken
		}
		// an offered start can still run into a later appointment
		for _, b := range busy {
			if booking.Overlaps(start, appt.DurationMinutes, b.Start, b.DurationMinutes) {
				return errSlotTaken
			}
		}
		return nil
	}

	// the previous day is included so that a long appointment running past midnight is seen
	from, to := dayBounds(day, loc)
	from -= (24 * time.Hour).Milliseconds()
	err := a.AppointmentRepo.SaveChecked(appt, check, from, to)
	if errors.Is(err, errSlotTaken) {
		return apierror.SlotUnavailableError
	}
	if err != nil {
		log.Errorf("failed to save appointment: %v", err)
		return apierror.InternalServerError
	}
	return nil
}

func (a *DefaultAppointmentService) checkBookableDay(day booking.Day) apierror.ErrorResponse {
	now := a.Clock.now()
	if !booking.WithinAdvance(now, day, a.Rules) {
		return apierror.TooFarAheadError
	}
	blocked, err := a.Blocked.BlockedSet(day, day)
	if err != nil {
		log.Errorf("failed to load blocked dates for %s: %v", day, err)
		return apierror.InternalServerError
	}
	if !booking.IsBookableDay(now, day, blocked, a.Rules) {
		return apierror.DayUnavailableError
	}
	return nil
}

func (a *DefaultAppointmentService) parseStart(raw string) (time.Time, apierror.ErrorResponse) {
	begin, err := utils.FromEpoch(raw)
	if err != nil {
		return time.Time{}, apierror.MalformedBodyError
	}
	start := time.UnixMilli(begin).In(a.Rules.Location)
	if !start.After(a.Clock.now()) {
		return time.Time{}, apierror.AppointmentInPastError
	}
	return start, nil
}

// serviceFor resolves a catalogue service, or a bare duration when id is empty.
func (a *DefaultAppointmentService) serviceFor(id string, duration int) (*booking.Service, apierror.ErrorResponse) {
	if id != "" {
		return lookupService(a.ServiceRepo, id)
	}
	if duration <= 0 {
		duration = a.Rules.DefaultDurationMinutes
	}
	return &booking.Service{DurationMinutes: duration}, nil
}

func (a *DefaultAppointmentService) ownedAppointment(id int, caller *entity.User) (*entity.Appointment, apierror.ErrorResponse) {
	appt, err := a.AppointmentRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch appointment by id %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if appt == nil || appt.IsDeleted || (appt.UserID != caller.ID && !caller.IsAdmin) {
		return nil, apierror.NotFoundError
	}
	return appt, nil
}

// bookingClient returns the client record behind email, if any, refusing banned clients.
func (a *DefaultAppointmentService) bookingClient(email string) (*entity.Client, apierror.ErrorResponse) {
	client, err := a.ClientRepo.FindByEmail(email)
	if err != nil {
		log.Errorf("failed to fetch client %s: %v", email, err)
		return nil, apierror.InternalServerError
	}
	if client != nil && client.IsBanned {
		return nil, apierror.UserBannedError
	}
	return client, nil
}

func (a *DefaultAppointmentService) walkInClient(req *WalkInRequest, start time.Time) (*entity.Client, apierror.ErrorResponse) {
	client, err := a.ClientRepo.FindByEmail(req.ClientEmail)
	if err != nil {
		log.Errorf("failed to fetch client %s: %v", req.ClientEmail, err)
		return nil, apierror.InternalServerError
	}
	if client != nil || !req.CreateAccount {
		return client, nil
	}

	now := a.Clock.millis()
	client = &entity.Client{
		Name:  req.ClientName,
		Email: req.ClientEmail,
		Phone: req.ClientPhone,
		Roles: []string{RoleUser},
		Preferences: entity.ClientPreferences{
			FavoriteServices: []string{req.ServiceID},
			PreferredTimes:   []string{start.Format("15:04")},
			SpecialRequests:  req.Notes,
		},
		DateJoined:  now,
		LastUpdated: now,
	}
	if err := a.ClientRepo.Save(client); err != nil {
		log.Errorf("failed to create walk-in client %s: %v", req.ClientEmail, err)
		return nil, apierror.InternalServerError
	}
	return client, nil
}

// describe writes the human-readable description, including the "Duration: N minutes"
// marker older rows relied on.
func describe(svc *booking.Service, notes string) string {
	var desc string
	if svc.ID != "" {
		desc = fmt.Sprintf("Service: %s, Price: €%.2f, Duration: %d minutes", svc.Name, svc.Price, svc.DurationMinutes)
	} else {
		desc = fmt.Sprintf("Duration: %d minutes", svc.DurationMinutes)
	}
	if notes != "" {
		desc += "\nClient Notes: " + notes
	}
	return desc
}

func toAttendees(reqs []AttendeeRequest) []entity.Attendee {
	out := make([]entity.Attendee, len(reqs))
	for i, r := range reqs {
		out[i] = entity.Attendee{Name: r.Name, Email: r.Email, Phone: r.Phone, RSVP: firstNonEmpty(r.RSVP, "yes")}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func (a *DefaultAppointmentService) toResponses(appts []*entity.Appointment) []*AppointmentResponse {
	resp := make([]*AppointmentResponse, len(appts))
	for i, appt := range appts {
		resp[i] = a.toResponse(appt)
	}
	return resp
}

func (a *DefaultAppointmentService) toResponse(appt *entity.Appointment) *AppointmentResponse {
	return toAppointmentResponse(appt, a.Rules.DefaultDurationMinutes)
}

func toAppointmentResponse(appt *entity.Appointment, defaultDuration int) *AppointmentResponse {
	duration := booking.DurationOf(appt.DurationMinutes, appt.Description, defaultDuration)
	attendees := make([]AttendeeResponse, len(appt.Attendees))
	for i, at := range appt.Attendees {
		attendees[i] = AttendeeResponse{Name: at.Name, Email: at.Email, Phone: at.Phone, RSVP: at.RSVP}
	}
	return &AppointmentResponse{
		ID:              appt.ID,
		UserID:          appt.UserID,
		ClientID:        appt.ClientID,
		ServiceID:       appt.ServiceID,
		Title:           appt.Title,
		Description:     appt.Description,
		StartsAt:        utils.FormatEpoch(appt.StartsAt),
		EndsAt:          utils.FormatEpoch(appt.StartsAt + (time.Duration(duration) * time.Minute).Milliseconds()),
		DurationMinutes: duration,
		Location:        appt.Location,
		Status:          appt.Status,
		IsDeleted:       appt.IsDeleted,
		Attendees:       attendees,
		CreatedAt:       utils.FormatEpoch(appt.CreatedAt),
		UpdatedAt:       utils.FormatEpoch(appt.UpdatedAt),
	}
}
