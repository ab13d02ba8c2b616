package service

import (
	"sort"
	"strings"

	"nailbook/cmd/internal/domain/entity"
	"nailbook/cmd/internal/utils"
	"nailbook/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type ClientRepository interface {
	FindAll() ([]*entity.Client, error)
	FindByID(id int) (*entity.Client, error)
	FindByEmail(email string) (*entity.Client, error)
	Save(client *entity.Client) error
	Delete(client *entity.Client) error
}

type ClientPreferencesRequest struct {
	FavoriteServices []string `json:"favorite_services" validate:"max=20,nodupes"`
	PreferredTimes   []string `json:"preferred_times" validate:"max=20,nodupes,dive,datetime=15:04"`
	Allergies        []string `json:"allergies" validate:"max=20,dive,max=100"`
	SpecialRequests  string   `json:"special_requests" validate:"max=500"`
}

type ClientRequest struct {
	Name        string                    `json:"name" validate:"required,min=2,max=50,personname"`
	Email       string                    `json:"email" validate:"required,email,max=100"`
	Phone       string                    `json:"phone" validate:"required,min=8,max=15,phone"`
	Notes       string                    `json:"notes" validate:"max=500"`
	Roles       []string                  `json:"roles" validate:"omitempty,nodupes,dive,oneof=user admin"`
	Preferences *ClientPreferencesRequest `json:"preferences"`
}

type BanRequest struct {
	Banned *bool  `json:"banned" validate:"required"`
	Reason string `json:"reason" validate:"max=200"`
}

type RolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1,nodupes,dive,oneof=user admin"`
}

type ClientResponse struct {
	ID          int                      `json:"id"`
	UserID      *int                     `json:"user_id,omitempty"`
	Name        string                   `json:"name"`
	Email       string                   `json:"email"`
	Phone       string                   `json:"phone"`
	Notes       string                   `json:"notes,omitempty"`
	IsBanned    bool                     `json:"is_banned"`
	Roles       []string                 `json:"roles"`
	Preferences entity.ClientPreferences `json:"preferences"`
	DateJoined  string                   `json:"date_joined"`
	LastUpdated string                   `json:"last_updated"`
}

type ClientStats struct {
	TotalAppointments    int     `json:"total_appointments"`
	UpcomingAppointments int     `json:"upcoming_appointments"`
	TotalSpent           float64 `json:"total_spent"`
	FavoriteService      string  `json:"favorite_service,omitempty"`
	LastVisit            string  `json:"last_visit,omitempty"`
}

type ClientWithStatsResponse struct {
	*ClientResponse
	Stats ClientStats `json:"stats"`
}

type ClientHistoryResponse struct {
	Client       *ClientResponse        `json:"client"`
	Stats        ClientStats            `json:"stats"`
	Appointments []*AppointmentResponse `json:"appointments"`
}

type DefaultClientService struct {
	ClientRepo      ClientRepository
	UserRepo        UserRepository
	AppointmentRepo AppointmentRepository
	ServiceRepo     ServiceRepository
	Validate        *validator.Validate
	Clock           Clock
	DefaultDuration int
}

func NewClientService(clientRepo ClientRepository, userRepo UserRepository, apptRepo AppointmentRepository, serviceRepo ServiceRepository, validate *validator.Validate, clock Clock, defaultDuration int) *DefaultClientService {
	return &DefaultClientService{
		ClientRepo:      clientRepo,
		UserRepo:        userRepo,
		AppointmentRepo: apptRepo,
		ServiceRepo:     serviceRepo,
		Validate:        validate,
		Clock:           clock,
		DefaultDuration: defaultDuration,
	}
}

func (s *DefaultClientService) GetClients(sub string) ([]*ClientResponse, apierror.ErrorResponse) {
	if _, apierr := resolveAdmin(s.UserRepo, sub); apierr != nil {
		return nil, apierr
	}

	clients, err := s.ClientRepo.FindAll()
	if err != nil {
		log.Errorf("failed to fetch clients: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*ClientResponse, len(clients))
	for i, c := range clients {
		resp[i] = toClientResponse(c)
	}
	return resp, nil
}

func (s *DefaultClientService) GetClient(id int, sub string) (*ClientResponse, apierror.ErrorResponse) {
	if _, apierr := resolveAdmin(s.UserRepo, sub); apierr != nil {
		return nil, apierr
	}
	client, apierr := s.fetch(id)
	if apierr != nil {
		return nil, apierr
	}
	return toClientResponse(client), nil
}

func (s *DefaultClientService) CreateClient(req *ClientRequest, sub string) (*ClientResponse, apierror.ErrorResponse) {
	if _, apierr := resolveAdmin(s.UserRepo, sub); apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(req)
	req.Email = strings.ToLower(req.Email)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	existing, err := s.ClientRepo.FindByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to fetch client %s: %v", req.Email, err)
		return nil, apierror.InternalServerError
	}
	if existing != nil {
		return nil, apierror.ClientExistsError
	}

	now := s.Clock.millis()
	client := &entity.Client{DateJoined: now}
	applyClientRequest(client, req)
	client.LastUpdated = now

	// link to an account registered with the same email
	if user, err := s.UserRepo.FindByEmail(req.Email); err == nil && user != nil {
		client.UserID = &user.ID
	}

	if err := s.ClientRepo.Save(client); err != nil {
		log.Errorf("failed to create client %s: %v", req.Email, err)
		return nil, apierror.InternalServerError
	}
	return toClientResponse(client), nil
}

func (s *DefaultClientService) UpdateClient(id int, req *ClientRequest, sub string) (*ClientResponse, apierror.ErrorResponse) {
	if _, apierr := resolveAdmin(s.UserRepo, sub); apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(req)
	req.Email = strings.ToLower(req.Email)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	client, apierr := s.fetch(id)
	if apierr != nil {
		return nil, apierr
	}
	if req.Email != client.Email {
		clash, err := s.ClientRepo.FindByEmail(req.Email)
		if err != nil {
			log.Errorf("failed to fetch client %s: %v", req.Email, err)
			return nil, apierror.InternalServerError
		}
		if clash != nil {
			return nil, apierror.ClientExistsError
		}
	}

	roles := client.Roles
	applyClientRequest(client, req)
	if req.Roles == nil {
		client.Roles = roles
	}
	client.LastUpdated = s.Clock.millis()
	if err := s.ClientRepo.Save(client); err != nil {
		log.Errorf("failed to update client %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	return toClientResponse(client), nil
}

func (s *DefaultClientService) DeleteClient(id int, sub string) apierror.ErrorResponse {
	if _, apierr := resolveAdmin(s.UserRepo, sub); apierr != nil {
		return apierr
	}
	client, apierr := s.fetch(id)
	if apierr != nil {
		return apierr
	}
	if err := s.ClientRepo.Delete(client); err != nil {
		log.Errorf("failed to delete client %d: %v", id, err)
		return apierror.InternalServerError
	}
	return nil
}

// SetBanned bans or unbans a client. Banned clients cannot book.
func (s *DefaultClientService) SetBanned(id int, req *BanRequest, sub string) (*ClientResponse, apierror.ErrorResponse) {
	caller, apierr := resolveAdmin(s.UserRepo, sub)
	if apierr != nil {
		return nil, apierr
	}
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	client, apierr := s.fetch(id)
	if apierr != nil {
		return nil, apierr
	}
	if client.UserID != nil && *client.UserID == caller.ID {
		return nil, apierror.NewSimple(400, "You cannot ban yourself")
	}

	client.IsBanned = *req.Banned
	if *req.Banned && req.Reason != "" {
		client.Notes = strings.TrimSpace(client.Notes + "\nBanned: " + req.Reason)
	}
	client.LastUpdated = s.Clock.millis()
	if err := s.ClientRepo.Save(client); err != nil {
		log.Errorf("failed to update ban status of client %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	return toClientResponse(client), nil
}

// SetRoles replaces the client's roles. The admin role is mirrored onto the linked user.
func (s *DefaultClientService) SetRoles(id int, req *RolesRequest, sub string) (*ClientResponse, apierror.ErrorResponse) {
	caller, apierr := resolveAdmin(s.UserRepo, sub)
	if apierr != nil {
		return nil, apierr
	}
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	client, apierr := s.fetch(id)
	if apierr != nil {
		return nil, apierr
	}

	isAdmin := hasRole(req.Roles, RoleAdmin)
	if client.UserID != nil {
		if *client.UserID == caller.ID && !isAdmin {
			return nil, apierror.NewSimple(400, "You cannot revoke your own admin role")
		}
		user, err := s.UserRepo.FindByID(*client.UserID)
		if err != nil {
			log.Errorf("failed to fetch user %d: %v", *client.UserID, err)
			return nil, apierror.InternalServerError
		}
		if user != nil && user.IsAdmin != isAdmin {
			user.IsAdmin = isAdmin
			user.UpdatedAt = s.Clock.millis()
			if err := s.UserRepo.Save(user); err != nil {
				log.Errorf("failed to update admin flag of user %d: %v", user.ID, err)
				return nil, apierror.InternalServerError
			}
		}
	}

	client.Roles = req.Roles
	client.LastUpdated = s.Clock.millis()
	if err := s.ClientRepo.Save(client); err != nil {
		log.Errorf("failed to update roles of client %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	return toClientResponse(client), nil
}

func (s *DefaultClientService) GetClientHistory(id int, sub string) (*ClientHistoryResponse, apierror.ErrorResponse) {
	if _, apierr := resolveAdmin(s.UserRepo, sub); apierr != nil {
		return nil, apierr
	}
	client, apierr := s.fetch(id)
	if apierr != nil {
		return nil, apierr
	}

	appts, err := s.AppointmentRepo.FindAll()
	if err != nil {
		log.Errorf("failed to fetch appointments: %v", err)
		return nil, apierror.InternalServerError
	}
	prices, apierr := s.prices()
	if apierr != nil {
		return nil, apierr
	}

	mine := appointmentsOf(client, appts)
	resp := &ClientHistoryResponse{
		Client:       toClientResponse(client),
		Stats:        s.stats(mine, prices),
		Appointments: make([]*AppointmentResponse, len(mine)),
	}
	for i, appt := range mine {
		resp.Appointments[i] = toAppointmentResponse(appt, s.DefaultDuration)
	}
	return resp, nil
}

func (s *DefaultClientService) GetClientsWithStats(sub string) ([]*ClientWithStatsResponse, apierror.ErrorResponse) {
	if _, apierr := resolveAdmin(s.UserRepo, sub); apierr != nil {
		return nil, apierr
	}

	clients, err := s.ClientRepo.FindAll()
	if err != nil {
		log.Errorf("failed to fetch clients: %v", err)
		return nil, apierror.InternalServerError
	}
	appts, err := s.AppointmentRepo.FindAll()
	if err != nil {
		log.Errorf("failed to fetch appointments: %v", err)
		return nil, apierror.InternalServerError
	}
	prices, apierr := s.prices()
	if apierr != nil {
		return nil, apierr
	}

	resp := make([]*ClientWithStatsResponse, len(clients))
	for i, c := range clients {
		resp[i] = &ClientWithStatsResponse{
			ClientResponse: toClientResponse(c),
			Stats:          s.stats(appointmentsOf(c, appts), prices),
		}
	}
	return resp, nil
}

func (s *DefaultClientService) fetch(id int) (*entity.Client, apierror.ErrorResponse) {
	client, err := s.ClientRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch client %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if client == nil {
		return nil, apierror.NotFoundError
	}
	return client, nil
}

func (s *DefaultClientService) prices() (map[string]float64, apierror.ErrorResponse) {
	svcs, err := s.ServiceRepo.FindAll(true)
	if err != nil {
		log.Errorf("failed to fetch services: %v", err)
		return nil, apierror.InternalServerError
	}
	prices := make(map[string]float64, len(svcs))
	for _, svc := range svcs {
		prices[svc.ID] = svc.Price
	}
	return prices, nil
}

// stats summarises appts, which must be newest first. Only visits already started count
// towards the amount spent.
func (s *DefaultClientService) stats(appts []*entity.Appointment, prices map[string]float64) ClientStats {
	now := s.Clock.millis()
	st := ClientStats{TotalAppointments: len(appts)}
	counts := map[string]int{}
	for _, appt := range appts {
		if appt.StartsAt > now {
			st.UpcomingAppointments++
			continue
		}
		st.TotalSpent += prices[appt.ServiceID]
		if st.LastVisit == "" {
			st.LastVisit = utils.FormatEpoch(appt.StartsAt)
		}
		if appt.ServiceID != "" {
			counts[appt.ServiceID]++
		}
	}

	best := 0
	for id, n := range counts {
		if n > best || (n == best && id < st.FavoriteService) {
			best, st.FavoriteService = n, id
		}
	}
	return st
}

// appointmentsOf picks the client's appointments out of appts, newest first. A client owns
// an appointment booked for it, booked by its linked user, or listing its email.
func appointmentsOf(client *entity.Client, appts []*entity.Appointment) []*entity.Appointment {
	var out []*entity.Appointment
	for _, appt := range appts {
		switch {
		case appt.ClientID != nil && *appt.ClientID == client.ID:
		case client.UserID != nil && appt.UserID == *client.UserID && appt.ClientID == nil:
		case hasAttendee(appt, client.Email):
		default:
			continue
		}
		out = append(out, appt)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartsAt > out[j].StartsAt })
	return out
}

func hasAttendee(appt *entity.Appointment, email string) bool {
	for _, at := range appt.Attendees {
		if strings.EqualFold(at.Email, email) {
			return true
		}
	}
	return false
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func applyClientRequest(client *entity.Client, req *ClientRequest) {
	client.Name = req.Name
	client.Email = req.Email
	client.Phone = req.Phone
	client.Notes = req.Notes
	client.Roles = req.Roles
	if len(client.Roles) == 0 {
		client.Roles = []string{RoleUser}
	}
	if p := req.Preferences; p != nil {
		client.Preferences = entity.ClientPreferences{
			FavoriteServices: p.FavoriteServices,
			PreferredTimes:   p.PreferredTimes,
			Allergies:        p.Allergies,
			SpecialRequests:  p.SpecialRequests,
		}
	}
}

func toClientResponse(c *entity.Client) *ClientResponse {
	roles := c.Roles
	if roles == nil {
		roles = []string{}
	}
	return &ClientResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		Notes:       c.Notes,
		IsBanned:    c.IsBanned,
		Roles:       roles,
		Preferences: c.Preferences,
		DateJoined:  utils.FormatEpoch(c.DateJoined),
		LastUpdated: utils.FormatEpoch(c.LastUpdated),
	}
}
