package service

import (
	"nailbook/cmd/internal/booking"
	"nailbook/cmd/internal/domain/entity"
	"nailbook/cmd/internal/utils"
	"nailbook/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type ServiceRepository interface {
	FindAll(includeInactive bool) ([]*entity.Service, error)
	FindByID(id string) (*entity.Service, error)
	Save(svc *entity.Service) error
}

type ServiceRequest struct {
	ID              string  `json:"id" validate:"required,min=2,max=64,lowercase,nospaces"`
	Name            string  `json:"name" validate:"required,min=2,max=80"`
	Description     string  `json:"description" validate:"max=500"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,min=15,max=300"`
	Price           float64 `json:"price" validate:"required,min=1,max=1000"`
	IsActive        *bool   `json:"is_active"`
}

type ServiceResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	IsActive        bool    `json:"is_active"`
}

type DefaultCatalogueService struct {
	ServiceRepo ServiceRepository
	UserRepo    UserRepository
	Validate    *validator.Validate
	Clock       Clock
}

func NewCatalogueService(serviceRepo ServiceRepository, userRepo UserRepository, validate *validator.Validate, clock Clock) *DefaultCatalogueService {
	return &DefaultCatalogueService{ServiceRepo: serviceRepo, UserRepo: userRepo, Validate: validate, Clock: clock}
}

func (s *DefaultCatalogueService) GetServices(includeInactive bool) ([]*ServiceResponse, apierror.ErrorResponse) {
	svcs, err := s.ServiceRepo.FindAll(includeInactive)
	if err != nil {
		log.Errorf("failed to fetch services: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*ServiceResponse, len(svcs))
	for i, svc := range svcs {
		resp[i] = toServiceResponse(svc)
	}
	return resp, nil
}

func (s *DefaultCatalogueService) GetService(id string) (*ServiceResponse, apierror.ErrorResponse) {
	svc, err := s.ServiceRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch service %s: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if svc == nil {
		return nil, apierror.NotFoundError
	}
	return toServiceResponse(svc), nil
}

func (s *DefaultCatalogueService) CreateService(req *ServiceRequest, sub string) (*ServiceResponse, apierror.ErrorResponse) {
	if _, apierr := resolveAdmin(s.UserRepo, sub); apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	existing, err := s.ServiceRepo.FindByID(req.ID)
	if err != nil {
		log.Errorf("failed to fetch service %s: %v", req.ID, err)
		return nil, apierror.InternalServerError
	}
	if existing != nil {
		return nil, apierror.ServiceExistsError
	}

	now := s.Clock.millis()
	svc := &entity.Service{
		ID:              req.ID,
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		IsActive:        req.IsActive == nil || *req.IsActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.ServiceRepo.Save(svc); err != nil {
		log.Errorf("failed to create service %s: %v", req.ID, err)
		return nil, apierror.InternalServerError
	}
	return toServiceResponse(svc), nil
}

// UpdateService replaces every field but the id, which is taken from the path.
func (s *DefaultCatalogueService) UpdateService(id string, req *ServiceRequest, sub string) (*ServiceResponse, apierror.ErrorResponse) {
	if _, apierr := resolveAdmin(s.UserRepo, sub); apierr != nil {
		return nil, apierr
	}

	req.ID = id
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	svc, err := s.ServiceRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch service %s: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if svc == nil {
		return nil, apierror.NotFoundError
	}

	svc.Name = req.Name
	svc.Description = req.Description
	svc.DurationMinutes = req.DurationMinutes
	svc.Price = req.Price
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}
	svc.UpdatedAt = s.Clock.millis()
	if err := s.ServiceRepo.Save(svc); err != nil {
		log.Errorf("failed to update service %s: %v", id, err)
		return nil, apierror.InternalServerError
	}
	return toServiceResponse(svc), nil
}

// DeleteService retires the service. Past appointments keep pointing at it, so the row stays.
func (s *DefaultCatalogueService) DeleteService(id, sub string) apierror.ErrorResponse {
	if _, apierr := resolveAdmin(s.UserRepo, sub); apierr != nil {
		return apierr
	}

	svc, err := s.ServiceRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch service %s: %v", id, err)
		return apierror.InternalServerError
	}
	if svc == nil || !svc.IsActive {
		return apierror.NotFoundError
	}

	svc.IsActive = false
	svc.UpdatedAt = s.Clock.millis()
	if err := s.ServiceRepo.Save(svc); err != nil {
		log.Errorf("failed to retire service %s: %v", id, err)
		return apierror.InternalServerError
	}
	return nil
}

// lookupService returns the active catalogue entry for id, as the booking core sees it.
func lookupService(repo ServiceRepository, id string) (*booking.Service, apierror.ErrorResponse) {
	svc, err := repo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch service %s: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if svc == nil || !svc.IsActive {
		return nil, apierror.UnknownServiceError
	}
	return &booking.Service{ID: svc.ID, Name: svc.Name, DurationMinutes: svc.DurationMinutes, Price: svc.Price}, nil
}

func toServiceResponse(svc *entity.Service) *ServiceResponse {
	return &ServiceResponse{
		ID:              svc.ID,
		Name:            svc.Name,
		Description:     svc.Description,
		DurationMinutes: svc.DurationMinutes,
		Price:           svc.Price,
		IsActive:        svc.IsActive,
	}
}
