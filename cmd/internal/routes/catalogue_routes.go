package routes

import (
	"net/http"

	"nailbook/cmd/internal/service"
	"nailbook/cmd/internal/utils"
	"nailbook/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type CatalogueService interface {
	GetServices(includeInactive bool) ([]*service.ServiceResponse, apierror.ErrorResponse)
	GetService(id string) (*service.ServiceResponse, apierror.ErrorResponse)
	CreateService(req *service.ServiceRequest, sub string) (*service.ServiceResponse, apierror.ErrorResponse)
	UpdateService(id string, req *service.ServiceRequest, sub string) (*service.ServiceResponse, apierror.ErrorResponse)
	DeleteService(id, sub string) apierror.ErrorResponse
}

type DefaultCatalogueRoute struct {
	CatalogueService CatalogueService
}

func NewCatalogueDefault(catalogue CatalogueService) *DefaultCatalogueRoute {
	return &DefaultCatalogueRoute{CatalogueService: catalogue}
}

// GetServices lists the active catalogue, or every entry with ?all=true.
func (s *DefaultCatalogueRoute) GetServices(c echo.Context) error {
	services, apierr := s.CatalogueService.GetServices(c.QueryParam("all") == "true")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"services": services}
	return c.JSON(http.StatusOK, &resp)
}

func (s *DefaultCatalogueRoute) GetService(c echo.Context) error {
	svc, apierr := s.CatalogueService.GetService(c.Param("id"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, svc)
}

func (s *DefaultCatalogueRoute) CreateService(c echo.Context) error {
	var req service.ServiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	svc, apierr := s.CatalogueService.CreateService(&req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, svc)
}

func (s *DefaultCatalogueRoute) UpdateService(c echo.Context) error {
	var req service.ServiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	svc, apierr := s.CatalogueService.UpdateService(c.Param("id"), &req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, svc)
}

func (s *DefaultCatalogueRoute) DeleteService(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	if apierr := s.CatalogueService.DeleteService(c.Param("id"), data.Sub); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusOK)
}
