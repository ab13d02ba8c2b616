package routes

import (
	"net/http"

	"nailbook/cmd/internal/service"
	"nailbook/cmd/internal/utils"
	"nailbook/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type ClientService interface {
	GetClients(sub string) ([]*service.ClientResponse, apierror.ErrorResponse)
	GetClient(id int, sub string) (*service.ClientResponse, apierror.ErrorResponse)
	CreateClient(req *service.ClientRequest, sub string) (*service.ClientResponse, apierror.ErrorResponse)
	UpdateClient(id int, req *service.ClientRequest, sub string) (*service.ClientResponse, apierror.ErrorResponse)
	DeleteClient(id int, sub string) apierror.ErrorResponse
	SetBanned(id int, req *service.BanRequest, sub string) (*service.ClientResponse, apierror.ErrorResponse)
	SetRoles(id int, req *service.RolesRequest, sub string) (*service.ClientResponse, apierror.ErrorResponse)
	GetClientHistory(id int, sub string) (*service.ClientHistoryResponse, apierror.ErrorResponse)
	GetClientsWithStats(sub string) ([]*service.ClientWithStatsResponse, apierror.ErrorResponse)
}

type DefaultClientRoute struct {
	ClientService ClientService
}

func NewClientDefault(clients ClientService) *DefaultClientRoute {
	return &DefaultClientRoute{ClientService: clients}
}

func (r *DefaultClientRoute) GetClients(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	clients, apierr := r.ClientService.GetClients(data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"clients": clients}
	return c.JSON(http.StatusOK, &resp)
}

func (r *DefaultClientRoute) GetClientsWithStats(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	clients, apierr := r.ClientService.GetClientsWithStats(data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"clients": clients}
	return c.JSON(http.StatusOK, &resp)
}

func (r *DefaultClientRoute) GetClient(c echo.Context) error {
	id, apierr := intParam(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	client, apierr := r.ClientService.GetClient(id, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, client)
}

func (r *DefaultClientRoute) GetClientHistory(c echo.Context) error {
	id, apierr := intParam(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	history, apierr := r.ClientService.GetClientHistory(id, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, history)
}

func (r *DefaultClientRoute) CreateClient(c echo.Context) error {
	var req service.ClientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	client, apierr := r.ClientService.CreateClient(&req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, client)
}

func (r *DefaultClientRoute) UpdateClient(c echo.Context) error {
	id, apierr := intParam(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	var req service.ClientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	client, apierr := r.ClientService.UpdateClient(id, &req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, client)
}

func (r *DefaultClientRoute) DeleteClient(c echo.Context) error {
	id, apierr := intParam(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	if apierr := r.ClientService.DeleteClient(id, data.Sub); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusOK)
}

func (r *DefaultClientRoute) SetBanned(c echo.Context) error {
	id, apierr := intParam(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	var req service.BanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	client, apierr := r.ClientService.SetBanned(id, &req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, client)
}

func (r *DefaultClientRoute) SetRoles(c echo.Context) error {
	id, apierr := intParam(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	var req service.RolesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	client, apierr := r.ClientService.SetRoles(id, &req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, client)
}
