package routes

import (
	"net/http"

	"nailbook/cmd/internal/service"
	"nailbook/cmd/internal/utils"
	"nailbook/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type BlockedDateService interface {
	GetBlockedDates() ([]*service.BlockedDateResponse, apierror.ErrorResponse)
	GetBlockedRange(rawStart, rawEnd string) ([]*service.BlockedDateResponse, apierror.ErrorResponse)
	GetBlockedMonth(rawYear, rawMonth string) ([]*service.BlockedDateResponse, apierror.ErrorResponse)
	CheckDay(rawDay string) (*service.BlockedCheckResponse, apierror.ErrorResponse)
	CreateBlockedDate(req *service.BlockedDateRequest, sub string) (*service.BlockedDateResponse, apierror.ErrorResponse)
	UpdateBlockedDate(id int, req *service.BlockedDateRequest, sub string) (*service.BlockedDateResponse, apierror.ErrorResponse)
	DeleteBlockedDate(id int, sub string) apierror.ErrorResponse
	DeleteBlockedDay(rawDay, sub string) apierror.ErrorResponse
}

type DefaultBlockedDateRoute struct {
	BlockedDateService BlockedDateService
}

func NewBlockedDateDefault(blocked BlockedDateService) *DefaultBlockedDateRoute {
	return &DefaultBlockedDateRoute{BlockedDateService: blocked}
}

func (b *DefaultBlockedDateRoute) GetBlockedDates(c echo.Context) error {
	dates, apierr := b.BlockedDateService.GetBlockedDates()
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"blocked_dates": dates}
	return c.JSON(http.StatusOK, &resp)
}

func (b *DefaultBlockedDateRoute) GetBlockedRange(c echo.Context) error {
	start, end := c.QueryParam("start"), c.QueryParam("end")
	if start == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("start"))
	}
	if end == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("end"))
	}

	dates, apierr := b.BlockedDateService.GetBlockedRange(start, end)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"blocked_dates": dates}
	return c.JSON(http.StatusOK, &resp)
}

func (b *DefaultBlockedDateRoute) GetBlockedMonth(c echo.Context) error {
	dates, apierr := b.BlockedDateService.GetBlockedMonth(c.Param("year"), c.Param("month"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"blocked_dates": dates}
	return c.JSON(http.StatusOK, &resp)
}

func (b *DefaultBlockedDateRoute) CheckDay(c echo.Context) error {
	check, apierr := b.BlockedDateService.CheckDay(c.Param("date"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, check)
}

func (b *DefaultBlockedDateRoute) CreateBlockedDate(c echo.Context) error {
	var req service.BlockedDateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	blocked, apierr := b.BlockedDateService.CreateBlockedDate(&req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, blocked)
}

func (b *DefaultBlockedDateRoute) UpdateBlockedDate(c echo.Context) error {
	id, apierr := intParam(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	var req service.BlockedDateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	blocked, apierr := b.BlockedDateService.UpdateBlockedDate(id, &req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, blocked)
}

func (b *DefaultBlockedDateRoute) DeleteBlockedDate(c echo.Context) error {
	id, apierr := intParam(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	if apierr := b.BlockedDateService.DeleteBlockedDate(id, data.Sub); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusOK)
}

func (b *DefaultBlockedDateRoute) DeleteBlockedDay(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	if apierr := b.BlockedDateService.DeleteBlockedDay(c.Param("date"), data.Sub); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusOK)
}
