package routes

import (
	"net/http"

	"nailbook/cmd/internal/service"
	"nailbook/cmd/internal/utils"
	"nailbook/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

const calendarMIME = "text/calendar; charset=utf-8"

type CalendarService interface {
	GetCalendar(month, sub string) (*service.CalendarResponse, apierror.ErrorResponse)
	ExportICS(sub string) (string, apierror.ErrorResponse)
}

type DefaultCalendarRoute struct {
	CalendarService CalendarService
}

func NewCalendarDefault(calendar CalendarService) *DefaultCalendarRoute {
	return &DefaultCalendarRoute{CalendarService: calendar}
}

func (r *DefaultCalendarRoute) GetCalendar(c echo.Context) error {
	month := c.QueryParam("month") // "2025-08"
	if month == "" {
		return c.JSON(400, apierror.NewMissingParamError("month"))
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	calendar, apierr := r.CalendarService.GetCalendar(month, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, &calendar)
}

func (r *DefaultCalendarRoute) ExportICS(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	feed, apierr := r.CalendarService.ExportICS(data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="nailbook.ics"`)
	return c.Blob(http.StatusOK, calendarMIME, []byte(feed))
}
