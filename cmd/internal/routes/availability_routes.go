package routes

import (
	"net/http"

	"nailbook/cmd/internal/service"
	"nailbook/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type AvailabilityService interface {
	GetDays() (*service.DaysResponse, apierror.ErrorResponse)
	GetSlots(rawDay, serviceID, rawDuration string) (*service.SlotsResponse, apierror.ErrorResponse)
}

type DefaultAvailabilityRoute struct {
	AvailabilityService AvailabilityService
}

func NewAvailabilityDefault(availability AvailabilityService) *DefaultAvailabilityRoute {
	return &DefaultAvailabilityRoute{AvailabilityService: availability}
}

func (a *DefaultAvailabilityRoute) GetDays(c echo.Context) error {
	days, apierr := a.AvailabilityService.GetDays()
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, days)
}

// GetSlots expects ?day=YYYY-MM-DD and either ?service=<id> or ?duration=<minutes>.
func (a *DefaultAvailabilityRoute) GetSlots(c echo.Context) error {
	day := c.QueryParam("day")
	if day == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("day"))
	}

	slots, apierr := a.AvailabilityService.GetSlots(day, c.QueryParam("service"), c.QueryParam("duration"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, slots)
}
