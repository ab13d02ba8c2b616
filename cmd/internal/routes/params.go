package routes

import (
	"strconv"
	"strings"

	"nailbook/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

func intParam(c echo.Context, name string) (int, apierror.ErrorResponse) {
	raw := strings.TrimSpace(c.Param(name))
	if raw == "" {
		return 0, apierror.NewMissingParamError(name)
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierror.NewInvalidParamTypeError(name, "int32")
	}
	return id, nil
}
