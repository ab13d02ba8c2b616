package auth

import (
	"net/http"
	"strings"

	"nailbook/cmd/internal/utils"
	"nailbook/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

// Middleware rejects requests without a valid bearer token and stores the caller's
// TokenData in the echo context.
func Middleware(v Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
			}

			data, err := v.Verify(strings.TrimSpace(token))
			if err != nil {
				c.Logger().Debugf("rejected token: %v", err)
				return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
			}

			c.Set(utils.TokenDataKey, data)
			return next(c)
		}
	}
}
