package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(c echo.Context) error { return c.NoContent(http.StatusOK) }

func hit(e *echo.Echo, ip string) int {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = ip + ":1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimiter_PerIP(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	e := echo.New()
	e.POST("/login", ok, rl.Middleware())

	assert.Equal(t, http.StatusOK, hit(e, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit(e, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit(e, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit(e, "10.0.0.2"))
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.get("10.0.0.1")

	now = now.Add(5 * time.Minute)
	rl.Sweep()

	assert.Empty(t, rl.visitors)
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", ok)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	id := rec.Header().Get(echo.HeaderXRequestID)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
}
