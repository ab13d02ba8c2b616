package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpochRoundTrip(t *testing.T) {
	millis, err := FromEpoch("2024-06-12T11:00:00Z")
	require.NoError(t, err)

	assert.Equal(t, "2024-06-12T11:00:00Z", FormatEpoch(millis))

	_, err = FromEpoch("tomorrow")
	assert.Error(t, err)
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-02", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), m)

	_, err = ParseMonth("02/2024", time.UTC)
	assert.Error(t, err)
}

func TestSanitize(t *testing.T) {
	req := struct {
		Name string
		Tags []string
		N    int
	}{Name: "  Ann ", Tags: []string{" a", "b "}, N: 3}

	Sanitize(&req)

	assert.Equal(t, "Ann", req.Name)
	assert.Equal(t, []string{"a", "b"}, req.Tags)
	assert.Panics(t, func() { Sanitize(req) })
}

func TestParseTokenDataCtx(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := ParseTokenDataCtx(c)
	assert.ErrorIs(t, err, ErrNoTokenData)

	c.Set(TokenDataKey, &TokenData{Sub: "abc", Email: "a@b.c"})
	data, err := ParseTokenDataCtx(c)
	require.NoError(t, err)
	assert.Equal(t, "abc", data.Sub)
}
