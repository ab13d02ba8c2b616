package utils

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// TokenDataKey is the echo context key the auth middleware stores TokenData under.
const TokenDataKey = "token_data"

var ErrNoTokenData = errors.New("no token data in context")

// TokenData is what a verified bearer token tells us about the caller.
type TokenData struct {
	Sub   string
	Email string
}

func ParseTokenDataCtx(c echo.Context) (*TokenData, error) {
	data, ok := c.Get(TokenDataKey).(*TokenData)
	if !ok || data == nil || data.Sub == "" {
		return nil, ErrNoTokenData
	}
	return data, nil
}

func FormatEpoch(millis int64) string {
	return time.UnixMilli(millis).UTC().Format(time.RFC3339)
}

func NowUTC() int64 {
	return time.Now().UTC().UnixMilli()
}

func FromEpoch(rfc string) (int64, error) {
	t, err := time.Parse(time.RFC3339, rfc)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

// ParseMonth takes "YYYY-MM" and returns the first day of that month in loc.
func ParseMonth(month string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01", month, loc)
	if err != nil {
		return time.Time{}, errors.New("invalid month format, expected YYYY-MM")
	}
	return t, nil
}

// Sanitize trims every string field (and string slice element) of the struct o points to.
func Sanitize(o any) {
	v := reflect.ValueOf(o)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		panic("sanitize: expected pointer to struct")
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		panic("sanitize: expected struct")
	}

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		switch field.Kind() {
		case reflect.String:
			field.SetString(strings.TrimSpace(field.String()))
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				for j := 0; j < field.Len(); j++ {
					field.Index(j).SetString(strings.TrimSpace(field.Index(j).String()))
				}
			}
		}
	}
}
