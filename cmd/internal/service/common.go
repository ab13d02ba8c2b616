package service

import (
	"time"

	"nailbook/cmd/internal/domain/entity"
	"nailbook/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
)

// Clock returns the current instant. Services take one so tests can pin "now".
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

func (c Clock) millis() int64 {
	return c.now().UTC().UnixMilli()
}

// resolveCaller loads the user behind a token sub. A sub with no local user is a stale
// or foreign token.
func resolveCaller(users UserRepository, sub string) (*entity.User, apierror.ErrorResponse) {
	caller, err := users.FindBySub(sub)
	if err != nil {
		log.Errorf("failed to fetch user %s: %v", sub, err)
		return nil, apierror.InternalServerError
	}
	if caller == nil {
		return nil, apierror.InvalidAuthTokenError
	}
	return caller, nil
}

func resolveAdmin(users UserRepository, sub string) (*entity.User, apierror.ErrorResponse) {
	caller, apierr := resolveCaller(users, sub)
	if apierr != nil {
		return nil, apierr
	}
	if !caller.IsAdmin {
		return nil, apierror.ForbiddenError
	}
	return caller, nil
}
