package service

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"nailbook/cmd/internal/booking"
	"nailbook/cmd/internal/domain/entity"
	"nailbook/cmd/internal/domain/sqlite"
	"nailbook/cmd/internal/domain/sqlite/repository"
	"nailbook/cmd/internal/integration/identity"
	"nailbook/cmd/internal/utils/validators"

	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db *gorm.DB

	users    *repository.DefaultUserRepository
	clients  *repository.DefaultClientRepository
	appts    *repository.DefaultAppointmentRepository
	services *repository.DefaultServiceRepository
	blocked  *repository.DefaultBlockedDateRepository

	rules booking.Rules
	clock Clock
	now   time.Time

	admin *entity.User
	ann   *entity.User
	bea   *entity.User

	blockedSvc     *DefaultBlockedDateService
	appointmentSvc *DefaultAppointmentService
	availability   *DefaultAvailabilityService
	catalogue      *DefaultCatalogueService
	clientSvc      *DefaultClientService
	calendar       *DefaultCalendarService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Init("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, sqlite.Seed(db, testNow.UnixMilli()))

	f := &fixture{
		db:       db,
		users:    repository.NewUserRepository(db),
		clients:  repository.NewClientRepository(db),
		appts:    repository.NewAppointmentRepository(db),
		services: repository.NewServiceRepository(db),
		blocked:  repository.NewBlockedDateRepository(db),
		now:      testNow,
	}
	f.clock = func() time.Time { return f.now }
	f.rules = booking.DefaultRules()
	f.rules.Location = time.UTC

	f.admin = f.addUser(t, "Nora", "nora@example.com", "admin-sub", true)
	f.ann = f.addUser(t, "Ann", "ann@example.com", "ann-sub", false)
	f.bea = f.addUser(t, "Bea", "bea@example.com", "bea-sub", false)

	validate := validators.New()
	f.blockedSvc = NewBlockedDateService(f.blocked, f.users, validate, f.clock)
	f.appointmentSvc = NewAppointmentService(f.appts, f.users, f.services, f.clients, f.blockedSvc, validate, f.rules, f.clock)
	f.availability = NewAvailabilityService(f.appts, f.services, f.blockedSvc, f.rules, f.clock)
	f.catalogue = NewCatalogueService(f.services, f.users, validate, f.clock)
	f.clientSvc = NewClientService(f.clients, f.users, f.appts, f.services, validate, f.clock, f.rules.DefaultDurationMinutes)
	f.calendar = NewCalendarService(f.appts, f.users, f.blockedSvc, f.rules, f.clock)
	return f
}

func (f *fixture) addUser(t *testing.T, name, email, sub string, admin bool) *entity.User {
	t.Helper()
	user := &entity.User{
		SubUUID:       sub,
		Username:      name,
		Email:         email,
		EmailVerified: true,
		IsAdmin:       admin,
		CreatedAt:     testNow.UnixMilli(),
		UpdatedAt:     testNow.UnixMilli(),
	}
	require.NoError(t, f.users.Save(user))
	return user
}

func (f *fixture) block(t *testing.T, day, recurrence string) *entity.BlockedDate {
	t.Helper()
	row := &entity.BlockedDate{Day: day, Reason: "Closed", Recurrence: recurrence, CreatedBy: f.admin.ID}
	require.NoError(t, f.blocked.Save(row))
	return row
}

// book creates an appointment for sub, failing the test on error.
func (f *fixture) book(t *testing.T, sub, serviceID, startsAt string) *AppointmentResponse {
	t.Helper()
	resp, apierr := f.appointmentSvc.CreateAppointment(&AppointmentRequest{ServiceID: serviceID, StartsAt: startsAt}, sub)
	require.Nil(t, apierr)
	return resp
}

// at formats a UTC wall time on day as the RFC3339 string requests carry.
func at(day string, hour, minute int) string {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return d.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute).Format(time.RFC3339)
}

func itoa(id int) string { return strconv.Itoa(id) }

// fakeIDP answers like Cognito would, from canned errors.
type fakeIDP struct {
	signUpErr  error
	signInErr  error
	confirmErr error
	forgotErr  error
	resetErr   error

	signedUp []string
	deleted  []string
}

func apiError(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: code}
}

func (p *fakeIDP) SignUp(_ context.Context, user *identity.User) (string, error) {
	if p.signUpErr != nil {
		return "", p.signUpErr
	}
	p.signedUp = append(p.signedUp, user.Email)
	return fmt.Sprintf("sub-%d", len(p.signedUp)), nil
}

func (p *fakeIDP) SignIn(context.Context, *identity.UserLogin) (*identity.AuthCreate, error) {
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	return &identity.AuthCreate{AccessToken: "access", IDToken: "id", ExpiresIn: 3600}, nil
}

func (p *fakeIDP) ConfirmAccount(context.Context, *identity.UserConfirmation) error {
	return p.confirmErr
}

func (p *fakeIDP) ForgotPassword(context.Context, string) error {
	return p.forgotErr
}

func (p *fakeIDP) ConfirmForgotPassword(context.Context, *identity.PasswordReset) error {
	return p.resetErr
}

func (p *fakeIDP) AdminDeleteUser(_ context.Context, email string) error {
	p.deleted = append(p.deleted, email)
	return nil
}
