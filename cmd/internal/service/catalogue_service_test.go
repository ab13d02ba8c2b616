package service

import (
	"testing"

	"nailbook/cmd/internal/utils/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetServices_SeededCatalogue(t *testing.T) {
	f := newFixture(t)

	svcs, apierr := f.catalogue.GetServices(false)

	require.Nil(t, apierr)
	require.Len(t, svcs, 6)
	assert.Equal(t, "full-set", svcs[0].ID)
	assert.Equal(t, 45.0, svcs[0].Price)

	svc, apierr := f.catalogue.GetService("manicure")
	require.Nil(t, apierr)
	assert.Equal(t, 45, svc.DurationMinutes)

	_, apierr = f.catalogue.GetService("facial")
	assert.Equal(t, apierror.NotFoundError, apierr)
}

func TestCreateService(t *testing.T) {
	f := newFixture(t)
	inactive := false
	req := &ServiceRequest{ID: "french-tips", Name: " French Tips ", DurationMinutes: 60, Price: 30, IsActive: &inactive}

	resp, apierr := f.catalogue.CreateService(req, "admin-sub")
	require.Nil(t, apierr)
	assert.Equal(t, "French Tips", resp.Name)
	assert.False(t, resp.IsActive)

	stored, err := f.services.FindByID("french-tips")
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	_, apierr = f.catalogue.CreateService(&ServiceRequest{ID: "french-tips", Name: "Again", DurationMinutes: 60, Price: 30}, "admin-sub")
	assert.Equal(t, apierror.ServiceExistsError, apierr)

	_, apierr = f.catalogue.CreateService(&ServiceRequest{ID: "Bad Id", Name: "Bad", DurationMinutes: 10, Price: 0}, "admin-sub")
	require.NotNil(t, apierr)
	assert.Equal(t, 400, apierr.Code())

	_, apierr = f.catalogue.CreateService(&ServiceRequest{ID: "other", Name: "Other", DurationMinutes: 60, Price: 10}, "ann-sub")
	assert.Equal(t, apierror.ForbiddenError, apierr)
}

func TestUpdateService(t *testing.T) {
	f := newFixture(t)

	resp, apierr := f.catalogue.UpdateService("refill", &ServiceRequest{ID: "ignored", Name: "Refill", DurationMinutes: 75, Price: 38}, "admin-sub")

	require.Nil(t, apierr)
	assert.Equal(t, "refill", resp.ID)
	assert.Equal(t, 75, resp.DurationMinutes)
	assert.True(t, resp.IsActive)

	_, apierr = f.catalogue.UpdateService("facial", &ServiceRequest{Name: "Facial", DurationMinutes: 60, Price: 50}, "admin-sub")
	assert.Equal(t, apierror.NotFoundError, apierr)
}

func TestDeleteService_RetiresIt(t *testing.T) {
	f := newFixture(t)

	require.Nil(t, f.catalogue.DeleteService("nail-art", "admin-sub"))
	assert.Equal(t, apierror.NotFoundError, f.catalogue.DeleteService("nail-art", "admin-sub"))

	active, apierr := f.catalogue.GetServices(false)
	require.Nil(t, apierr)
	assert.Len(t, active, 5)

	all, apierr := f.catalogue.GetServices(true)
	require.Nil(t, apierr)
	assert.Len(t, all, 6)

	_, apierr = f.appointmentSvc.CreateAppointment(&AppointmentRequest{ServiceID: "nail-art", StartsAt: at("2024-06-12", 11, 0)}, "ann-sub")
	assert.Equal(t, apierror.UnknownServiceError, apierr)
}
