package service

import (
	"testing"
	"time"

	"nailbook/cmd/internal/domain/entity"
	"nailbook/cmd/internal/utils/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClientRequest(name, email string) *ClientRequest {
	return &ClientRequest{Name: name, Email: email, Phone: "+31 612345678"}
}

func TestCreateClient(t *testing.T) {
	f := newFixture(t)

	resp, apierr := f.clientSvc.CreateClient(newClientRequest("Ann", "Ann@Example.com"), "admin-sub")

	require.Nil(t, apierr)
	assert.Equal(t, "ann@example.com", resp.Email)
	assert.Equal(t, []string{RoleUser}, resp.Roles)
	require.NotNil(t, resp.UserID, "client must be linked to the account with the same email")
	assert.Equal(t, f.ann.ID, *resp.UserID)

	_, apierr = f.clientSvc.CreateClient(newClientRequest("Ann Again", "ann@example.com"), "admin-sub")
	assert.Equal(t, apierror.ClientExistsError, apierr)

	_, apierr = f.clientSvc.CreateClient(newClientRequest("Dee", "dee@example.com"), "ann-sub")
	assert.Equal(t, apierror.ForbiddenError, apierr)

	bad := newClientRequest("D3e", "dee@example.com")
	bad.Preferences = &ClientPreferencesRequest{PreferredTimes: []string{"9am"}}
	_, apierr = f.clientSvc.CreateClient(bad, "admin-sub")
	require.NotNil(t, apierr)
	assert.Equal(t, 400, apierr.Code())
}

func TestUpdateClient_KeepsRolesWhenOmitted(t *testing.T) {
	f := newFixture(t)
	req := newClientRequest("Dee", "dee@example.com")
	req.Roles = []string{RoleUser, RoleAdmin}
	created, apierr := f.clientSvc.CreateClient(req, "admin-sub")
	require.Nil(t, apierr)

	update := newClientRequest("Dee Dee", "dee@example.com")
	update.Preferences = &ClientPreferencesRequest{FavoriteServices: []string{"refill"}, PreferredTimes: []string{"11:00"}}
	resp, apierr := f.clientSvc.UpdateClient(created.ID, update, "admin-sub")

	require.Nil(t, apierr)
	assert.Equal(t, "Dee Dee", resp.Name)
	assert.Equal(t, []string{RoleUser, RoleAdmin}, resp.Roles)
	assert.Equal(t, []string{"refill"}, resp.Preferences.FavoriteServices)

	_, apierr = f.clientSvc.CreateClient(newClientRequest("Eve", "eve@example.com"), "admin-sub")
	require.Nil(t, apierr)
	_, apierr = f.clientSvc.UpdateClient(created.ID, newClientRequest("Dee", "eve@example.com"), "admin-sub")
	assert.Equal(t, apierror.ClientExistsError, apierr)
}

func TestSetBanned(t *testing.T) {
	f := newFixture(t)
	ann, apierr := f.clientSvc.CreateClient(newClientRequest("Ann", "ann@example.com"), "admin-sub")
	require.Nil(t, apierr)
	nora, apierr := f.clientSvc.CreateClient(newClientRequest("Nora", "nora@example.com"), "admin-sub")
	require.Nil(t, apierr)

	banned := true
	resp, apierr := f.clientSvc.SetBanned(ann.ID, &BanRequest{Banned: &banned, Reason: "No-shows"}, "admin-sub")
	require.Nil(t, apierr)
	assert.True(t, resp.IsBanned)
	assert.Contains(t, resp.Notes, "Banned: No-shows")

	_, apierr = f.appointmentSvc.CreateAppointment(&AppointmentRequest{ServiceID: "refill", StartsAt: at("2024-06-12", 11, 0)}, "ann-sub")
	assert.Equal(t, apierror.UserBannedError, apierr)

	_, apierr = f.clientSvc.SetBanned(nora.ID, &BanRequest{Banned: &banned}, "admin-sub")
	require.NotNil(t, apierr)
	assert.Equal(t, 400, apierr.Code())

	_, apierr = f.clientSvc.SetBanned(ann.ID, &BanRequest{}, "admin-sub")
	require.NotNil(t, apierr)
	assert.Equal(t, 400, apierr.Code())
}

func TestSetRoles_MirrorsAdminFlag(t *testing.T) {
	f := newFixture(t)
	ann, apierr := f.clientSvc.CreateClient(newClientRequest("Ann", "ann@example.com"), "admin-sub")
	require.Nil(t, apierr)
	nora, apierr := f.clientSvc.CreateClient(newClientRequest("Nora", "nora@example.com"), "admin-sub")
	require.Nil(t, apierr)

	resp, apierr := f.clientSvc.SetRoles(ann.ID, &RolesRequest{Roles: []string{RoleUser, RoleAdmin}}, "admin-sub")
	require.Nil(t, apierr)
	assert.Equal(t, []string{RoleUser, RoleAdmin}, resp.Roles)

	user, err := f.users.FindByID(f.ann.ID)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)

	_, apierr = f.clientSvc.SetRoles(nora.ID, &RolesRequest{Roles: []string{RoleUser}}, "admin-sub")
	require.NotNil(t, apierr)
	assert.Equal(t, 400, apierr.Code())

	_, apierr = f.clientSvc.SetRoles(nora.ID, &RolesRequest{Roles: []string{"owner"}}, "admin-sub")
	require.NotNil(t, apierr)
	assert.Equal(t, 400, apierr.Code())
}

func TestClientStats(t *testing.T) {
	f := newFixture(t)
	ann, apierr := f.clientSvc.CreateClient(newClientRequest("Ann", "ann@example.com"), "admin-sub")
	require.Nil(t, apierr)

	f.book(t, "ann-sub", "refill", at("2024-06-12", 11, 0))
	f.book(t, "ann-sub", "refill", at("2024-06-13", 11, 0))
	f.book(t, "ann-sub", "manicure", at("2024-06-14", 11, 0))
	f.book(t, "bea-sub", "full-set", at("2024-06-12", 14, 0))

	// two of Ann's visits are in the past once the clock moves on
	f.now = time.Date(2024, 6, 13, 18, 0, 0, 0, time.UTC)

	history, apierr := f.clientSvc.GetClientHistory(ann.ID, "admin-sub")
	require.Nil(t, apierr)
	assert.Equal(t, 3, history.Stats.TotalAppointments)
	assert.Equal(t, 1, history.Stats.UpcomingAppointments)
	assert.Equal(t, 70.0, history.Stats.TotalSpent)
	assert.Equal(t, "refill", history.Stats.FavoriteService)
	assert.Equal(t, "2024-06-13T11:00:00Z", history.Stats.LastVisit)
	require.Len(t, history.Appointments, 3)
	assert.Equal(t, "2024-06-14T11:00:00Z", history.Appointments[0].StartsAt)

	all, apierr := f.clientSvc.GetClientsWithStats("admin-sub")
	require.Nil(t, apierr)
	require.Len(t, all, 1)
	assert.Equal(t, 3, all[0].Stats.TotalAppointments)
}

func TestDeleteClient(t *testing.T) {
	f := newFixture(t)
	created, apierr := f.clientSvc.CreateClient(newClientRequest("Dee", "dee@example.com"), "admin-sub")
	require.Nil(t, apierr)

	require.Nil(t, f.clientSvc.DeleteClient(created.ID, "admin-sub"))
	_, apierr = f.clientSvc.GetClient(created.ID, "admin-sub")
	assert.Equal(t, apierror.NotFoundError, apierr)

	clients, apierr := f.clientSvc.GetClients("admin-sub")
	require.Nil(t, apierr)
	assert.Empty(t, clients)
}

func TestAppointmentsOf(t *testing.T) {
	userID, clientID := 7, 3
	client := &entity.Client{ID: clientID, UserID: &userID, Email: "ann@example.com"}
	other := 9
	appts := []*entity.Appointment{
		{ID: 1, UserID: userID, StartsAt: 100},
		{ID: 2, UserID: 1, ClientID: &clientID, StartsAt: 300},
		{ID: 3, UserID: 1, StartsAt: 200, Attendees: []entity.Attendee{{Email: "ANN@example.com"}}},
		{ID: 4, UserID: userID, ClientID: &other, StartsAt: 400},
		{ID: 5, UserID: 2, StartsAt: 500},
	}

	got := appointmentsOf(client, appts)

	ids := make([]int, len(got))
	for i, a := range got {
		ids[i] = a.ID
	}
	assert.Equal(t, []int{2, 3, 1}, ids)
}
