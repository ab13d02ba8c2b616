package localidp

import (
	"context"
	"strings"
	"testing"
	"time"

	"nailbook/cmd/internal/domain/entity"
	"nailbook/cmd/internal/integration/identity"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCreds struct {
	byEmail map[string]*entity.Credential
}

func newMemCreds() *memCreds { return &memCreds{byEmail: map[string]*entity.Credential{}} }

func (m *memCreds) FindByEmail(email string) (*entity.Credential, error) {
	c, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memCreds) Save(cred *entity.Credential) error {
	cp := *cred
	m.byEmail[cred.Email] = &cp
	return nil
}

func (m *memCreds) DeleteByEmail(email string) error {
	delete(m.byEmail, email)
	return nil
}

type stubIssuer struct{}

func (stubIssuer) Issue(sub, _, use string) (string, error) { return use + ":" + sub, nil }

func errorCode(t *testing.T, err error) string {
	t.Helper()
	var apiErr smithy.APIError
	require.ErrorAs(t, err, &apiErr)
	return apiErr.ErrorCode()
}

func TestSignupConfirmLogin(t *testing.T) {
	creds := newMemCreds()
	p := New(creds, stubIssuer{}, time.Hour)
	ctx := context.Background()

	sub, err := p.SignUp(ctx, &identity.User{Email: " Ann@Example.com ", Password: "Pa55word!"})
	require.NoError(t, err)
	require.NotEmpty(t, sub)

	_, err = p.SignUp(ctx, &identity.User{Email: "ann@example.com", Password: "Pa55word!"})
	assert.Equal(t, "UsernameExistsException", errorCode(t, err))

	_, err = p.SignIn(ctx, &identity.UserLogin{Email: "ann@example.com", Password: "Pa55word!"})
	assert.Equal(t, "UserNotConfirmedException", errorCode(t, err))

	err = p.ConfirmAccount(ctx, &identity.UserConfirmation{Email: "ann@example.com", Code: "not-it"})
	assert.Equal(t, "CodeMismatchException", errorCode(t, err))

	code := creds.byEmail["ann@example.com"].ConfirmCode
	require.Len(t, code, 6)
	require.NoError(t, p.ConfirmAccount(ctx, &identity.UserConfirmation{Email: "ann@example.com", Code: code}))

	_, err = p.SignIn(ctx, &identity.UserLogin{Email: "ann@example.com", Password: "wrong"})
	assert.Equal(t, "NotAuthorizedException", errorCode(t, err))

	auth, err := p.SignIn(ctx, &identity.UserLogin{Email: "ann@example.com", Password: "Pa55word!"})
	require.NoError(t, err)
	assert.Equal(t, "access:"+sub, auth.AccessToken)
	assert.Equal(t, "id:"+sub, auth.IDToken)
	assert.Equal(t, int32(3600), auth.ExpiresIn)

	_, err = p.SignIn(ctx, &identity.UserLogin{Email: "nobody@example.com", Password: "x"})
	assert.Equal(t, "UserNotFoundException", errorCode(t, err))
}

func TestPasswordReset(t *testing.T) {
	creds := newMemCreds()
	p := New(creds, stubIssuer{}, time.Hour)
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := p.SignUp(ctx, &identity.User{Email: "ann@example.com", Password: "Pa55word!"})
	require.NoError(t, err)
	require.NoError(t, p.ForgotPassword(ctx, "ann@example.com"))
	code := creds.byEmail["ann@example.com"].ResetCode

	err = p.ConfirmForgotPassword(ctx, &identity.PasswordReset{Email: "ann@example.com", Code: strings.Repeat("9", 7), NewPassword: "N3w!password"})
	assert.Equal(t, "CodeMismatchException", errorCode(t, err))

	now = now.Add(2 * time.Hour)
	err = p.ConfirmForgotPassword(ctx, &identity.PasswordReset{Email: "ann@example.com", Code: code, NewPassword: "N3w!password"})
	assert.Equal(t, "ExpiredCodeException", errorCode(t, err))

	require.NoError(t, p.ForgotPassword(ctx, "ann@example.com"))
	code = creds.byEmail["ann@example.com"].ResetCode
	require.NoError(t, p.ConfirmForgotPassword(ctx, &identity.PasswordReset{Email: "ann@example.com", Code: code, NewPassword: "N3w!password"}))

	_, err = p.SignIn(ctx, &identity.UserLogin{Email: "ann@example.com", Password: "N3w!password"})
	assert.NoError(t, err)

	require.NoError(t, p.AdminDeleteUser(ctx, "ann@example.com"))
	assert.Empty(t, creds.byEmail)
}
