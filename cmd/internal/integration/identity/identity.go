package identity

import "context"

type User struct {
	Email    string
	Password string
}

type UserLogin struct {
	Email    string
	Password string
}

type UserConfirmation struct {
	Email string
	Code  string
}

type PasswordReset struct {
	Email       string
	Code        string
	NewPassword string
}

type AuthCreate struct {
	AccessToken string
	IDToken     string
	ExpiresIn   int32
}

// Provider is an external account store. Failures are reported as smithy.APIError with
// Cognito's exception names, whichever implementation is behind it.
type Provider interface {
	SignUp(ctx context.Context, user *User) (string, error)
	SignIn(ctx context.Context, login *UserLogin) (*AuthCreate, error)
	ConfirmAccount(ctx context.Context, confirm *UserConfirmation) error
	ForgotPassword(ctx context.Context, email string) error
	ConfirmForgotPassword(ctx context.Context, reset *PasswordReset) error
	AdminDeleteUser(ctx context.Context, email string) error
}
