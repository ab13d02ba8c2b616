package localidp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"nailbook/cmd/internal/domain/entity"
	"nailbook/cmd/internal/integration/identity"

	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"golang.org/x/crypto/bcrypt"
)

const resetCodeTTL = time.Hour

type CredentialRepository interface {
	FindByEmail(email string) (*entity.Credential, error)
	Save(cred *entity.Credential) error
	DeleteByEmail(email string) error
}

type TokenIssuer interface {
	Issue(sub, email, use string) (string, error)
}

// Provider keeps accounts in our own database. It reports failures with the same
// exception names as Cognito so callers handle both alike. Codes are written to the log
// since no mail is sent.
type Provider struct {
	creds  CredentialRepository
	tokens TokenIssuer
	ttl    time.Duration
	now    func() time.Time
}

func New(creds CredentialRepository, tokens TokenIssuer, ttl time.Duration) *Provider {
	return &Provider{creds: creds, tokens: tokens, ttl: ttl, now: time.Now}
}

func apiError(code, msg string) error {
	return &smithy.GenericAPIError{Code: code, Message: msg, Fault: smithy.FaultClient}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *Provider) SignUp(_ context.Context, user *identity.User) (string, error) {
	email := normalizeEmail(user.Email)
	existing, err := p.creds.FindByEmail(email)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", apiError("UsernameExistsException", "an account with the given email already exists")
	}
	if len(user.Password) < 8 {
		return "", apiError("InvalidPasswordException", "password is too short")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", apiError("InvalidPasswordException", err.Error())
	}
	code, err := newCode()
	if err != nil {
		return "", err
	}

	now := p.now().UTC().UnixMilli()
	cred := &entity.Credential{
		Sub:          uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		ConfirmCode:  code,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.creds.Save(cred); err != nil {
		return "", err
	}
	log.Infof("confirmation code for %s: %s", email, code)
	return cred.Sub, nil
}

func (p *Provider) SignIn(_ context.Context, login *identity.UserLogin) (*identity.AuthCreate, error) {
	cred, err := p.creds.FindByEmail(normalizeEmail(login.Email))
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, apiError("UserNotFoundException", "user does not exist")
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(login.Password)) != nil {
		return nil, apiError("NotAuthorizedException", "incorrect username or password")
	}
	if !cred.Confirmed {
		return nil, apiError("UserNotConfirmedException", "user is not confirmed")
	}

	access, err := p.tokens.Issue(cred.Sub, cred.Email, "access")
	if err != nil {
		return nil, err
	}
	id, err := p.tokens.Issue(cred.Sub, cred.Email, "id")
	if err != nil {
		return nil, err
	}
	return &identity.AuthCreate{AccessToken: access, IDToken: id, ExpiresIn: int32(p.ttl.Seconds())}, nil
}

func (p *Provider) ConfirmAccount(_ context.Context, confirm *identity.UserConfirmation) error {
	cred, err := p.creds.FindByEmail(normalizeEmail(confirm.Email))
	if err != nil {
		return err
	}
	if cred == nil {
		return apiError("UserNotFoundException", "user does not exist")
	}
	if cred.Confirmed {
		return apiError("NotAuthorizedException", "user cannot be confirmed, current status is CONFIRMED")
	}
	if cred.ConfirmCode == "" || cred.ConfirmCode != confirm.Code {
		return apiError("CodeMismatchException", "invalid verification code provided")
	}

	cred.Confirmed = true
	cred.ConfirmCode = ""
	cred.UpdatedAt = p.now().UTC().UnixMilli()
	return p.creds.Save(cred)
}

func (p *Provider) ForgotPassword(_ context.Context, email string) error {
	cred, err := p.creds.FindByEmail(normalizeEmail(email))
	if err != nil {
		return err
	}
	if cred == nil {
		return apiError("UserNotFoundException", "user does not exist")
	}
	code, err := newCode()
	if err != nil {
		return err
	}

	now := p.now().UTC()
	cred.ResetCode = code
	cred.ResetExpiresAt = now.Add(resetCodeTTL).UnixMilli()
	cred.UpdatedAt = now.UnixMilli()
	if err := p.creds.Save(cred); err != nil {
		return err
	}
	log.Infof("password reset code for %s: %s", cred.Email, code)
	return nil
}

func (p *Provider) ConfirmForgotPassword(_ context.Context, reset *identity.PasswordReset) error {
	cred, err := p.creds.FindByEmail(normalizeEmail(reset.Email))
	if err != nil {
		return err
	}
	if cred == nil {
		return apiError("UserNotFoundException", "user does not exist")
	}
	if cred.ResetCode == "" || cred.ResetCode != reset.Code {
		return apiError("CodeMismatchException", "invalid verification code provided")
	}
	now := p.now().UTC()
	if now.UnixMilli() > cred.ResetExpiresAt {
		return apiError("ExpiredCodeException", "verification code has expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reset.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apiError("InvalidPasswordException", err.Error())
	}
	cred.PasswordHash = string(hash)
	cred.ResetCode = ""
	cred.ResetExpiresAt = 0
	// a reset proves ownership of the mailbox
	cred.Confirmed = true
	cred.UpdatedAt = now.UnixMilli()
	return p.creds.Save(cred)
}

func (p *Provider) AdminDeleteUser(_ context.Context, email string) error {
	return p.creds.DeleteByEmail(normalizeEmail(email))
}

// newCode returns a six digit numeric code.
func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
