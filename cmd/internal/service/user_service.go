package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"nailbook/cmd/internal/domain/entity"
	"nailbook/cmd/internal/integration/identity"
	"nailbook/cmd/internal/utils"
	"nailbook/cmd/internal/utils/apierror"

	"github.com/aws/smithy-go"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type UserRepository interface {
	FindByID(id int) (*entity.User, error)
	FindBySub(sub string) (*entity.User, error)
	FindAll() ([]*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
	ExistsByEmail(email string) (bool, error)
	Count() (int64, error)
	Save(user *entity.User) error
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=2,max=50,personname"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Phone    string `json:"phone" validate:"omitempty,min=8,max=15,phone"`
	Password string `json:"password" validate:"required,min=8,max=64,hasspecial,hasdigit,hasupper,haslower"`
}

type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=64"`
}

type ConfirmSignupRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,min=1,max=6"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"code" validate:"required,min=1,max=6"`
	Password string `json:"password" validate:"required,min=8,max=64,hasspecial,hasdigit,hasupper,haslower"`
}

type UserResponse struct {
	ID            int    `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	IsAdmin       bool   `json:"is_admin"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type UserLoginResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
	ExpiresIn   int32  `json:"expires_in"`
}

type DefaultUserService struct {
	UserRepo   UserRepository
	ClientRepo ClientRepository
	Validate   *validator.Validate
	IDP        identity.Provider
	Clock      Clock
}

func NewUserService(userRepo UserRepository, clientRepo ClientRepository, validate *validator.Validate, idp identity.Provider, clock Clock) *DefaultUserService {
	return &DefaultUserService{UserRepo: userRepo, ClientRepo: clientRepo, Validate: validate, IDP: idp, Clock: clock}
}

func (u *DefaultUserService) GetUsers(subId string) ([]*UserResponse, apierror.ErrorResponse) {
	if _, apierr := resolveAdmin(u.UserRepo, subId); apierr != nil {
		return nil, apierr
	}

	users, err := u.UserRepo.FindAll()
	if err != nil {
		log.Errorf("failed to fetch all users: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*UserResponse, len(users))
	for i, user := range users {
		resp[i] = toUserResponse(user)
	}
	return resp, nil
}

// GetUser looks up rawId ("@me" for the caller). Only admins may look at other users.
func (u *DefaultUserService) GetUser(rawId, subId string) (*UserResponse, apierror.ErrorResponse) {
	caller, apierr := resolveCaller(u.UserRepo, subId)
	if apierr != nil {
		return nil, apierr
	}
	if rawId == "@me" {
		return toUserResponse(caller), nil
	}

	user, apierr := u.fetchByID(rawId)
	if apierr != nil {
		return nil, apierr
	}
	if user == nil || (user.ID != caller.ID && !caller.IsAdmin) {
		return nil, apierror.NotFoundError
	}
	return toUserResponse(user), nil
}

// CreateUser registers the account with the identity provider and mirrors it in our
// database. The provider sends (or logs) a verification code. The very first account
// becomes the salon admin.
func (u *DefaultUserService) CreateUser(ctx context.Context, req *CreateUserRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	req.Email = strings.ToLower(req.Email)
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	found, err := u.UserRepo.ExistsByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to check if user already exists: %v", err)
		return apierror.InternalServerError
	}
	if found {
		return apierror.UserAlreadyExistsError
	}

	count, err := u.UserRepo.Count()
	if err != nil {
		log.Errorf("failed to count users: %v", err)
		return apierror.InternalServerError
	}

	idpUser := &identity.User{Email: req.Email, Password: req.Password}
	sub, apierr, revert := handleUserSignup(ctx, u.IDP, idpUser)
	if apierr != nil {
		return apierr
	}

	now := u.Clock.millis()
	user := &entity.User{
		SubUUID:       sub,
		Username:      req.Username,
		Email:         req.Email,
		Phone:         req.Phone,
		EmailVerified: false,
		IsAdmin:       count == 0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := u.UserRepo.Save(user); err != nil {
		revert()
		log.Errorf("failed to create user: %v", err)
		return apierror.InternalServerError
	}

	if err := u.linkClient(user); err != nil {
		// the account exists either way, the client card can be fixed by an admin
		log.Errorf("failed to link client record for user %d: %v", user.ID, err)
	}
	return nil
}

func (u *DefaultUserService) Login(ctx context.Context, req *UserLoginRequest) (*UserLoginResponse, apierror.ErrorResponse) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	user, err := u.UserRepo.FindByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to fetch user from database: %v", err)
		return nil, apierror.InternalServerError
	}
	if user == nil {
		return nil, apierror.IDPUserNotFoundError
	}

	auth, apierr := handleUserSignin(ctx, u.IDP, &identity.UserLogin{Email: req.Email, Password: req.Password})
	if apierr != nil {
		return nil, apierr
	}
	return &UserLoginResponse{AccessToken: auth.AccessToken, IDToken: auth.IDToken, ExpiresIn: auth.ExpiresIn}, nil
}

func (u *DefaultUserService) ConfirmSignup(ctx context.Context, req *ConfirmSignupRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	req.Email = strings.ToLower(req.Email)
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	user, err := u.UserRepo.FindByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to fetch user from database: %v", err)
		return apierror.InternalServerError
	}
	if user == nil {
		return apierror.IDPUserNotFoundError
	}
	if user.EmailVerified {
		return apierror.UserAlreadyConfirmedError
	}

	err = u.IDP.ConfirmAccount(ctx, &identity.UserConfirmation{Email: req.Email, Code: req.Code})
	if apierr := mapCodeError("confirmation", req.Email, err); apierr != nil {
		return apierr
	}

	user.EmailVerified = true
	user.UpdatedAt = u.Clock.millis()
	if err := u.UserRepo.Save(user); err != nil {
		log.Errorf("failed to update user (%d) verified status: %v", user.ID, err)
	}
	return nil
}

// ForgotPassword starts a reset. Unknown emails are answered the same as known ones.
func (u *DefaultUserService) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) apierror.ErrorResponse {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	err := u.IDP.ForgotPassword(ctx, req.Email)
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "UserNotFoundException" {
		return nil
	}
	log.Errorf("failed to start password reset for %s: %v", req.Email, err)
	return apierror.InternalServerError
}

func (u *DefaultUserService) ResetPassword(ctx context.Context, req *ResetPasswordRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	req.Email = strings.ToLower(req.Email)
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	err := u.IDP.ConfirmForgotPassword(ctx, &identity.PasswordReset{Email: req.Email, Code: req.Code, NewPassword: req.Password})
	return mapCodeError("password reset", req.Email, err)
}

// linkClient attaches the user to the client record with the same email, creating one
// when the salon has never seen them.
func (u *DefaultUserService) linkClient(user *entity.User) error {
	client, err := u.ClientRepo.FindByEmail(user.Email)
	if err != nil {
		return err
	}
	if client == nil {
		client = &entity.Client{
			Name:       user.Username,
			Email:      user.Email,
			Phone:      user.Phone,
			Roles:      []string{RoleUser},
			DateJoined: user.CreatedAt,
		}
		if user.IsAdmin {
			client.Roles = append(client.Roles, RoleAdmin)
		}
	}
	client.UserID = &user.ID
	client.LastUpdated = user.CreatedAt
	return u.ClientRepo.Save(client)
}

func (u *DefaultUserService) fetchByID(rawId string) (*entity.User, apierror.ErrorResponse) {
	userId, err := strconv.Atoi(rawId)
	if err != nil {
		return nil, apierror.NewInvalidParamTypeError("id", "int32")
	}
	user, err := u.UserRepo.FindByID(userId)
	if err != nil {
		log.Errorf("failed to find user (%s) by id: %v", rawId, err)
		return nil, apierror.InternalServerError
	}
	return user, nil
}

func handleUserSignup(ctx context.Context, idp identity.Provider, req *identity.User) (string, apierror.ErrorResponse, func()) {
	revert := func() {
		if err := idp.AdminDeleteUser(context.WithoutCancel(ctx), req.Email); err != nil {
			log.Errorf("failed to revert signup of %s: %v", req.Email, err)
		}
	}

	sub, err := idp.SignUp(ctx, req)
	if err == nil {
		return sub, nil, revert
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "InvalidPasswordException":
			return "", apierror.IDPInvalidPasswordError, revert
		case "UsernameExistsException":
			return "", apierror.IDPExistingEmailError, revert
		default:
			log.Errorf("signup failed for user (%s): %s - %s", req.Email, apiErr.ErrorCode(), apiErr.ErrorMessage())
			return "", apierror.InternalServerError, revert
		}
	}

	log.Errorf("failed to signup user (%s): %v", req.Email, err)
	return "", apierror.InternalServerError, revert
}

func handleUserSignin(ctx context.Context, idp identity.Provider, req *identity.UserLogin) (*identity.AuthCreate, apierror.ErrorResponse) {
	auth, err := idp.SignIn(ctx, req)
	if err == nil {
		return auth, nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "UserNotFoundException":
			return nil, apierror.IDPUserNotFoundError
		case "UserNotConfirmedException":
			return nil, apierror.IDPUserNotConfirmedError
		case "NotAuthorizedException":
			return nil, apierror.IDPCredentialsMismatchError
		default:
			log.Errorf("signin failed for user (%s): %s - %s", req.Email, apiErr.ErrorCode(), apiErr.ErrorMessage())
			return nil, apierror.InternalServerError
		}
	}

	log.Errorf("failed to signin user (%s): %v", req.Email, err)
	return nil, apierror.InternalServerError
}

// mapCodeError maps the provider's answer to a code-carrying request (signup
// confirmation, password reset).
func mapCodeError(action, email string, err error) apierror.ErrorResponse {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "CodeMismatchException":
			return apierror.IDPConfirmCodeMismatchError
		case "ExpiredCodeException":
			return apierror.IDPConfirmCodeExpiredError
		case "UserNotFoundException":
			return apierror.IDPUserNotFoundError
		case "InvalidPasswordException":
			return apierror.IDPInvalidPasswordError
		default:
			log.Errorf("%s failed for user (%s): %s - %s", action, email, apiErr.ErrorCode(), apiErr.ErrorMessage())
			return apierror.InternalServerError
		}
	}

	log.Errorf("%s failed for user (%s): %v", action, email, err)
	return apierror.InternalServerError
}

func toUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		Phone:         user.Phone,
		EmailVerified: user.EmailVerified,
		IsAdmin:       user.IsAdmin,
		CreatedAt:     utils.FormatEpoch(user.CreatedAt),
		UpdatedAt:     utils.FormatEpoch(user.UpdatedAt),
	}
}
