package apierror

import "net/http"

var (
	InternalServerError = newKind(http.StatusInternalServerError, "server_error", "Something went wrong, please try again later")
	MalformedBodyError  = newKind(http.StatusBadRequest, "malformed_body", "Request body is malformed")
	NotFoundError       = newKind(http.StatusNotFound, "not_found", "Resource not found")
	ForbiddenError      = newKind(http.StatusForbidden, "forbidden", "You are not allowed to do this")

	InvalidAuthTokenError = newKind(http.StatusUnauthorized, "unauthorized", "Authentication token is missing or invalid")
	TooManyRequestsError  = newKind(http.StatusTooManyRequests, "rate_limited", "Too many requests, slow down")

	UserAlreadyExistsError    = newKind(http.StatusConflict, "conflict", "A user with this email already exists")
	UserAlreadyConfirmedError = newKind(http.StatusConflict, "conflict", "This account is already confirmed")
	UserBannedError           = newKind(http.StatusForbidden, "forbidden", "This account cannot book appointments")

	IDPInvalidPasswordError     = newKind(http.StatusBadRequest, "invalid_input", "Password does not meet the requirements")
	IDPExistingEmailError       = newKind(http.StatusConflict, "conflict", "A user with this email already exists")
	IDPUserNotFoundError        = newKind(http.StatusNotFound, "not_found", "User not found")
	IDPUserNotConfirmedError    = newKind(http.StatusForbidden, "forbidden", "Please confirm your email before logging in")
	IDPCredentialsMismatchError = newKind(http.StatusUnauthorized, "unauthorized", "Email or password is incorrect")
	IDPConfirmCodeMismatchError = newKind(http.StatusBadRequest, "invalid_input", "Confirmation code is incorrect")
	IDPConfirmCodeExpiredError  = newKind(http.StatusGone, "invalid_input", "Confirmation code has expired")

	AppointmentInPastError = newKind(http.StatusBadRequest, "invalid_input", "Cannot book appointments for past dates")
	DayUnavailableError    = newKind(http.StatusConflict, "conflict", "This day is not available for booking")
	SlotUnavailableError   = newKind(http.StatusConflict, "conflict", "This time slot is no longer available, please select another time")
	TooFarAheadError       = newKind(http.StatusBadRequest, "invalid_input", "Cannot book appointments more than 6 months in advance")
	UnknownServiceError    = newKind(http.StatusBadRequest, "invalid_input", "Unknown service")

	DayAlreadyBlockedError = newKind(http.StatusConflict, "conflict", "This day is already blocked")
	ServiceExistsError     = newKind(http.StatusConflict, "conflict", "A service with this id already exists")
	ClientExistsError      = newKind(http.StatusConflict, "conflict", "A client with this email already exists")
)
