package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is what every service returns instead of a bare error. It is
// serialised as the response body and carries its own HTTP status.
type ErrorResponse interface {
	error
	Code() int
}

type SimpleError struct {
	Status  int    `json:"-"`
	Kind    string `json:"error"`
	Message string `json:"message"`
}

func (e *SimpleError) Error() string { return e.Message }
func (e *SimpleError) Code() int     { return e.Status }

func NewSimple(status int, message string) *SimpleError {
	return &SimpleError{Status: status, Kind: kindFor(status), Message: message}
}

func newKind(status int, kind, message string) *SimpleError {
	return &SimpleError{Status: status, Kind: kind, Message: message}
}

func NewMissingParamError(param string) *SimpleError {
	return newKind(http.StatusBadRequest, "missing_param", fmt.Sprintf("Missing required parameter '%s'", param))
}

func NewInvalidParamTypeError(param, expected string) *SimpleError {
	return newKind(http.StatusBadRequest, "invalid_param", fmt.Sprintf("Parameter '%s' must be of type %s", param, expected))
}

func kindFor(status int) string {
	switch {
	case status == http.StatusConflict:
		return "conflict"
	case status == http.StatusUnauthorized:
		return "unauthorized"
	case status == http.StatusForbidden:
		return "forbidden"
	case status == http.StatusNotFound:
		return "not_found"
	case status >= 500:
		return "server_error"
	default:
		return "invalid_input"
	}
}

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

type ValidationError struct {
	Status  int          `json:"-"`
	Kind    string       `json:"error"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Code() int     { return e.Status }

// FromValidationError converts validator output into a 400 listing every failed field.
func FromValidationError(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return MalformedBodyError
	}

	fields := make([]FieldError, len(verrs))
	names := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = FieldError{Field: jsonName(fe.Field()), Rule: fe.Tag(), Param: fe.Param()}
		names[i] = fields[i].Field
	}
	return &ValidationError{
		Status:  http.StatusBadRequest,
		Kind:    "validation",
		Message: "Invalid value for: " + strings.Join(names, ", "),
		Fields:  fields,
	}
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
