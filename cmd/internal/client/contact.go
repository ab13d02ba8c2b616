package client

import (
	"strings"

	"nailbook/cmd/internal/utils"
	"nailbook/cmd/internal/utils/validators"

	"github.com/go-playground/validator/v10"
)

// Contact is what the customer types into the booking form.
type Contact struct {
	Name  string `validate:"required,min=2,max=50,personname"`
	Email string `validate:"required,email,max=100"`
	Phone string `validate:"required,min=8,max=15,phone"`
	Notes string `validate:"max=500"`
}

// ContactError lists the form fields that failed and the rule each one broke.
type ContactError struct {
	Fields map[string]string
}

func (e *ContactError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range []string{"name", "email", "phone", "notes"} {
		if rule, ok := e.Fields[field]; ok {
			parts = append(parts, field+" ("+rule+")")
		}
	}
	return "invalid contact details: " + strings.Join(parts, ", ")
}

func (e *ContactError) Unwrap() error { return ErrInvalidInput }

var contactValidator = validators.New()

// ValidateContact trims c in place and checks it against the booking form rules.
func ValidateContact(c *Contact) error {
	utils.Sanitize(c)
	err := contactValidator.Struct(c)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	cerr := &ContactError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		cerr.Fields[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return cerr
}
