package validators

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	personNamePattern = regexp.MustCompile(`^[\p{L}\s\-']+$`)
	phonePattern      = regexp.MustCompile(`^[0-9\s\-+()]+$`)
)

func HasUpper(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsUpper) >= 0
}

func HasLower(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsLower) >= 0
}

func HasDigit(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsDigit) >= 0
}

func HasSpecial(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	}) >= 0
}

// NoDupes rejects slices of strings with repeated entries.
func NoDupes(fl validator.FieldLevel) bool {
	field := fl.Field()
	seen := make(map[string]struct{}, field.Len())
	for i := 0; i < field.Len(); i++ {
		v := field.Index(i).String()
		if _, ok := seen[v]; ok {
			return false
		}
		seen[v] = struct{}{}
	}
	return true
}

func NoWhiteSpaces(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsSpace) < 0
}

func IsIso8601(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.RFC3339, fl.Field().String())
	return err == nil
}

// IsIsoDay accepts a calendar day in YYYY-MM-DD form.
func IsIsoDay(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

func IsPersonName(fl validator.FieldLevel) bool {
	return personNamePattern.MatchString(fl.Field().String())
}

func IsPhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

func IsRecurrence(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "weekly", "monthly", "yearly":
		return true
	}
	return false
}

// Register installs every custom validation on validate.
func Register(validate *validator.Validate) {
	_ = validate.RegisterValidation("hasupper", HasUpper)
	_ = validate.RegisterValidation("haslower", HasLower)
	_ = validate.RegisterValidation("hasdigit", HasDigit)
	_ = validate.RegisterValidation("hasspecial", HasSpecial)
	_ = validate.RegisterValidation("nodupes", NoDupes)
	_ = validate.RegisterValidation("nospaces", NoWhiteSpaces)
	_ = validate.RegisterValidation("iso8601", IsIso8601)
	_ = validate.RegisterValidation("isoday", IsIsoDay)
	_ = validate.RegisterValidation("personname", IsPersonName)
	_ = validate.RegisterValidation("phone", IsPhone)
	_ = validate.RegisterValidation("recurrence", IsRecurrence)
}

func New() *validator.Validate {
	validate := validator.New()
	Register(validate)
	return validate
}
