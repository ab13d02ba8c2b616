package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type password struct {
	Value string `validate:"required,min=8,hasupper,haslower,hasdigit,hasspecial,nospaces"`
}

type contact struct {
	Name  string   `validate:"required,min=2,max=50,personname"`
	Phone string   `validate:"required,min=8,max=15,phone"`
	Day   string   `validate:"omitempty,isoday"`
	At    string   `validate:"omitempty,iso8601"`
	Tags  []string `validate:"nodupes"`
	Rec   string   `validate:"recurrence"`
}

func TestPasswordRules(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(&password{Value: "Str0ng!pass"}))
	assert.Error(t, v.Struct(&password{Value: "weakpass1!"}))
	assert.Error(t, v.Struct(&password{Value: "NOLOWER1!"}))
	assert.Error(t, v.Struct(&password{Value: "NoDigits!!"}))
	assert.Error(t, v.Struct(&password{Value: "NoSpecial1"}))
	assert.Error(t, v.Struct(&password{Value: "Has Space1!"}))
}

func TestContactRules(t *testing.T) {
	v := New()
	ok := contact{Name: "Mary-Jane O'Neil", Phone: "+353 (1) 555-0100", Day: "2024-06-12", At: "2024-06-12T11:00:00Z", Tags: []string{"a", "b"}, Rec: "weekly"}
	assert.NoError(t, v.Struct(&ok))

	bad := ok
	bad.Name = "R2D2"
	assert.Error(t, v.Struct(&bad))

	bad = ok
	bad.Phone = "call me maybe"
	assert.Error(t, v.Struct(&bad))

	bad = ok
	bad.Day = "12/06/2024"
	assert.Error(t, v.Struct(&bad))

	bad = ok
	bad.At = "2024-06-12 11:00"
	assert.Error(t, v.Struct(&bad))

	bad = ok
	bad.Tags = []string{"a", "a"}
	assert.Error(t, v.Struct(&bad))

	bad = ok
	bad.Rec = "daily"
	assert.Error(t, v.Struct(&bad))
}
