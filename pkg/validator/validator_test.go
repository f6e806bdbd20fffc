package validator

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidMobile(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"9876543210", true},
		{"6000000000", true},
		{"1234567890", false},
		{"98765432", false},
		{"98765432101", false},
		{"98765abcde", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidMobile(tt.in), tt.in)
	}
}

func TestIsValidAadhar(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"123456789012", true},
		{"111111111111", false},
		{"12345", false},
		{"12345678901a", false},
		{"1234567890123", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidAadhar(tt.in), tt.in)
	}
}

func TestIsValidPincode(t *testing.T) {
	assert.True(t, IsValidPincode("560001"))
	assert.False(t, IsValidPincode("060001"))
	assert.False(t, IsValidPincode("5600"))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("1990-05-17")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1990, time.May, 17, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("1990-05-17T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1990, time.May, 17, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("17/05/1990")
	assert.Error(t, err)

	got, err := ParseOptionalDate(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	blank := "  "
	got, err = ParseOptionalDate(&blank)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIsValidDOB(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsValidDOB(time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC), now))
	assert.True(t, IsValidDOB(now, now))
	assert.False(t, IsValidDOB(now.AddDate(0, 0, 1), now))
	assert.False(t, IsValidDOB(time.Date(1850, time.January, 1, 0, 0, 0, 0, time.UTC), now))
}

type sample struct {
	Mobile    string  `json:"mobile" binding:"omitempty,indianmobile"`
	Aadhar    string  `json:"aadharNumber" binding:"omitempty,aadhar"`
	Email     string  `json:"email" binding:"omitempty,email"`
	DOB       string  `json:"dateOfBirth" binding:"required,dob"`
	Height    float64 `json:"height" binding:"omitempty,gte=50,lte=250"`
	Sex       string  `json:"sex" binding:"required,oneof=MALE FEMALE OTHER"`
	StartDate string  `json:"startDate" binding:"required,isodate"`
	EndDate   *string `json:"endDate" binding:"omitempty,isodate,dategte=StartDate"`
}

func newTestValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, Register(v))
	return v
}

func TestRegisteredRulesReportEveryViolation(t *testing.T) {
	v := newTestValidator(t)
	end := "2023-12-31"

	err := v.Struct(sample{
		Mobile:    "1234567890",
		Aadhar:    "111111111111",
		Email:     "invalid-email",
		DOB:       "1700-01-01",
		Height:    20,
		Sex:       "UNKNOWN",
		StartDate: "2024-01-01",
		EndDate:   &end,
	})
	require.Error(t, err)

	fields := Translate(err)
	got := map[string]string{}
	for _, f := range fields {
		got[f.Field] = f.Message
	}

	assert.Len(t, fields, 7)
	assert.Contains(t, got["email"], "email")
	assert.Contains(t, got["mobile"], "mobile")
	assert.Contains(t, got["aadharNumber"], "Aadhar")
	assert.Contains(t, got["dateOfBirth"], "between 0 and 150")
	assert.Equal(t, "height must be at least 50", got["height"])
	assert.Equal(t, "sex must be one of: MALE, FEMALE, OTHER", got["sex"])
	assert.Equal(t, "endDate must not be before startDate", got["endDate"])
}

func TestRegisteredRulesAcceptValidInput(t *testing.T) {
	v := newTestValidator(t)
	end := "2024-02-01"

	err := v.Struct(sample{
		Mobile:    "9876543210",
		Aadhar:    "123456789012",
		Email:     "patient@example.com",
		DOB:       "1990-01-01",
		Height:    172,
		Sex:       "FEMALE",
		StartDate: "2024-01-01",
		EndDate:   &end,
	})
	assert.NoError(t, err)
}

func TestTranslateIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, Translate(assert.AnError))
}
