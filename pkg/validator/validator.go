package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/patient-registry/pkg/clinical"
	"github.com/jwalitptl/patient-registry/pkg/errors"
)

// DateLayout is the canonical wire format for calendar dates.
const DateLayout = "2006-01-02"

const (
	MinAge = 0
	MaxAge = 150
)

var (
	mobilePattern      = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	aadharPattern      = regexp.MustCompile(`^[0-9]{12}$`)
	pincodePattern     = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	patientCodePattern = regexp.MustCompile(`^[A-Za-z0-9-]{3,32}$`)

	nowFunc = time.Now

	setupOnce sync.Once
	setupErr  error
)

// IsValidMobile reports whether s is a 10 digit Indian mobile number
// starting with 6, 7, 8 or 9.
func IsValidMobile(s string) bool {
	return mobilePattern.MatchString(s)
}

// IsValidAadhar reports whether s is 12 digits that are not all identical.
func IsValidAadhar(s string) bool {
	if !aadharPattern.MatchString(s) {
		return false
	}
	return strings.Count(s, s[:1]) != len(s)
}

// IsValidPincode reports whether s is a 6 digit Indian postal code.
func IsValidPincode(s string) bool {
	return pincodePattern.MatchString(s)
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q", s)
		}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ParseOptionalDate converts an optional wire date. Nil and blank stay nil.
func ParseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// IsValidDOB reports whether dob yields an age within [MinAge, MaxAge] at now.
func IsValidDOB(dob, now time.Time) bool {
	if dob.After(now) {
		return false
	}
	age := clinical.CalculateAge(dob, now)
	return age >= MinAge && age <= MaxAge
}

// Setup installs the custom rules on gin's binding validator. Safe to call
// more than once.
func Setup() error {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			setupErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		setupErr = Register(v)
	})
	return setupErr
}

// Register installs json field naming and the custom tags on v.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	rules := map[string]validator.Func{
		"indianmobile": stringRule(IsValidMobile),
		"aadhar":       stringRule(IsValidAadhar),
		"pincode":      stringRule(IsValidPincode),
		"patientcode":  stringRule(patientCodePattern.MatchString),
		"isodate": stringRule(func(s string) bool {
			_, err := ParseDate(s)
			return err == nil
		}),
		"dob": stringRule(func(s string) bool {
			dob, err := ParseDate(s)
			return err == nil && IsValidDOB(dob, nowFunc())
		}),
		"dategte": dateNotBefore,
	}

	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s: %w", tag, err)
		}
	}
	return nil
}

func stringRule(check func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.String {
			return false
		}
		return check(field.String())
	}
}

// dateNotBefore passes when the field date is on or after the sibling field
// named by the tag parameter. Missing or unparseable values are left to the
// isodate rule.
func dateNotBefore(fl validator.FieldLevel) bool {
	current, err := ParseDate(fl.Field().String())
	if err != nil {
		return true
	}

	parent := fl.Parent()
	if parent.Kind() == reflect.Ptr {
		parent = parent.Elem()
	}
	other := parent.FieldByName(fl.Param())
	if !other.IsValid() {
		return false
	}
	if other.Kind() == reflect.Ptr {
		if other.IsNil() {
			return true
		}
		other = other.Elem()
	}
	if other.Kind() != reflect.String || other.String() == "" {
		return true
	}

	reference, err := ParseDate(other.String())
	if err != nil {
		return true
	}
	return !current.Before(reference)
}

// Translate converts validator failures into field errors, one per violated
// rule. Other errors yield nil.
func Translate(err error) []errors.FieldError {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}

	fields := make([]errors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, errors.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return fields
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "indianmobile":
		return fmt.Sprintf("%s must be a valid 10-digit mobile number starting with 6-9", field)
	case "aadhar":
		return fmt.Sprintf("%s must be a valid 12-digit Aadhar number", field)
	case "pincode":
		return fmt.Sprintf("%s must be a valid 6-digit pincode", field)
	case "patientcode":
		return fmt.Sprintf("%s may only contain letters, digits and hyphens (3-32 characters)", field)
	case "isodate":
		return fmt.Sprintf("%s must be a valid date (YYYY-MM-DD)", field)
	case "dob":
		return fmt.Sprintf("%s must correspond to an age between %d and %d years", field, MinAge, MaxAge)
	case "dategte":
		return fmt.Sprintf("%s must not be before %s", field, lowerFirst(param))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid id", field)
	case "min", "gte":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max", "lte":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
