package middleware

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MaxMessageLength bounds a chat message in bytes.
const MaxMessageLength = 4000

var (
	phonePattern      = regexp.MustCompile(`^(\+977)?9\d{9}$|^0[1-9]\d{7,8}$`)
	experiencePattern = regexp.MustCompile(`(?i)^(\d+)\s*years?$`)
	isoWeekPattern    = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)
	phoneNoise        = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// Validator checks request structs against their validate tags.
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a validator with the SkillBridge custom rules.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	must(v.RegisterValidation("password", validatePassword))
	must(v.RegisterValidation("npphone", validatePhone))
	must(v.RegisterValidation("experience", validateExperience))
	must(v.RegisterValidation("isoweek", validateISOWeek))
	return &Validator{v: v}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// ValidationError lists user-facing messages for every failed field.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Struct validates s. Failures are returned as *ValidationError.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err
	}
	out := &ValidationError{Messages: make([]string, 0, len(fields))}
	for _, f := range fields {
		out.Messages = append(out.Messages, message(f))
	}
	return out
}

func message(f validator.FieldError) string {
	name := f.Field()
	switch f.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return "Please enter a valid email address"
	case "min":
		if f.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", name, f.Param())
		}
		return fmt.Sprintf("%s must have at least %s items", name, f.Param())
	case "max":
		if f.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot exceed %s characters", name, f.Param())
		}
		return fmt.Sprintf("%s must be at most %s", name, f.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", name)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, f.Param())
	case "password":
		return "Password must contain at least one uppercase letter, one lowercase letter, and one number"
	case "npphone":
		return "Please enter a valid Nepali phone number (e.g., 98xxxxxxxx)"
	case "experience":
		return `Experience must be in format "X years" between 0 and 50 (e.g., "5 years")`
	case "isoweek":
		return `Week must be an ISO week such as "2026-W07"`
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

func validatePassword(fl validator.FieldLevel) bool {
	var upper, lower, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

func validatePhone(fl validator.FieldLevel) bool {
	return ValidPhone(fl.Field().String())
}

// ValidPhone reports whether s is a Nepali mobile or landline number.
// Spaces, dashes and parentheses are ignored.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(phoneNoise.Replace(s))
}

func validateExperience(fl validator.FieldLevel) bool {
	m := experiencePattern.FindStringSubmatch(strings.TrimSpace(fl.Field().String()))
	if m == nil {
		return false
	}
	years, err := strconv.Atoi(m[1])
	return err == nil && years >= 0 && years <= 50
}

func validateISOWeek(fl validator.FieldLevel) bool {
	m := isoWeekPattern.FindStringSubmatch(fl.Field().String())
	if m == nil {
		return false
	}
	week, _ := strconv.Atoi(m[2])
	return week >= 1 && week <= 53
}

// ValidateMessageContent validates chat message content.
func ValidateMessageContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("Message is required")
	}
	if len(content) > MaxMessageLength {
		return errors.New("Message exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("Message must be valid UTF-8")
	}
	return nil
}

// ValidateID validates a record id.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("Invalid ID format")
	}
	return nil
}
