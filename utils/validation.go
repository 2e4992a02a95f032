package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"food-distribution-backend/apperror"
	"food-distribution-backend/models"

	"github.com/go-playground/validator/v10"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	cnicPattern  = regexp.MustCompile(`^[0-9]{13}$`)
	tokenPattern = regexp.MustCompile(`^[A-Z]{3}-[0-9]{4}$`)

	validateOnce sync.Once
	validate     *validator.Validate
)

func IsValidCNIC(cnic string) bool {
	return cnicPattern.MatchString(cnic)
}

func IsValidToken(token string) bool {
	return tokenPattern.MatchString(token)
}

// Validator returns the shared validator with the domain tags registered.
// Field names in errors are taken from json tags.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		mustRegister(v, "cnic", func(fl validator.FieldLevel) bool {
			return IsValidCNIC(fl.Field().String())
		})
		mustRegister(v, "income_level", func(fl validator.FieldLevel) bool {
			return models.IncomeLevel(fl.Field().String()).Valid()
		})
		mustRegister(v, "pickup_date", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(DateLayout, fl.Field().String())
			return err == nil
		})
		mustRegister(v, "pickup_time", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(TimeLayout, fl.Field().String())
			return err == nil
		})
		mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// ValidateStruct runs the shared validator and converts the first failure
// into an *apperror.ValidationError.
func ValidateStruct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return apperror.Invalid("", err.Error())
	}
	fe := validationErrors[0]
	return apperror.Invalid(fe.Field(), fieldReason(fe))
}

func fieldReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "cnic":
		return "must be exactly 13 digits"
	case "income_level":
		return "must be one of: Very Low, Low, Middle"
	case "pickup_date":
		return "must be a date in YYYY-MM-DD format"
	case "pickup_time":
		return "must be a time in HH:MM format"
	}
	return "is invalid"
}

// SanitizeValidationError takes a gin binding error and returns a
// user-friendly message without leaking internal Go struct names.
func SanitizeValidationError(err error) string {
	if err == nil {
		return ""
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Invalid request body"
	}

	var messages []string
	for _, fe := range validationErrors {
		field := strings.ToLower(fe.Field())
		messages = append(messages, fmt.Sprintf("%s %s", field, fieldReason(fe)))
	}

	if len(messages) == 0 {
		return "Invalid request body"
	}

	return strings.Join(messages, "; ")
}
