package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/lp-dev-web/lebonrecoin/internal/types"
)

var (
	ErrTooLarge = errors.New("file too large")
	ErrNotImage = errors.New("not an image")
)

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)
	phonePattern    = regexp.MustCompile(`^(0|\+33)[0-9]{9}$`)

	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with the marketplace tags registered
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("frphone", func(fl validator.FieldLevel) bool {
			return ValidPhone(fl.Field().String())
		})
		instance = v
	})
	return instance
}

// ValidPhone reports whether phone is a French number: 0 or +33 followed by nine digits
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// Struct runs the struct tags of s and converts failures to field errors.
// The returned value is never nil; check Empty.
func Struct(s any) *types.ValidationError {
	verr := types.NewValidationError()
	err := Validator().Struct(s)
	if err == nil {
		return verr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add("__all__", types.CodeInvalid, err.Error())
		return verr
	}

	for _, fe := range fieldErrs {
		code, message := describe(fe)
		verr.Add(fe.Field(), code, message)
	}
	return verr
}

func describe(fe validator.FieldError) (string, string) {
	switch fe.Tag() {
	case "required":
		return types.CodeRequired, "This field is required."
	case "max":
		return types.CodeMaxLength, fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "email":
		return types.CodeInvalid, "Enter a valid email address."
	case "username":
		return types.CodeInvalid, "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "frphone":
		return types.CodePhoneFormat, "Enter a valid phone number."
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return types.CodePasswordTooShort, fmt.Sprintf("This password is too short. It must contain at least %s characters.", fe.Param())
		}
		return types.CodeInvalid, fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "len":
		return types.CodeInvalid, fmt.Sprintf("Ensure this value has %s characters.", fe.Param())
	}
	return types.CodeInvalid, "Enter a valid value."
}
