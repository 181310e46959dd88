package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var hasSpecialRgx = regexp.MustCompile(`[!@#$%^&*]`)

const (
	ErrRequired        = "is required"
	ErrDefaultInvalid  = "is invalid"
	ErrInvalidPassword = "must be at least 8 characters long and include at least one uppercase letter, " +
		"one lowercase letter, one number, and one special character (!@#$%^&*)."
	ErrInvalidPrice     = "must be a non-negative amount with at most two decimal places"
	ErrInvalidMovieSort = "must be one of id, title, duration, createdAt, optionally prefixed with '-'"
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their JSON names
	validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// decimals are validated through their string form
	validator.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	validator.RegisterValidation("password", validatePassword)
	validator.RegisterValidation("price", validatePrice)
	validator.RegisterValidation("movie_sort", validateMovieSort)

	return validator
}

func validatePassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	if len(password) < 8 || len(password) > 25 {
		return false
	}

	containsUpper, containsLower, containsDigit, containsSpecial := false, false, false, false

	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			containsUpper = true
		case unicode.IsLower(ch):
			containsLower = true
		case unicode.IsDigit(ch):
			containsDigit = true
		case hasSpecialRgx.MatchString(string(ch)):
			containsSpecial = true
		}
	}

	return containsUpper && containsLower && containsDigit && containsSpecial
}

func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}

	return nil
}

// validatePrice accepts non-negative amounts with at most two decimal places.
func validatePrice(fl validator.FieldLevel) bool {
	price, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}

	return !price.IsNegative() && price.Equal(price.Round(2))
}

func validateMovieSort(fl validator.FieldLevel) bool {
	return domain.IsValidMovieSort(fl.Field().String())
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return ErrRequired
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "url":
		return "must be a valid URL"
	case "min":
		switch err.Kind() {
		case reflect.Int:
			return fmt.Sprintf("must be at least %s", err.Param())
		case reflect.Slice:
			return fmt.Sprintf("must contain at least %s items", err.Param())
		}
		return fmt.Sprintf("must be at least %s characters long", err.Param())
	case "max":
		switch err.Kind() {
		case reflect.Int:
			return fmt.Sprintf("must be at most %s", err.Param())
		case reflect.Slice:
			return fmt.Sprintf("must contain at most %s items", err.Param())
		}
		return fmt.Sprintf("must be at most %s characters long", err.Param())
	case "password":
		return ErrInvalidPassword
	case "price":
		return ErrInvalidPrice
	case "movie_sort":
		return ErrInvalidMovieSort
	default:
		return ErrDefaultInvalid
	}
}
