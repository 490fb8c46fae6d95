package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shakilabs/ott-price-compare/internal/apperr"
)

var (
	slugPattern    = regexp.MustCompile(`^[a-z0-9-]+$`)
	countryPattern = regexp.MustCompile(`^[A-Za-z]{2}$`)
)

func Slug(s string) bool { return slugPattern.MatchString(s) }

func Country(s string) bool { return countryPattern.MatchString(s) }

func CountryOrAll(s string) bool { return strings.EqualFold(s, "ALL") || Country(s) }

// Validator wraps go-playground/validator with the site's custom tags and
// JSON field names in messages.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool { return Slug(fl.Field().String()) })
	_ = v.RegisterValidation("country", func(fl validator.FieldLevel) bool { return Country(fl.Field().String()) })
	_ = v.RegisterValidation("countryorall", func(fl validator.FieldLevel) bool { return CountryOrAll(fl.Field().String()) })

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Struct validates i and converts the first failure into a validation AppError.
func (v *Validator) Struct(i any) error {
	err := v.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Wrap(err, apperr.CodeValidation, "invalid input")
	}
	return apperr.Validation(message(verrs[0]))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "slug":
		return "invalid service slug"
	case "country", "countryorall":
		return fmt.Sprintf("%s must be a two-letter country code", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
