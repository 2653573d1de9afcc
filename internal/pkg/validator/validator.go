package validator

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"foodgram/internal/domain"
	"foodgram/internal/pkg/apperr"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate

	hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}){1,2}$`)
	usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)
	slugRe     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = validate.RegisterValidation("hexcolor36", func(fl validator.FieldLevel) bool {
		return IsHexColor(fl.Field().String())
	})
	_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return IsUsername(fl.Field().String())
	})
	_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRe.MatchString(fl.Field().String())
	})
}

// IsHexColor accepts #RGB and #RRGGBB.
func IsHexColor(s string) bool {
	return hexColorRe.MatchString(s)
}

func IsUsername(s string) bool {
	return s != domain.ReservedUsername && usernameRe.MatchString(s)
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// Struct validates v and returns the first failing field as a validation error.
// Fields are reported in name order so the result is stable.
func Struct(v interface{}) error {
	errs := Validate(v)
	if len(errs) == 0 {
		return nil
	}
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	f := fields[0]
	return apperr.Validation(f, describe(errs[f]))
}

func describe(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "max":
		return "value is too long"
	case "min":
		return "value is too short"
	case "gte", "gt":
		return "value is too small"
	case "username":
		return "username contains forbidden characters or is reserved"
	case "hexcolor36":
		return "invalid color code"
	case "slug":
		return "invalid slug"
	default:
		return "invalid value"
	}
}
