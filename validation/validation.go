package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Violations maps a form field to a message code.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add keeps the first code reported for a field.
func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

func NonNegative(field string, val *float64, v Violations) {
	if val != nil && *val < 0 {
		v.Add(field, "must_be_positive")
	}
}

// rutPattern accepts a number body, with or without thousands dots, and an
// optional check digit. Bodies stored without their DV are valid.
var rutPattern = regexp.MustCompile(`^([0-9]{1,3}(\.[0-9]{3})+|[0-9]+)(-?[0-9kK])?$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("rut", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			return s == "" || rutPattern.MatchString(s)
		})
	})
	return validate
}

// Struct runs the `validate` tags of s and returns the failures keyed by the
// `form` tag name of each field.
func Struct(s any) Violations {
	v := make(Violations)
	err := instance().Struct(s)
	if err == nil {
		return v
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		v.Add("_", "invalid")
		return v
	}
	for _, fe := range ve {
		v.Add(fe.Field(), code(fe.Tag()))
	}
	return v
}

func code(tag string) string {
	switch tag {
	case "required", "required_if":
		return "required"
	case "oneof":
		return "invalid_option"
	case "email":
		return "invalid_email"
	case "rut":
		return "invalid_rut"
	case "min", "gte", "gt":
		return "must_be_positive"
	default:
		return tag
	}
}
