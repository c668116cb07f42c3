package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validate is the global validator instance
var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())

	// report json field names in violations
	Validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	_ = Validate.RegisterValidation("hhmm", validateClock)

	// decimal.Decimal bounds compared exactly, never through float64
	_ = Validate.RegisterValidation("dgte", decimalBound(decimal.Decimal.GreaterThanOrEqual))
	_ = Validate.RegisterValidation("dlte", decimalBound(decimal.Decimal.LessThanOrEqual))
	_ = Validate.RegisterValidation("dgt", decimalBound(decimal.Decimal.GreaterThan))
	_ = Validate.RegisterValidation("decimals", validateDecimalPlaces)
}

// ValidateStruct validates s and returns Violations when any rule fails.
// prefix is prepended to every field path, e.g. "rules[2]".
func ValidateStruct(s interface{}, prefix string) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	var out Violations
	for _, fe := range validationErrors {
		out = append(out, Violation{
			Field:   joinPath(prefix, stripRoot(fe.Namespace())),
			Rule:    fe.Tag(),
			Message: describe(fe),
		})
	}
	return out
}

// Collect runs ValidateStruct and appends its violations to v.
// Non-validation errors are reported as a single violation on prefix.
func (v *Violations) Collect(s interface{}, prefix string) {
	err := ValidateStruct(s, prefix)
	if err == nil {
		return
	}
	var found Violations
	if errors.As(err, &found) {
		*v = append(*v, found...)
		return
	}
	v.Add(prefix, "invalid", err.Error())
}

func stripRoot(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func joinPath(prefix, field string) string {
	switch {
	case prefix == "":
		return field
	case field == "":
		return prefix
	default:
		return prefix + "." + field
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte", "dgte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte", "dlte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "gt", "dgt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "decimals":
		return fmt.Sprintf("must have at most %s decimal places", fe.Param())
	case "hhmm":
		return "must be a 24h clock time formatted HH:MM"
	case "timezone":
		return "must be an IANA time zone"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
