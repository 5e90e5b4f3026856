package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	for tag, fn := range map[string]validator.Func{
		"notblank":    validators.NotBlank,
		"nonnegative": decimalRule(func(d decimal.Decimal) bool { return !d.IsNegative() }),
		"price_range": decimalRule(inPriceRange),
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return v
}

// decimalRule adapts a decimal predicate to a validator tag. Non-decimal
// fields fail.
func decimalRule(ok func(decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, isDec := fl.Field().Interface().(decimal.Decimal)
		return isDec && ok(d)
	}
}

// inPriceRange only looks at the exponent and coefficient size before
// comparing, so huge exponents never get expanded.
func inPriceRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp < -MaxPriceScale || exp > maxPriceExponent {
		return false
	}
	if d.Coefficient().BitLen() > maxPriceCoefficientBits {
		return false
	}
	return !d.GreaterThan(MaxPrice)
}

func (r CreateRequest) Validate() error {
	return validateStruct(r)
}

func (r UpdateRequest) Validate() error {
	return validateStruct(r)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank", "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "nonnegative":
		return "must be greater than or equal to 0"
	case "price_range":
		return fmt.Sprintf("must be at most %s with at most %d decimal places", MaxPrice, MaxPriceScale)
	default:
		return "is invalid"
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
