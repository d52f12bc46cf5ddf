package models

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var ErrValidation = errors.New("validation failed")

// ValidationError reports the first offending field of a record.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

type closedSet interface {
	Valid() bool
}

type boundsKey struct{}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("closedset", func(fl validator.FieldLevel) bool {
			value, ok := fl.Field().Interface().(closedSet)
			return ok && value.Valid()
		})
		_ = v.RegisterValidationCtx("agerange", func(ctx context.Context, fl validator.FieldLevel) bool {
			b := boundsFrom(ctx)
			age := int(fl.Field().Int())
			return age >= b.AgeMin && age <= b.AgeMax
		})
		_ = v.RegisterValidationCtx("stayrange", func(ctx context.Context, fl validator.FieldLevel) bool {
			b := boundsFrom(ctx)
			stay := int(fl.Field().Int())
			return stay >= b.StayMin && stay <= b.StayMax
		})
		validate = v
	})
	return validate
}

func boundsFrom(ctx context.Context) Bounds {
	if b, ok := ctx.Value(boundsKey{}).(Bounds); ok {
		return b
	}
	return GeneratorBounds
}

// Validate checks the closed sets and the numeric ranges in b.
func (f PatientFeatures) Validate(b Bounds) error {
	ctx := context.WithValue(context.Background(), boundsKey{}, b)
	return translate(structValidator().StructCtx(ctx, f), b)
}

// Validate checks a dataset row against the generator ranges and charge bounds.
func (r PatientRecord) Validate() error {
	if err := r.PatientFeatures.Validate(GeneratorBounds); err != nil {
		return err
	}
	if math.IsNaN(r.TotalCharges) || r.TotalCharges < MinTotalCharges || r.TotalCharges > MaxTotalCharges {
		return &ValidationError{
			Field:  "total_charges",
			Reason: fmt.Sprintf("must be between %.0f and %.0f", MinTotalCharges, MaxTotalCharges),
		}
	}
	return nil
}

func translate(err error, b Bounds) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Field: "record", Reason: err.Error()}
	}
	fe := fieldErrs[0]
	ve := &ValidationError{Field: fe.Field()}
	switch fe.Tag() {
	case "required":
		ve.Reason = "is required"
	case "closedset":
		ve.Reason = fmt.Sprintf("has unknown value %q", fmt.Sprint(fe.Value()))
	case "agerange":
		ve.Reason = fmt.Sprintf("must be between %d and %d", b.AgeMin, b.AgeMax)
	case "stayrange":
		ve.Reason = fmt.Sprintf("must be between %d and %d", b.StayMin, b.StayMax)
	default:
		ve.Reason = fmt.Sprintf("failed %s check", fe.Tag())
	}
	return ve
}
