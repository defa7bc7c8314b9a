package validation

import (
	"fmt"
	"math"
	"net/mail"
	"strings"
	"time"

	errors "github.com/frahmantamala/resource-management/internal"
)

// MaxWeeklyHours is the number of hours in a week.
const MaxWeeklyHours = 168.0

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]*FieldValidator, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return fv
}

func (fv *FieldValidator) fail(message string, code errors.ErrorCode) *errors.AppError {
	return errors.NewValidationFieldError(fv.FieldName, message, code)
}

func (fv *FieldValidator) Required() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		missing := false
		switch v := value.(type) {
		case string:
			missing = strings.TrimSpace(v) == ""
		case *string:
			missing = v == nil || strings.TrimSpace(*v) == ""
		case time.Time:
			missing = v.IsZero()
		case *time.Time:
			missing = v == nil || v.IsZero()
		case nil:
			missing = true
		}
		if missing {
			return fv.fail(fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

// RangeFloat accepts finite values in [min, max].
func (fv *FieldValidator) RangeFloat(min, max float64, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := asFloat(value)
		if !ok {
			return nil
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < min || v > max {
			return fv.fail(fmt.Sprintf("%s must be between %g and %g", fv.FieldName, min, max), code)
		}
		return nil
	})
	return fv
}

// PositiveFloat rejects zero, negative and non-finite values.
func (fv *FieldValidator) PositiveFloat(code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := asFloat(value)
		if !ok {
			return nil
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fv.fail(fmt.Sprintf("%s must be greater than 0", fv.FieldName), code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxFloat(max float64, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := asFloat(value); ok && v > max {
			return fv.fail(fmt.Sprintf("%s must not exceed %g", fv.FieldName, max), code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinLength(min int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && len(v) < min {
			return fv.fail(fmt.Sprintf("%s must be at least %d characters", fv.FieldName, min), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && len(v) > max {
			return fv.fail(fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Email() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := value.(string)
		if !ok || v == "" {
			return nil
		}
		addr, err := mail.ParseAddress(v)
		if err != nil || addr.Address != v {
			return fv.fail(fmt.Sprintf("%s must be a valid email address", fv.FieldName), errors.ErrCodeInvalidEmail)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) OneOf(code errors.ErrorCode, allowed ...string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := value.(string)
		if !ok || v == "" {
			return nil
		}
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		return fv.fail(fmt.Sprintf("%s must be one of %s", fv.FieldName, strings.Join(allowed, ", ")), code)
	})
	return fv
}

// NotAfter requires the field's date to be on or before other. Zero values are skipped.
func (fv *FieldValidator) NotAfter(otherName string, other time.Time) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := value.(time.Time)
		if !ok || v.IsZero() || other.IsZero() {
			return nil
		}
		if v.After(other) {
			return fv.fail(fmt.Sprintf("%s must not be after %s", fv.FieldName, otherName), errors.ErrCodeInvalidDateRange)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *errors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

// Validate runs every validator and collects all field errors into one AppError.
func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			appErr := validator(field.Value)
			if appErr == nil {
				continue
			}
			if details, ok := appErr.Details.(errors.ValidationErrors); ok {
				validationErrors = append(validationErrors, details.Errors...)
				continue
			}
			validationErrors = append(validationErrors, errors.ValidationError{
				Field:   field.FieldName,
				Message: appErr.Message,
				Code:    string(appErr.Code),
			})
		}
	}

	if len(validationErrors) == 0 {
		return nil
	}

	// a single failure keeps its specific code so clients can branch on it
	code := errors.ErrCodeValidationFailed
	if len(validationErrors) == 1 {
		code = errors.ErrorCode(validationErrors[0].Code)
	}
	return errors.NewValidationError("Validation failed", code).
		WithDetails(errors.ValidationErrors{Errors: validationErrors})
}

func asFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case *float64:
		if v == nil {
			return 0, false
		}
		return *v, true
	}
	return 0, false
}

func ValidateAllocatedHours(hours float64) *errors.AppError {
	validator := NewValidator()
	validator.Field("allocated_hours", hours).
		RangeFloat(0, MaxWeeklyHours, errors.ErrCodeInvalidHours)
	return validator.Validate()
}

func ValidateWeeklyCapacity(capacity float64) *errors.AppError {
	validator := NewValidator()
	validator.Field("weekly_capacity", capacity).
		PositiveFloat(errors.ErrCodeInvalidCapacity).
		MaxFloat(MaxWeeklyHours, errors.ErrCodeInvalidCapacity)
	return validator.Validate()
}

func ValidateDateRange(start, end time.Time) *errors.AppError {
	validator := NewValidator()
	validator.Field("start_date", start).
		Required().
		NotAfter("end_date", end)
	validator.Field("end_date", end).
		Required()
	return validator.Validate()
}
