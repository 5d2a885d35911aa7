package minapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ModelState maps a field path ("address.city") to its validation messages.
// Model-level errors are kept under the empty key.
type ModelState map[string][]string

// AddError records message against field.
func (m ModelState) AddError(field, message string) {
	m[field] = append(m[field], message)
}

// IsValid reports whether no errors have been recorded.
func (m ModelState) IsValid() bool { return len(m) == 0 }

// SelfValidator is implemented by models that validate themselves. A
// returned error is recorded as a model-level error.
type SelfValidator interface {
	Validate() error
}

// ModelValidator validates a bound model and records what it finds in state.
// Field errors are data, not failures.
type ModelValidator interface {
	ValidateModel(model any, state ModelState)
}

// StructValidator is the default ModelValidator. It checks `validate` tags
// with go-playground/validator, the schema constraint tags (minLength,
// maximum, enum, ...) and finally SelfValidator. Field paths use json names.
type StructValidator struct {
	v *validator.Validate
}

// NewStructValidator returns a StructValidator.
func NewStructValidator() *StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	return &StructValidator{v: v}
}

// ValidateModel implements ModelValidator.
func (s *StructValidator) ValidateModel(model any, state ModelState) {
	rv := reflect.Indirect(reflect.ValueOf(model))
	if rv.IsValid() && rv.Kind() == reflect.Struct {
		checkConstraints(rv, "", state)

		var verrs validator.ValidationErrors
		if err := s.v.Struct(model); errors.As(err, &verrs) {
			for _, fe := range verrs {
				state.AddError(fieldPath(fe.Namespace()), validationMessage(fe))
			}
		}
	}

	if sv, ok := model.(SelfValidator); ok {
		if err := sv.Validate(); err != nil {
			state.AddError("", err.Error())
		}
	}
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(namespace string) string {
	_, path, ok := strings.Cut(namespace, ".")
	if !ok {
		return namespace
	}
	return path
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_with", "required_without":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("must have length %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	}
	if fe.Param() != "" {
		return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("failed %s", fe.Tag())
}

// validateModel runs the request's ModelValidator over model.
func validateModel(v ModelValidator, model any) ModelState {
	state := ModelState{}
	if v != nil {
		v.ValidateModel(model, state)
	}
	return state
}
