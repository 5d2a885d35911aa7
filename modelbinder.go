package minapi

import (
	"errors"
	"net/http"
	"reflect"
)

// ModelBinder binds T with the default binder and validates it with the
// router's ModelValidator. Nothing is failed on the handler's behalf: bind
// errors and validation errors both land in ModelState.
//
//	user, state := in.User.Deconstruct()
//	if !state.IsValid() {
//	    return result{}.From2(minapi.ValidationProblem{Errors: state}), nil
//	}
type ModelBinder[T any] struct {
	Value      T
	ModelState ModelState
}

// Deconstruct returns the bound value and its validation state.
func (m *ModelBinder[T]) Deconstruct() (T, ModelState) {
	return m.Value, m.ModelState
}

// BindRequest implements RequestBinder.
func (m *ModelBinder[T]) BindRequest(r *http.Request, p *Parameter) error {
	status, err := defaultBinder(r).BindDefault(r, p, &m.Value)
	if IsCancellation(err) {
		return err
	}
	if err != nil || status >= http.StatusBadRequest {
		m.ModelState = ModelState{}
		m.ModelState.AddError(p.Name, bindErrorMessage(err))
		return nil
	}
	m.ModelState = validateModel(resolveOr[ModelValidator](r, nil), &m.Value)
	return nil
}

// PopulateParameterMetadata implements ParameterMetadataProvider.
func (*ModelBinder[T]) PopulateParameterMetadata(p *Parameter, b *EndpointBuilder) {
	describeDefault(p, reflect.TypeFor[T](), b)
}

// bindErrorMessage is the client-safe text of a bind error.
func bindErrorMessage(err error) string {
	var be *BindingError
	if errors.As(err, &be) && be.Detail != "" {
		return be.Detail
	}
	return "the value is invalid"
}
