package minapi

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
)

// RequestBinder is implemented (on the pointer) by input fields that bind
// themselves. The dispatcher calls BindRequest once per request before the
// handler runs; a returned error short-circuits the request.
type RequestBinder interface {
	BindRequest(r *http.Request, p *Parameter) error
}

// ParameterValidator is implemented (on the pointer) by binders that only
// support some parameter shapes. It runs at registration so a bad shape
// fails at startup.
type ParameterValidator interface {
	ValidateParameter(p *Parameter) error
}

// Bind binds T with the custom binder registered for T, or with the
// default binder when none is registered.
type Bind[T any] struct {
	Value T
}

// BindRequest implements RequestBinder.
func (b *Bind[T]) BindRequest(r *http.Request, p *Parameter) error {
	if custom, ok := LookupBinder[T](resolveOr[*BinderRegistry](r, nil)); ok {
		v, err := custom.Bind(r, p)
		if err != nil {
			if IsCancellation(err) {
				return err
			}
			return asBindingError(p, err)
		}
		b.Value = v
		return nil
	}

	status, err := defaultBinder(r).BindDefault(r, p, &b.Value)
	if err != nil {
		if IsCancellation(err) {
			return err
		}
		return asBindingError(p, err)
	}
	if status >= http.StatusBadRequest {
		return bindingError(status, p, http.StatusText(status), nil)
	}
	return nil
}

// PopulateParameterMetadata implements ParameterMetadataProvider.
func (*Bind[T]) PopulateParameterMetadata(p *Parameter, b *EndpointBuilder) {
	describeDefault(p, reflect.TypeFor[T](), b)
}

func defaultBinder(r *http.Request) DefaultBinder {
	return resolveOr[DefaultBinder](r, hostBinder{})
}

// asBindingError keeps a BindingError as is and wraps anything else as a 400.
func asBindingError(p *Parameter, err error) error {
	var be *BindingError
	if errors.As(err, &be) {
		return be
	}
	status := ErrorStatus(err)
	if status == http.StatusInternalServerError {
		status = http.StatusBadRequest
	}
	return bindingError(status, p, fmt.Sprintf("invalid value for parameter %q", p.Name), err)
}

// bindParameter binds one input field. Binder fields bind themselves; bare
// fields go through the default binder.
func bindParameter(r *http.Request, p *Parameter, field reflect.Value) error {
	if rb, ok := field.Addr().Interface().(RequestBinder); ok {
		return rb.BindRequest(r, p)
	}

	status, err := defaultBinder(r).BindDefault(r, p, field.Addr().Interface())
	if err != nil {
		if IsCancellation(err) {
			return err
		}
		return asBindingError(p, err)
	}
	if status >= http.StatusBadRequest {
		return bindingError(status, p, http.StatusText(status), nil)
	}
	return nil
}

// validateParameter runs the binder's registration-time check, if any.
func validateParameter(p *Parameter) error {
	ptr := reflect.New(p.Type).Interface()
	if pv, ok := ptr.(ParameterValidator); ok {
		return pv.ValidateParameter(p)
	}
	return nil
}
