package minapi

import (
	"net/http"
	"reflect"
)

// SuppressBinding is a no-op binder. Wrapping a field in it keeps the
// default binder away from that field; Value is always the zero value.
type SuppressBinding[T any] struct {
	Value T
}

// BindRequest implements RequestBinder.
func (*SuppressBinding[T]) BindRequest(*http.Request, *Parameter) error { return nil }

// PopulateParameterMetadata implements ParameterMetadataProvider.
// A suppressed parameter is not part of the endpoint's contract.
func (*SuppressBinding[T]) PopulateParameterMetadata(*Parameter, *EndpointBuilder) {}

// SuppressDefaultResponse runs the default binder but never fails the
// request. The bound value, the status the default binder would have
// answered with and any binding error are captured for the handler:
//
//	if in.Page.StatusCode != http.StatusOK {
//	    in.Page.Value = 1
//	}
//
// Only cancellation is propagated.
type SuppressDefaultResponse[T any] struct {
	Value      T
	StatusCode int
	Err        error
}

// BindRequest implements RequestBinder.
func (s *SuppressDefaultResponse[T]) BindRequest(r *http.Request, p *Parameter) error {
	status, err := defaultBinder(r).BindDefault(r, p, &s.Value)
	if IsCancellation(err) {
		return err
	}
	if err != nil && status < http.StatusBadRequest {
		status = ErrorStatus(err)
	}
	s.StatusCode = status
	s.Err = err
	return nil
}

// PopulateParameterMetadata implements ParameterMetadataProvider.
func (*SuppressDefaultResponse[T]) PopulateParameterMetadata(p *Parameter, b *EndpointBuilder) {
	describeDefault(p, reflect.TypeFor[T](), b)
}
