package minapi

import (
	"net/http"
	"reflect"
)

// JSONBody decodes a JSON request body into T. A body with a non-JSON
// content type fails with 415 and malformed JSON with 400. An absent body
// leaves Value at its zero value unless the field is tagged required:"true".
type JSONBody[T any] struct {
	Value T
}

// PopulateParameterMetadata implements ParameterMetadataProvider.
func (*JSONBody[T]) PopulateParameterMetadata(p *Parameter, b *EndpointBuilder) {
	b.Add(Accepts{
		ContentTypes: []string{MediaTypeJSON},
		BodyType:     reflect.TypeFor[T](),
		Optional:     !p.Required,
	})
}

// BindRequest implements RequestBinder.
func (j *JSONBody[T]) BindRequest(r *http.Request, p *Parameter) error {
	status, err := bindJSONBody(r, p, &j.Value)
	if err != nil {
		return err
	}
	if status >= http.StatusBadRequest {
		return bindingError(status, p, http.StatusText(status), nil)
	}
	return nil
}

// Validated is a JSONBody whose value has been run through the router's
// ModelValidator. Validation errors do not fail the request; the handler
// inspects Errors and decides, typically by returning a ValidationProblem.
//
//	type createResult = minapi.Results2[minapi.Created[User], minapi.ValidationProblem]
//
//	func create(ctx context.Context, in *struct{ User minapi.Validated[User] }) (createResult, error) {
//	    if !in.User.IsValid() {
//	        return createResult{}.From2(minapi.ValidationProblem{Errors: in.User.Errors}), nil
//	    }
//	    ...
//	}
type Validated[T any] struct {
	Value  T
	Errors ModelState
}

// IsValid reports whether validation recorded no errors.
func (v *Validated[T]) IsValid() bool { return v.Errors.IsValid() }

// PopulateParameterMetadata implements ParameterMetadataProvider.
func (*Validated[T]) PopulateParameterMetadata(p *Parameter, b *EndpointBuilder) {
	(*JSONBody[T])(nil).PopulateParameterMetadata(p, b)
}

// BindRequest implements RequestBinder.
func (v *Validated[T]) BindRequest(r *http.Request, p *Parameter) error {
	var body JSONBody[T]
	if err := body.BindRequest(r, p); err != nil {
		return err
	}
	v.Value = body.Value
	v.Errors = validateModel(resolveOr[ModelValidator](r, nil), &v.Value)
	return nil
}
