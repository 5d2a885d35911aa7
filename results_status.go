package minapi

import (
	"net/http"
)

// Ok writes 200 with Value as JSON. Ok[Void] writes no body.
type Ok[T any] struct {
	Value T
}

func (o Ok[T]) WriteResult(w http.ResponseWriter, r *http.Request) error {
	return writeValue(w, r, http.StatusOK, o.Value)
}

func (Ok[T]) Describe() ResponseDescription { return valueDescription[T](http.StatusOK) }

func (o Ok[T]) PopulateResultMetadata(b *EndpointBuilder) { b.Add(o.Describe().metadata()) }

// Created writes 201 with a Location header and Value as JSON.
type Created[T any] struct {
	Location string
	Value    T
}

func (c Created[T]) WriteResult(w http.ResponseWriter, r *http.Request) error {
	setLocation(w, c.Location)
	return writeValue(w, r, http.StatusCreated, c.Value)
}

func (Created[T]) Describe() ResponseDescription { return valueDescription[T](http.StatusCreated) }

func (c Created[T]) PopulateResultMetadata(b *EndpointBuilder) { b.Add(c.Describe().metadata()) }

// CreatedAtRoute writes 201 with a Location built from a named route.
type CreatedAtRoute[T any] struct {
	RouteName string
	Params    map[string]string
	Value     T
}

func (c CreatedAtRoute[T]) WriteResult(w http.ResponseWriter, r *http.Request) error {
	location, err := urlFor(r, c.RouteName, c.Params)
	if err != nil {
		return err
	}
	setLocation(w, location)
	return writeValue(w, r, http.StatusCreated, c.Value)
}

func (CreatedAtRoute[T]) Describe() ResponseDescription {
	return valueDescription[T](http.StatusCreated)
}

func (c CreatedAtRoute[T]) PopulateResultMetadata(b *EndpointBuilder) { b.Add(c.Describe().metadata()) }

// Accepted writes 202 with an optional Location and Value as JSON.
type Accepted[T any] struct {
	Location string
	Value    T
}

func (a Accepted[T]) WriteResult(w http.ResponseWriter, r *http.Request) error {
	setLocation(w, a.Location)
	return writeValue(w, r, http.StatusAccepted, a.Value)
}

func (Accepted[T]) Describe() ResponseDescription { return valueDescription[T](http.StatusAccepted) }

func (a Accepted[T]) PopulateResultMetadata(b *EndpointBuilder) { b.Add(a.Describe().metadata()) }

// NoContent writes 204.
type NoContent struct{}

func (NoContent) WriteResult(w http.ResponseWriter, _ *http.Request) error {
	return writeStatus(w, http.StatusNoContent)
}

func (NoContent) Describe() ResponseDescription {
	return ResponseDescription{StatusCode: http.StatusNoContent}
}

func (n NoContent) PopulateResultMetadata(b *EndpointBuilder) { b.Add(n.Describe().metadata()) }

// Status writes Code with no body. Its status is only known at runtime, so
// it declares no metadata.
type Status struct {
	Code int
}

func (s Status) WriteResult(w http.ResponseWriter, _ *http.Request) error {
	return writeStatus(w, orStatus(s.Code, http.StatusOK))
}

func (s Status) Describe() ResponseDescription {
	return ResponseDescription{StatusCode: orStatus(s.Code, http.StatusOK)}
}

// The client error results below write their status with Message as
// text/plain, or no body when Message is empty. Message never changes the
// status they describe.

// BadRequest writes 400.
type BadRequest struct{ Message string }

func (e BadRequest) WriteResult(w http.ResponseWriter, _ *http.Request) error {
	return writeMessage(w, http.StatusBadRequest, e.Message)
}

func (BadRequest) Describe() ResponseDescription { return messageDescription(http.StatusBadRequest) }

func (e BadRequest) PopulateResultMetadata(b *EndpointBuilder) { b.Add(e.Describe().metadata()) }

// Unauthorized writes 401.
type Unauthorized struct{ Message string }

func (e Unauthorized) WriteResult(w http.ResponseWriter, _ *http.Request) error {
	return writeMessage(w, http.StatusUnauthorized, e.Message)
}

func (Unauthorized) Describe() ResponseDescription {
	return messageDescription(http.StatusUnauthorized)
}

func (e Unauthorized) PopulateResultMetadata(b *EndpointBuilder) { b.Add(e.Describe().metadata()) }

// Forbidden writes 403.
type Forbidden struct{ Message string }

func (e Forbidden) WriteResult(w http.ResponseWriter, _ *http.Request) error {
	return writeMessage(w, http.StatusForbidden, e.Message)
}

func (Forbidden) Describe() ResponseDescription { return messageDescription(http.StatusForbidden) }

func (e Forbidden) PopulateResultMetadata(b *EndpointBuilder) { b.Add(e.Describe().metadata()) }

// NotFound writes 404.
type NotFound struct{ Message string }

func (e NotFound) WriteResult(w http.ResponseWriter, _ *http.Request) error {
	return writeMessage(w, http.StatusNotFound, e.Message)
}

func (NotFound) Describe() ResponseDescription { return messageDescription(http.StatusNotFound) }

func (e NotFound) PopulateResultMetadata(b *EndpointBuilder) { b.Add(e.Describe().metadata()) }

// Conflict writes 409.
type Conflict struct{ Message string }

func (e Conflict) WriteResult(w http.ResponseWriter, _ *http.Request) error {
	return writeMessage(w, http.StatusConflict, e.Message)
}

func (Conflict) Describe() ResponseDescription { return messageDescription(http.StatusConflict) }

func (e Conflict) PopulateResultMetadata(b *EndpointBuilder) { b.Add(e.Describe().metadata()) }

// Gone writes 410.
type Gone struct{ Message string }

func (e Gone) WriteResult(w http.ResponseWriter, _ *http.Request) error {
	return writeMessage(w, http.StatusGone, e.Message)
}

func (Gone) Describe() ResponseDescription { return messageDescription(http.StatusGone) }

func (e Gone) PopulateResultMetadata(b *EndpointBuilder) { b.Add(e.Describe().metadata()) }

// UnsupportedMediaType writes 415.
type UnsupportedMediaType struct{ Message string }

func (e UnsupportedMediaType) WriteResult(w http.ResponseWriter, _ *http.Request) error {
	return writeMessage(w, http.StatusUnsupportedMediaType, e.Message)
}

func (UnsupportedMediaType) Describe() ResponseDescription {
	return messageDescription(http.StatusUnsupportedMediaType)
}

func (e UnsupportedMediaType) PopulateResultMetadata(b *EndpointBuilder) {
	b.Add(e.Describe().metadata())
}

// UnprocessableEntity writes 422.
type UnprocessableEntity struct{ Message string }

func (e UnprocessableEntity) WriteResult(w http.ResponseWriter, _ *http.Request) error {
	return writeMessage(w, http.StatusUnprocessableEntity, e.Message)
}

func (UnprocessableEntity) Describe() ResponseDescription {
	return messageDescription(http.StatusUnprocessableEntity)
}

func (e UnprocessableEntity) PopulateResultMetadata(b *EndpointBuilder) {
	b.Add(e.Describe().metadata())
}

// writeValue writes v as JSON with status. Void values write no body.
func writeValue[T any](w http.ResponseWriter, r *http.Request, status int, v T) error {
	if bodyType[T]() == nil {
		return writeStatus(w, status)
	}
	return writeJSON(w, r, status, v, "", JSONUTF8)
}

func writeMessage(w http.ResponseWriter, status int, message string) error {
	if message == "" {
		return writeStatus(w, status)
	}
	return writeText(w, status, message, "")
}

func valueDescription[T any](status int) ResponseDescription {
	return ResponseDescription{StatusCode: status, BodyType: bodyType[T](), ContentTypes: jsonContentTypes[T]()}
}

func messageDescription(status int) ResponseDescription {
	return ResponseDescription{StatusCode: status}
}
