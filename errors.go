package minapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for request binding and result writing.
var (
	ErrBodyTooLarge          = errors.New("request body too large")
	ErrUnsupportedMediaType  = errors.New("unsupported media type")
	ErrUnsupportedTargetType = errors.New("unsupported target type")
	ErrMissingParameter      = errors.New("missing required parameter")
	ErrInvalidParameter      = errors.New("invalid parameter value")
	ErrInvalidBody           = errors.New("invalid request body")
	ErrFormFieldConflict     = errors.New("conflicting form fields")
	ErrMissingRouteMatch     = errors.New("no route matches")
	ErrEmptyResult           = errors.New("result union has no active alternative")
)

// StatusCoder is implemented by errors or results that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// BindingError reports a failed parameter binding. Detail is safe to show to
// clients; Err holds the underlying cause and is only logged.
type BindingError struct {
	Status    int
	Parameter string
	Detail    string
	Err       error
}

func (e *BindingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("bind %s: %s", e.Parameter, e.Detail)
	}
	return fmt.Sprintf("bind %s: %s: %v", e.Parameter, e.Detail, e.Err)
}

// Unwrap returns the underlying cause.
func (e *BindingError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status the failed binding signals.
func (e *BindingError) StatusCode() int { return e.Status }

func bindingError(status int, p *Parameter, detail string, err error) *BindingError {
	name := ""
	if p != nil {
		name = p.Name
	}
	return &BindingError{Status: status, Parameter: name, Detail: detail, Err: err}
}

// HTTPError is an error with an HTTP status code. Handlers return it to
// short-circuit into a problem response whose detail is Message.
type HTTPError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Error returns the error message.
func (e *HTTPError) Error() string { return e.Message }

// StatusCode returns the HTTP status code.
func (e *HTTPError) StatusCode() int { return e.Status }

// Error returns an error with the given HTTP status code and message.
func Error(status int, message string) error {
	return &HTTPError{Status: status, Message: message}
}

// Errorf returns a formatted error with the given HTTP status code.
func Errorf(status int, format string, args ...any) error {
	return &HTTPError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// ErrorStatus extracts the HTTP status code from an error. Returns
// http.StatusInternalServerError if the error does not implement StatusCoder.
func ErrorStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}

// IsCancellation reports whether err stems from a cancelled or expired request context.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
