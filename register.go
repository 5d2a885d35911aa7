package minapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
)

// Registrar is accepted by the registration functions. Both *Router and
// *Group implement it.
type Registrar interface {
	pathPrefix() string
	addEndpoint(e *Endpoint, h http.Handler)
}

// Handle registers h for method and pattern. The input type's binding plan
// is computed here, and a binder that cannot serve its field's shape (for
// example Body[int]) panics so the mistake surfaces at startup.
func Handle[In any, Out Result](reg Registrar, method, pattern string, h Handler[In, Out], opts ...RouteOption) *Endpoint {
	e := &Endpoint{
		Method:     method,
		Pattern:    reg.pathPrefix() + pattern,
		InputType:  reflect.TypeFor[In](),
		ResultType: reflect.TypeFor[Out](),
		describe:   DescribeResult[Out],
	}
	for _, opt := range opts {
		opt(e)
	}

	params, err := describeParameters(e.InputType, e.Pattern)
	if err != nil {
		panic(fmt.Sprintf("minapi: %s %s: %v", method, e.Pattern, err))
	}
	for _, p := range params {
		if err := validateParameter(p); err != nil {
			panic(fmt.Sprintf("minapi: %s %s: %v", method, e.Pattern, err))
		}
	}
	e.params = params

	reg.addEndpoint(e, dispatch(e, h))
	return e
}

// Get registers a GET handler.
func Get[In any, Out Result](reg Registrar, pattern string, h Handler[In, Out], opts ...RouteOption) *Endpoint {
	return Handle(reg, http.MethodGet, pattern, h, opts...)
}

// Post registers a POST handler.
func Post[In any, Out Result](reg Registrar, pattern string, h Handler[In, Out], opts ...RouteOption) *Endpoint {
	return Handle(reg, http.MethodPost, pattern, h, opts...)
}

// Put registers a PUT handler.
func Put[In any, Out Result](reg Registrar, pattern string, h Handler[In, Out], opts ...RouteOption) *Endpoint {
	return Handle(reg, http.MethodPut, pattern, h, opts...)
}

// Patch registers a PATCH handler.
func Patch[In any, Out Result](reg Registrar, pattern string, h Handler[In, Out], opts ...RouteOption) *Endpoint {
	return Handle(reg, http.MethodPatch, pattern, h, opts...)
}

// Delete registers a DELETE handler.
func Delete[In any, Out Result](reg Registrar, pattern string, h Handler[In, Out], opts ...RouteOption) *Endpoint {
	return Handle(reg, http.MethodDelete, pattern, h, opts...)
}

// Raw registers a raw handler. Its metadata comes only from WithMetadata.
func Raw(reg Registrar, method, pattern string, h RawHandler, opts ...RouteOption) *Endpoint {
	e := &Endpoint{Method: method, Pattern: reg.pathPrefix() + pattern}
	for _, opt := range opts {
		opt(e)
	}
	reg.addEndpoint(e, http.HandlerFunc(h))
	return e
}

// dispatch binds every input field, calls the handler and writes its result.
func dispatch[In any, Out Result](e *Endpoint, h Handler[In, Out]) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := resolveOr(r, slog.Default())

		in := new(In)
		rv := reflect.ValueOf(in).Elem()
		for _, p := range e.params {
			if err := bindParameter(r, p, rv.Field(p.index)); err != nil {
				if IsCancellation(err) {
					logger.DebugContext(r.Context(), "request cancelled during binding",
						"endpoint", e.Pattern, "parameter", p.Name, "error", err)
					return
				}
				logger.DebugContext(r.Context(), "binding failed",
					"endpoint", e.Pattern, "parameter", p.Name, "error", err)
				handleError(w, r, err)
				return
			}
		}

		out, err := h(r.Context(), in)
		if err != nil {
			if IsCancellation(err) {
				logger.DebugContext(r.Context(), "request cancelled", "endpoint", e.Pattern, "error", err)
				return
			}
			if ErrorStatus(err) >= http.StatusInternalServerError {
				logger.ErrorContext(r.Context(), "handler failed", "endpoint", e.Pattern, "error", err)
			}
			handleError(w, r, err)
			return
		}

		if hs, ok := any(out).(HeaderSetter); ok {
			hs.SetHeaders(w.Header())
		}

		rec := &responseRecorder{ResponseWriter: w}
		if err := out.WriteResult(rec, r); err != nil {
			if IsCancellation(err) {
				logger.DebugContext(r.Context(), "request cancelled while writing", "endpoint", e.Pattern, "error", err)
				return
			}
			logger.ErrorContext(r.Context(), "write result failed",
				"endpoint", e.Pattern, "result", fmt.Sprintf("%T", out), "error", err)
			if !rec.wroteHeader {
				writeProblem(w, r, Problem{})
			}
		}
	})
}

// handleError writes err with the router's ErrorHandler, or as a problem.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	if eh := resolveOr[ErrorHandler](r, nil); eh != nil {
		eh(w, r, err)
		return
	}
	writeProblem(w, r, ProblemFromError(err))
}

// ProblemFromError converts a binding or handler error into the result
// written for it. Problems are used as they are; a BindingError or HTTPError
// contributes its client-safe detail; any other error yields a bare problem
// with the error's status so internals never reach the client.
func ProblemFromError(err error) Result {
	var vp ValidationProblem
	if errors.As(err, &vp) {
		return vp
	}
	var p Problem
	if errors.As(err, &p) {
		return p
	}
	var be *BindingError
	if errors.As(err, &be) {
		return Problem{Status: be.Status, Detail: be.Detail}
	}
	var he *HTTPError
	if errors.As(err, &he) {
		return Problem{Status: he.Status, Detail: he.Message}
	}
	return Problem{Status: ErrorStatus(err)}
}

func writeProblem(w http.ResponseWriter, r *http.Request, res Result) {
	if err := res.WriteResult(w, r); err != nil {
		resolveOr(r, slog.Default()).ErrorContext(r.Context(), "write problem failed", "error", err)
	}
}
