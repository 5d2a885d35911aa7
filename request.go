package minapi

import (
	"encoding"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// DefaultBinder is the hook into the host's built-in parameter binding. It
// binds one parameter into target (a non-nil pointer) with the standard
// precedence and reports the status the host would have answered with:
// http.StatusOK on success, the failure status otherwise. It never writes
// to the response.
type DefaultBinder interface {
	BindDefault(r *http.Request, p *Parameter, target any) (status int, err error)
}

// DefaultBinderFunc adapts a function to DefaultBinder.
type DefaultBinderFunc func(r *http.Request, p *Parameter, target any) (int, error)

// BindDefault calls f.
func (f DefaultBinderFunc) BindDefault(r *http.Request, p *Parameter, target any) (int, error) {
	return f(r, p, target)
}

// hostBinder is the router's DefaultBinder. Explicit source tags win; an
// untagged parameter is read from the route, then the query string, then
// (for composite types) the JSON body.
type hostBinder struct{}

func (hostBinder) BindDefault(r *http.Request, p *Parameter, target any) (int, error) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return http.StatusInternalServerError, fmt.Errorf("%w: bind target must be a non-nil pointer", ErrUnsupportedTargetType)
	}
	field := rv.Elem()

	vals, src := lookupValues(r, p, field.Type())
	if src == SourceBody {
		return bindJSONBody(r, p, target)
	}

	if len(vals) == 0 && p.Default != "" {
		vals = []string{p.Default}
	}
	if len(vals) == 0 {
		if p.Required {
			return http.StatusBadRequest, bindingError(http.StatusBadRequest, p,
				fmt.Sprintf("missing required %s parameter %q", src, p.Name), ErrMissingParameter)
		}
		return http.StatusOK, nil
	}

	if err := setValues(field, vals); err != nil {
		return http.StatusBadRequest, bindingError(http.StatusBadRequest, p,
			fmt.Sprintf("invalid value for %s parameter %q", src, p.Name), fmt.Errorf("%w: %w", ErrInvalidParameter, err))
	}
	return http.StatusOK, nil
}

// lookupValues finds the raw values for p and reports which source supplied
// them (or would have, when nothing was found).
func lookupValues(r *http.Request, p *Parameter, t reflect.Type) ([]string, ParameterSource) {
	switch p.Source {
	case SourcePath:
		return nonEmpty(r.PathValue(p.Name)), SourcePath
	case SourceQuery:
		return r.URL.Query()[p.Name], SourceQuery
	case SourceHeader:
		return r.Header.Values(p.Name), SourceHeader
	case SourceCookie:
		if c, err := r.Cookie(p.Name); err == nil {
			return nonEmpty(c.Value), SourceCookie
		}
		return nil, SourceCookie
	case SourceBody:
		return nil, SourceBody
	case SourceAuto:
	}

	if v := r.PathValue(p.Name); v != "" {
		return []string{v}, SourcePath
	}
	if vals, ok := r.URL.Query()[p.Name]; ok && len(vals) > 0 {
		return vals, SourceQuery
	}
	if isComposite(t) {
		return nil, SourceBody
	}
	return nil, SourceQuery
}

func nonEmpty(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

// bindJSONBody decodes the request body into target using the encoder
// registered with the request's services.
func bindJSONBody(r *http.Request, p *Parameter, target any) (int, error) {
	if !hasBody(r) {
		if p.Required {
			return http.StatusBadRequest, bindingError(http.StatusBadRequest, p, "request body is required", ErrMissingParameter)
		}
		return http.StatusOK, nil
	}

	if ct := r.Header.Get("Content-Type"); ct != "" && !isJSONMediaType(ct) {
		return http.StatusUnsupportedMediaType, bindingError(http.StatusUnsupportedMediaType, p,
			fmt.Sprintf("expected %s request body", MediaTypeJSON), ErrUnsupportedMediaType)
	}

	dec := resolveOr[Decoder](r, JSONCodec{})
	if err := dec.Decode(r.Body, target); err != nil {
		if ctxErr := r.Context().Err(); ctxErr != nil {
			return 0, fmt.Errorf("bind %s: %w", p.Name, ctxErr)
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return http.StatusBadRequest, bindingError(http.StatusBadRequest, p, "request body too large", ErrBodyTooLarge)
		}
		return http.StatusBadRequest, bindingError(http.StatusBadRequest, p, "request body is not valid JSON", fmt.Errorf("%w: %w", ErrInvalidBody, err))
	}
	return http.StatusOK, nil
}

func hasBody(r *http.Request) bool {
	return r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0
}

func isJSONMediaType(contentType string) bool {
	mt := ParseMediaType(contentType).MediaType
	return mt == MediaTypeJSON || strings.HasSuffix(mt, "+json")
}

// setValues assigns raw values to field, filling slices element by element.
func setValues(field reflect.Value, vals []string) error {
	if field.Kind() == reflect.Slice && !implementsTextUnmarshaler(field) {
		slice := reflect.MakeSlice(field.Type(), len(vals), len(vals))
		for i, v := range vals {
			if err := setFieldValue(slice.Index(i), v); err != nil {
				return err
			}
		}
		field.Set(slice)
		return nil
	}
	return setFieldValue(field, vals[0])
}

func implementsTextUnmarshaler(v reflect.Value) bool {
	return v.CanAddr() && v.Addr().Type().Implements(textUnmarshalerType)
}

// setFieldValue sets a reflect.Value from a string, supporting common types.
func setFieldValue(field reflect.Value, value string) error {
	if field.Kind() == reflect.Pointer {
		elem := reflect.New(field.Type().Elem())
		if err := setFieldValue(elem.Elem(), value); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	if implementsTextUnmarshaler(field) {
		return field.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(value)) //nolint:forcetypeassert // checked above
	}

	if field.Type() == reflect.TypeFor[time.Duration]() {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(d))
		return nil
	}

	//exhaustive:ignore
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedTargetType, field.Type())
	}
	return nil
}
