package minapi

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ParameterSource names where the default binder reads a parameter from.
type ParameterSource int

// Parameter sources. SourceAuto tries the route, then the query string, then
// the JSON body for composite types.
const (
	SourceAuto ParameterSource = iota
	SourcePath
	SourceQuery
	SourceHeader
	SourceCookie
	SourceBody
)

// String returns the lowercase source name.
func (s ParameterSource) String() string {
	switch s {
	case SourcePath:
		return "path"
	case SourceQuery:
		return "query"
	case SourceHeader:
		return "header"
	case SourceCookie:
		return "cookie"
	case SourceBody:
		return "body"
	default:
		return "auto"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s ParameterSource) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// sourceTags are the struct tags naming an explicit parameter source, in
// the order they are checked.
var sourceTags = []struct {
	tag    string
	source ParameterSource
}{
	{"path", SourcePath},
	{"query", SourceQuery},
	{"header", SourceHeader},
	{"cookie", SourceCookie},
}

// Parameter is the registration-time shape of one field of a handler's input
// struct. It is computed once per endpoint and shared by every request.
type Parameter struct {
	// Name is the lookup key in the route, query, header or cookie.
	Name string
	// Source is the explicit source from the field's tags, or SourceAuto.
	Source ParameterSource
	// Required fails binding when the value is absent.
	Required bool
	// Default is used when the value is absent.
	Default string
	// MaxLength is the body ceiling from a maxLength tag; 0 when unset.
	MaxLength int64
	// Field is the struct field the parameter binds.
	Field reflect.StructField
	// Type is the declared field type (the binder type for wrapped fields).
	Type reflect.Type

	index   int
	inRoute bool
}

// resolvedSource reports where a value of type t is read from when bound by
// the default binder.
func (p *Parameter) resolvedSource(t reflect.Type) ParameterSource {
	if p.Source != SourceAuto {
		return p.Source
	}
	if p.inRoute {
		return SourcePath
	}
	if isComposite(t) {
		return SourceBody
	}
	return SourceQuery
}

// newParameter builds the parameter shape for field f of a handler input
// registered under pattern.
func newParameter(f reflect.StructField, index int, pattern string) (*Parameter, error) {
	p := &Parameter{
		Name:  strings.ToLower(f.Name),
		Field: f,
		Type:  f.Type,
		index: index,
	}

	if name := f.Tag.Get("name"); name != "" {
		p.Name = name
	}

	for _, st := range sourceTags {
		if name := f.Tag.Get(st.tag); name != "" {
			p.Name = name
			p.Source = st.source
			break
		}
	}
	if _, ok := f.Tag.Lookup("body"); ok {
		p.Source = SourceBody
	}

	p.Required = f.Tag.Get("required") == "true"
	p.Default = f.Tag.Get("default")

	if tag := f.Tag.Get("maxLength"); tag != "" {
		n, err := strconv.ParseInt(tag, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("field %s: invalid maxLength %q", f.Name, tag)
		}
		p.MaxLength = n
	}

	p.inRoute = patternHasWildcard(pattern, p.Name)
	return p, nil
}

// describeParameters computes the parameter shapes for a handler input type.
func describeParameters(t reflect.Type, pattern string) ([]*Parameter, error) {
	if t == reflect.TypeFor[Void]() {
		return nil, nil
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: handler input %s must be a struct", ErrUnsupportedTargetType, t)
	}

	var params []*Parameter
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("bind") == "-" {
			continue
		}
		p, err := newParameter(f, i, pattern)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

// patternHasWildcard reports whether a ServeMux pattern has a {name} or
// {name...} segment.
func patternHasWildcard(pattern, name string) bool {
	return strings.Contains(pattern, "{"+name+"}") || strings.Contains(pattern, "{"+name+"...}")
}

var textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

// isComposite reports whether values of t are bound from a body rather than
// from a single string.
func isComposite(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return false
	}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.Struct, reflect.Map, reflect.Interface:
		return true
	case reflect.Slice, reflect.Array:
		return isComposite(t.Elem()) || t.Elem().Kind() == reflect.Uint8
	default:
		return false
	}
}
