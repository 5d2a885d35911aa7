package minapi

import (
	"bytes"
	"encoding/json"
	"maps"
	"net/http"
	"reflect"
	"slices"
)

// RequestIDExtension is the problem extension that carries the request id.
const RequestIDExtension = "requestId"

type problemDefault struct {
	title string
	typ   string
}

const rfcBase = "https://tools.ietf.org/html/"

var problemDefaults = map[int]problemDefault{
	http.StatusBadRequest:           {"Bad Request", rfcBase + "rfc7231#section-6.5.1"},
	http.StatusUnauthorized:         {"Unauthorized", rfcBase + "rfc7235#section-3.1"},
	http.StatusForbidden:            {"Forbidden", rfcBase + "rfc7231#section-6.5.3"},
	http.StatusNotFound:             {"Not Found", rfcBase + "rfc7231#section-6.5.4"},
	http.StatusMethodNotAllowed:     {"Method Not Allowed", rfcBase + "rfc7231#section-6.5.5"},
	http.StatusNotAcceptable:        {"Not Acceptable", rfcBase + "rfc7231#section-6.5.6"},
	http.StatusRequestTimeout:       {"Request Timeout", rfcBase + "rfc7231#section-6.5.7"},
	http.StatusConflict:             {"Conflict", rfcBase + "rfc7231#section-6.5.8"},
	http.StatusGone:                 {"Gone", rfcBase + "rfc7231#section-6.5.9"},
	http.StatusPreconditionFailed:   {"Precondition Failed", rfcBase + "rfc7232#section-4.2"},
	http.StatusUnsupportedMediaType: {"Unsupported Media Type", rfcBase + "rfc7231#section-6.5.13"},
	http.StatusUnprocessableEntity:  {"Unprocessable Entity", rfcBase + "rfc4918#section-11.2"},
	http.StatusUpgradeRequired:      {"Upgrade Required", rfcBase + "rfc7231#section-6.5.15"},
	http.StatusInternalServerError:  {"An error occurred while processing your request.", rfcBase + "rfc7231#section-6.6.1"},
}

// ProblemTitle returns the default problem title for status, or "".
func ProblemTitle(status int) string { return problemDefaults[status].title }

// ProblemType returns the default problem type URI for status, or "".
func ProblemType(status int) string { return problemDefaults[status].typ }

// Problem writes an RFC 7807 application/problem+json document. Status
// defaults to 500; Title and Type default from the status. Extensions are
// written as top-level members, and the request id is added under
// "requestId" unless already present.
//
// Problem is also an error, so handlers may return it in either position.
//
//nolint:errname // RFC 7807 name
type Problem struct {
	Type       string
	Title      string
	Status     int
	Detail     string
	Instance   string
	Extensions map[string]any
}

func (p Problem) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	if p.Title != "" {
		return p.Title
	}
	return http.StatusText(p.StatusCode())
}

// StatusCode implements StatusCoder.
func (p Problem) StatusCode() int { return orStatus(p.Status, http.StatusInternalServerError) }

func (p Problem) WriteResult(w http.ResponseWriter, r *http.Request) error {
	p = p.withDefaults(http.StatusInternalServerError, "")
	p.Extensions = withRequestID(p.Extensions, r)
	return writeJSON(w, r, p.Status, p, "", ProblemJSONUTF8)
}

func (p Problem) Describe() ResponseDescription {
	return ResponseDescription{
		StatusCode:   p.StatusCode(),
		BodyType:     reflect.TypeFor[Problem](),
		ContentTypes: []string{MediaTypeProblemJSON},
	}
}

func (p Problem) PopulateResultMetadata(b *EndpointBuilder) { b.Add(p.Describe().metadata()) }

// MarshalJSON flattens Extensions into the document. Extensions never
// replace the standard members.
func (p Problem) MarshalJSON() ([]byte, error) {
	return marshalProblem(problemDoc{
		Type:     p.Type,
		Title:    p.Title,
		Status:   p.Status,
		Detail:   p.Detail,
		Instance: p.Instance,
	}, p.Extensions)
}

func (p Problem) withDefaults(status int, title string) Problem {
	p.Status = orStatus(p.Status, status)
	def := problemDefaults[p.Status]
	if p.Title == "" {
		p.Title = title
	}
	if p.Title == "" {
		p.Title = def.title
	}
	if p.Type == "" {
		p.Type = def.typ
	}
	return p
}

// ValidationProblem is a Problem with per-field errors. Status defaults to 400.
//
//nolint:errname // RFC 7807 name
type ValidationProblem struct {
	Problem
	Errors map[string][]string
}

// ValidationProblemTitle is the default title of a ValidationProblem.
const ValidationProblemTitle = "One or more validation errors occurred."

func (v ValidationProblem) Error() string {
	if v.Detail != "" {
		return v.Detail
	}
	return ValidationProblemTitle
}

// StatusCode implements StatusCoder.
func (v ValidationProblem) StatusCode() int { return orStatus(v.Status, http.StatusBadRequest) }

func (v ValidationProblem) WriteResult(w http.ResponseWriter, r *http.Request) error {
	v.Problem = v.withDefaults(http.StatusBadRequest, ValidationProblemTitle)
	v.Extensions = withRequestID(v.Extensions, r)
	return writeJSON(w, r, v.Status, v, "", ProblemJSONUTF8)
}

func (v ValidationProblem) Describe() ResponseDescription {
	return ResponseDescription{
		StatusCode:   v.StatusCode(),
		BodyType:     reflect.TypeFor[ValidationProblem](),
		ContentTypes: []string{MediaTypeProblemJSON},
	}
}

func (v ValidationProblem) PopulateResultMetadata(b *EndpointBuilder) {
	b.Add(v.Describe().metadata())
}

func (v ValidationProblem) MarshalJSON() ([]byte, error) {
	return marshalProblem(problemDoc{
		Type:     v.Type,
		Title:    v.Title,
		Status:   v.Status,
		Detail:   v.Detail,
		Instance: v.Instance,
		Errors:   v.Errors,
	}, v.Extensions)
}

type problemDoc struct {
	Type     string              `json:"type,omitempty"`
	Title    string              `json:"title,omitempty"`
	Status   int                 `json:"status,omitempty"`
	Detail   string              `json:"detail,omitempty"`
	Instance string              `json:"instance,omitempty"`
	Errors   map[string][]string `json:"errors,omitempty"`
}

var problemMembers = []string{"type", "title", "status", "detail", "instance", "errors"}

func marshalProblem(doc problemDoc, ext map[string]any) ([]byte, error) {
	core, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(ext))
	for k := range ext {
		if !slices.Contains(problemMembers, k) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return core, nil
	}
	slices.Sort(keys)

	var buf bytes.Buffer
	buf.Write(core[:len(core)-1])
	first := len(core) == 2 // "{}"
	for _, k := range keys {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(ext[k])
		if err != nil {
			return nil, err
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// withRequestID returns ext with the request's id under "requestId". An id
// that is already present is kept, and ext itself is never modified.
func withRequestID(ext map[string]any, r *http.Request) map[string]any {
	if _, ok := ext[RequestIDExtension]; ok {
		return ext
	}
	if r == nil {
		return ext
	}
	id := GetRequestID(r)
	if id == "" {
		return ext
	}
	out := maps.Clone(ext)
	if out == nil {
		out = make(map[string]any, 1)
	}
	out[RequestIDExtension] = id
	return out
}
