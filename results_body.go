package minapi

import (
	"fmt"
	"net/http"
	"reflect"
)

// Text writes Body as text. ContentType defaults to text/plain; a charset
// other than UTF-8 transcodes Body.
type Text struct {
	StatusCode  int
	Body        string
	ContentType string
}

func (t Text) WriteResult(w http.ResponseWriter, _ *http.Request) error {
	return writeText(w, orStatus(t.StatusCode, http.StatusOK), t.Body, t.ContentType)
}

func (t Text) Describe() ResponseDescription {
	ct, _ := ResolveContentType(t.ContentType, "", TextPlainUTF8, nil)
	return ResponseDescription{
		StatusCode:   orStatus(t.StatusCode, http.StatusOK),
		BodyType:     reflect.TypeFor[string](),
		ContentTypes: []string{ParseMediaType(ct).MediaType},
	}
}

func (t Text) PopulateResultMetadata(b *EndpointBuilder) { b.Add(t.Describe().metadata()) }

// JSON writes Value as JSON with a caller-chosen status and content type,
// e.g. "application/vnd.api+json; charset=utf-16".
type JSON[T any] struct {
	StatusCode  int
	Value       T
	ContentType string
}

func (j JSON[T]) WriteResult(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, r, orStatus(j.StatusCode, http.StatusOK), j.Value, j.ContentType, JSONUTF8)
}

func (j JSON[T]) Describe() ResponseDescription {
	ct, _ := ResolveContentType(j.ContentType, "", JSONUTF8, nil)
	return ResponseDescription{
		StatusCode:   orStatus(j.StatusCode, http.StatusOK),
		BodyType:     reflect.TypeFor[T](),
		ContentTypes: []string{ParseMediaType(ct).MediaType},
	}
}

func (j JSON[T]) PopulateResultMetadata(b *EndpointBuilder) { b.Add(j.Describe().metadata()) }

// Bytes writes Body unchanged. ContentType defaults to a Content-Type already
// set on the response, then application/octet-stream.
type Bytes struct {
	StatusCode  int
	Body        []byte
	ContentType string
}

func (bs Bytes) WriteResult(w http.ResponseWriter, _ *http.Request) error {
	setBinaryContentType(w, bs.ContentType)
	w.WriteHeader(orStatus(bs.StatusCode, http.StatusOK))
	if _, err := w.Write(bs.Body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

// setBinaryContentType resolves the content type of an opaque body: the
// explicit one, else one already on the response, else octet-stream.
func setBinaryContentType(w http.ResponseWriter, explicit string) {
	ct, _ := ResolveContentType(explicit, w.Header().Get("Content-Type"),
		ContentTypeDefault{ContentType: MediaTypeOctetStream}, nil)
	w.Header().Set("Content-Type", ct)
}

func (bs Bytes) contentType() string {
	if bs.ContentType == "" {
		return MediaTypeOctetStream
	}
	return bs.ContentType
}

func (bs Bytes) Describe() ResponseDescription {
	return ResponseDescription{
		StatusCode:   orStatus(bs.StatusCode, http.StatusOK),
		BodyType:     reflect.TypeFor[[]byte](),
		ContentTypes: []string{ParseMediaType(bs.contentType()).MediaType},
	}
}

func (bs Bytes) PopulateResultMetadata(b *EndpointBuilder) { b.Add(bs.Describe().metadata()) }
