package minapi

import (
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"
)

// Stream copies Body to the response. If Body is an io.Closer it is closed
// once copied. Without a ContentType, a Content-Type already set on the
// response is kept.
type Stream struct {
	StatusCode  int
	ContentType string
	Body        io.Reader
}

func (s Stream) WriteResult(w http.ResponseWriter, _ *http.Request) error {
	if c, ok := s.Body.(io.Closer); ok {
		defer c.Close() //nolint:errcheck // read side
	}

	setBinaryContentType(w, s.ContentType)
	w.WriteHeader(orStatus(s.StatusCode, http.StatusOK))

	if s.Body == nil {
		return nil
	}
	if _, err := io.Copy(w, s.Body); err != nil {
		return fmt.Errorf("copy stream: %w", err)
	}
	return nil
}

func (s Stream) Describe() ResponseDescription {
	ct := s.ContentType
	if ct == "" {
		ct = MediaTypeOctetStream
	}
	return ResponseDescription{
		StatusCode:   orStatus(s.StatusCode, http.StatusOK),
		BodyType:     reflect.TypeFor[Stream](),
		ContentTypes: []string{ParseMediaType(ct).MediaType},
	}
}

func (s Stream) PopulateResultMetadata(b *EndpointBuilder) { b.Add(s.Describe().metadata()) }

// File sends Content with http.ServeContent, which handles Range,
// If-Modified-Since and If-None-Match. The content type is sniffed from
// Name when ContentType is empty.
type File struct {
	Name        string
	ModTime     time.Time
	Content     io.ReadSeeker
	ContentType string
}

func (f File) WriteResult(w http.ResponseWriter, r *http.Request) error {
	if c, ok := f.Content.(io.Closer); ok {
		defer c.Close() //nolint:errcheck // read side
	}
	if f.Content == nil {
		return writeStatus(w, http.StatusNotFound)
	}
	if f.ContentType != "" {
		w.Header().Set("Content-Type", f.ContentType)
	}
	http.ServeContent(w, r, f.Name, f.ModTime, f.Content)
	return nil
}

func (File) Describe() ResponseDescription {
	return ResponseDescription{
		StatusCode:   http.StatusOK,
		BodyType:     reflect.TypeFor[File](),
		ContentTypes: []string{MediaTypeOctetStream},
	}
}

func (f File) PopulateResultMetadata(b *EndpointBuilder) { b.Add(f.Describe().metadata()) }
