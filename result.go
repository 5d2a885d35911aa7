package minapi

import (
	"bytes"
	"fmt"
	"net/http"

	"golang.org/x/text/encoding"
)

// Result is a handler's response. Results are plain values built by the
// handler and written once by the dispatcher. Only errors from the response
// sink (and a missing named route) are returned.
type Result interface {
	WriteResult(w http.ResponseWriter, r *http.Request) error
}

// ResultFunc adapts a function to Result.
type ResultFunc func(w http.ResponseWriter, r *http.Request) error

// WriteResult calls f.
func (f ResultFunc) WriteResult(w http.ResponseWriter, r *http.Request) error { return f(w, r) }

// HeaderSetter is optionally implemented by results that add response
// headers before the status line is written.
type HeaderSetter interface {
	SetHeaders(h http.Header)
}

// writeJSON encodes v with the request's Encoder and writes it with status.
// The content type is resolved from explicit, then the Content-Type already
// on the response, then def; non-UTF-8 charsets are transcoded.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any, explicit string, def ContentTypeDefault) error {
	var buf bytes.Buffer
	if err := resolveOr[Encoder](r, JSONCodec{}).Encode(&buf, v); err != nil {
		return fmt.Errorf("encode %T: %w", v, err)
	}
	return writeBody(w, status, buf.Bytes(), explicit, def)
}

// writeText writes s as text/plain (or explicit) with status.
func writeText(w http.ResponseWriter, status int, s, explicit string) error {
	return writeBody(w, status, []byte(s), explicit, TextPlainUTF8)
}

// writeBody writes UTF-8 text, transcoding it to the resolved charset.
func writeBody(w http.ResponseWriter, status int, utf8 []byte, explicit string, def ContentTypeDefault) error {
	ct, enc := ResolveContentType(explicit, w.Header().Get("Content-Type"), def, nil)
	body, err := transcode(utf8, enc)
	if err != nil {
		return fmt.Errorf("encode body as %s: %w", ct, err)
	}

	w.Header().Set("Content-Type", ct)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

func transcode(utf8 []byte, enc encoding.Encoding) ([]byte, error) {
	if isUTF8(enc) {
		return utf8, nil
	}
	return enc.NewEncoder().Bytes(utf8)
}

// writeStatus writes a body-less response.
func writeStatus(w http.ResponseWriter, status int) error {
	w.WriteHeader(status)
	return nil
}

func orStatus(status, def int) int {
	if status == 0 {
		return def
	}
	return status
}

func setLocation(w http.ResponseWriter, location string) {
	if location != "" {
		w.Header().Set("Location", location)
	}
}
