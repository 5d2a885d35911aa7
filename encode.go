package minapi

import (
	"encoding/json"
	"errors"
	"io"
)

// Encoder encodes response values to a wire format.
type Encoder interface {
	ContentType() string
	Encode(w io.Writer, v any) error
}

// Decoder decodes request bodies from a wire format.
type Decoder interface {
	ContentType() string
	Decode(r io.Reader, v any) error
}

// JSONCodec implements both Encoder and Decoder for JSON.
type JSONCodec struct {
	Indent                string
	EscapeHTML            bool
	DisallowUnknownFields bool
}

// ContentType returns application/json.
func (JSONCodec) ContentType() string { return MediaTypeJSON }

// Encode writes v as JSON followed by a newline.
func (c JSONCodec) Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(c.EscapeHTML)
	if c.Indent != "" {
		enc.SetIndent("", c.Indent)
	}
	return enc.Encode(v)
}

// Decode reads a single JSON value into v. An empty body leaves v untouched.
func (c JSONCodec) Decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if c.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
