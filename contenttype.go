package minapi

import (
	"mime"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// Common media types.
const (
	MediaTypeJSON        = "application/json"
	MediaTypeProblemJSON = "application/problem+json"
	MediaTypeText        = "text/plain"
	MediaTypeOctetStream = "application/octet-stream"
	MediaTypeMultipart   = "multipart/form-data"
	MediaTypeURLEncoded  = "application/x-www-form-urlencoded"
)

// ContentTypeDefault is the (content type, encoding) pair used when neither an
// explicit nor an ambient content type is available.
type ContentTypeDefault struct {
	ContentType string
	Encoding    encoding.Encoding
}

// Default content type pairs used by the built-in results.
var (
	TextPlainUTF8   = ContentTypeDefault{ContentType: "text/plain; charset=utf-8", Encoding: unicode.UTF8}
	JSONUTF8        = ContentTypeDefault{ContentType: "application/json; charset=utf-8", Encoding: unicode.UTF8}
	ProblemJSONUTF8 = ContentTypeDefault{ContentType: "application/problem+json; charset=utf-8", Encoding: unicode.UTF8}
)

// EncodingLookup extracts the text encoding declared by a content type.
// It reports false when the content type declares no charset or the charset
// is unknown.
type EncodingLookup func(contentType string) (encoding.Encoding, bool)

// LookupCharset is the default EncodingLookup. It reads the charset parameter
// and resolves it using the WHATWG encoding index.
func LookupCharset(contentType string) (encoding.Encoding, bool) {
	charset := charsetOf(contentType)
	if charset == "" {
		return nil, false
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, false
	}
	return enc, true
}

// ResolveContentType picks the content type and text encoding to use when
// writing a body. An explicit content type wins over the ambient one already
// set on the response; otherwise def is returned verbatim. The encoding comes
// from the winning content type's charset, falling back to def.Encoding.
func ResolveContentType(explicit, ambient string, def ContentTypeDefault, lookup EncodingLookup) (string, encoding.Encoding) {
	if lookup == nil {
		lookup = LookupCharset
	}

	for _, ct := range [2]string{explicit, ambient} {
		if ct == "" {
			continue
		}
		if enc, ok := lookup(ct); ok {
			return ct, enc
		}
		return ct, def.Encoding
	}

	return def.ContentType, def.Encoding
}

// MediaType is a parsed Content-Type header value.
type MediaType struct {
	MediaType string
	Charset   string
	Params    map[string]string
}

// String returns the media type with its parameters.
func (m MediaType) String() string {
	if m.MediaType == "" {
		return ""
	}
	return mime.FormatMediaType(m.MediaType, m.Params)
}

// ParseMediaType parses a Content-Type header value. Malformed values yield a
// MediaType holding only the lowercased text before the first semicolon.
func ParseMediaType(contentType string) MediaType {
	if contentType == "" {
		return MediaType{}
	}
	mt, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		base, _, _ := strings.Cut(contentType, ";")
		return MediaType{MediaType: strings.ToLower(strings.TrimSpace(base))}
	}
	return MediaType{MediaType: mt, Charset: params["charset"], Params: params}
}

func charsetOf(contentType string) string {
	return ParseMediaType(contentType).Charset
}

// isUTF8 reports whether enc writes bytes unchanged for UTF-8 input.
func isUTF8(enc encoding.Encoding) bool {
	return enc == nil || enc == unicode.UTF8 || enc == encoding.Nop
}

// matchesMediaType reports whether contentType names one of the given media types.
func matchesMediaType(contentType string, types ...string) bool {
	mt := ParseMediaType(contentType).MediaType
	for _, t := range types {
		if mt == t {
			return true
		}
	}
	return false
}
