package minapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"reflect"

	"golang.org/x/text/encoding"
)

// Body binds the raw request body. T must be string, []byte or
// *bytes.Reader. The body is buffered up to a ceiling: DefaultBodyMaxLength
// unless the router Config or a maxLength tag on the field says otherwise.
// A body longer than the ceiling fails with 400.
//
//	type In struct {
//	    Payload minapi.Body[string] `maxLength:"4096"`
//	}
type Body[T any] struct {
	Value T

	contentType string
	mediaType   *MediaType
	encoding    encoding.Encoding
}

var bodyTypes = map[reflect.Type]string{
	reflect.TypeFor[string]():        MediaTypeText,
	reflect.TypeFor[[]byte]():        MediaTypeOctetStream,
	reflect.TypeFor[*bytes.Reader](): MediaTypeOctetStream,
}

// ValidateParameter implements ParameterValidator.
func (*Body[T]) ValidateParameter(p *Parameter) error {
	if _, ok := bodyTypes[reflect.TypeFor[T]()]; !ok {
		return fmt.Errorf("%w: Body[%s] for parameter %q: want string, []byte or *bytes.Reader",
			ErrUnsupportedTargetType, reflect.TypeFor[T](), p.Name)
	}
	return nil
}

// PopulateParameterMetadata implements ParameterMetadataProvider.
func (*Body[T]) PopulateParameterMetadata(p *Parameter, b *EndpointBuilder) {
	ct, ok := bodyTypes[reflect.TypeFor[T]()]
	if !ok {
		return
	}
	b.Add(Accepts{
		ContentTypes: []string{ct},
		BodyType:     reflect.TypeFor[T](),
		Optional:     !p.Required,
	})
}

// BindRequest implements RequestBinder.
func (b *Body[T]) BindRequest(r *http.Request, p *Parameter) error {
	b.contentType = r.Header.Get("Content-Type")

	limit := p.MaxLength
	if limit <= 0 {
		limit = resolveOr[Config](r, Config{}).bodyMaxLength()
	}

	buf, err := readBody(r, p, limit)
	if err != nil {
		return err
	}
	if p.Required && len(buf) == 0 {
		return bindingError(http.StatusBadRequest, p, "request body is required", ErrMissingParameter)
	}

	switch v := any(&b.Value).(type) {
	case *[]byte:
		*v = buf
	case **bytes.Reader:
		*v = bytes.NewReader(buf)
	case *string:
		s, err := decodeText(buf, b.Encoding())
		if err != nil {
			return bindingError(http.StatusBadRequest, p, "request body is not valid text for its charset", err)
		}
		*v = s
	default:
		return fmt.Errorf("%w: Body[%T]", ErrUnsupportedTargetType, b.Value)
	}
	return nil
}

// ContentType returns the request's parsed Content-Type. It is parsed on
// first use and cached.
func (b *Body[T]) ContentType() MediaType {
	if b.mediaType == nil {
		mt := ParseMediaType(b.contentType)
		b.mediaType = &mt
	}
	return *b.mediaType
}

// Encoding returns the text encoding declared by the request's charset,
// or UTF-8 when none is declared. It is resolved on first use and cached.
func (b *Body[T]) Encoding() encoding.Encoding {
	if b.encoding == nil {
		_, b.encoding = ResolveContentType(b.contentType, "", TextPlainUTF8, LookupCharset)
	}
	return b.encoding
}

// readBody buffers at most limit bytes of the request body. More data than
// that fails with ErrBodyTooLarge; a cancelled request surfaces its context error.
func readBody(r *http.Request, p *Parameter, limit int64) ([]byte, error) {
	ctx := r.Context()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("bind %s: %w", p.Name, err)
	}

	if r.ContentLength > limit {
		return nil, tooLarge(p, limit)
	}
	if r.Body == nil || r.Body == http.NoBody {
		return []byte{}, nil
	}

	// Preallocation never exceeds the default ceiling; the buffer grows as
	// data arrives.
	size := min(limit, DefaultBodyMaxLength)
	if r.ContentLength >= 0 {
		size = min(r.ContentLength, size)
	}
	buf := bytes.NewBuffer(make([]byte, 0, size+1))

	readLimit := limit
	if readLimit < math.MaxInt64 {
		readLimit++
	}
	_, err := buf.ReadFrom(io.LimitReader(r.Body, readLimit))
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("bind %s: %w", p.Name, ctxErr)
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, tooLarge(p, min(maxErr.Limit, limit))
		}
		return nil, bindingError(http.StatusBadRequest, p, "failed to read request body", err)
	}
	if int64(buf.Len()) > limit {
		return nil, tooLarge(p, limit)
	}
	return buf.Bytes(), nil
}

func tooLarge(p *Parameter, limit int64) error {
	return bindingError(http.StatusBadRequest, p,
		fmt.Sprintf("request body exceeds %d bytes", limit), ErrBodyTooLarge)
}

// decodeText converts buf from enc to a UTF-8 string.
func decodeText(buf []byte, enc encoding.Encoding) (string, error) {
	if isUTF8(enc) {
		return string(buf), nil
	}
	out, err := enc.NewDecoder().Bytes(buf)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
