package minapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
)

// Form binds a multipart/form-data or application/x-www-form-urlencoded
// request into T. Form fields are rewritten into a JSON document
// (see WriteFormJSON) and decoded with the router's Decoder, so T is
// declared with ordinary json tags:
//
//	type Signup struct {
//	    Email   string `json:"email"`
//	    Address struct {
//	        City string `json:"city"`
//	    } `json:"address"` // form field "address.city"
//	}
//
// Any other content type fails with 415.
type Form[T any] struct {
	Value T

	// Files holds the uploaded files of a multipart request.
	Files map[string][]*multipart.FileHeader
}

// PopulateParameterMetadata implements ParameterMetadataProvider.
func (*Form[T]) PopulateParameterMetadata(p *Parameter, b *EndpointBuilder) {
	b.Add(Accepts{
		ContentTypes: []string{MediaTypeMultipart, MediaTypeURLEncoded},
		BodyType:     reflect.TypeFor[T](),
		Optional:     !p.Required,
	})
}

// BindRequest implements RequestBinder.
func (f *Form[T]) BindRequest(r *http.Request, p *Parameter) error {
	ct := r.Header.Get("Content-Type")
	if !matchesMediaType(ct, MediaTypeMultipart, MediaTypeURLEncoded) {
		return bindingError(http.StatusUnsupportedMediaType, p,
			fmt.Sprintf("expected %s or %s request body", MediaTypeMultipart, MediaTypeURLEncoded),
			ErrUnsupportedMediaType)
	}

	values, err := parseForm(r)
	if err != nil {
		if ctxErr := r.Context().Err(); ctxErr != nil {
			return fmt.Errorf("bind %s: %w", p.Name, ctxErr)
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return tooLarge(p, maxErr.Limit)
		}
		return bindingError(http.StatusBadRequest, p, "request body is not a valid form", fmt.Errorf("%w: %w", ErrInvalidBody, err))
	}
	if r.MultipartForm != nil {
		f.Files = r.MultipartForm.File
	}
	if p.Required && len(values) == 0 && len(f.Files) == 0 {
		return bindingError(http.StatusBadRequest, p, "request body is required", ErrMissingParameter)
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(WriteFormJSON(pw, values))
	}()
	defer pr.Close()

	dec := resolveOr[Decoder](r, JSONCodec{})
	if err := dec.Decode(pr, &f.Value); err != nil {
		if errors.Is(err, ErrFormFieldConflict) {
			return bindingError(http.StatusBadRequest, p, "form fields conflict", err)
		}
		return bindingError(http.StatusBadRequest, p, "form fields do not match the expected shape", fmt.Errorf("%w: %w", ErrInvalidBody, err))
	}
	return nil
}

// parseForm returns the body's form values, leaving the query string out.
func parseForm(r *http.Request) (map[string][]string, error) {
	if matchesMediaType(r.Header.Get("Content-Type"), MediaTypeMultipart) {
		if err := r.ParseMultipartForm(resolveOr[Config](r, Config{}).multipartMemory()); err != nil {
			return nil, err
		}
		return r.MultipartForm.Value, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return r.PostForm, nil
}
