package minapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
)

// ErrNoFile is returned when a multipart form has no file under a field name.
var ErrNoFile = errors.New("no uploaded file")

// FileUpload is one file from a multipart form.
type FileUpload struct {
	Field    string
	Filename string
	Size     int64
	Header   *multipart.FileHeader
}

// Open returns a reader for the uploaded file contents. The caller closes it.
func (f *FileUpload) Open() (io.ReadCloser, error) {
	if f.Header == nil {
		return nil, fmt.Errorf("open %q: %w", f.Field, ErrNoFile)
	}
	return f.Header.Open()
}

// File returns the first file uploaded under field.
func (f *Form[T]) File(field string) (*FileUpload, error) {
	files := f.Files[field]
	if len(files) == 0 {
		return nil, fmt.Errorf("form field %q: %w", field, ErrNoFile)
	}
	return newFileUpload(field, files[0]), nil
}

// Uploads returns every uploaded file, grouped by field.
func (f *Form[T]) Uploads() map[string][]*FileUpload {
	out := make(map[string][]*FileUpload, len(f.Files))
	for field, headers := range f.Files {
		for _, h := range headers {
			out[field] = append(out[field], newFileUpload(field, h))
		}
	}
	return out
}

func newFileUpload(field string, h *multipart.FileHeader) *FileUpload {
	return &FileUpload{Field: field, Filename: h.Filename, Size: h.Size, Header: h}
}
