package minapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// DefaultRequestIDHeader is the header the request id is read from and echoed in.
const DefaultRequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDConfig configures the RequestID middleware.
type RequestIDConfig struct {
	Header    string        // default: "X-Request-ID"
	Generator func() string // default: UUIDv4
}

// RequestID returns middleware that assigns each request an id. The id is
// taken from the request header, then from an id already in the context,
// and is generated otherwise. It is stored in the context, echoed in the
// response header and added to problem responses.
//
// The router already applies it with the configured header; add it
// explicitly only for a custom generator.
func RequestID(cfg ...RequestIDConfig) Middleware {
	c := RequestIDConfig{
		Header:    DefaultRequestIDHeader,
		Generator: uuid.NewString,
	}
	if len(cfg) > 0 {
		if cfg[0].Header != "" {
			c.Header = cfg[0].Header
		}
		if cfg[0].Generator != nil {
			c.Generator = cfg[0].Generator
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(c.Header)
			if id == "" {
				id = GetRequestID(r)
			}
			if id == "" {
				id = c.Generator()
			}

			w.Header().Set(c.Header, id)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
		})
	}
}

// GetRequestID returns the request id stored in the request context.
func GetRequestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}
