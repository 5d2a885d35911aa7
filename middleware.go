package minapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"
)

// Middleware is the standard middleware signature compatible with the entire
// Go middleware ecosystem.
type Middleware func(next http.Handler) http.Handler

// Recovery returns middleware that recovers from panics and responds with a
// 500 problem. The panic is logged with the router's logger.
func Recovery() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler { //nolint:errorlint,err113 // sentinel panic value
						panic(rec)
					}
					resolveOr(r, slog.Default()).ErrorContext(r.Context(), "panic recovered",
						"panic", rec,
						"stack", string(debug.Stack()),
						"method", r.Method,
						"path", r.URL.Path,
					)
					writeProblem(w, r, Problem{})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// BodyLimit returns middleware that caps the request body at maxBytes for
// every binder. Reading past the cap fails the binder with ErrBodyTooLarge.
func BodyLimit(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Timeout returns middleware that puts a deadline on the request context.
// Binders and results treat the expired deadline as a cancellation; if
// nothing was written by then the client gets a 503 problem.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			rec := &responseRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))

			if !rec.wroteHeader && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				writeProblem(w, r, Problem{Status: http.StatusServiceUnavailable, Detail: "request timed out"})
			}
		})
	}
}
