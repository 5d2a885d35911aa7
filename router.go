package minapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Router dispatches typed endpoints over an http.ServeMux. Every request it
// serves carries the router's Services, so binders and results can resolve
// the binder registry, default binder, codecs, validator, logger, config and
// link generator.
type Router struct {
	mux        *http.ServeMux
	middleware []Middleware
	chain      atomic.Pointer[http.Handler]

	mu        sync.RWMutex
	endpoints []*Endpoint
	named     map[string]*Endpoint

	services *Services
	binders  *BinderRegistry
	logger   *slog.Logger
	config   Config

	defaultBinder DefaultBinder
	validator     ModelValidator
	encoder       Encoder
	decoder       Decoder
	errorHandler  ErrorHandler
	provide       []func(*Services)
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// ErrorHandler writes the response for a binding or handler error. The
// default writes ProblemFromError(err).
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// WithLogger sets the logger used by the dispatcher and the built-in middleware.
func WithLogger(l *slog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = l
	}
}

// WithConfig sets the binding limits and defaults.
func WithConfig(cfg Config) RouterOption {
	return func(r *Router) {
		r.config = cfg
	}
}

// WithErrorHandler replaces the problem response written for errors.
func WithErrorHandler(h ErrorHandler) RouterOption {
	return func(r *Router) {
		r.errorHandler = h
	}
}

// WithDefaultBinder replaces the built-in default binder.
func WithDefaultBinder(b DefaultBinder) RouterOption {
	return func(r *Router) {
		r.defaultBinder = b
	}
}

// WithValidator replaces the ModelValidator used by Validated and ModelBinder.
func WithValidator(v ModelValidator) RouterOption {
	return func(r *Router) {
		r.validator = v
	}
}

// WithEncoder replaces the JSON response encoder.
func WithEncoder(enc Encoder) RouterOption {
	return func(r *Router) {
		r.encoder = enc
	}
}

// WithDecoder replaces the JSON request decoder.
func WithDecoder(dec Decoder) RouterOption {
	return func(r *Router) {
		r.decoder = dec
	}
}

// WithBinder registers a custom binder for Bind[T] parameters.
func WithBinder[T any](b ParameterBinder[T]) RouterOption {
	return func(r *Router) {
		RegisterBinder(r.binders, b)
	}
}

// WithService provides an additional service to every request. It is
// applied after the built-in services, so it can also replace one.
func WithService[T any](v T) RouterOption {
	return func(r *Router) {
		r.provide = append(r.provide, func(s *Services) { Provide(s, v) })
	}
}

// New creates a Router.
func New(opts ...RouterOption) *Router {
	r := &Router{
		mux:           http.NewServeMux(),
		named:         make(map[string]*Endpoint),
		services:      NewServices(),
		binders:       NewBinderRegistry(),
		logger:        slog.Default(),
		defaultBinder: hostBinder{},
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.validator == nil {
		r.validator = NewStructValidator()
	}
	if r.encoder == nil {
		r.encoder = JSONCodec{Indent: r.config.JSONIndent}
	}
	if r.decoder == nil {
		r.decoder = JSONCodec{}
	}

	Provide(r.services, r.binders)
	Provide(r.services, r.defaultBinder)
	Provide(r.services, r.validator)
	Provide(r.services, r.encoder)
	Provide(r.services, r.decoder)
	Provide(r.services, r.logger)
	Provide(r.services, r.config)
	Provide[LinkGenerator](r.services, r)
	if r.errorHandler != nil {
		Provide(r.services, r.errorHandler)
	}
	for _, p := range r.provide {
		p(r.services)
	}
	return r
}

// Services returns the router's service locator.
func (r *Router) Services() *Services { return r.services }

// Binders returns the router's binder registry.
func (r *Router) Binders() *BinderRegistry { return r.binders }

// Use adds middleware. Middleware runs in the order added, after the
// router has attached its services and the request id.
func (r *Router) Use(mw ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mw...)
	r.chain.Store(nil)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	req = req.WithContext(WithServices(req.Context(), r.services))
	r.handler().ServeHTTP(w, req)
}

// handler returns the middleware chain around the mux. It is composed on
// first use and again only after Use.
func (r *Router) handler() http.Handler {
	if h := r.chain.Load(); h != nil {
		return *h
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if h := r.chain.Load(); h != nil {
		return *h
	}

	h := http.Handler(r.mux)
	for i := len(r.middleware) - 1; i >= 0; i-- {
		h = r.middleware[i](h)
	}
	h = RequestID(RequestIDConfig{Header: r.config.RequestIDHeader})(h)
	r.chain.Store(&h)
	return h
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (r *Router) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Endpoints returns the registered endpoints in registration order.
func (r *Router) Endpoints() []*Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Endpoint, len(r.endpoints))
	copy(out, r.endpoints)
	return out
}

// URLFor builds the path of the route named name, filling its wildcards
// from params. It implements LinkGenerator.
func (r *Router) URLFor(name string, params map[string]string) (string, error) {
	r.mu.RLock()
	e, ok := r.named[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: no route named %q", ErrMissingRouteMatch, name)
	}
	return expandPattern(e.Pattern, params)
}

func (r *Router) pathPrefix() string { return "" }

func (r *Router) addEndpoint(e *Endpoint, h http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.Name != "" {
		if _, dup := r.named[e.Name]; dup {
			panic(fmt.Sprintf("minapi: duplicate route name %q", e.Name))
		}
		r.named[e.Name] = e
	}
	r.mux.Handle(e.Method+" "+e.Pattern, h)
	r.endpoints = append(r.endpoints, e)
}

// expandPattern substitutes {name} and {name...} wildcards in a ServeMux
// pattern. Values are path-escaped; a {name...} value keeps its slashes.
func expandPattern(pattern string, params map[string]string) (string, error) {
	var b strings.Builder
	rest := pattern
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("%w: malformed pattern %q", ErrMissingRouteMatch, pattern)
		}
		end += open

		b.WriteString(rest[:open])
		name := rest[open+1 : end]
		rest = rest[end+1:]

		if name == "$" {
			continue
		}
		multi := strings.HasSuffix(name, "...")
		name = strings.TrimSuffix(name, "...")

		v, ok := params[name]
		if !ok || v == "" {
			return "", fmt.Errorf("%w: %q needs parameter %q", ErrMissingRouteMatch, pattern, name)
		}
		if multi {
			segs := strings.Split(v, "/")
			for i, s := range segs {
				segs[i] = url.PathEscape(s)
			}
			b.WriteString(strings.Join(segs, "/"))
			continue
		}
		b.WriteString(url.PathEscape(v))
	}
}
